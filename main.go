package main

import (
	"github.com/frahmantamala/moola-sync/cmd"
)

func main() {
	cmd.Execute()
}
