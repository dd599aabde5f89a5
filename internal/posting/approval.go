package posting

import (
	"github.com/frahmantamala/moola-sync/internal/moola"
	"github.com/frahmantamala/moola-sync/internal/settings"
)

// Approved reports whether an expense record is eligible for posting. The
// stringified status must be in the configured approved set, and when the
// settings demand it, both the settlement and cleared flags must be truthy.
// Pure function, no side effects.
func Approved(s *settings.Settings, rec moola.Record) bool {
	statuses := s.ApprovedStatusSet()
	if _, ok := statuses[rec.Str("status")]; !ok {
		return false
	}
	if s.RequireSettledCleared {
		if !rec.Truthy("isSettled") || !rec.Truthy("isCleared") {
			return false
		}
	}
	return true
}
