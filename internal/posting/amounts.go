package posting

import (
	"github.com/frahmantamala/moola-sync/internal/moola"
	"github.com/frahmantamala/moola-sync/internal/settings"
	"github.com/shopspring/decimal"
)

// SplitAmounts computes the debit/credit line amounts for one record.
//
// The record's total, net (defaulting to total) and vat (defaulting to
// zero) are read as decimals. Under the "net" policy the expense debit is
// the net amount and VAT is added on top when a VAT account is configured.
// Under the default "total" policy the gross total is credited either way;
// a configured VAT account with a positive vat splits the debit side into
// net + VAT, otherwise the whole total is debited to the expense account.
func SplitAmounts(s *settings.Settings, rec moola.Record) (debit, extraVAT, credit decimal.Decimal) {
	total := rec.Decimal("total")
	net := rec.Decimal("net")
	if !rec.Has("net") || net.IsZero() {
		net = total
	}
	vat := rec.Decimal("vat")

	vatConfigured := s.VATAccount != "" && vat.IsPositive()

	if s.AmountFieldOrDefault() == settings.AmountFieldNet {
		debit = net
		extraVAT = decimal.Zero
		if vatConfigured {
			extraVAT = vat
		}
		credit = net.Add(extraVAT)
		return debit, extraVAT, credit
	}

	if vatConfigured {
		return net, vat, total
	}
	return total, decimal.Zero, total
}
