package mapping

import (
	"fmt"
	"strings"

	"github.com/frahmantamala/moola-sync/internal"
	settingsDatamodel "github.com/frahmantamala/moola-sync/internal/core/datamodel/settings"
	"github.com/frahmantamala/moola-sync/internal/moola"
	"github.com/frahmantamala/moola-sync/internal/settings"
)

// Resolution holds every account and dimension resolved for one expense
// record, ready for journal assembly.
type Resolution struct {
	ExpenseAccount string
	CostCenter     string
	Branch         string
	CardAccount    string
	Dimensions     map[string]string
}

// Resolve runs the full lookup chain for one record: category accounts,
// tag dimensions, branch and card account. Branch and card failures are
// hard errors aborting this record only.
func Resolve(s *settings.Settings, rec moola.Record) (*Resolution, error) {
	expenseAccount, costCenter, branchHint := CategoryAccounts(s, rec)

	branch, err := DeriveBranch(s, rec, branchHint)
	if err != nil {
		return nil, err
	}

	cardAccount, err := CardAccount(s, rec)
	if err != nil {
		return nil, err
	}

	return &Resolution{
		ExpenseAccount: expenseAccount,
		CostCenter:     costCenter,
		Branch:         branch,
		CardAccount:    cardAccount,
		Dimensions:     DimensionsFromTags(s, rec),
	}, nil
}

// CategoryAccounts resolves expense account, cost center and a branch hint
// from the Category Map. Matching is case-insensitive on the configured
// category key field; the first matching row wins, and any sub-field the
// row leaves empty falls back to the settings default. The branch hint is
// only ever set by a matched row: the default branch applies at the end of
// branch resolution, after the Branch Map had its chance.
func CategoryAccounts(s *settings.Settings, rec moola.Record) (expenseAccount, costCenter, branchHint string) {
	expenseAccount = s.DefaultExpenseAccount
	costCenter = s.DefaultCostCenter

	key := strings.TrimSpace(rec.Str(s.CategoryKeyOrDefault()))
	for _, rule := range s.Categories {
		if !strings.EqualFold(strings.TrimSpace(rule.MoolaCategoryKey), key) {
			continue
		}
		if rule.ExpenseAccount != "" {
			expenseAccount = rule.ExpenseAccount
		}
		if rule.CostCenter != "" {
			costCenter = rule.CostCenter
		}
		if rule.Branch != "" {
			branchHint = rule.Branch
		}
		break
	}
	return expenseAccount, costCenter, branchHint
}

// DeriveBranch resolves the posting branch. Priority: the category-map
// branch hint, then a case-insensitive Branch Map match on the configured
// branch key field, then the settings default. No resolution is a hard
// error: entries without a branch must not be posted.
func DeriveBranch(s *settings.Settings, rec moola.Record, branchHint string) (string, error) {
	if branchHint != "" {
		return branchHint, nil
	}

	keyField := s.BranchKeyOrDefault()
	remoteKey := strings.ToLower(strings.TrimSpace(rec.Str(keyField)))
	if remoteKey != "" {
		for _, rule := range s.Branches {
			if strings.ToLower(strings.TrimSpace(rule.RemoteBranchKey)) == remoteKey && rule.Branch != "" {
				return rule.Branch, nil
			}
		}
	}

	if s.DefaultBranch != "" {
		return s.DefaultBranch, nil
	}

	return "", internal.NewRecordError(
		fmt.Sprintf("branch is mandatory: no branch mapped for %s=%q and no default branch set", keyField, remoteKey),
		internal.ErrCodeBranchMandatory,
	)
}

// CardAccount resolves the credit-side card/payment account with an exact
// string match. There is deliberately no default: misrouting cash is worse
// than failing loudly.
func CardAccount(s *settings.Settings, rec moola.Record) (string, error) {
	keyField := s.CardKeyOrDefault()
	keyVal := strings.TrimSpace(rec.Str(keyField))
	for _, rule := range s.Cards {
		if strings.TrimSpace(rule.MoolaCardKey) == keyVal {
			return rule.CardAccount, nil
		}
	}
	return "", internal.NewRecordError(
		fmt.Sprintf("no card account mapped for %s=%q", keyField, keyVal),
		internal.ErrCodeCardNotMapped,
	)
}

// DimensionsFromTags builds {dimension fieldname: value} from the
// Tag-Dimension Map. Multiple tags can set multiple dimensions; the first
// writer per field wins. Rows matching on tag value id compare the raw id
// against the configured remote value, which in practice never matches
// because the mapping UI only exposes value names; the behavior is kept as
// configured rather than silently changed.
func DimensionsFromTags(s *settings.Settings, rec moola.Record) map[string]string {
	dims := make(map[string]string)
	if len(s.TagDimensions) == 0 {
		return dims
	}

	rowsByTag := make(map[string][]settings.TagDimensionRule)
	for _, rule := range s.TagDimensions {
		name := strings.ToUpper(strings.TrimSpace(rule.TagName))
		rowsByTag[name] = append(rowsByTag[name], rule)
	}

	for _, tag := range rec.Tags() {
		name := strings.ToUpper(strings.TrimSpace(tag.Name))
		if name == "" {
			continue
		}
		rules, ok := rowsByTag[name]
		if !ok {
			continue
		}

		for _, rule := range rules {
			var matched bool
			if rule.MatchOn == settingsDatamodel.MatchOnTagValueName {
				matched = strings.EqualFold(strings.TrimSpace(tag.ValueName), strings.TrimSpace(rule.RemoteValue))
			} else {
				matched = tag.ValueID == rule.RemoteValue
			}
			if !matched {
				continue
			}

			fieldname := strings.TrimSpace(rule.DimensionFieldname)
			value := strings.TrimSpace(rule.DimensionValue)
			if fieldname == "" || value == "" {
				continue
			}
			if _, exists := dims[fieldname]; !exists {
				dims[fieldname] = value
			}
		}
	}
	return dims
}
