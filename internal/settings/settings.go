package settings

import (
	"strings"
	"time"

	settingsDatamodel "github.com/frahmantamala/moola-sync/internal/core/datamodel/settings"
)

const (
	PostingDateToday       = "posting_day"
	PostingDateExpenseDate = "use_expense_date"

	AmountFieldTotal = "total"
	AmountFieldNet   = "net"

	defaultPageSize    = 100
	defaultCategoryKey = "categoryID"
	defaultCardKey     = "ccMask"
	defaultBranchKey   = "costCenterID"
)

// DefaultApprovedStatuses is the fallback approved-status set used when the
// operator left the field empty.
var DefaultApprovedStatuses = []string{"1", "2"}

// Settings is the loaded configuration snapshot for one sync run, the
// singleton row plus all mapping tables. Read-only during a run.
type Settings struct {
	Enabled               bool
	APIBaseURL            string
	ExpenseListEndpoint   string
	AuthType              string
	BasicUsername         string
	BasicPassword         string
	APIKey                string
	PageSize              int
	ApprovedStatuses      string
	RequireSettledCleared bool
	PostingDatePolicy     string
	UseAmountField        string
	CategoryKey           string
	CardKey               string
	BranchKey             string
	Company               string
	DefaultExpenseAccount string
	VATAccount            string
	DefaultCostCenter     string
	DefaultBranch         string
	FromDate              *time.Time
	ResyncLookbackDays    int
	LastSuccessTime       *time.Time

	Categories    []CategoryRule
	Cards         []CardRule
	Branches      []BranchRule
	TagDimensions []TagDimensionRule
}

type CategoryRule struct {
	MoolaCategoryKey string
	ExpenseAccount   string
	CostCenter       string
	Branch           string
}

type CardRule struct {
	MoolaCardKey string
	CardAccount  string
}

type BranchRule struct {
	RemoteBranchKey string
	Branch          string
}

type TagDimensionRule struct {
	TagName            string
	MatchOn            string
	RemoteValue        string
	DimensionFieldname string
	DimensionValue     string
}

// ApprovedStatusSet parses the configured CSV into a set, falling back to
// DefaultApprovedStatuses when empty.
func (s *Settings) ApprovedStatusSet() map[string]struct{} {
	set := make(map[string]struct{})
	for _, part := range strings.Split(s.ApprovedStatuses, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			set[trimmed] = struct{}{}
		}
	}
	if len(set) == 0 {
		for _, status := range DefaultApprovedStatuses {
			set[status] = struct{}{}
		}
	}
	return set
}

func (s *Settings) PageSizeOrDefault() int {
	if s.PageSize > 0 {
		return s.PageSize
	}
	return defaultPageSize
}

func (s *Settings) CategoryKeyOrDefault() string {
	if s.CategoryKey != "" {
		return s.CategoryKey
	}
	return defaultCategoryKey
}

func (s *Settings) CardKeyOrDefault() string {
	if s.CardKey != "" {
		return s.CardKey
	}
	return defaultCardKey
}

func (s *Settings) BranchKeyOrDefault() string {
	if s.BranchKey != "" {
		return s.BranchKey
	}
	return defaultBranchKey
}

func (s *Settings) AmountFieldOrDefault() string {
	if strings.EqualFold(s.UseAmountField, AmountFieldNet) {
		return AmountFieldNet
	}
	return AmountFieldTotal
}

func FromDataModel(
	dm *settingsDatamodel.Settings,
	categories []*settingsDatamodel.CategoryMapRow,
	cards []*settingsDatamodel.CardMapRow,
	branches []*settingsDatamodel.BranchMapRow,
	tagDims []*settingsDatamodel.TagDimensionMapRow,
) *Settings {
	s := &Settings{
		Enabled:               dm.Enabled,
		APIBaseURL:            dm.APIBaseURL,
		ExpenseListEndpoint:   dm.ExpenseListEndpoint,
		AuthType:              dm.AuthType,
		BasicUsername:         dm.BasicUsername,
		BasicPassword:         dm.BasicPassword,
		APIKey:                dm.APIKey,
		PageSize:              dm.PageSize,
		ApprovedStatuses:      dm.ApprovedStatuses,
		RequireSettledCleared: dm.RequireSettledCleared,
		PostingDatePolicy:     dm.PostingDatePolicy,
		UseAmountField:        dm.UseAmountField,
		CategoryKey:           dm.CategoryKey,
		CardKey:               dm.CardKey,
		BranchKey:             dm.BranchKey,
		Company:               dm.Company,
		DefaultExpenseAccount: dm.DefaultExpenseAccount,
		VATAccount:            dm.VATAccount,
		DefaultCostCenter:     dm.DefaultCostCenter,
		DefaultBranch:         dm.DefaultBranch,
		FromDate:              dm.FromDate,
		ResyncLookbackDays:    dm.ResyncLookbackDays,
		LastSuccessTime:       dm.LastSuccessTime,
	}
	for _, row := range categories {
		s.Categories = append(s.Categories, CategoryRule{
			MoolaCategoryKey: row.MoolaCategoryKey,
			ExpenseAccount:   row.ExpenseAccount,
			CostCenter:       row.CostCenter,
			Branch:           row.Branch,
		})
	}
	for _, row := range cards {
		s.Cards = append(s.Cards, CardRule{
			MoolaCardKey: row.MoolaCardKey,
			CardAccount:  row.CardAccount,
		})
	}
	for _, row := range branches {
		s.Branches = append(s.Branches, BranchRule{
			RemoteBranchKey: row.RemoteBranchKey,
			Branch:          row.Branch,
		})
	}
	for _, row := range tagDims {
		s.TagDimensions = append(s.TagDimensions, TagDimensionRule{
			TagName:            row.TagName,
			MatchOn:            row.MatchOn,
			RemoteValue:        row.RemoteValue,
			DimensionFieldname: row.DimensionFieldname,
			DimensionValue:     row.DimensionValue,
		})
	}
	return s
}
