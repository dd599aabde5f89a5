package settings

import (
	"time"
)

// Settings is the single long-lived configuration record for the Moola
// integration. Exactly one row exists; mapping tables hang off it.
type Settings struct {
	ID                    int64      `gorm:"primaryKey" json:"id"`
	Enabled               bool       `gorm:"column:enabled" json:"enabled"`
	APIBaseURL            string     `gorm:"column:api_base_url" json:"api_base_url"`
	ExpenseListEndpoint   string     `gorm:"column:expense_list_endpoint" json:"expense_list_endpoint"`
	AuthType              string     `gorm:"column:auth_type" json:"auth_type"`
	BasicUsername         string     `gorm:"column:basic_username" json:"basic_username"`
	BasicPassword         string     `gorm:"column:basic_password" json:"-"`
	APIKey                string     `gorm:"column:api_key" json:"-"`
	PageSize              int        `gorm:"column:page_size" json:"page_size"`
	ApprovedStatuses      string     `gorm:"column:approved_statuses" json:"approved_statuses"`
	RequireSettledCleared bool       `gorm:"column:require_settled_cleared" json:"require_settled_cleared"`
	PostingDatePolicy     string     `gorm:"column:posting_date_policy" json:"posting_date_policy"`
	UseAmountField        string     `gorm:"column:use_amount_field" json:"use_amount_field"`
	CategoryKey           string     `gorm:"column:category_key" json:"category_key"`
	CardKey               string     `gorm:"column:card_key" json:"card_key"`
	BranchKey             string     `gorm:"column:branch_key" json:"branch_key"`
	Company               string     `gorm:"column:company" json:"company"`
	DefaultExpenseAccount string     `gorm:"column:default_expense_account" json:"default_expense_account"`
	VATAccount            string     `gorm:"column:vat_account" json:"vat_account"`
	DefaultCostCenter     string     `gorm:"column:default_cost_center" json:"default_cost_center"`
	DefaultBranch         string     `gorm:"column:default_branch" json:"default_branch"`
	FromDate              *time.Time `gorm:"column:from_date" json:"from_date,omitempty"`
	ResyncLookbackDays    int        `gorm:"column:resync_lookback_days" json:"resync_lookback_days"`
	LastSuccessTime       *time.Time `gorm:"column:last_success_time" json:"last_success_time,omitempty"`
	CreatedAt             time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt             time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (Settings) TableName() string {
	return "moola_settings"
}

// CategoryMapRow maps a remote category key to expense account, cost center
// and an optional branch hint. Ordered; first match wins.
type CategoryMapRow struct {
	ID               int64  `gorm:"primaryKey" json:"id"`
	Position         int    `gorm:"column:position" json:"position"`
	MoolaCategoryKey string `gorm:"column:moola_category_key" json:"moola_category_key"`
	ExpenseAccount   string `gorm:"column:expense_account" json:"expense_account"`
	CostCenter       string `gorm:"column:cost_center" json:"cost_center"`
	Branch           string `gorm:"column:branch" json:"branch"`
}

func (CategoryMapRow) TableName() string {
	return "moola_category_map"
}

// CardMapRow maps a remote card key to the ERP card/payment account. Exact
// match only; there is deliberately no default.
type CardMapRow struct {
	ID           int64  `gorm:"primaryKey" json:"id"`
	MoolaCardKey string `gorm:"column:moola_card_key" json:"moola_card_key"`
	CardAccount  string `gorm:"column:card_account" json:"card_account"`
}

func (CardMapRow) TableName() string {
	return "moola_card_map"
}

type BranchMapRow struct {
	ID              int64  `gorm:"primaryKey" json:"id"`
	RemoteBranchKey string `gorm:"column:remote_branch_key" json:"remote_branch_key"`
	Branch          string `gorm:"column:branch" json:"branch"`
}

func (BranchMapRow) TableName() string {
	return "moola_branch_map"
}

const (
	MatchOnTagValueID   = "tagValueId"
	MatchOnTagValueName = "tagValueName"
)

// TagDimensionMapRow maps a remote tag to an accounting dimension value on
// the posted journal lines.
type TagDimensionMapRow struct {
	ID                 int64  `gorm:"primaryKey" json:"id"`
	TagName            string `gorm:"column:tag_name" json:"tag_name"`
	MatchOn            string `gorm:"column:match_on" json:"match_on"`
	RemoteValue        string `gorm:"column:remote_value" json:"remote_value"`
	DimensionFieldname string `gorm:"column:dimension_fieldname" json:"dimension_fieldname"`
	DimensionValue     string `gorm:"column:dimension_value" json:"dimension_value"`
}

func (TagDimensionMapRow) TableName() string {
	return "moola_tag_dimension_map"
}
