package journal

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DimensionMap stores custom accounting dimension key/values on a journal
// line as a JSON column.
type DimensionMap map[string]string

func (d DimensionMap) Value() (driver.Value, error) {
	if len(d) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (d *DimensionMap) Scan(src interface{}) error {
	if src == nil {
		*d = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	default:
		return fmt.Errorf("unsupported dimension map source type %T", src)
	}
}

// Entry is a posted journal entry. MoolaTransactionID carries the source
// expense id and is unique: its presence is the idempotency check.
type Entry struct {
	ID                 string          `gorm:"primaryKey" json:"id"`
	VoucherType        string          `gorm:"column:voucher_type" json:"voucher_type"`
	PostingDate        time.Time       `gorm:"column:posting_date" json:"posting_date"`
	Company            string          `gorm:"column:company" json:"company"`
	Branch             string          `gorm:"column:branch" json:"branch"`
	Remark             string          `gorm:"column:remark" json:"remark"`
	MoolaTransactionID string          `gorm:"column:moola_transaction_id;uniqueIndex" json:"moola_transaction_id"`
	TotalDebit         decimal.Decimal `gorm:"column:total_debit;type:numeric(18,6)" json:"total_debit"`
	TotalCredit        decimal.Decimal `gorm:"column:total_credit;type:numeric(18,6)" json:"total_credit"`
	SubmittedAt        *time.Time      `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	Lines              []Line          `gorm:"foreignKey:EntryID" json:"lines"`
	CreatedAt          time.Time       `gorm:"column:created_at" json:"created_at"`
}

func (Entry) TableName() string {
	return "journal_entries"
}

// Balanced reports whether debits equal credits across all lines.
func (e *Entry) Balanced() bool {
	debit := decimal.Zero
	credit := decimal.Zero
	for _, l := range e.Lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit.Equal(credit)
}

type Line struct {
	ID         int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	EntryID    string          `gorm:"column:entry_id;index" json:"entry_id"`
	Account    string          `gorm:"column:account" json:"account"`
	Debit      decimal.Decimal `gorm:"column:debit;type:numeric(18,6)" json:"debit"`
	Credit     decimal.Decimal `gorm:"column:credit;type:numeric(18,6)" json:"credit"`
	CostCenter string          `gorm:"column:cost_center" json:"cost_center"`
	Branch     string          `gorm:"column:branch" json:"branch"`
	Dimensions DimensionMap    `gorm:"column:dimensions;type:text" json:"dimensions,omitempty"`
}

func (Line) TableName() string {
	return "journal_entry_lines"
}

// Attachment is a receipt document stored against a posted entry.
type Attachment struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	EntryID     string    `gorm:"column:entry_id;index:idx_attachment_entry_filename,unique" json:"entry_id"`
	Filename    string    `gorm:"column:filename;index:idx_attachment_entry_filename,unique" json:"filename"`
	ContentType string    `gorm:"column:content_type" json:"content_type"`
	SizeBytes   int64     `gorm:"column:size_bytes" json:"size_bytes"`
	Data        []byte    `gorm:"column:data" json:"-"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Attachment) TableName() string {
	return "journal_entry_attachments"
}
