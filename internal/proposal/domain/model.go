package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Status is the proposal workflow state. Transitions are triggered externally
// and any status may follow any other.
type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusSent     Status = "SENT"
	StatusViewed   Status = "VIEWED"
	StatusAccepted Status = "ACCEPTED"
	StatusDeclined Status = "DECLINED"
)

func ParseStatus(value string) (Status, error) {
	switch s := Status(strings.ToUpper(strings.TrimSpace(value))); s {
	case StatusDraft, StatusSent, StatusViewed, StatusAccepted, StatusDeclined:
		return s, nil
	default:
		return "", ErrInvalidStatus
	}
}

// LineItem is one priced entry of a proposal. Product fields are copied when
// the item is added and never re-read.
type LineItem struct {
	ProposalID  snowflake.ID    `json:"-" gorm:"primaryKey;column:proposal_id"`
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(26)"`
	Position    int             `json:"-" gorm:"not null"`
	ProductID   *snowflake.ID   `json:"product_id,omitempty"`
	Name        string          `json:"name" gorm:"type:text;not null"`
	Description string          `json:"description" gorm:"type:text"`
	UnitPrice   decimal.Decimal `json:"unit_price" gorm:"type:numeric(18,4);not null"`
	Quantity    int             `json:"quantity" gorm:"not null"`
}

func (LineItem) TableName() string { return "proposal_items" }

func (i LineItem) Amount() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Proposal is a point-in-time snapshot of a priced offer to a lead. Lead name
// and company are copied at save time and do not follow later lead edits.
type Proposal struct {
	ID           snowflake.ID                    `json:"id" gorm:"primaryKey"`
	OrgID        snowflake.ID                    `json:"organization_id" gorm:"column:org_id;not null;index"`
	Name         string                          `json:"name" gorm:"type:text;not null"`
	LeadID       snowflake.ID                    `json:"lead_id" gorm:"not null;index"`
	LeadName     string                          `json:"lead_name" gorm:"type:text"`
	LeadCompany  string                          `json:"lead_company" gorm:"type:text"`
	Currency     string                          `json:"currency" gorm:"type:varchar(3);not null"`
	Items        []LineItem                      `json:"items" gorm:"foreignKey:ProposalID;constraint:OnDelete:CASCADE"`
	SubTotal     decimal.Decimal                 `json:"sub_total" gorm:"type:numeric(18,4);not null"`
	TaxLabel     string                          `json:"tax_label" gorm:"type:text"`
	TaxRate      decimal.Decimal                 `json:"tax_rate" gorm:"type:numeric(7,4);not null"`
	TaxAmount    decimal.Decimal                 `json:"tax_amount" gorm:"type:numeric(18,4);not null"`
	IsTaxEnabled bool                            `json:"is_tax_enabled" gorm:"not null"`
	TotalValue   decimal.Decimal                 `json:"total_value" gorm:"type:numeric(18,4);not null"`
	Status       Status                          `json:"status" gorm:"type:varchar(16);not null;index"`
	ValidUntil   *time.Time                      `json:"valid_until,omitempty"`
	Terms        string                          `json:"terms" gorm:"type:text"`
	Attachments  datatypes.JSONSlice[Attachment] `json:"attachments,omitempty"`
	CreatedBy    string                          `json:"created_by" gorm:"type:text"`
	CreatedAt    time.Time                       `json:"created_at" gorm:"not null"`
	UpdatedAt    time.Time                       `json:"updated_at" gorm:"not null"`
}

func (Proposal) TableName() string { return "proposals" }

// LeadSnapshot is the part of a lead a proposal copies and the resolver reads.
type LeadSnapshot struct {
	ID       snowflake.ID `json:"id"`
	Name     string       `json:"name"`
	Company  string       `json:"company"`
	Country  string       `json:"country"`
	Currency string       `json:"currency"`
	HasTaxID bool         `json:"has_tax_id"`
}

// Product is the catalog view the cart needs.
type Product struct {
	ID          snowflake.ID
	Name        string
	Description string
	Price       decimal.Decimal
	Active      bool
}

type Totals struct {
	SubTotal  decimal.Decimal `json:"sub_total"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
	Total     decimal.Decimal `json:"total"`
}
