package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Lead is a customer or prospect owned by an organization.
type Lead struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	OrgID     snowflake.ID      `gorm:"column:org_id;not null;index" json:"organization_id"`
	Name      string            `gorm:"not null" json:"name"`
	Company   string            `gorm:"column:company" json:"company"`
	Email     string            `gorm:"column:email" json:"email,omitempty"`
	Country   string            `gorm:"column:country" json:"country"`
	Currency  string            `gorm:"column:currency" json:"currency,omitempty"`
	TaxID     *string           `gorm:"column:tax_id" json:"tax_id,omitempty"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Lead) TableName() string { return "leads" }

// HasTaxID reports whether the lead is a registered business.
func (l Lead) HasTaxID() bool {
	return l.TaxID != nil && strings.TrimSpace(*l.TaxID) != ""
}
