package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/dealdesk/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	Status Status
	LeadID snowflake.ID
}

type Repository interface {
	UpsertHeader(ctx context.Context, db *gorm.DB, p *Proposal) error
	ReplaceItems(ctx context.Context, db *gorm.DB, proposalID snowflake.ID, items []LineItem) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Proposal, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ListFilter, page pagination.Pagination) ([]*Proposal, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID, status Status, updatedAt time.Time) (bool, error)
}
