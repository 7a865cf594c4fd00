package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/dealdesk/internal/lead/domain"
	"github.com/smallbiznis/dealdesk/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, lead *domain.Lead) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO leads (id, org_id, name, company, email, country, currency, tax_id, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lead.ID,
		lead.OrgID,
		lead.Name,
		lead.Company,
		lead.Email,
		lead.Country,
		lead.Currency,
		lead.TaxID,
		lead.Metadata,
		lead.CreatedAt,
		lead.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Lead, error) {
	var lead domain.Lead
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, name, company, email, country, currency, tax_id, metadata, created_at, updated_at
		 FROM leads WHERE org_id = ? AND id = ?`,
		orgID,
		id,
	).Scan(&lead).Error
	if err != nil {
		return nil, err
	}
	if lead.ID == 0 {
		return nil, nil
	}
	return &lead, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter domain.ListLeadFilter, page pagination.Pagination) ([]*domain.Lead, error) {
	var leads []*domain.Lead
	stmt := db.WithContext(ctx).
		Model(&domain.Lead{}).
		Where("org_id = ?", orgID)
	if filter.Name != "" {
		stmt = stmt.Where("name = ?", filter.Name)
	}
	if filter.Country != "" {
		stmt = stmt.Where("country = ?", filter.Country)
	}
	stmt, err := pagination.ApplyByID(stmt, page)
	if err != nil {
		return nil, err
	}
	if err := stmt.Find(&leads).Error; err != nil {
		return nil, err
	}
	return leads, nil
}
