package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/dealdesk/internal/proposal/domain"
	"github.com/smallbiznis/dealdesk/pkg/db/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) UpsertHeader(ctx context.Context, db *gorm.DB, p *domain.Proposal) error {
	return db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(p).Error
}

func (r *repo) ReplaceItems(ctx context.Context, db *gorm.DB, proposalID snowflake.ID, items []domain.LineItem) error {
	if err := db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Delete(&domain.LineItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&items).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Proposal, error) {
	var p domain.Proposal
	err := db.WithContext(ctx).
		Preload("Items", orderItems).
		Where("org_id = ? AND id = ?", orgID, id).
		Limit(1).
		Find(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter domain.ListFilter, page pagination.Pagination) ([]*domain.Proposal, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Proposal{}).
		Preload("Items", orderItems).
		Where("org_id = ?", orgID)

	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.LeadID != 0 {
		stmt = stmt.Where("lead_id = ?", filter.LeadID)
	}

	stmt, err := pagination.ApplyByID(stmt, page)
	if err != nil {
		return nil, err
	}

	var items []*domain.Proposal
	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID, status domain.Status, updatedAt time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE proposals SET status = ?, updated_at = ? WHERE org_id = ? AND id = ?`,
		status,
		updatedAt,
		orgID,
		id,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func orderItems(db *gorm.DB) *gorm.DB {
	return db.Order("position asc")
}
