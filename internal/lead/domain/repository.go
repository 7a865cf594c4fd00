package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/dealdesk/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, lead *Lead) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Lead, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ListLeadFilter, page pagination.Pagination) ([]*Lead, error)
}
