package repository

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/dealdesk/internal/proposal/domain"
	"github.com/smallbiznis/dealdesk/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&domain.Proposal{}, &domain.LineItem{}))
	return db
}

func sampleProposal(id, orgID snowflake.ID) *domain.Proposal {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	productID := snowflake.ID(5)
	return &domain.Proposal{
		ID:           id,
		OrgID:        orgID,
		Name:         "Website",
		LeadID:       snowflake.ID(9),
		LeadName:     "Anna",
		Currency:     "GBP",
		SubTotal:     decimal.NewFromInt(250),
		TaxLabel:     "VAT",
		TaxRate:      decimal.NewFromInt(20),
		TaxAmount:    decimal.NewFromInt(50),
		IsTaxEnabled: true,
		TotalValue:   decimal.NewFromInt(300),
		Status:       domain.StatusDraft,
		Attachments:  []domain.Attachment{{Name: "brief.pdf", URL: "https://files.example/brief.pdf"}},
		CreatedBy:    "user-1",
		CreatedAt:    now,
		UpdatedAt:    now,
		Items: []domain.LineItem{
			{ProposalID: id, ID: "01B", Position: 0, ProductID: &productID, Name: "Workshop", UnitPrice: decimal.NewFromInt(100), Quantity: 2},
			{ProposalID: id, ID: "01A", Position: 1, Name: "Audit", UnitPrice: decimal.NewFromInt(50), Quantity: 1},
		},
	}
}

func save(t *testing.T, db *gorm.DB, r domain.Repository, p *domain.Proposal) {
	t.Helper()
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := r.UpsertHeader(context.Background(), tx, p); err != nil {
			return err
		}
		return r.ReplaceItems(context.Background(), tx, p.ID, p.Items)
	})
	require.NoError(t, err)
}

func TestUpsertAndFind(t *testing.T) {
	db := setupDB(t)
	r := Provide()
	org := snowflake.ID(1)
	p := sampleProposal(100, org)
	save(t, db, r, p)

	got, err := r.FindByID(context.Background(), db, org, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Website", got.Name)
	assert.True(t, got.TotalValue.Equal(decimal.NewFromInt(300)))
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Workshop", got.Items[0].Name)
	assert.Equal(t, "Audit", got.Items[1].Name)
	require.NotNil(t, got.Items[0].ProductID)
	assert.Equal(t, snowflake.ID(5), *got.Items[0].ProductID)
	require.Len(t, got.Attachments, 1)
	assert.Equal(t, "brief.pdf", got.Attachments[0].Name)

	missing, err := r.FindByID(context.Background(), db, snowflake.ID(2), p.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUpsertReplacesItems(t *testing.T) {
	db := setupDB(t)
	r := Provide()
	org := snowflake.ID(1)
	p := sampleProposal(100, org)
	save(t, db, r, p)

	p.Name = "Website v2"
	p.Items = p.Items[:1]
	p.TotalValue = decimal.NewFromInt(240)
	save(t, db, r, p)

	got, err := r.FindByID(context.Background(), db, org, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Website v2", got.Name)
	assert.True(t, got.TotalValue.Equal(decimal.NewFromInt(240)))
	assert.Len(t, got.Items, 1)

	var count int64
	require.NoError(t, db.Model(&domain.Proposal{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestListFiltersAndPaginates(t *testing.T) {
	db := setupDB(t)
	r := Provide()
	org := snowflake.ID(1)
	for _, id := range []snowflake.ID{101, 102, 103} {
		save(t, db, r, sampleProposal(id, org))
	}
	other := sampleProposal(104, snowflake.ID(2))
	save(t, db, r, other)

	ok, err := r.UpdateStatus(context.Background(), db, org, 102, domain.StatusSent, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, ok)

	first, err := r.List(context.Background(), db, org, domain.ListFilter{}, pagination.Pagination{PageSize: 2})
	require.NoError(t, err)
	require.Len(t, first, 3)
	assert.Equal(t, snowflake.ID(103), first[0].ID)
	assert.Len(t, first[0].Items, 2)

	token, err := pagination.EncodeCursor(pagination.Cursor{ID: first[1].ID.String()})
	require.NoError(t, err)
	rest, err := r.List(context.Background(), db, org, domain.ListFilter{}, pagination.Pagination{PageSize: 2, PageToken: token})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, snowflake.ID(101), rest[0].ID)

	sent, err := r.List(context.Background(), db, org, domain.ListFilter{Status: domain.StatusSent}, pagination.Pagination{})
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, snowflake.ID(102), sent[0].ID)

	_, err = r.List(context.Background(), db, org, domain.ListFilter{}, pagination.Pagination{PageToken: "!!"})
	assert.ErrorIs(t, err, pagination.ErrInvalidPageToken)
}

func TestUpdateStatusScopedToOrganization(t *testing.T) {
	db := setupDB(t)
	r := Provide()
	save(t, db, r, sampleProposal(100, snowflake.ID(1)))

	ok, err := r.UpdateStatus(context.Background(), db, snowflake.ID(2), 100, domain.StatusAccepted, time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, ok)
}
