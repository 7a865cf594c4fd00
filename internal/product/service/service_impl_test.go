package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/dealdesk/internal/clock"
	"github.com/smallbiznis/dealdesk/internal/orgcontext"
	"github.com/smallbiznis/dealdesk/internal/product/domain"
	"github.com/smallbiznis/dealdesk/internal/product/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupProductService(t *testing.T) (domain.Service, context.Context) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&domain.Product{}))

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})
	return svc, orgcontext.WithOrgID(context.Background(), int64(node.Generate()))
}

func TestCreateProduct(t *testing.T) {
	svc, ctx := setupProductService(t)

	desc := "  Quarterly onsite workshop "
	created, err := svc.Create(ctx, domain.CreateRequest{
		Code:        "WS-01",
		Name:        " Workshop ",
		Description: &desc,
		Price:       decimal.RequireFromString("250"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Workshop", created.Name)
	assert.True(t, created.Active)
	require.NotNil(t, created.Description)
	assert.Equal(t, "Quarterly onsite workshop", *created.Description)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "WS-01", got.Code)
	assert.True(t, decimal.NewFromInt(250).Equal(got.Price))
}

func TestCreateProductValidation(t *testing.T) {
	svc, ctx := setupProductService(t)

	cases := []struct {
		name string
		ctx  context.Context
		req  domain.CreateRequest
		err  error
	}{
		{"missing org", context.Background(), domain.CreateRequest{Code: "a", Name: "a"}, domain.ErrInvalidOrganization},
		{"missing code", ctx, domain.CreateRequest{Name: "a"}, domain.ErrInvalidCode},
		{"missing name", ctx, domain.CreateRequest{Code: "a"}, domain.ErrInvalidName},
		{"negative price", ctx, domain.CreateRequest{Code: "a", Name: "a", Price: decimal.NewFromInt(-1)}, domain.ErrInvalidPrice},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(tc.ctx, tc.req)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestCreateProductRejectsDuplicateCode(t *testing.T) {
	svc, ctx := setupProductService(t)

	_, err := svc.Create(ctx, domain.CreateRequest{Code: "SEO", Name: "SEO audit", Price: decimal.NewFromInt(10)})
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.CreateRequest{Code: "SEO", Name: "Another", Price: decimal.NewFromInt(10)})
	assert.ErrorIs(t, err, domain.ErrCodeTaken)
}

func TestArchiveProductHidesFromActiveList(t *testing.T) {
	svc, ctx := setupProductService(t)

	keep, err := svc.Create(ctx, domain.CreateRequest{Code: "A", Name: "Audit", Price: decimal.NewFromInt(50)})
	require.NoError(t, err)
	drop, err := svc.Create(ctx, domain.CreateRequest{Code: "B", Name: "Branding", Price: decimal.NewFromInt(80)})
	require.NoError(t, err)

	archived, err := svc.Archive(ctx, drop.ID)
	require.NoError(t, err)
	assert.False(t, archived.Active)

	active := true
	items, err := svc.List(ctx, domain.ListRequest{Active: &active})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, keep.ID, items[0].ID)

	all, err := svc.List(ctx, domain.ListRequest{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGetProductErrors(t *testing.T) {
	svc, ctx := setupProductService(t)

	_, err := svc.Get(ctx, "abc")
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = svc.Get(ctx, "12345")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
