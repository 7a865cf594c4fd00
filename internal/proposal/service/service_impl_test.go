package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/dealdesk/internal/clock"
	"github.com/smallbiznis/dealdesk/internal/config"
	leaddomain "github.com/smallbiznis/dealdesk/internal/lead/domain"
	leadrepository "github.com/smallbiznis/dealdesk/internal/lead/repository"
	leadservice "github.com/smallbiznis/dealdesk/internal/lead/service"
	"github.com/smallbiznis/dealdesk/internal/orgcontext"
	productdomain "github.com/smallbiznis/dealdesk/internal/product/domain"
	productrepository "github.com/smallbiznis/dealdesk/internal/product/repository"
	productservice "github.com/smallbiznis/dealdesk/internal/product/service"
	"github.com/smallbiznis/dealdesk/internal/proposal/domain"
	"github.com/smallbiznis/dealdesk/internal/proposal/repository"
	"github.com/smallbiznis/dealdesk/internal/proposal/session"
	"github.com/smallbiznis/dealdesk/internal/providers/pdf"
	taxdomain "github.com/smallbiznis/dealdesk/internal/tax/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type staticResolver map[string]taxdomain.Policy

func (r staticResolver) Resolve(_ context.Context, subject taxdomain.Subject) taxdomain.Policy {
	if policy, ok := r[subject.Country]; ok {
		return policy
	}
	return taxdomain.DefaultPolicy()
}

type fixture struct {
	ctx       context.Context
	node      *snowflake.Node
	clock     *clock.FakeClock
	leads     leaddomain.Service
	products  productdomain.Service
	proposals domain.Service
	drafts    domain.DraftService
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&leaddomain.Lead{},
		&productdomain.Product{},
		&domain.Proposal{},
		&domain.LineItem{},
	))

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	cfg := config.Config{Proposal: config.ProposalConfig{DefaultCurrency: "GBP", ValidityDays: 30}}
	log := zap.NewNop()
	repo := repository.Provide()

	leads := leadservice.New(leadservice.Params{DB: db, Log: log, GenID: node, Clock: clk, Repo: leadrepository.Provide()})
	products := productservice.New(productservice.Params{DB: db, Log: log, GenID: node, Clock: clk, Repo: productrepository.Provide()})

	f := &fixture{
		ctx:      orgcontext.WithActor(orgcontext.WithOrgID(context.Background(), int64(node.Generate())), "user-1"),
		node:     node,
		clock:    clk,
		leads:    leads,
		products: products,
		proposals: New(Params{
			DB:     db,
			Log:    log,
			Clock:  clk,
			Config: cfg,
			Repo:   repo,
			PDF:    pdf.New(),
		}),
		drafts: NewDrafts(DraftParams{
			DB:     db,
			Log:    log,
			GenID:  node,
			Clock:  clk,
			Config: cfg,
			Repo:   repo,
			Resolver: staticResolver{
				"Germany": {Rate: decimal.NewFromInt(20), Label: "MwSt", Enabled: true},
			},
			Leads:    leads,
			Products: products,
			Store:    session.NewStore(clk, time.Hour),
		}),
	}
	return f
}

func (f *fixture) lead(t *testing.T, country string) string {
	t.Helper()
	lead, err := f.leads.Create(f.ctx, leaddomain.CreateLeadRequest{
		Name:     "Anna Schmidt",
		Company:  "Schmidt GmbH",
		Country:  country,
		Currency: "EUR",
	})
	require.NoError(t, err)
	return lead.ID.String()
}

func (f *fixture) product(t *testing.T, code string, price int64) string {
	t.Helper()
	p, err := f.products.Create(f.ctx, productdomain.CreateRequest{
		Code:  code,
		Name:  "Product " + code,
		Price: decimal.NewFromInt(price),
	})
	require.NoError(t, err)
	return p.ID
}

func TestDraftSaveCreatesThenUpdatesProposal(t *testing.T) {
	f := setup(t)
	leadID := f.lead(t, "Germany")
	productID := f.product(t, "A", 100)

	view, err := f.drafts.StartDraft(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, "GBP", view.Currency)
	assert.Empty(t, view.Items)

	_, err = f.drafts.SaveDraft(f.ctx, view.ID)
	assert.ErrorIs(t, err, domain.ErrMissingCustomer)

	view, err = f.drafts.SelectCustomer(f.ctx, view.ID, leadID)
	require.NoError(t, err)
	assert.Equal(t, "EUR", view.Currency)
	assert.True(t, view.Tax.Enabled)

	_, err = f.drafts.AddItem(f.ctx, view.ID, productID)
	require.NoError(t, err)
	view, err = f.drafts.AddItem(f.ctx, view.ID, productID)
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
	assert.NotEqual(t, view.Items[0].ID, view.Items[1].ID)
	assert.True(t, decimal.NewFromInt(240).Equal(view.Totals.Total))
	assert.Equal(t, "EUR 240", view.Formatted.Total)

	first, err := f.drafts.SaveDraft(f.ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, first.Status)
	assert.Equal(t, "user-1", first.CreatedBy)
	require.NotNil(t, first.ValidUntil)
	assert.True(t, first.ValidUntil.Equal(first.CreatedAt.AddDate(0, 0, 30)))

	f.clock.Advance(time.Hour)
	view, err = f.drafts.RemoveItem(f.ctx, view.ID, view.Items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID.String(), view.ProposalID)

	second, err := f.drafts.SaveDraft(f.ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, first.CreatedAt.Equal(second.CreatedAt))

	stored, err := f.proposals.Get(f.ctx, first.ID.String())
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.True(t, decimal.NewFromInt(120).Equal(stored.TotalValue))
	assert.Equal(t, "Schmidt GmbH", stored.LeadCompany)
}

func TestEditDisabledTaxProposalRestoresJurisdictionRate(t *testing.T) {
	f := setup(t)
	leadID := f.lead(t, "Germany")

	view, err := f.drafts.StartDraft(f.ctx)
	require.NoError(t, err)
	_, err = f.drafts.SelectCustomer(f.ctx, view.ID, leadID)
	require.NoError(t, err)
	_, err = f.drafts.AddItem(f.ctx, view.ID, f.product(t, "A", 50))
	require.NoError(t, err)
	_, err = f.drafts.ToggleTax(f.ctx, view.ID)
	require.NoError(t, err)

	saved, err := f.drafts.SaveDraft(f.ctx, view.ID)
	require.NoError(t, err)
	assert.False(t, saved.IsTaxEnabled)
	assert.True(t, saved.TaxRate.IsZero())
	assert.True(t, saved.TaxAmount.IsZero())

	edit, err := f.drafts.EditProposal(f.ctx, saved.ID.String())
	require.NoError(t, err)
	assert.NotEqual(t, view.ID, edit.ID)
	assert.Equal(t, saved.ID.String(), edit.ProposalID)
	assert.False(t, edit.Tax.Enabled)
	assert.True(t, decimal.NewFromInt(20).Equal(edit.Tax.Rate))
	require.Len(t, edit.Items, 1)

	edit, err = f.drafts.ToggleTax(f.ctx, edit.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(60).Equal(edit.Totals.Total))
}

func TestAddItemRejectsArchivedProduct(t *testing.T) {
	f := setup(t)
	productID := f.product(t, "A", 10)
	_, err := f.products.Archive(f.ctx, productID)
	require.NoError(t, err)

	view, err := f.drafts.StartDraft(f.ctx)
	require.NoError(t, err)

	_, err = f.drafts.AddItem(f.ctx, view.ID, productID)
	assert.ErrorIs(t, err, domain.ErrProductInactive)

	_, err = f.drafts.AddItem(f.ctx, view.ID, "123")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDraftsAreScopedToOrganization(t *testing.T) {
	f := setup(t)
	view, err := f.drafts.StartDraft(f.ctx)
	require.NoError(t, err)

	other := orgcontext.WithOrgID(context.Background(), int64(f.node.Generate()))
	_, err = f.drafts.GetDraft(other, view.ID)
	assert.ErrorIs(t, err, domain.ErrDraftNotFound)

	require.NoError(t, f.drafts.DiscardDraft(f.ctx, view.ID))
	_, err = f.drafts.GetDraft(f.ctx, view.ID)
	assert.ErrorIs(t, err, domain.ErrDraftNotFound)
}

func TestUpdateDetailsValidation(t *testing.T) {
	f := setup(t)
	view, err := f.drafts.StartDraft(f.ctx)
	require.NoError(t, err)

	blank := "  "
	_, err = f.drafts.UpdateDetails(f.ctx, view.ID, domain.UpdateDetailsRequest{Name: &blank})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = f.drafts.EditTaxRate(f.ctx, view.ID, decimal.NewFromInt(101))
	assert.ErrorIs(t, err, domain.ErrInvalidTaxRate)

	name := "Website rebuild"
	view, err = f.drafts.UpdateDetails(f.ctx, view.ID, domain.UpdateDetailsRequest{
		Name:        &name,
		Attachments: []domain.Attachment{{Name: "brief.pdf", URL: "https://files.example.com/brief.pdf"}},
	})
	require.NoError(t, err)
	assert.Equal(t, name, view.Name)
	assert.Len(t, view.Attachments, 1)
}

func saveProposal(t *testing.T, f *fixture, name string) *domain.Proposal {
	t.Helper()
	view, err := f.drafts.StartDraft(f.ctx)
	require.NoError(t, err)
	_, err = f.drafts.SelectCustomer(f.ctx, view.ID, f.lead(t, "France"))
	require.NoError(t, err)
	_, err = f.drafts.UpdateDetails(f.ctx, view.ID, domain.UpdateDetailsRequest{Name: &name})
	require.NoError(t, err)
	_, err = f.drafts.AddItem(f.ctx, view.ID, f.product(t, name, 1234))
	require.NoError(t, err)
	p, err := f.drafts.SaveDraft(f.ctx, view.ID)
	require.NoError(t, err)
	return p
}

func TestProposalStatusLifecycle(t *testing.T) {
	f := setup(t)
	p := saveProposal(t, f, "Audit")

	accepted, err := f.proposals.UpdateStatus(f.ctx, p.ID.String(), "accepted")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, accepted.Status)

	// No predecessor check: an accepted proposal can go back to draft.
	back, err := f.proposals.UpdateStatus(f.ctx, p.ID.String(), "DRAFT")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, back.Status)

	_, err = f.proposals.UpdateStatus(f.ctx, p.ID.String(), "archived")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	sent, err := f.proposals.Send(f.ctx, p.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSent, sent.Status)

	_, err = f.proposals.Send(f.ctx, "12345")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.proposals.Get(f.ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestListProposals(t *testing.T) {
	f := setup(t)
	a := saveProposal(t, f, "Alpha")
	b := saveProposal(t, f, "Beta")
	saveProposal(t, f, "Gamma")

	_, err := f.proposals.Send(f.ctx, a.ID.String())
	require.NoError(t, err)

	sent, err := f.proposals.List(f.ctx, domain.ListRequest{Status: "sent"})
	require.NoError(t, err)
	require.Len(t, sent.Proposals, 1)
	assert.Equal(t, a.ID, sent.Proposals[0].ID)

	page, err := f.proposals.List(f.ctx, domain.ListRequest{PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page.Proposals, 2)
	assert.True(t, page.HasMore)

	rest, err := f.proposals.List(f.ctx, domain.ListRequest{PageSize: 2, PageToken: page.NextPageToken})
	require.NoError(t, err)
	require.Len(t, rest.Proposals, 1)
	assert.Equal(t, a.ID, rest.Proposals[0].ID)

	byLead, err := f.proposals.List(f.ctx, domain.ListRequest{LeadID: b.LeadID.String()})
	require.NoError(t, err)
	require.Len(t, byLead.Proposals, 1)
	assert.Equal(t, b.ID, byLead.Proposals[0].ID)

	_, err = f.proposals.List(f.ctx, domain.ListRequest{Status: "unknown"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestRenderPDF(t *testing.T) {
	f := setup(t)
	p := saveProposal(t, f, "Brand Refresh")

	rendered, err := f.proposals.RenderPDF(f.ctx, p.ID.String())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(rendered.Content, []byte("%PDF")))
	assert.True(t, strings.HasPrefix(rendered.FileName, "brand-refresh-"))
	assert.True(t, strings.HasSuffix(rendered.FileName, ".pdf"))
}
