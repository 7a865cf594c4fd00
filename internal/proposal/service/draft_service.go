package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/dealdesk/internal/clock"
	"github.com/smallbiznis/dealdesk/internal/config"
	leaddomain "github.com/smallbiznis/dealdesk/internal/lead/domain"
	"github.com/smallbiznis/dealdesk/internal/lock"
	"github.com/smallbiznis/dealdesk/internal/money"
	"github.com/smallbiznis/dealdesk/internal/observability/metrics"
	"github.com/smallbiznis/dealdesk/internal/orgcontext"
	productdomain "github.com/smallbiznis/dealdesk/internal/product/domain"
	"github.com/smallbiznis/dealdesk/internal/proposal/domain"
	"github.com/smallbiznis/dealdesk/internal/proposal/draft"
	"github.com/smallbiznis/dealdesk/internal/proposal/session"
	taxdomain "github.com/smallbiznis/dealdesk/internal/tax/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type DraftParams struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Config   config.Config
	Repo     domain.Repository
	Resolver taxdomain.Resolver
	Leads    leaddomain.Service
	Products productdomain.Service
	Store    *session.Store

	Guard   *lock.SaveGuard         `optional:"true"`
	Pricing *metrics.PricingMetrics `optional:"true"`
	Metrics *metrics.Metrics        `optional:"true"`
}

type DraftService struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	store     *session.Store
	deps      *session.Deps
	formatter *money.Formatter
}

func NewDrafts(p DraftParams) domain.DraftService {
	log := p.Log.Named("proposal.draft")
	formatter := money.NewFormatter(p.Config.Proposal.DefaultCurrency)

	deps := &session.Deps{
		Leads:           NewLeadLookup(p.Leads),
		Products:        NewProductLookup(p.Products),
		Resolver:        p.Resolver,
		Saver:           NewSaver(p.DB, p.Repo),
		Clock:           p.Clock,
		GenID:           p.GenID,
		Log:             log,
		Pricing:         p.Pricing,
		Events:          p.Metrics,
		DefaultCurrency: formatter.Fallback(),
		ValidityDays:    p.Config.Proposal.ValidityDays,
	}
	// A nil *SaveGuard inside the interface would not compare equal to nil.
	if p.Guard != nil {
		deps.Guard = p.Guard
	}

	return &DraftService{
		db:        p.DB,
		log:       log,
		genID:     p.GenID,
		repo:      p.Repo,
		store:     p.Store,
		deps:      deps,
		formatter: formatter,
	}
}

func (s *DraftService) StartDraft(ctx context.Context) (*domain.DraftView, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	sess := session.New(s.genID.Generate(), orgID, orgcontext.ActorFromContext(ctx), draft.New(s.deps.DefaultCurrency), s.deps)
	s.store.Put(sess)
	return s.view(sess, sess.Snapshot()), nil
}

// EditProposal opens a session on a persisted proposal. The lead is re-read so
// the next save copies its current name and company; a deleted lead falls back
// to the copy stored on the proposal.
func (s *DraftService) EditProposal(ctx context.Context, proposalID string) (*domain.DraftView, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	id, err := parseID(proposalID)
	if err != nil {
		return nil, err
	}

	p, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}

	lead, err := s.deps.Leads.LookupLead(ctx, p.LeadID.String())
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		lead = domain.LeadSnapshot{
			ID:       p.LeadID,
			Name:     p.LeadName,
			Company:  p.LeadCompany,
			Currency: p.Currency,
		}
	}

	tax := taxdomain.Policy{Rate: p.TaxRate, Label: p.TaxLabel, Enabled: p.IsTaxEnabled}
	if !p.IsTaxEnabled {
		// Disabled proposals store a zero rate; bring back the jurisdiction
		// rate so toggling tax on is meaningful.
		resolved := s.deps.Resolver.Resolve(ctx, taxdomain.Subject{Country: lead.Country, HasTaxID: lead.HasTaxID})
		tax.Rate = resolved.Rate
		if tax.Label == "" {
			tax.Label = resolved.Label
		}
	}

	sess := session.New(s.genID.Generate(), orgID, orgcontext.ActorFromContext(ctx), draft.FromProposal(p, lead, tax), s.deps)
	s.store.Put(sess)
	return s.view(sess, sess.Snapshot()), nil
}

func (s *DraftService) GetDraft(ctx context.Context, draftID string) (*domain.DraftView, error) {
	sess, err := s.session(ctx, draftID)
	if err != nil {
		return nil, err
	}
	return s.view(sess, sess.Snapshot()), nil
}

func (s *DraftService) DiscardDraft(ctx context.Context, draftID string) error {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ErrInvalidOrganization
	}
	id, err := snowflake.ParseString(strings.TrimSpace(draftID))
	if err != nil {
		return domain.ErrDraftNotFound
	}
	return s.store.Delete(orgID, id)
}

func (s *DraftService) SelectCustomer(ctx context.Context, draftID, leadID string) (*domain.DraftView, error) {
	return s.apply(ctx, draftID, func(sess *session.Session) (draft.Draft, error) {
		return sess.OnCustomerChange(ctx, leadID)
	})
}

func (s *DraftService) AddItem(ctx context.Context, draftID, productID string) (*domain.DraftView, error) {
	return s.apply(ctx, draftID, func(sess *session.Session) (draft.Draft, error) {
		return sess.OnAddItem(ctx, productID)
	})
}

func (s *DraftService) RemoveItem(ctx context.Context, draftID, itemID string) (*domain.DraftView, error) {
	return s.apply(ctx, draftID, func(sess *session.Session) (draft.Draft, error) {
		return sess.OnRemoveItem(ctx, itemID)
	})
}

func (s *DraftService) ToggleTax(ctx context.Context, draftID string) (*domain.DraftView, error) {
	return s.apply(ctx, draftID, func(sess *session.Session) (draft.Draft, error) {
		return sess.OnToggleTax(ctx)
	})
}

func (s *DraftService) EditTaxRate(ctx context.Context, draftID string, rate decimal.Decimal) (*domain.DraftView, error) {
	return s.apply(ctx, draftID, func(sess *session.Session) (draft.Draft, error) {
		return sess.OnEditTaxRate(ctx, rate)
	})
}

func (s *DraftService) UpdateDetails(ctx context.Context, draftID string, req domain.UpdateDetailsRequest) (*domain.DraftView, error) {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, domain.ErrInvalidName
	}
	if req.ValidUntil != nil && req.ValidUntil.IsZero() {
		return nil, domain.ErrInvalidValidUntil
	}

	details := draft.Details{
		Name:        req.Name,
		Terms:       req.Terms,
		ValidUntil:  req.ValidUntil,
		Attachments: req.Attachments,
	}
	return s.apply(ctx, draftID, func(sess *session.Session) (draft.Draft, error) {
		return sess.OnUpdateDetails(ctx, details)
	})
}

func (s *DraftService) SaveDraft(ctx context.Context, draftID string) (*domain.Proposal, error) {
	sess, err := s.session(ctx, draftID)
	if err != nil {
		return nil, err
	}
	return sess.OnSave(ctx)
}

func (s *DraftService) apply(ctx context.Context, draftID string, fn func(*session.Session) (draft.Draft, error)) (*domain.DraftView, error) {
	sess, err := s.session(ctx, draftID)
	if err != nil {
		return nil, err
	}
	d, err := fn(sess)
	if err != nil {
		return nil, err
	}
	return s.view(sess, d), nil
}

func (s *DraftService) session(ctx context.Context, draftID string) (*session.Session, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	id, err := snowflake.ParseString(strings.TrimSpace(draftID))
	if err != nil {
		return nil, domain.ErrDraftNotFound
	}
	return s.store.Get(orgID, id)
}

func (s *DraftService) view(sess *session.Session, d draft.Draft) *domain.DraftView {
	totals := d.Totals()
	currency := d.Currency()

	view := &domain.DraftView{
		ID:          sess.ID().String(),
		Status:      d.Status(),
		Currency:    currency,
		Name:        d.Name(),
		Terms:       d.Terms(),
		ValidUntil:  d.ValidUntil(),
		Attachments: d.Attachments(),
		Items:       d.Items(),
		Tax:         d.Tax(),
		Totals:      totals,
		Formatted: domain.FormattedTotals{
			SubTotal:  s.formatter.Format(totals.SubTotal, currency),
			TaxAmount: s.formatter.Format(totals.TaxAmount, currency),
			Total:     s.formatter.Format(totals.Total, currency),
		},
		Saving: sess.Saving(),
	}
	if id, ok := d.ProposalID(); ok {
		view.ProposalID = id.String()
	}
	if lead, ok := d.Lead(); ok {
		view.Lead = &lead
	}
	if view.Items == nil {
		view.Items = []domain.LineItem{}
	}
	if view.Attachments == nil {
		view.Attachments = []domain.Attachment{}
	}
	return view
}
