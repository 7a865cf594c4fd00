// Package session runs proposal editing sessions. A session owns one draft and
// allows at most one save in flight.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/dealdesk/internal/clock"
	"github.com/smallbiznis/dealdesk/internal/lock"
	"github.com/smallbiznis/dealdesk/internal/observability/metrics"
	"github.com/smallbiznis/dealdesk/internal/proposal/domain"
	"github.com/smallbiznis/dealdesk/internal/proposal/draft"
	"github.com/smallbiznis/dealdesk/internal/proposal/pricing"
	taxdomain "github.com/smallbiznis/dealdesk/internal/tax/domain"
	"go.uber.org/zap"
)

// Deps are shared by every session of a store.
type Deps struct {
	Leads    domain.LeadLookup
	Products domain.ProductLookup
	Resolver taxdomain.Resolver
	Saver    domain.Saver
	// Guard is optional.
	Guard domain.SaveGuard

	Clock   clock.Clock
	GenID   *snowflake.Node
	Log     *zap.Logger
	Pricing *metrics.PricingMetrics
	Events  *metrics.Metrics

	DefaultCurrency string
	ValidityDays    int
}

type Session struct {
	id    snowflake.ID
	orgID snowflake.ID
	actor string
	deps  *Deps
	log   *zap.Logger

	mu     sync.Mutex
	draft  draft.Draft
	saving bool
}

func New(id, orgID snowflake.ID, actor string, initial draft.Draft, deps *Deps) *Session {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		id:    id,
		orgID: orgID,
		actor: actor,
		deps:  deps,
		log: log.With(
			zap.String("draft_id", id.String()),
			zap.String("org_id", orgID.String()),
		),
		draft: initial,
	}
}

func (s *Session) ID() snowflake.ID    { return s.id }
func (s *Session) OrgID() snowflake.ID { return s.orgID }

// Snapshot returns the current draft.
func (s *Session) Snapshot() draft.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Saving reports whether a save is in flight.
func (s *Session) Saving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saving
}

func (s *Session) apply(ctx context.Context, event string, fn func(draft.Draft) (draft.Draft, error)) (draft.Draft, error) {
	s.mu.Lock()
	next, err := fn(s.draft)
	if err == nil {
		s.draft = next
	}
	current := s.draft
	s.mu.Unlock()

	if err == nil {
		s.deps.Events.RecordDraftEvent(ctx, event)
	}
	return current, err
}

// OnCustomerChange selects a lead and resets tax to the jurisdiction default.
func (s *Session) OnCustomerChange(ctx context.Context, leadID string) (draft.Draft, error) {
	if strings.TrimSpace(leadID) == "" {
		return s.Snapshot(), domain.ErrMissingCustomer
	}
	lead, err := s.deps.Leads.LookupLead(ctx, leadID)
	if err != nil {
		return s.Snapshot(), err
	}
	policy := s.deps.Resolver.Resolve(ctx, taxdomain.Subject{
		Country:  lead.Country,
		HasTaxID: lead.HasTaxID,
	})
	return s.apply(ctx, "select_customer", func(d draft.Draft) (draft.Draft, error) {
		return d.SelectCustomer(lead, policy, s.deps.DefaultCurrency), nil
	})
}

func (s *Session) OnAddItem(ctx context.Context, productID string) (draft.Draft, error) {
	if strings.TrimSpace(productID) == "" {
		return s.Snapshot(), domain.ErrProductRequired
	}
	product, err := s.deps.Products.LookupProduct(ctx, productID)
	if err != nil {
		return s.Snapshot(), err
	}
	if !product.Active {
		return s.Snapshot(), domain.ErrProductInactive
	}
	return s.apply(ctx, "add_item", func(d draft.Draft) (draft.Draft, error) {
		return d.AddItem(product)
	})
}

func (s *Session) OnRemoveItem(ctx context.Context, itemID string) (draft.Draft, error) {
	return s.apply(ctx, "remove_item", func(d draft.Draft) (draft.Draft, error) {
		return d.RemoveItem(itemID), nil
	})
}

func (s *Session) OnToggleTax(ctx context.Context) (draft.Draft, error) {
	return s.apply(ctx, "toggle_tax", func(d draft.Draft) (draft.Draft, error) {
		return d.ToggleTax(), nil
	})
}

func (s *Session) OnEditTaxRate(ctx context.Context, rate decimal.Decimal) (draft.Draft, error) {
	return s.apply(ctx, "edit_tax_rate", func(d draft.Draft) (draft.Draft, error) {
		return d.EditTaxRate(rate)
	})
}

func (s *Session) OnUpdateDetails(ctx context.Context, details draft.Details) (draft.Draft, error) {
	return s.apply(ctx, "update_details", func(d draft.Draft) (draft.Draft, error) {
		return d.UpdateDetails(details), nil
	})
}

// OnSave builds the proposal from the current draft and persists it. A failed
// save leaves the draft untouched; a successful one adopts the stored id so the
// next save updates the same proposal.
func (s *Session) OnSave(ctx context.Context) (*domain.Proposal, error) {
	s.mu.Lock()
	if s.saving {
		s.mu.Unlock()
		s.deps.Pricing.IncSave(metrics.SaveOutcomeInProgress)
		return nil, domain.ErrSaveInProgress
	}
	s.saving = true
	current := s.draft
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.saving = false
		s.mu.Unlock()
	}()

	begin := time.Now()
	in := current.Assembly()
	in.OrgID = s.orgID
	in.Actor = s.actor
	in.Now = s.deps.Clock.Now()
	in.ValidityDays = s.deps.ValidityDays
	in.NewID = s.deps.GenID.Generate

	proposal, err := pricing.BuildProposal(in)
	if err != nil {
		if errors.Is(err, domain.ErrMissingCustomer) {
			s.deps.Pricing.IncSave(metrics.SaveOutcomeMissingCustomer)
			s.log.Debug("save blocked, no customer selected")
		}
		return nil, err
	}

	if proposalID, ok := current.ProposalID(); ok && s.deps.Guard != nil {
		release, err := s.deps.Guard.Acquire(ctx, proposalID.String())
		if err != nil {
			if errors.Is(err, lock.ErrLocked) {
				s.deps.Pricing.IncSave(metrics.SaveOutcomeInProgress)
				return nil, domain.ErrSaveInProgress
			}
			return nil, s.saveFailed(proposal, err)
		}
		defer release(ctx)
	}

	saved, err := s.deps.Saver.Save(ctx, proposal)
	if err != nil {
		return nil, s.saveFailed(proposal, err)
	}

	s.mu.Lock()
	s.draft = s.draft.Saved(saved)
	s.mu.Unlock()

	s.deps.Pricing.IncSave(metrics.SaveOutcomeSaved)
	s.deps.Pricing.ObserveSaveDuration(time.Since(begin))
	s.log.Info("proposal saved",
		zap.String("proposal_id", saved.ID.String()),
		zap.String("total", saved.TotalValue.String()),
	)
	return saved, nil
}

func (s *Session) saveFailed(p *domain.Proposal, cause error) error {
	s.deps.Pricing.IncSave(metrics.SaveOutcomeFailed)
	s.deps.Pricing.IncSaveFailure(cause)
	s.log.Error("proposal save failed",
		zap.String("proposal_id", p.ID.String()),
		zap.Error(cause),
	)
	return fmt.Errorf("%w: %w", domain.ErrSaveFailed, cause)
}
