package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/dealdesk/internal/clock"
	"github.com/smallbiznis/dealdesk/internal/config"
	"github.com/smallbiznis/dealdesk/internal/money"
	"github.com/smallbiznis/dealdesk/internal/observability/metrics"
	"github.com/smallbiznis/dealdesk/internal/orgcontext"
	"github.com/smallbiznis/dealdesk/internal/proposal/domain"
	"github.com/smallbiznis/dealdesk/internal/providers/pdf"
	"github.com/smallbiznis/dealdesk/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Clock   clock.Clock
	Config  config.Config
	Repo    domain.Repository
	PDF     pdf.Provider
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	clock     clock.Clock
	repo      domain.Repository
	pdf       pdf.Provider
	metrics   *metrics.Metrics
	formatter *money.Formatter
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("proposal.service"),
		clock:     p.Clock,
		repo:      p.Repo,
		pdf:       p.PDF,
		metrics:   p.Metrics,
		formatter: money.NewFormatter(p.Config.Proposal.DefaultCurrency),
	}
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Proposal, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	proposalID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.find(ctx, orgID, proposalID)
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ListResponse{}, domain.ErrInvalidOrganization
	}

	var filter domain.ListFilter
	if strings.TrimSpace(req.Status) != "" {
		status, err := domain.ParseStatus(req.Status)
		if err != nil {
			return domain.ListResponse{}, err
		}
		filter.Status = status
	}
	if strings.TrimSpace(req.LeadID) != "" {
		leadID, err := parseID(req.LeadID)
		if err != nil {
			return domain.ListResponse{}, err
		}
		filter.LeadID = leadID
	}

	pageSize := int32(pagination.NormalizeSize(int(req.PageSize)))
	items, err := s.repo.List(ctx, s.db, orgID, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(p *domain.Proposal) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{ID: p.ID.String()})
		if err != nil {
			return ""
		}
		return token
	})
	if len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	proposals := make([]domain.Proposal, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		proposals = append(proposals, *item)
	}

	resp := domain.ListResponse{Proposals: proposals}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

// UpdateStatus accepts any known status regardless of the current one.
func (s *Service) UpdateStatus(ctx context.Context, id string, status string) (*domain.Proposal, error) {
	next, err := domain.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	return s.setStatus(ctx, id, next)
}

func (s *Service) Send(ctx context.Context, id string) (*domain.Proposal, error) {
	p, err := s.setStatus(ctx, id, domain.StatusSent)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordProposalSend(ctx, p.OrgID.String())
	return p, nil
}

func (s *Service) setStatus(ctx context.Context, id string, status domain.Status) (*domain.Proposal, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	proposalID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateStatus(ctx, s.db, orgID, proposalID, status, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, domain.ErrNotFound
	}

	s.log.Info("proposal status updated",
		zap.String("org_id", orgID.String()),
		zap.String("proposal_id", proposalID.String()),
		zap.String("status", string(status)),
	)
	return s.find(ctx, orgID, proposalID)
}

func (s *Service) find(ctx context.Context, orgID, id snowflake.ID) (*domain.Proposal, error) {
	p, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
