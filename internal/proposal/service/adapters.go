package service

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	leaddomain "github.com/smallbiznis/dealdesk/internal/lead/domain"
	productdomain "github.com/smallbiznis/dealdesk/internal/product/domain"
	"github.com/smallbiznis/dealdesk/internal/proposal/domain"
	"gorm.io/gorm"
)

type leadLookup struct {
	leads leaddomain.Service
}

// NewLeadLookup reads lead snapshots through the lead service so organization
// scoping stays in one place.
func NewLeadLookup(leads leaddomain.Service) domain.LeadLookup {
	return &leadLookup{leads: leads}
}

func (l *leadLookup) LookupLead(ctx context.Context, id string) (domain.LeadSnapshot, error) {
	lead, err := l.leads.GetByID(ctx, leaddomain.GetLeadRequest{ID: id})
	if err != nil {
		switch {
		case errors.Is(err, leaddomain.ErrNotFound):
			return domain.LeadSnapshot{}, domain.ErrNotFound
		case errors.Is(err, leaddomain.ErrInvalidID):
			return domain.LeadSnapshot{}, domain.ErrInvalidID
		case errors.Is(err, leaddomain.ErrInvalidOrganization):
			return domain.LeadSnapshot{}, domain.ErrInvalidOrganization
		}
		return domain.LeadSnapshot{}, err
	}
	return domain.LeadSnapshot{
		ID:       lead.ID,
		Name:     lead.Name,
		Company:  lead.Company,
		Country:  lead.Country,
		Currency: lead.Currency,
		HasTaxID: lead.HasTaxID(),
	}, nil
}

type productLookup struct {
	products productdomain.Service
}

func NewProductLookup(products productdomain.Service) domain.ProductLookup {
	return &productLookup{products: products}
}

func (p *productLookup) LookupProduct(ctx context.Context, id string) (*domain.Product, error) {
	resp, err := p.products.Get(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, productdomain.ErrNotFound):
			return nil, domain.ErrNotFound
		case errors.Is(err, productdomain.ErrInvalidID):
			return nil, domain.ErrInvalidID
		case errors.Is(err, productdomain.ErrInvalidOrganization):
			return nil, domain.ErrInvalidOrganization
		}
		return nil, err
	}

	productID, err := snowflake.ParseString(resp.ID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	product := &domain.Product{
		ID:     productID,
		Name:   resp.Name,
		Price:  resp.Price,
		Active: resp.Active,
	}
	if resp.Description != nil {
		product.Description = *resp.Description
	}
	return product, nil
}

type saver struct {
	db   *gorm.DB
	repo domain.Repository
}

// NewSaver writes the header and its items in one transaction.
func NewSaver(db *gorm.DB, repo domain.Repository) domain.Saver {
	return &saver{db: db, repo: repo}
}

func (s *saver) Save(ctx context.Context, p *domain.Proposal) (*domain.Proposal, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.UpsertHeader(ctx, tx, p); err != nil {
			return err
		}
		return s.repo.ReplaceItems(ctx, tx, p.ID, p.Items)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}
