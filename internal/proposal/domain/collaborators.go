package domain

import "context"

// LeadLookup resolves a lead id within the caller's organization.
type LeadLookup interface {
	LookupLead(ctx context.Context, id string) (LeadSnapshot, error)
}

// ProductLookup resolves a catalog product within the caller's organization.
type ProductLookup interface {
	LookupProduct(ctx context.Context, id string) (*Product, error)
}

// Saver persists a proposal atomically and returns the stored copy.
type Saver interface {
	Save(ctx context.Context, p *Proposal) (*Proposal, error)
}

// SaveGuard excludes concurrent saves of one proposal across processes.
type SaveGuard interface {
	Acquire(ctx context.Context, key string) (func(context.Context), error)
}
