package domain

import "context"

// Resolver proposes a tax policy for a lead.
type Resolver interface {
	Resolve(ctx context.Context, subject Subject) Policy
}
