package pdf

import (
	"context"
	"io"
)

// Provider renders customer-facing documents.
type Provider interface {
	GenerateProposal(ctx context.Context, doc ProposalDocument) (io.Reader, error)
}

type NoOpProvider struct{}

func (p *NoOpProvider) GenerateProposal(ctx context.Context, doc ProposalDocument) (io.Reader, error) {
	return nil, nil
}
