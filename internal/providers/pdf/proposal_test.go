package pdf

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateProposal(t *testing.T) {
	provider := New()

	r, err := provider.GenerateProposal(context.Background(), ProposalDocument{
		Title:     "Website redesign",
		Number:    "1820000000000000000",
		IssueDate: "2026-03-01",
		LeadName:  "Anna Schmidt",
		Items: []ProposalLine{
			{Name: "Workshop", Qty: 2, UnitPrice: "GBP 100", Amount: "GBP 200"},
			{Name: "Audit", Description: "Accessibility audit", Qty: 1, UnitPrice: "GBP 50", Amount: "GBP 50"},
		},
		SubTotal:  "GBP 250",
		TaxLabel:  "VAT",
		TaxRate:   "20",
		TaxAmount: "GBP 50",
		Total:     "GBP 300",
		Terms:     "Net 30",
	})
	require.NoError(t, err)

	body, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

func TestGenerateProposalRequiresTitle(t *testing.T) {
	_, err := New().GenerateProposal(context.Background(), ProposalDocument{})
	assert.ErrorIs(t, err, ErrEmptyDocument)
}
