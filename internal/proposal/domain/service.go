package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	taxdomain "github.com/smallbiznis/dealdesk/internal/tax/domain"
	"github.com/smallbiznis/dealdesk/pkg/db/pagination"
)

type Service interface {
	Get(ctx context.Context, id string) (*Proposal, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	UpdateStatus(ctx context.Context, id string, status string) (*Proposal, error)
	Send(ctx context.Context, id string) (*Proposal, error)
	RenderPDF(ctx context.Context, id string) (*RenderedPDF, error)
}

// DraftService drives proposal editing sessions.
type DraftService interface {
	StartDraft(ctx context.Context) (*DraftView, error)
	EditProposal(ctx context.Context, proposalID string) (*DraftView, error)
	GetDraft(ctx context.Context, draftID string) (*DraftView, error)
	DiscardDraft(ctx context.Context, draftID string) error
	SelectCustomer(ctx context.Context, draftID, leadID string) (*DraftView, error)
	AddItem(ctx context.Context, draftID, productID string) (*DraftView, error)
	RemoveItem(ctx context.Context, draftID, itemID string) (*DraftView, error)
	ToggleTax(ctx context.Context, draftID string) (*DraftView, error)
	EditTaxRate(ctx context.Context, draftID string, rate decimal.Decimal) (*DraftView, error)
	UpdateDetails(ctx context.Context, draftID string, req UpdateDetailsRequest) (*DraftView, error)
	SaveDraft(ctx context.Context, draftID string) (*Proposal, error)
}

type ListRequest struct {
	Status    string
	LeadID    string
	PageToken string
	PageSize  int32
}

type ListResponse struct {
	pagination.PageInfo
	Proposals []Proposal `json:"proposals"`
}

type RenderedPDF struct {
	FileName string
	Content  []byte
}

type UpdateDetailsRequest struct {
	Name        *string      `json:"name"`
	Terms       *string      `json:"terms"`
	ValidUntil  *time.Time   `json:"valid_until"`
	Attachments []Attachment `json:"attachments"`
}

// DraftView is the display state of an editing session.
type DraftView struct {
	ID          string           `json:"id"`
	ProposalID  string           `json:"proposal_id,omitempty"`
	Status      Status           `json:"status"`
	Lead        *LeadSnapshot    `json:"lead,omitempty"`
	Currency    string           `json:"currency"`
	Name        string           `json:"name"`
	Terms       string           `json:"terms"`
	ValidUntil  *time.Time       `json:"valid_until,omitempty"`
	Attachments []Attachment     `json:"attachments"`
	Items       []LineItem       `json:"items"`
	Tax         taxdomain.Policy `json:"tax"`
	Totals      Totals           `json:"totals"`
	Formatted   FormattedTotals  `json:"formatted"`
	Saving      bool             `json:"saving"`
}

type FormattedTotals struct {
	SubTotal  string `json:"sub_total"`
	TaxAmount string `json:"tax_amount"`
	Total     string `json:"total"`
}
