package pricing

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/dealdesk/internal/proposal/domain"
	taxdomain "github.com/smallbiznis/dealdesk/internal/tax/domain"
)

// Origin identifies an already persisted proposal being edited.
type Origin struct {
	ID        snowflake.ID
	CreatedAt time.Time
	CreatedBy string
	Status    domain.Status
}

// Assembly is everything needed to build the proposal handed to persistence.
type Assembly struct {
	OrgID       snowflake.ID
	Lead        *domain.LeadSnapshot
	Name        string
	Terms       string
	Currency    string
	ValidUntil  *time.Time
	Attachments []domain.Attachment
	Items       []domain.LineItem
	Tax         taxdomain.Policy

	// Origin is nil when creating.
	Origin *Origin

	Actor        string
	Now          time.Time
	ValidityDays int
	NewID        func() snowflake.ID
}

// BuildProposal validates the draft and produces a proposal with freshly
// computed totals. Tax rate and amount are zero when tax is disabled so the
// stored fields always add up.
func BuildProposal(in Assembly) (*domain.Proposal, error) {
	if in.Lead == nil || in.Lead.ID == 0 {
		return nil, domain.ErrMissingCustomer
	}
	if err := ValidateItems(in.Items); err != nil {
		return nil, err
	}
	if err := taxdomain.ValidateRate(in.Tax.Rate); err != nil {
		return nil, err
	}

	totals := ComputeTotals(in.Items, in.Tax)
	taxRate := in.Tax.Rate
	if !in.Tax.Enabled {
		taxRate = decimal.Zero
	}

	p := &domain.Proposal{
		OrgID:        in.OrgID,
		Name:         strings.TrimSpace(in.Name),
		LeadID:       in.Lead.ID,
		LeadName:     in.Lead.Name,
		LeadCompany:  in.Lead.Company,
		Currency:     in.Currency,
		SubTotal:     totals.SubTotal,
		TaxLabel:     in.Tax.Label,
		TaxRate:      taxRate,
		TaxAmount:    totals.TaxAmount,
		IsTaxEnabled: in.Tax.Enabled,
		TotalValue:   totals.Total,
		Terms:        in.Terms,
		UpdatedAt:    in.Now,
	}

	if in.Origin != nil && in.Origin.ID != 0 {
		p.ID = in.Origin.ID
		p.CreatedAt = in.Origin.CreatedAt
		p.CreatedBy = in.Origin.CreatedBy
		p.Status = in.Origin.Status
	} else {
		p.ID = in.NewID()
		p.CreatedAt = in.Now
		p.CreatedBy = in.Actor
	}
	if p.Status == "" {
		p.Status = domain.StatusDraft
	}
	if p.Name == "" {
		p.Name = defaultName(in.Lead)
	}

	if in.ValidUntil != nil {
		validUntil := *in.ValidUntil
		p.ValidUntil = &validUntil
	} else if in.ValidityDays > 0 {
		validUntil := p.CreatedAt.AddDate(0, 0, in.ValidityDays)
		p.ValidUntil = &validUntil
	}

	p.Items = make([]domain.LineItem, len(in.Items))
	for i, item := range in.Items {
		item.ProposalID = p.ID
		item.Position = i
		p.Items[i] = item
	}
	if len(in.Attachments) > 0 {
		p.Attachments = append(p.Attachments, in.Attachments...)
	}

	return p, nil
}

func defaultName(lead *domain.LeadSnapshot) string {
	if lead.Company != "" {
		return "Proposal for " + lead.Company
	}
	return "Proposal for " + lead.Name
}
