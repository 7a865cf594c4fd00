// Package draft models a proposal being edited as an immutable value. Every
// transition returns a new Draft; the receiver is never modified.
package draft

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/dealdesk/internal/proposal/domain"
	"github.com/smallbiznis/dealdesk/internal/proposal/pricing"
	taxdomain "github.com/smallbiznis/dealdesk/internal/tax/domain"
)

type Draft struct {
	origin *pricing.Origin

	lead        *domain.LeadSnapshot
	currency    string
	items       []domain.LineItem
	tax         taxdomain.Policy
	name        string
	terms       string
	validUntil  *time.Time
	attachments []domain.Attachment
}

// Details are the free-form fields of a proposal.
type Details struct {
	Name        *string
	Terms       *string
	ValidUntil  *time.Time
	Attachments []domain.Attachment
}

// New starts an empty draft. Tax starts at the zero-rate default until a
// customer is selected.
func New(currency string) Draft {
	return Draft{
		currency: currency,
		tax:      taxdomain.DefaultPolicy(),
	}
}

// FromProposal starts a draft that edits p. The tax policy is supplied by the
// caller since a disabled proposal stores a zero rate.
func FromProposal(p *domain.Proposal, lead domain.LeadSnapshot, tax taxdomain.Policy) Draft {
	d := Draft{
		origin: &pricing.Origin{
			ID:        p.ID,
			CreatedAt: p.CreatedAt,
			CreatedBy: p.CreatedBy,
			Status:    p.Status,
		},
		lead:     &lead,
		currency: p.Currency,
		tax:      tax,
		name:     p.Name,
		terms:    p.Terms,
	}
	d.items = make([]domain.LineItem, len(p.Items))
	for i, item := range p.Items {
		item.ProposalID = 0
		item.Position = 0
		d.items[i] = item
	}
	if p.ValidUntil != nil {
		v := *p.ValidUntil
		d.validUntil = &v
	}
	d.attachments = append([]domain.Attachment(nil), p.Attachments...)
	return d
}

// SelectCustomer sets the lead and always replaces the tax policy with the
// resolved one, discarding manual tax edits. Currency follows the lead, or
// fallbackCurrency when the lead has none.
func (d Draft) SelectCustomer(lead domain.LeadSnapshot, resolved taxdomain.Policy, fallbackCurrency string) Draft {
	d.lead = &lead
	d.tax = resolved
	d.currency = fallbackCurrency
	if c := strings.TrimSpace(lead.Currency); c != "" {
		d.currency = c
	}
	return d
}

func (d Draft) AddItem(product *domain.Product) (Draft, error) {
	items, err := pricing.AddItem(d.items, product)
	if err != nil {
		return d, err
	}
	d.items = items
	return d, nil
}

func (d Draft) RemoveItem(itemID string) Draft {
	d.items = pricing.RemoveItem(d.items, itemID)
	return d
}

// ToggleTax flips enabled and keeps rate and label.
func (d Draft) ToggleTax() Draft {
	d.tax = d.tax.Toggled()
	return d
}

func (d Draft) EditTaxRate(rate decimal.Decimal) (Draft, error) {
	tax, err := d.tax.WithRate(rate)
	if err != nil {
		return d, err
	}
	d.tax = tax
	return d, nil
}

// UpdateDetails replaces the fields that are set in details.
func (d Draft) UpdateDetails(details Details) Draft {
	if details.Name != nil {
		d.name = strings.TrimSpace(*details.Name)
	}
	if details.Terms != nil {
		d.terms = *details.Terms
	}
	if details.ValidUntil != nil {
		v := *details.ValidUntil
		d.validUntil = &v
	}
	if details.Attachments != nil {
		d.attachments = append([]domain.Attachment(nil), details.Attachments...)
	}
	return d
}

// Saved adopts the identity of the persisted proposal so later saves update it.
func (d Draft) Saved(p *domain.Proposal) Draft {
	d.origin = &pricing.Origin{
		ID:        p.ID,
		CreatedAt: p.CreatedAt,
		CreatedBy: p.CreatedBy,
		Status:    p.Status,
	}
	return d
}

func (d Draft) Totals() domain.Totals {
	return pricing.ComputeTotals(d.items, d.tax)
}

// Assembly prepares the save input. Totals are recomputed by BuildProposal.
func (d Draft) Assembly() pricing.Assembly {
	in := pricing.Assembly{
		Name:        d.name,
		Terms:       d.terms,
		Currency:    d.currency,
		ValidUntil:  d.validUntil,
		Attachments: d.attachments,
		Items:       d.items,
		Tax:         d.tax,
	}
	if d.lead != nil {
		lead := *d.lead
		in.Lead = &lead
	}
	if d.origin != nil {
		origin := *d.origin
		in.Origin = &origin
	}
	return in
}

// ProposalID is the persisted id, or false for a proposal never saved.
func (d Draft) ProposalID() (snowflake.ID, bool) {
	if d.origin == nil || d.origin.ID == 0 {
		return 0, false
	}
	return d.origin.ID, true
}

func (d Draft) Status() domain.Status {
	if d.origin == nil {
		return domain.StatusDraft
	}
	return d.origin.Status
}

func (d Draft) Lead() (domain.LeadSnapshot, bool) {
	if d.lead == nil {
		return domain.LeadSnapshot{}, false
	}
	return *d.lead, true
}

func (d Draft) Currency() string      { return d.currency }
func (d Draft) Tax() taxdomain.Policy { return d.tax }
func (d Draft) Name() string          { return d.name }
func (d Draft) Terms() string         { return d.terms }

// Items returns a copy of the cart in insertion order.
func (d Draft) Items() []domain.LineItem {
	return append([]domain.LineItem(nil), d.items...)
}

func (d Draft) ValidUntil() *time.Time {
	if d.validUntil == nil {
		return nil
	}
	v := *d.validUntil
	return &v
}

func (d Draft) Attachments() []domain.Attachment {
	return append([]domain.Attachment(nil), d.attachments...)
}
