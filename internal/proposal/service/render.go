package service

import (
	"context"
	"fmt"
	"io"

	"github.com/gosimple/slug"
	"github.com/smallbiznis/dealdesk/internal/proposal/domain"
	"github.com/smallbiznis/dealdesk/internal/providers/pdf"
	"go.uber.org/zap"
)

const dateLayout = "02 Jan 2006"

func (s *Service) RenderPDF(ctx context.Context, id string) (*domain.RenderedPDF, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	reader, err := s.pdf.GenerateProposal(ctx, s.document(p))
	if err != nil {
		s.log.Error("failed to render proposal pdf",
			zap.String("proposal_id", p.ID.String()),
			zap.Error(err),
		)
		return nil, err
	}
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordPDFRender(ctx, p.OrgID.String())
	return &domain.RenderedPDF{
		FileName: fileName(p),
		Content:  content,
	}, nil
}

func (s *Service) document(p *domain.Proposal) pdf.ProposalDocument {
	doc := pdf.ProposalDocument{
		Title:       p.Name,
		Number:      p.ID.String(),
		IssueDate:   p.CreatedAt.Format(dateLayout),
		Status:      string(p.Status),
		LeadName:    p.LeadName,
		LeadCompany: p.LeadCompany,
		SubTotal:    s.formatter.Format(p.SubTotal, p.Currency),
		TaxLabel:    p.TaxLabel,
		TaxAmount:   s.formatter.Format(p.TaxAmount, p.Currency),
		Total:       s.formatter.Format(p.TotalValue, p.Currency),
		Terms:       p.Terms,
	}
	if p.ValidUntil != nil {
		doc.ValidUntil = p.ValidUntil.Format(dateLayout)
	}
	if p.IsTaxEnabled {
		doc.TaxRate = p.TaxRate.String() + "%"
	} else {
		doc.TaxNote = "No tax charged on this proposal."
	}

	doc.Items = make([]pdf.ProposalLine, 0, len(p.Items))
	for _, item := range p.Items {
		doc.Items = append(doc.Items, pdf.ProposalLine{
			Name:        item.Name,
			Description: item.Description,
			Qty:         item.Quantity,
			UnitPrice:   s.formatter.Format(item.UnitPrice, p.Currency),
			Amount:      s.formatter.Format(item.Amount(), p.Currency),
		})
	}
	return doc
}

func fileName(p *domain.Proposal) string {
	name := slug.Make(p.Name)
	if name == "" {
		name = "proposal"
	}
	return fmt.Sprintf("%s-%s.pdf", name, p.ID.String())
}
