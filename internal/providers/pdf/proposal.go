package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// ProposalDocument holds pre-formatted values. Money strings are produced by
// the caller so the document never does arithmetic.
type ProposalDocument struct {
	Title       string
	Number      string
	IssueDate   string
	ValidUntil  string
	Status      string
	LeadName    string
	LeadCompany string

	Items []ProposalLine

	SubTotal  string
	TaxLabel  string
	TaxRate   string
	TaxAmount string
	Total     string
	// TaxNote is printed under the totals, e.g. for reverse charged proposals.
	TaxNote string
	Terms   string
}

type ProposalLine struct {
	Name        string
	Description string
	Qty         int
	UnitPrice   string
	Amount      string
}

var ErrEmptyDocument = errors.New("pdf: proposal document has no title")

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateProposal(ctx context.Context, doc ProposalDocument) (io.Reader, error) {
	if doc.Title == "" {
		return nil, ErrEmptyDocument
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(8, doc.Title, props.Text{Size: 18, Style: fontstyle.Bold, Align: align.Left}),
		text.NewCol(4, doc.Status, props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right, Top: 3}),
	)

	m.AddRow(22,
		col.New(6).Add(
			text.New("Proposal number: "+doc.Number, props.Text{Size: 9}),
			text.New("Date of issue: "+doc.IssueDate, props.Text{Size: 9, Top: 5}),
			text.New("Valid until: "+doc.ValidUntil, props.Text{Size: 9, Top: 10}),
		),
		col.New(6).Add(
			text.New("Prepared for", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
			text.New(doc.LeadName, props.Text{Size: 9, Top: 5, Align: align.Right}),
			text.New(doc.LeadCompany, props.Text{Size: 9, Top: 10, Align: align.Right}),
		),
	)

	m.AddRow(8,
		text.NewCol(6, "Item", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Unit price", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	m.AddRow(1, col.New(12))

	for _, item := range doc.Items {
		height := 8.0
		if item.Description != "" {
			height = 13
		}
		m.AddRow(height,
			col.New(6).Add(
				text.New(item.Name, props.Text{Size: 9}),
				text.New(item.Description, props.Text{Size: 7, Top: 5}),
			),
			text.NewCol(2, fmt.Sprintf("%d", item.Qty), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.UnitPrice, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.Amount, props.Text{Size: 9, Align: align.Right}),
		)
	}
	m.AddRow(1, col.New(12))

	m.AddRow(7,
		col.New(8),
		text.NewCol(2, "Subtotal", props.Text{Size: 9}),
		text.NewCol(2, doc.SubTotal, props.Text{Size: 9, Align: align.Right}),
	)
	taxCaption := doc.TaxLabel
	if doc.TaxRate != "" {
		taxCaption = fmt.Sprintf("%s (%s%%)", doc.TaxLabel, doc.TaxRate)
	}
	m.AddRow(7,
		col.New(8),
		text.NewCol(2, taxCaption, props.Text{Size: 9}),
		text.NewCol(2, doc.TaxAmount, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(8,
		col.New(8),
		text.NewCol(2, "Total", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, doc.Total, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	if doc.TaxNote != "" {
		m.AddRow(8, text.NewCol(12, doc.TaxNote, props.Text{Size: 8, Style: fontstyle.Italic, Top: 2}))
	}
	if doc.Terms != "" {
		m.AddRow(8, text.NewCol(12, "Terms", props.Text{Size: 9, Style: fontstyle.Bold, Top: 3}))
		m.AddRow(20, text.NewCol(12, doc.Terms, props.Text{Size: 8}))
	}

	out, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(out.GetBytes()), nil
}
