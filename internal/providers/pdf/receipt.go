package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// ReceiptData is everything a payment receipt shows. Amounts arrive
// preformatted; the renderer does layout, not money math.
type ReceiptData struct {
	BusinessName string
	SupportEmail string
	FooterNote   string

	ReceiptNumber string
	PaidOn        string
	Provider      string
	Reference     string

	CustomerName  string
	CustomerEmail string

	Description string
	Amount      string
	Currency    string
}

// Renderer produces receipt documents for completed payments.
type Renderer interface {
	RenderReceipt(ctx context.Context, data ReceiptData) (io.Reader, error)
}

type marotoRenderer struct{}

func NewRenderer() Renderer {
	return &marotoRenderer{}
}

func (r *marotoRenderer) RenderReceipt(ctx context.Context, data ReceiptData) (io.Reader, error) {
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

	m.AddRow(30,
		text.NewCol(8, "Receipt", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
		text.NewCol(4, data.BusinessName, props.Text{
			Size:  12,
			Style: fontstyle.Bold,
			Align: align.Right,
			Top:   4,
		}),
	)

	m.AddRow(20,
		col.New(6).Add(
			text.New("Receipt number: "+data.ReceiptNumber, props.Text{Top: 0}),
			text.New("Date paid: "+data.PaidOn, props.Text{Top: 4}),
			text.New("Payment method: "+providerLabel(data.Provider), props.Text{Top: 8}),
			text.New("Reference: "+data.Reference, props.Text{Top: 12}),
		),
		col.New(6).Add(
			text.New("Billed to", props.Text{Style: fontstyle.Bold}),
			text.New(data.CustomerName, props.Text{Top: 4}),
			text.New(data.CustomerEmail, props.Text{Top: 8}),
		),
	)

	m.AddRow(15,
		text.NewCol(12, fmt.Sprintf("%s %s paid on %s", data.Amount, data.Currency, data.PaidOn), props.Text{
			Size:  14,
			Style: fontstyle.Bold,
			Top:   5,
		}),
	)

	m.AddRow(10,
		text.NewCol(8, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(4, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	m.AddRow(15,
		text.NewCol(8, data.Description, props.Text{Size: 9}),
		text.NewCol(4, data.Amount+" "+data.Currency, props.Text{Size: 9, Align: align.Right}),
	)

	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Total", props.Text{Size: 9, Style: fontstyle.Bold}),
		text.NewCol(2, data.Amount+" "+data.Currency, props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
	)

	footer := data.FooterNote
	if strings.TrimSpace(data.SupportEmail) != "" {
		footer = strings.TrimSpace(footer + " Questions? " + data.SupportEmail)
	}
	m.AddRow(20,
		text.NewCol(12, footer, props.Text{Size: 8, Top: 8}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}

func providerLabel(provider string) string {
	switch provider {
	case "stripe":
		return "Card (Stripe)"
	case "paypal":
		return "PayPal"
	default:
		return provider
	}
}
