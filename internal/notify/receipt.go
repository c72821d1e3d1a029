package notify

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"text/template"

	"github.com/farmgateapp/farmgate/internal/models"
)

// ReceiptInfo is the data rendered into the receipt templates.
type ReceiptInfo struct {
	OrderID       string
	CustomerPhone string
	CustomerName  string
	ProductName   string
	Quantity      string
	PaymentMethod string
	Amount        string
	ShopName      string
	OrderDate     string
}

const receiptText = `New paid order at {{.ShopName}}

Order:     {{.OrderID}}
Product:   {{.ProductName}} ({{.Quantity}})
Amount:    {{.Amount}}
Paid via:  {{.PaymentMethod}}
Customer:  {{.CustomerPhone}}{{if .CustomerName}} ({{.CustomerName}}){{end}}
Date:      {{.OrderDate}}
`

const receiptHTML = `<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #1f2937;">
  <h2>New paid order at {{.ShopName}}</h2>
  <table cellpadding="4">
    <tr><td><strong>Order</strong></td><td>{{.OrderID}}</td></tr>
    <tr><td><strong>Product</strong></td><td>{{.ProductName}} ({{.Quantity}})</td></tr>
    <tr><td><strong>Amount</strong></td><td>{{.Amount}}</td></tr>
    <tr><td><strong>Paid via</strong></td><td>{{.PaymentMethod}}</td></tr>
    <tr><td><strong>Customer</strong></td><td>{{.CustomerPhone}}{{if .CustomerName}} ({{.CustomerName}}){{end}}</td></tr>
    <tr><td><strong>Date</strong></td><td>{{.OrderDate}}</td></tr>
  </table>
</body>
</html>
`

var (
	receiptTextTmpl = template.Must(template.New("receipt_text").Parse(receiptText))
	receiptHTMLTmpl = template.Must(template.New("receipt_html").Parse(receiptHTML))
)

// RenderReceipt renders both bodies for a paid-order receipt.
func RenderReceipt(to string, info *ReceiptInfo) (*Email, error) {
	var textBuf, htmlBuf bytes.Buffer
	if err := receiptTextTmpl.Execute(&textBuf, info); err != nil {
		return nil, fmt.Errorf("failed to render receipt text: %w", err)
	}
	if err := receiptHTMLTmpl.Execute(&htmlBuf, info); err != nil {
		return nil, fmt.Errorf("failed to render receipt html: %w", err)
	}

	return &Email{
		To:      to,
		Subject: fmt.Sprintf("Paid order %s - %s", info.OrderID, info.ShopName),
		Text:    textBuf.String(),
		HTML:    htmlBuf.String(),
	}, nil
}

// ReceiptNotifier emails the back office when an order is paid or
// confirmed. A nil provider turns it into a no-op.
type ReceiptNotifier struct {
	provider Provider
	to       string
	shopName string
	logger   *slog.Logger
}

func NewReceiptNotifier(provider Provider, to, shopName string, logger *slog.Logger) *ReceiptNotifier {
	return &ReceiptNotifier{
		provider: provider,
		to:       to,
		shopName: shopName,
		logger:   logger,
	}
}

func (n *ReceiptNotifier) SendReceipt(ctx context.Context, order *models.Order) error {
	if n == nil || n.provider == nil || n.to == "" {
		return nil
	}

	info := &ReceiptInfo{
		OrderID:       order.ID.String(),
		CustomerPhone: order.CustomerPhone,
		ProductName:   order.ProductName,
		Quantity:      order.Quantity,
		PaymentMethod: string(order.PaymentMethod),
		Amount:        FormatPaise(order.TotalPaise),
		ShopName:      n.shopName,
		OrderDate:     order.CreatedAt.Format("January 2, 2006"),
	}

	email, err := RenderReceipt(n.to, info)
	if err != nil {
		return err
	}
	if err := n.provider.SendEmail(ctx, email); err != nil {
		return err
	}

	n.logger.Info("receipt sent", "order_id", order.ID, "to", n.to)
	return nil
}

// FormatPaise renders an integer paise amount as rupees, e.g. 3000
// becomes "Rs 30.00".
func FormatPaise(paise int) string {
	return fmt.Sprintf("Rs %.2f", float64(paise)/100)
}
