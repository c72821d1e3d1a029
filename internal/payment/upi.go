// Package payment routes checkout payments to UPI deep links, card
// confirmation or cash on delivery, and surfaces asynchronous UPI
// confirmation callbacks.
package payment

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/bwmarrin/snowflake"
)

// AppDescriptor identifies an installable UPI app by the URI scheme
// used to test availability and open the payment deep link.
type AppDescriptor struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Scheme string `json:"scheme"`
}

// KnownApps lists the UPI apps the storefront offers for selection.
var KnownApps = []AppDescriptor{
	{ID: "gpay", Name: "Google Pay", Scheme: "gpay://upi"},
	{ID: "phonepe", Name: "PhonePe", Scheme: "phonepe://upi"},
	{ID: "paytm", Name: "Paytm", Scheme: "paytm://upi"},
}

// FindApp returns the descriptor for a known app id.
func FindApp(id string) (AppDescriptor, bool) {
	for _, app := range KnownApps {
		if app.ID == id {
			return app, true
		}
	}
	return AppDescriptor{}, false
}

// LinkParams carries everything embedded in a upi://pay URI.
type LinkParams struct {
	PayeeAddress  string
	PayeeName     string
	TransactionID string
	Note          string
	Amount        float64
}

// BuildPayURI constructs the upi://pay deep link. Parameter order
// matches what payment apps expect: pa, pn, mc, tid, tr, tn, am, cu.
func BuildPayURI(params LinkParams) string {
	return fmt.Sprintf("upi://pay?pa=%s&pn=%s&mc=0000&tid=%s&tr=%s&tn=%s&am=%s&cu=INR",
		url.QueryEscape(params.PayeeAddress),
		url.QueryEscape(params.PayeeName),
		url.QueryEscape(params.TransactionID),
		url.QueryEscape(params.TransactionID),
		url.QueryEscape(params.Note),
		FormatAmount(params.Amount),
	)
}

// FormatAmount renders an amount as the two-decimal string UPI expects.
func FormatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}

// TransactionIDGenerator issues unique, time-ordered UPI transaction ids.
type TransactionIDGenerator struct {
	node *snowflake.Node
}

func NewTransactionIDGenerator(nodeID int64) (*TransactionIDGenerator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node: %w", err)
	}
	return &TransactionIDGenerator{node: node}, nil
}

// Next returns a fresh transaction id with the conventional T prefix.
func (g *TransactionIDGenerator) Next() string {
	return "T" + g.node.Generate().String()
}
