package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/safety.txt
	safetyRaw string

	//go:embed template/router.txt
	routerRaw string

	//go:embed template/products.txt
	productsRaw string

	//go:embed template/order_tracking.txt
	orderTrackingRaw string

	//go:embed template/returns.txt
	returnsRaw string

	//go:embed template/inquiry.txt
	inquiryRaw string

	//go:embed template/escalation.txt
	escalationRaw string
)

// PromptSet holds loaded instruction content.
type PromptSet struct {
	Safety        string
	Router        string
	Products      string
	OrderTracking string
	Returns       string
	Inquiry       string
	Escalation    string
}

// LoadPromptSet returns a PromptSet with trimmed instruction strings. Safe
// to call concurrently; the embed is compile-time.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Safety:        strings.TrimSpace(safetyRaw),
		Router:        strings.TrimSpace(routerRaw),
		Products:      strings.TrimSpace(productsRaw),
		OrderTracking: strings.TrimSpace(orderTrackingRaw),
		Returns:       strings.TrimSpace(returnsRaw),
		Inquiry:       strings.TrimSpace(inquiryRaw),
		Escalation:    strings.TrimSpace(escalationRaw),
	}
}
