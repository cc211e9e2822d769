package tool

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/storelane/shopassist/agent/contract"
)

const (
	ToolProductsInfo = "get_products_info"
	ToolReturnPolicy = "get_return_policy"
	ToolFAQs         = "get_faqs"
	ToolOrderStatus  = "get_order_status"
)

// InfosFor returns the tool definitions a responder may bind. The sets are
// static: each responder owns exactly the capabilities of its domain, and
// the router and escalation own none.
func InfosFor(responder contractx.ResponderName) []contractx.ToolDef {
	switch responder {
	case contractx.ResponderProducts:
		return []contractx.ToolDef{
			{
				Name:        ToolProductsInfo,
				Description: "Fetch the Nike product catalog: productName, category, price, inventory, colors, status, image, description.",
			},
		}
	case contractx.ResponderOrderTracking:
		return []contractx.ToolDef{
			{
				Name:        ToolOrderStatus,
				Description: "Fetch order status by exact customer name or order id. Supply at least one.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"customer_name": map[string]any{"type": "string", "description": "Exact customer name"},
						"order_id":      map[string]any{"type": "integer", "description": "Order id"},
					},
				},
			},
		}
	case contractx.ResponderReturns:
		return []contractx.ToolDef{
			{
				Name:        ToolReturnPolicy,
				Description: "Read the store's current return/cancellation/refund/exchange policy.",
			},
		}
	case contractx.ResponderInquiry:
		return []contractx.ToolDef{
			{
				Name:        ToolFAQs,
				Description: "Read the store FAQ document with Q/A pairs about hours, location, delivery, fees, payment, contact.",
			},
		}
	default:
		return nil
	}
}

// Gateway routes lookup requests to the concrete capabilities and enforces
// per-responder ownership. Results come back in request order; capability
// failures are error-variant results, never Go errors.
type Gateway struct {
	catalog *ProductCatalog
	docs    *DocSource
	orders  OrderLookup
}

var _ contractx.LookupGateway = (*Gateway)(nil)

func NewGateway(catalog *ProductCatalog, docs *DocSource, orders OrderLookup) *Gateway {
	return &Gateway{catalog: catalog, docs: docs, orders: orders}
}

func (g *Gateway) Execute(
	ctx context.Context,
	responder contractx.ResponderName,
	reqs []contractx.ToolRequest,
) []contractx.LookupResult {
	allowed := make(map[string]struct{})
	for _, def := range InfosFor(responder) {
		allowed[def.Name] = struct{}{}
	}

	results := make([]contractx.LookupResult, 0, len(reqs))
	for _, req := range reqs {
		if _, ok := allowed[req.Tool]; !ok {
			results = append(results, contractx.LookupResult{
				Tool:  req.Tool,
				Error: fmt.Sprintf("tool=%s is unavailable for responder=%s", req.Tool, responder),
			})
			continue
		}

		res := g.execute(ctx, req)
		log.Debug().
			Str("responder", string(responder)).
			Str("tool", req.Tool).
			Bool("failed", res.Error != "").
			Msg("lookup executed")
		results = append(results, res)
	}
	return results
}

func (g *Gateway) execute(ctx context.Context, req contractx.ToolRequest) contractx.LookupResult {
	switch req.Tool {
	case ToolProductsInfo:
		return g.catalog.Fetch(ctx)
	case ToolReturnPolicy:
		return g.docs.ReturnPolicy()
	case ToolFAQs:
		return g.docs.FAQs()
	case ToolOrderStatus:
		return lookupOrderStatus(ctx, g.orders, req.Args)
	default:
		return contractx.LookupResult{
			Tool:  req.Tool,
			Error: fmt.Sprintf("tool=%s is not implemented", req.Tool),
		}
	}
}
