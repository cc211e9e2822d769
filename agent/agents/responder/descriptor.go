package responder

import (
	contractx "github.com/storelane/shopassist/agent/contract"
	promptx "github.com/storelane/shopassist/agent/prompt"
	toolx "github.com/storelane/shopassist/agent/tool"
)

// Descriptor is the static definition of one responder: its instructions,
// the lookup capabilities it owns, which of those must run before a
// domain answer, and where it may delegate. Descriptors are built once at
// process start and never mutated.
type Descriptor struct {
	Name           contractx.ResponderName
	Instructions   string
	Tools          []contractx.ToolDef
	MandatoryTools []string
	Targets        []contractx.ResponderName
}

// DefaultDescriptors wires the store's responder set. Escalation is the
// terminal node: every other responder can reach it, and it owns neither
// tools nor targets.
func DefaultDescriptors(prompts promptx.PromptSet) []Descriptor {
	return []Descriptor{
		{
			Name:         contractx.ResponderRouter,
			Instructions: prompts.Router,
			Targets: []contractx.ResponderName{
				contractx.ResponderProducts,
				contractx.ResponderInquiry,
				contractx.ResponderReturns,
				contractx.ResponderOrderTracking,
				contractx.ResponderEscalation,
			},
		},
		{
			Name:           contractx.ResponderProducts,
			Instructions:   prompts.Products,
			Tools:          toolx.InfosFor(contractx.ResponderProducts),
			MandatoryTools: []string{toolx.ToolProductsInfo},
			Targets:        []contractx.ResponderName{contractx.ResponderEscalation},
		},
		{
			Name:         contractx.ResponderOrderTracking,
			Instructions: prompts.OrderTracking,
			Tools:        toolx.InfosFor(contractx.ResponderOrderTracking),
			Targets:      []contractx.ResponderName{contractx.ResponderEscalation},
		},
		{
			Name:           contractx.ResponderReturns,
			Instructions:   prompts.Returns,
			Tools:          toolx.InfosFor(contractx.ResponderReturns),
			MandatoryTools: []string{toolx.ToolReturnPolicy},
			Targets: []contractx.ResponderName{
				contractx.ResponderEscalation,
				contractx.ResponderOrderTracking,
			},
		},
		{
			Name:           contractx.ResponderInquiry,
			Instructions:   prompts.Inquiry,
			Tools:          toolx.InfosFor(contractx.ResponderInquiry),
			MandatoryTools: []string{toolx.ToolFAQs},
			Targets: []contractx.ResponderName{
				contractx.ResponderEscalation,
				contractx.ResponderReturns,
				contractx.ResponderOrderTracking,
			},
		},
		{
			Name:         contractx.ResponderEscalation,
			Instructions: prompts.Escalation,
		},
	}
}

const handoffToolPrefix = "transfer_to_"

func handoffToolName(target contractx.ResponderName) string {
	return handoffToolPrefix + string(target)
}

func handoffDescription(target contractx.ResponderName) string {
	switch target {
	case contractx.ResponderProducts:
		return "Hand off questions about products, availability, price, and details."
	case contractx.ResponderOrderTracking:
		return "Hand off queries about order tracking and status."
	case contractx.ResponderReturns:
		return "Hand off queries about returns, cancellations, refunds, exchanges, warranty claims, or defective items."
	case contractx.ResponderInquiry:
		return "Hand off general inquiries about the store, delivery, payment, hours, or non-Nike brands."
	case contractx.ResponderEscalation:
		return "Hand off queries requiring human review, empathy, or multi-layered resolution."
	default:
		return "Hand off the conversation to the " + string(target) + " agent."
	}
}
