package responder

import (
	"errors"
	"testing"

	contractx "github.com/storelane/shopassist/agent/contract"
	promptx "github.com/storelane/shopassist/agent/prompt"
)

func defaultSet(t *testing.T) []Descriptor {
	t.Helper()
	return DefaultDescriptors(promptx.LoadPromptSet())
}

func TestNewRegistryDefaultGraph(t *testing.T) {
	t.Parallel()

	reg, err := NewRegistry(&scriptedModel{}, &scriptedModel{}, &recordingGateway{}, defaultSet(t))
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	if reg.Size() != 6 {
		t.Fatalf("Size() = %d, want 6", reg.Size())
	}
	if reg.Entry().Name() != contractx.ResponderRouter {
		t.Fatalf("Entry() = %s, want router", reg.Entry().Name())
	}
	if _, ok := reg.Responder(contractx.ResponderReturns); !ok {
		t.Fatal("returns responder missing")
	}
	if _, ok := reg.Responder("unknown"); ok {
		t.Fatal("lookup of unknown responder must fail")
	}
}

func TestValidateGraphRejectsNonTerminalEscalation(t *testing.T) {
	t.Parallel()

	descs := defaultSet(t)
	for i := range descs {
		if descs[i].Name == contractx.ResponderEscalation {
			descs[i].Targets = []contractx.ResponderName{contractx.ResponderProducts}
		}
	}
	if err := validateGraph(descs); !errors.Is(err, contractx.ErrDelegationGraph) {
		t.Fatalf("expected ErrDelegationGraph, got %v", err)
	}
}

func TestValidateGraphRejectsUnknownTarget(t *testing.T) {
	t.Parallel()

	descs := defaultSet(t)
	descs[0].Targets = append(descs[0].Targets, "billing")
	if err := validateGraph(descs); !errors.Is(err, contractx.ErrDelegationGraph) {
		t.Fatalf("expected ErrDelegationGraph, got %v", err)
	}
}

func TestValidateGraphRejectsSelfTarget(t *testing.T) {
	t.Parallel()

	descs := defaultSet(t)
	descs[0].Targets = append(descs[0].Targets, descs[0].Name)
	if err := validateGraph(descs); !errors.Is(err, contractx.ErrDelegationGraph) {
		t.Fatalf("expected ErrDelegationGraph, got %v", err)
	}
}

func TestValidateGraphRequiresEscalationReachability(t *testing.T) {
	t.Parallel()

	descs := defaultSet(t)
	for i := range descs {
		if descs[i].Name == contractx.ResponderProducts {
			descs[i].Targets = nil
		}
	}
	if err := validateGraph(descs); !errors.Is(err, contractx.ErrDelegationGraph) {
		t.Fatalf("expected ErrDelegationGraph, got %v", err)
	}
}

func TestValidateGraphRequiresRouter(t *testing.T) {
	t.Parallel()

	var descs []Descriptor
	for _, d := range defaultSet(t) {
		if d.Name == contractx.ResponderRouter {
			continue
		}
		d.Targets = nil
		if d.Name != contractx.ResponderEscalation {
			d.Targets = []contractx.ResponderName{contractx.ResponderEscalation}
		}
		descs = append(descs, d)
	}
	if err := validateGraph(descs); !errors.Is(err, contractx.ErrDelegationGraph) {
		t.Fatalf("expected ErrDelegationGraph, got %v", err)
	}
}
