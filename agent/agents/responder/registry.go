package responder

import (
	"fmt"

	contractx "github.com/storelane/shopassist/agent/contract"
)

// Registry holds the constructed responder arena. The delegation graph is
// validated once here, so runtime dispatch never has to guard against
// cycles: every chain drains toward the terminal escalation node.
type Registry struct {
	entry      contractx.Responder
	responders map[contractx.ResponderName]contractx.Responder
}

var _ contractx.Registry = (*Registry)(nil)

func NewRegistry(
	routerModel contractx.ChatModel,
	responderModel contractx.ChatModel,
	gateway contractx.LookupGateway,
	descs []Descriptor,
) (*Registry, error) {
	if err := validateGraph(descs); err != nil {
		return nil, err
	}

	responders := make(map[contractx.ResponderName]contractx.Responder, len(descs))
	for _, desc := range descs {
		model := responderModel
		if desc.Name == contractx.ResponderRouter {
			model = routerModel
		}
		impl, err := newResponder(desc, model, gateway)
		if err != nil {
			return nil, err
		}
		responders[desc.Name] = impl
	}

	return &Registry{
		entry:      responders[contractx.ResponderRouter],
		responders: responders,
	}, nil
}

func (r *Registry) Entry() contractx.Responder {
	return r.entry
}

func (r *Registry) Responder(name contractx.ResponderName) (contractx.Responder, bool) {
	resp, ok := r.responders[name]
	return resp, ok
}

func (r *Registry) Size() int {
	return len(r.responders)
}

func validateGraph(descs []Descriptor) error {
	if len(descs) == 0 {
		return fmt.Errorf("%w: no responders configured", contractx.ErrDelegationGraph)
	}

	byName := make(map[contractx.ResponderName]Descriptor, len(descs))
	for _, desc := range descs {
		if desc.Name == "" {
			return fmt.Errorf("%w: responder with empty name", contractx.ErrDelegationGraph)
		}
		if _, dup := byName[desc.Name]; dup {
			return fmt.Errorf("%w: duplicate responder=%s", contractx.ErrDelegationGraph, desc.Name)
		}
		byName[desc.Name] = desc
	}

	if _, ok := byName[contractx.ResponderRouter]; !ok {
		return fmt.Errorf("%w: entry responder=%s is missing", contractx.ErrDelegationGraph, contractx.ResponderRouter)
	}
	escalation, ok := byName[contractx.ResponderEscalation]
	if !ok {
		return fmt.Errorf("%w: terminal responder=%s is missing", contractx.ErrDelegationGraph, contractx.ResponderEscalation)
	}
	if len(escalation.Targets) > 0 {
		return fmt.Errorf("%w: escalation must have no delegation targets", contractx.ErrDelegationGraph)
	}
	if len(escalation.Tools) > 0 {
		return fmt.Errorf("%w: escalation must have no lookup capabilities", contractx.ErrDelegationGraph)
	}

	for _, desc := range descs {
		for _, target := range desc.Targets {
			if target == desc.Name {
				return fmt.Errorf("%w: responder=%s targets itself", contractx.ErrDelegationGraph, desc.Name)
			}
			if _, ok := byName[target]; !ok {
				return fmt.Errorf("%w: responder=%s targets unknown responder=%s", contractx.ErrDelegationGraph, desc.Name, target)
			}
		}
	}

	// Escalation must be reachable from every non-terminal responder so
	// that no chain can wander without a drain.
	for _, desc := range descs {
		if desc.Name == contractx.ResponderEscalation {
			continue
		}
		if !reaches(byName, desc.Name, contractx.ResponderEscalation) {
			return fmt.Errorf("%w: escalation is unreachable from responder=%s", contractx.ErrDelegationGraph, desc.Name)
		}
	}

	return nil
}

func reaches(
	byName map[contractx.ResponderName]Descriptor,
	from contractx.ResponderName,
	to contractx.ResponderName,
) bool {
	seen := map[contractx.ResponderName]bool{from: true}
	queue := []contractx.ResponderName{from}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, target := range byName[current].Targets {
			if target == to {
				return true
			}
			if !seen[target] {
				seen[target] = true
				queue = append(queue, target)
			}
		}
	}
	return false
}
