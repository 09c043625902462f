package service

import (
	"context"

	"github.com/ludo-technologies/sqgate/domain"
)

// ProjectQualityGate returns the gate bound to the project among gates.
// A project without a binding gets the default gate. A binding that matches no
// gate is an error rather than a fallback to the default.
func (s *QualityGateServiceImpl) ProjectQualityGate(ctx context.Context, gates []domain.QualityGate) (*domain.QualityGate, error) {
	raw, err := s.fetcher.FetchProject(ctx)
	if err != nil {
		return nil, err
	}

	var payload projectPayload
	if err := decodePayload(raw, &payload, "project"); err != nil {
		return nil, err
	}

	binding := payload.QualityGate
	if binding == nil || (binding.identifier() == "" && binding.Name == "") {
		gate := defaultQualityGate(gates)
		if gate == nil {
			return nil, domain.NewUnknownQualityGateError("")
		}
		s.logger.Infow("Project has no quality gate binding, using default", "gate", gate.Name)
		return gate, nil
	}

	gate := findQualityGate(gates, binding.identifier(), binding.Name)
	if gate == nil {
		name := binding.Name
		if name == "" {
			name = binding.identifier()
		}
		return nil, domain.NewUnknownQualityGateError(name)
	}
	s.logger.Debugw("Project quality gate resolved", "gate", gate.Name, "id", gate.ID)
	return gate, nil
}

// defaultQualityGate returns a copy of the default gate, or nil
func defaultQualityGate(gates []domain.QualityGate) *domain.QualityGate {
	for i := range gates {
		if gates[i].IsDefault {
			gate := gates[i]
			return &gate
		}
	}
	return nil
}

// findQualityGate matches by id first, then by name
func findQualityGate(gates []domain.QualityGate, id, name string) *domain.QualityGate {
	if id != "" {
		for i := range gates {
			if gates[i].ID == id {
				gate := gates[i]
				return &gate
			}
		}
	}
	if name != "" {
		for i := range gates {
			if gates[i].Name == name {
				gate := gates[i]
				return &gate
			}
		}
	}
	return nil
}
