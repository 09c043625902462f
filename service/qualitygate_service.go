package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ludo-technologies/sqgate/domain"
	"go.uber.org/zap"
)

// QualityGateServiceImpl implements the QualityGateService interface.
// It holds no state between calls: every call fetches fresh documents.
type QualityGateServiceImpl struct {
	fetcher  domain.QualityGateFetcher
	logger   *zap.SugaredLogger
	progress domain.ProgressManager
}

// NewQualityGateService creates a new quality gate service
func NewQualityGateService(fetcher domain.QualityGateFetcher, logger *zap.SugaredLogger) *QualityGateServiceImpl {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &QualityGateServiceImpl{
		fetcher: fetcher,
		logger:  logger,
	}
}

// NewQualityGateServiceWithProgress creates a new quality gate service with progress reporting
func NewQualityGateServiceWithProgress(fetcher domain.QualityGateFetcher, logger *zap.SugaredLogger, pm domain.ProgressManager) *QualityGateServiceImpl {
	s := NewQualityGateService(fetcher, logger)
	s.progress = pm
	return s
}

// QualityGates returns the server's quality gates with their conditions attached
func (s *QualityGateServiceImpl) QualityGates(ctx context.Context) ([]domain.QualityGate, error) {
	raw, err := s.fetcher.FetchQualityGates(ctx)
	if err != nil {
		return nil, err
	}

	gates, err := parseQualityGateCatalog(raw)
	if err != nil {
		return nil, err
	}
	s.logger.Debugw("Quality gate catalog resolved", "gates", len(gates))

	return s.expandQualityGates(ctx, gates)
}

// parseQualityGateCatalog builds gate skeletons from the catalog document.
// The gate whose id equals the top-level "default" is flagged as default; servers that
// omit "default" flag it per gate instead.
func parseQualityGateCatalog(raw json.RawMessage) ([]domain.QualityGate, error) {
	var payload qualityGatesPayload
	if err := decodePayload(raw, &payload, "quality gates"); err != nil {
		return nil, err
	}

	gates := make([]domain.QualityGate, 0, len(payload.QualityGates))
	hasDefault := false
	for _, g := range payload.QualityGates {
		id := string(g.ID)
		if id == "" {
			id = g.Name
		}

		isDefault := g.IsDefault
		if payload.Default != nil {
			isDefault = id == string(*payload.Default)
		}
		// at most one default gate
		if isDefault && hasDefault {
			isDefault = false
		}
		hasDefault = hasDefault || isDefault

		gates = append(gates, domain.QualityGate{
			ID:         id,
			Name:       g.Name,
			Conditions: []domain.Condition{},
			IsDefault:  isDefault,
		})
	}
	return gates, nil
}

// expandQualityGates fetches the conditions of every gate, one gate at a time
func (s *QualityGateServiceImpl) expandQualityGates(ctx context.Context, gates []domain.QualityGate) ([]domain.QualityGate, error) {
	var task domain.TaskProgress = &NoOpTaskProgress{}
	if s.progress != nil {
		task = s.progress.StartTask("Fetching quality gates", len(gates))
	}
	defer task.Complete()

	for i := range gates {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("quality gate expansion cancelled: %w", ctx.Err())
		default:
		}

		raw, err := s.fetcher.FetchQualityGateDetails(ctx, gates[i])
		if err != nil {
			return nil, err
		}
		conditions, err := parseQualityGateConditions(raw)
		if err != nil {
			return nil, err
		}
		gates[i].Conditions = conditions

		s.logger.Debugw("Quality gate expanded", "gate", gates[i].Name, "conditions", len(conditions))
		task.Increment(1)
	}

	return gates, nil
}

// parseQualityGateConditions parses a gate detail document, preserving condition order
func parseQualityGateConditions(raw json.RawMessage) ([]domain.Condition, error) {
	var payload qualityGateDetailsPayload
	if err := decodePayload(raw, &payload, "quality gate details"); err != nil {
		return nil, err
	}

	conditions := make([]domain.Condition, 0, len(payload.Conditions))
	for _, c := range payload.Conditions {
		conditions = append(conditions, domain.Condition{
			Metric:         c.Metric,
			Comparator:     domain.Comparator(c.Op),
			ErrorThreshold: string(c.Error),
		})
	}
	return conditions, nil
}
