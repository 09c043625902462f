package service

import (
	"context"
	"fmt"

	"github.com/ludo-technologies/sqgate/domain"
)

// QualityGateStatus fetches the project's live status and explains every failing condition.
// Metric metadata is fetched only for failing conditions.
func (s *QualityGateServiceImpl) QualityGateStatus(ctx context.Context) (*domain.QualityGateStatus, error) {
	raw, err := s.fetcher.FetchQualityGateStatus(ctx)
	if err != nil {
		return nil, err
	}

	var payload projectStatusPayload
	if err := decodePayload(raw, &payload, "quality gate status"); err != nil {
		return nil, err
	}

	conditions := payload.ProjectStatus.Conditions
	failing := 0
	for _, c := range conditions {
		if c.Status == domain.StatusError {
			failing++
		}
	}

	var task domain.TaskProgress = &NoOpTaskProgress{}
	if s.progress != nil && failing > 0 {
		task = s.progress.StartTask("Resolving failing metrics", failing)
	}
	defer task.Complete()

	status := &domain.QualityGateStatus{
		Status:     payload.ProjectStatus.Status,
		Conditions: make([]domain.ConditionStatus, 0, len(conditions)),
	}
	for _, c := range conditions {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("quality gate status cancelled: %w", ctx.Err())
		default:
		}

		result := domain.ConditionStatus{
			MetricKey:   c.MetricKey,
			Status:      c.Status,
			ActualValue: string(c.ActualValue),
			Passed:      c.Status != domain.StatusError,
			Condition: domain.Condition{
				Metric:         c.MetricKey,
				Comparator:     domain.Comparator(c.Comparator),
				ErrorThreshold: string(c.ErrorThreshold),
			},
		}

		if !result.Passed {
			if err := s.explainFailure(ctx, &result); err != nil {
				return nil, err
			}
			task.Increment(1)
		}
		status.Conditions = append(status.Conditions, result)
	}

	s.logger.Debugw("Quality gate status evaluated",
		"status", status.Status, "conditions", len(status.Conditions), "failing", failing)
	return status, nil
}

// explainFailure resolves the metric's display type and name and attaches the explanation
func (s *QualityGateServiceImpl) explainFailure(ctx context.Context, result *domain.ConditionStatus) error {
	raw, err := s.fetcher.FetchMetric(ctx, result.MetricKey)
	if err != nil {
		return err
	}

	var payload metricPayload
	if err := decodePayload(raw, &payload, "metric"); err != nil {
		return err
	}

	if info, ok := payload.find(result.MetricKey); ok {
		result.MetricName = info.Name
		result.Condition.Type = domain.ParseMetricType(info.Type)
	} else {
		s.logger.Warnw("No metadata for metric, rendering raw values", "metric", result.MetricKey)
	}

	result.Explanation = ExplainCondition(
		result.ActualValue,
		result.Condition.ErrorThreshold,
		result.Condition.Comparator,
		result.Condition.Type,
	)
	return nil
}
