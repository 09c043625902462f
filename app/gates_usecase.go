package app

import (
	"context"
	"fmt"
	"io"

	"github.com/ludo-technologies/sqgate/domain"
)

// GatesFormatter writes a quality gate catalog
type GatesFormatter interface {
	WriteGates(gates []domain.QualityGate, format domain.OutputFormat, writer io.Writer) error
}

// GatesUseCase lists the quality gates known to the server
type GatesUseCase struct {
	service   domain.QualityGateService
	formatter GatesFormatter
}

// NewGatesUseCase creates a new gates use case
func NewGatesUseCase(service domain.QualityGateService, formatter GatesFormatter) (*GatesUseCase, error) {
	if service == nil {
		return nil, fmt.Errorf("quality gate service is required")
	}
	if formatter == nil {
		return nil, fmt.Errorf("gates formatter is required")
	}
	return &GatesUseCase{service: service, formatter: formatter}, nil
}

// Execute fetches the catalog and writes it in the given format
func (uc *GatesUseCase) Execute(ctx context.Context, format domain.OutputFormat, writer io.Writer) ([]domain.QualityGate, error) {
	gates, err := uc.service.QualityGates(ctx)
	if err != nil {
		return nil, err
	}
	if err := uc.formatter.WriteGates(gates, format, writer); err != nil {
		return gates, err
	}
	return gates, nil
}
