package domain

import "context"

// ServicePort defines the service contract for corrections
type ServicePort interface {
	Correct(ctx context.Context, in CorrectInput) (Run, error)
	GetRun(ctx context.Context, id string) (Run, error)
	Recent(ctx context.Context, in RunsInput) ([]RunSummary, error)

	// StageNames lists the pipeline stages in execution order
	StageNames() []string
}
