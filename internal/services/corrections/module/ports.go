package module

import (
	"context"

	correctionsdom "prosefix/internal/services/corrections/domain"
	correctionssvc "prosefix/internal/services/corrections/service"
)

// Ports exposes the corrections service to other modules
type Ports struct {
	Corrections correctionsdom.ServicePort
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// adaptCorrectionsPort adapts the corrections service to the domain port interface
type adaptCorrectionsPort struct{ svc correctionssvc.Service }

// Correct implements the domain ServicePort interface
func (a adaptCorrectionsPort) Correct(ctx context.Context, in correctionsdom.CorrectInput) (correctionsdom.Run, error) {
	return a.svc.Correct(ctx, in)
}

// GetRun implements the domain ServicePort interface
func (a adaptCorrectionsPort) GetRun(ctx context.Context, id string) (correctionsdom.Run, error) {
	return a.svc.GetRun(ctx, id)
}

// Recent implements the domain ServicePort interface
func (a adaptCorrectionsPort) Recent(ctx context.Context, in correctionsdom.RunsInput) ([]correctionsdom.RunSummary, error) {
	return a.svc.Recent(ctx, in)
}

// StageNames implements the domain ServicePort interface
func (a adaptCorrectionsPort) StageNames() []string { return a.svc.StageNames() }
