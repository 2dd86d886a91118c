package ui

import "context"

// quietReporter produces no output.
type quietReporter struct{}

func (quietReporter) Run(ctx context.Context, stop <-chan struct{}) {
	select {
	case <-ctx.Done():
	case <-stop:
	}
}
