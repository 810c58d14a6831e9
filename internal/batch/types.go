package batch

import (
	"context"
	"errors"

	"github.com/reportdash/realtime/internal/model"
)

// Errors
var (
	ErrUnknownBatch = errors.New("unknown batch id")
	ErrEmptyBatch   = errors.New("batch has no report ids")
	ErrAlreadyRun   = errors.New("batch already run")
)

// Renderer produces the output artifact for one report item. Any returned
// error is a per-item failure; it is recorded and never aborts the batch.
type Renderer interface {
	RenderReport(ctx context.Context, reportID string) (outputPath string, err error)
}

// RendererFunc is a function adapter for Renderer.
type RendererFunc func(ctx context.Context, reportID string) (string, error)

func (f RendererFunc) RenderReport(ctx context.Context, reportID string) (string, error) {
	return f(ctx, reportID)
}

// Notifier is the progress push surface the supervisor needs. Delivery is
// best effort: a false return means the owner is offline and polling via
// GetStatus remains authoritative.
type Notifier interface {
	SendTo(clientID string, e model.Event) bool
}

// Config holds supervisor configuration.
type Config struct {
	ItemConcurrency int // Max in-flight items per job (default: 4)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ItemConcurrency: 4,
	}
}
