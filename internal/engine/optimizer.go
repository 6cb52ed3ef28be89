// Package engine implements the box-fitting search, box family consolidation,
// pallet fitting and the concurrent batch runner.
package engine

import (
	"go.uber.org/zap"

	"github.com/piwi3910/ProfilePack/internal/metrics"
	"github.com/piwi3910/ProfilePack/internal/model"
)

// Optimizer runs box searches under one set of policy settings.
// It holds no per-run state and is safe for concurrent use.
type Optimizer struct {
	Settings model.Settings
	Logger   *zap.Logger
	Metrics  *metrics.Recorder // nil disables metrics
}

func New(settings model.Settings) *Optimizer {
	return &Optimizer{
		Settings: settings,
		Logger:   zap.NewNop(),
	}
}

// WithLogger returns the optimizer with the given logger attached.
func (o *Optimizer) WithLogger(l *zap.Logger) *Optimizer {
	if l != nil {
		o.Logger = l
	}
	return o
}

// WithMetrics returns the optimizer with the given recorder attached.
func (o *Optimizer) WithMetrics(r *metrics.Recorder) *Optimizer {
	o.Metrics = r
	return o
}

func (o *Optimizer) log() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}
