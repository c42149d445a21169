package layout

import (
	"context"
	"sync"

	"github.com/matzehuels/stacksketch/pkg/jobs"
	"github.com/matzehuels/stacksketch/pkg/scatter"
	"github.com/matzehuels/stacksketch/pkg/xform"
)

// Scatter is the layouter for randomly scattered, fading instances.
type Scatter struct {
	opts Options

	mu  sync.RWMutex
	cfg scatter.Config
}

var _ Layouter = (*Scatter)(nil)

// NewScatter validates cfg and returns a scatter layouter.
func NewScatter(cfg scatter.Config, opts Options) (*Scatter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts.SetDefaults()
	return &Scatter{opts: opts, cfg: cfg}, nil
}

// Kind implements Layouter.
func (s *Scatter) Kind() string { return KindScatter }

// Config returns the current configuration.
func (s *Scatter) Config() scatter.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// SetConfig replaces the configuration. It takes effect on the next Schedule.
func (s *Scatter) SetConfig(cfg scatter.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	return nil
}

// Prepare implements Layouter. Scatter has no derived state.
func (s *Scatter) Prepare(ctx context.Context) error {
	return ctx.Err()
}

// InstanceCount implements Layouter.
func (s *Scatter) InstanceCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.InstanceCount
}

// Seed implements Layouter.
func (s *Scatter) Seed() uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Seed
}

// Schedule implements Layouter.
func (s *Scatter) Schedule(parent xform.Affine, time float32, target []xform.Local) *jobs.Handle {
	job := scatter.Job{Config: s.Config(), Parent: parent, Time: time}
	return job.Run(s.opts.Scheduler, target)
}
