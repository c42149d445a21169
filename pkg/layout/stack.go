package layout

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sync"
	"time"

	"github.com/matzehuels/stacksketch/pkg/cache"
	"github.com/matzehuels/stacksketch/pkg/errors"
	"github.com/matzehuels/stacksketch/pkg/jobs"
	"github.com/matzehuels/stacksketch/pkg/observability"
	"github.com/matzehuels/stacksketch/pkg/stack"
	"github.com/matzehuels/stacksketch/pkg/xform"
)

// BuildInfo describes the most recent element build of a Stack.
type BuildInfo struct {
	Count    int
	Duration time.Duration
	CacheHit bool
}

// Stack is the layouter for recursive subdivision towers.
//
// Elements are built lazily: on the first Prepare, InstanceCount or Schedule
// after construction, SetConfig or Release. A configuration that cannot
// build (INVALID_CONFIG or RESOURCE_EXHAUSTED) is dropped and the previous
// configuration and elements stay live. Any other failure, such as a
// cancelled context, leaves the configuration pending for the next access.
type Stack struct {
	opts  Options
	build func(stack.Config) ([]stack.Element, error)

	mu       sync.Mutex
	cfg      stack.Config
	pending  *stack.Config
	elements []stack.Element
	built    bool
	last     BuildInfo
}

var _ Layouter = (*Stack)(nil)

// NewStack validates cfg and returns an unbuilt stack layouter.
func NewStack(cfg stack.Config, opts Options) (*Stack, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts.SetDefaults()
	return &Stack{opts: opts, build: stack.Build, cfg: cfg}, nil
}

// Kind implements Layouter.
func (s *Stack) Kind() string { return KindStack }

// Config returns the live configuration. A pending configuration becomes
// live only after it builds successfully.
func (s *Stack) Config() stack.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// SetConfig queues cfg for the next build. Invalid configurations are
// rejected immediately with INVALID_CONFIG and change nothing.
func (s *Stack) SetConfig(cfg stack.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.built && s.pending == nil && cfg == s.cfg {
		return nil
	}
	s.pending = &cfg
	return nil
}

// Release drops the built elements. They are rebuilt on next access.
func (s *Stack) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elements = nil
	s.built = false
}

// Prepare implements Layouter.
func (s *Stack) Prepare(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureLocked(ctx)
}

// Elements returns the built elements, building them if needed. The slice
// is shared and must not be modified.
func (s *Stack) Elements(ctx context.Context) ([]stack.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.ensureLocked(ctx)
	return s.elements, err
}

// LastBuild reports the most recent successful build.
func (s *Stack) LastBuild() BuildInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// InstanceCount implements Layouter.
func (s *Stack) InstanceCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureQuiet()
	return len(s.elements)
}

// Seed implements Layouter.
func (s *Stack) Seed() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Seed
}

// Schedule implements Layouter.
func (s *Stack) Schedule(parent xform.Affine, time float32, target []xform.Local) *jobs.Handle {
	s.mu.Lock()
	s.ensureQuiet()
	job := stack.Job{
		Config:   s.cfg,
		Elements: s.elements,
		Parent:   parent,
		Time:     time,
	}
	s.mu.Unlock()

	return job.Run(s.opts.Scheduler, target)
}

// ensureQuiet builds on paths without an error channel. Failures are logged
// and the previous elements stay in use.
func (s *Stack) ensureQuiet() {
	if err := s.ensureLocked(context.Background()); err != nil {
		s.opts.Logger.Warn("stack build failed, keeping previous elements", "err", err)
	}
}

func (s *Stack) ensureLocked(ctx context.Context) error {
	if s.built && s.pending == nil {
		return nil
	}

	cfg := s.cfg
	if s.pending != nil {
		cfg = *s.pending
	}

	elems, info, err := s.load(ctx, cfg)
	if err != nil {
		if s.pending != nil && permanent(err) {
			s.opts.Logger.Warn("dropping configuration that cannot build", "seed", cfg.Seed, "err", err)
			s.pending = nil
		}
		return err
	}

	s.cfg = cfg
	s.pending = nil
	s.elements = elems
	s.built = true
	s.last = info
	return nil
}

// permanent reports whether retrying the same configuration fails again.
func permanent(err error) bool {
	return errors.Is(err, errors.ErrCodeInvalidConfig) || errors.Is(err, errors.ErrCodeResourceExhausted)
}

// load returns the elements for cfg from the cache, or builds and caches
// them. Cache failures are logged and never fail the load.
func (s *Stack) load(ctx context.Context, cfg stack.Config) ([]stack.Element, BuildInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, BuildInfo{}, err
	}
	logger := s.opts.Logger
	key := s.opts.Keyer.ElementsKey(cache.ElementsKeyOpts{
		Version: stack.AlgorithmVersion,
		Config:  cfg,
	})

	start := time.Now()
	data, hit, err := s.opts.Cache.Get(ctx, key)
	switch {
	case stderrors.Is(err, cache.ErrCorrupt):
		logger.Warn("discarding corrupt cached elements", "err", err)
	case err != nil:
		logger.Warn("element cache unavailable", "err", err)
	case hit:
		var elems []stack.Element
		if err := json.Unmarshal(data, &elems); err != nil {
			logger.Warn("discarding undecodable cached elements", "err", err)
			_ = s.opts.Cache.Delete(ctx, key)
			break
		}
		observability.Cache().OnCacheHit(ctx, "elements")
		info := BuildInfo{Count: len(elems), Duration: time.Since(start), CacheHit: true}
		logger.Debug("loaded cached elements", "count", info.Count, "duration", info.Duration)
		return elems, info, nil
	}
	observability.Cache().OnCacheMiss(ctx, "elements")

	observability.Build().OnBuildStart(ctx, KindStack, cfg.Seed)
	elems, err := s.build(cfg)
	info := BuildInfo{Count: len(elems), Duration: time.Since(start)}
	observability.Build().OnBuildComplete(ctx, KindStack, info.Count, info.Duration, err)
	if err != nil {
		return nil, BuildInfo{}, err
	}
	logger.Info("built elements", "count", info.Count, "seed", cfg.Seed, "duration", info.Duration)

	if data, err := json.Marshal(elems); err == nil {
		if err := s.opts.Cache.Set(ctx, key, data, cache.TTLElements); err != nil {
			logger.Warn("element cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "elements", len(data))
		}
	}
	return elems, info, nil
}
