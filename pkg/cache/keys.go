package cache

// Keyer generates cache keys.
type Keyer interface {
	// ElementsKey returns the key for a built element sequence.
	ElementsKey(opts ElementsKeyOpts) string
}

// ElementsKeyOpts identifies one element build.
type ElementsKeyOpts struct {
	// Version is the builder's algorithm version. Bumping it orphans every
	// entry written by older builds.
	Version int

	// Config is the full builder configuration.
	Config any
}

// DefaultKeyer hashes key options with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ElementsKey implements Keyer.
func (DefaultKeyer) ElementsKey(opts ElementsKeyOpts) string {
	return hashKey("elements", opts.Version, opts.Config)
}

var _ Keyer = DefaultKeyer{}
