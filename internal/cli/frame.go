package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stacksketch/pkg/errors"
	"github.com/matzehuels/stacksketch/pkg/export"
	"github.com/matzehuels/stacksketch/pkg/renderer"
)

// frameOptions holds the flags of the frame command.
type frameOptions struct {
	time   float32
	frames int
	dt     float32
	output string
}

// SetDefaults fills unset fields.
func (o *frameOptions) SetDefaults() {
	if o.frames <= 0 {
		o.frames = 1
	}
	if o.dt <= 0 {
		o.dt = 1.0 / 30
	}
}

// frameCommand creates the frame command.
func (c *CLI) frameCommand() *cobra.Command {
	var opts frameOptions

	cmd := &cobra.Command{
		Use:   "frame <scene.toml>",
		Short: "Evaluate instance transforms and export them as JSON",
		Long: `Frame drives the scene through one or more renderer updates and writes
each frame's instances (mesh, material, layer and transform) as JSON.

Several frames are written as a stream of JSON documents, one per frame,
starting at --time and advancing by --dt seconds.`,
		Example: `  stacksketch frame examples/scenes/plaza.toml --time 2.5
  stacksketch frame city.toml --frames 90 --dt 0.033 -o city-frames.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.SetDefaults()
			return c.runFrame(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().Float32Var(&opts.time, "time", 0, "time of the first frame in seconds")
	cmd.Flags().IntVar(&opts.frames, "frames", 1, "number of frames")
	cmd.Flags().Float32Var(&opts.dt, "dt", 1.0/30, "seconds between frames")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write frames to `file` instead of stdout")

	return cmd
}

func (c *CLI) runFrame(ctx context.Context, path string, opts frameOptions) error {
	s, err := c.openScene(ctx, path)
	if err != nil {
		return err
	}
	defer s.Close()

	r, err := c.newRenderer(s)
	if err != nil {
		return err
	}
	defer r.Close()

	if opts.output == "" {
		return c.writeFrames(ctx, s, r, os.Stdout, opts)
	}
	f, err := os.Create(opts.output)
	if err != nil {
		return fmt.Errorf("create %s: %w", opts.output, err)
	}
	if err := c.streamFrames(ctx, s, r, f, opts); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	printFile(opts.output)
	return nil
}

// streamFrames writes the frames to w and closes it. A failed close is
// reported unless writing already failed.
func (c *CLI) streamFrames(ctx context.Context, s *session, r *renderer.Renderer[string, string], w io.WriteCloser, opts frameOptions) error {
	err := c.writeFrames(ctx, s, r, w, opts)
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	return err
}

// writeFrames renders opts.frames frames starting at opts.time and writes
// one JSON document per frame.
func (c *CLI) writeFrames(ctx context.Context, s *session, r *renderer.Renderer[string, string], w io.Writer, opts frameOptions) error {
	prog := newProgress(c.Logger)
	for i := 0; i < opts.frames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		out, err := c.renderFrame(ctx, s, r, opts.time+float32(i)*opts.dt)
		if err != nil {
			return err
		}
		if err := export.WriteFrame(w, out); err != nil {
			return err
		}
	}
	prog.done(fmt.Sprintf("Rendered %d frames of %s", opts.frames, s.scene.Name))
	return nil
}

// newRenderer returns a string-keyed renderer for the session's scene.
func (c *CLI) newRenderer(s *session) (*renderer.Renderer[string, string], error) {
	return renderer.New(s.layout, s.scene.Meshes, s.scene.Materials, renderer.Options{
		Layer:  s.scene.Layer,
		Logger: c.Logger,
	})
}

// renderFrame updates r at time t and exports the result. A clamped
// instance count is logged and the clamped frame returned.
func (c *CLI) renderFrame(ctx context.Context, s *session, r *renderer.Renderer[string, string], t float32) (export.Frame, error) {
	f, err := r.Update(ctx, t, s.scene.Parent)
	if err != nil {
		if !errors.Is(err, errors.ErrCodeResourceExhausted) {
			return export.Frame{}, err
		}
		loggerFromContext(ctx).Warn("instance count clamped", "scene", s.scene.Name, "count", f.Count)
	}
	out := export.NewFrame(f, s.layout.Seed(), r.Instances())
	out.Renderer = r.ID
	out.Scene = s.scene.Name
	return out, nil
}
