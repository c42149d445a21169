package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stacksketch/pkg/errors"
	"github.com/matzehuels/stacksketch/pkg/export"
	"github.com/matzehuels/stacksketch/pkg/layout"
)

// buildCommand creates the build command.
func (c *CLI) buildCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "build <scene.toml>",
		Short: "Build the elements of a stack scene",
		Long: `Build runs the recursive subdivision of a stack scene and reports the
element count, build time, cache status and bounds.

Built elements are cached by configuration, so repeated builds of an
unchanged scene are served from the cache (see --no-cache and --redis).`,
		Example: `  stacksketch build examples/scenes/tower.toml
  stacksketch build city.toml -o city-elements.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(cmd.Context(), args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write elements as JSON to `file`")

	return cmd
}

func (c *CLI) runBuild(ctx context.Context, path, output string) error {
	s, err := c.openScene(ctx, path)
	if err != nil {
		return err
	}
	defer s.Close()

	st, ok := s.layout.(*layout.Stack)
	if !ok {
		return errors.New(errors.ErrCodeUnsupported, "build needs a stack scene; %s is a %s scene", path, s.scene.Kind)
	}

	sp := newSpinner(ctx, os.Stderr, "Building "+s.scene.Name+"...")
	sp.Start()
	elems, err := st.Elements(ctx)
	if err != nil {
		sp.StopWithError(errors.UserMessage(err))
		return err
	}
	sp.Stop()

	info := st.LastBuild()
	printSuccess("Built %s", StyleTitle.Render(s.scene.Name))
	printBuildStats(info.Count, info.Duration, info.CacheHit)
	if len(elems) == 0 {
		printWarning("Scene produced no elements; check decimation and root_grid")
	}

	out := export.NewElements(st.Seed(), elems)
	out.Scene = s.scene.Name
	if out.Bounds != nil {
		printKeyValue("bounds min", formatVec(out.Bounds.Min))
		printKeyValue("bounds max", formatVec(out.Bounds.Max))
	}

	if output == "" {
		return nil
	}
	if err := export.ExportElements(output, out); err != nil {
		return err
	}
	printFile(output)
	return nil
}
