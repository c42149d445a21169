package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stacksketch/pkg/errors"
	"github.com/matzehuels/stacksketch/pkg/layout"
	"github.com/matzehuels/stacksketch/pkg/scene"
)

// initCommand creates the init command.
func (c *CLI) initCommand() *cobra.Command {
	var (
		kind  string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init <scene.toml>",
		Short: "Write a scene file with default settings",
		Example: `  stacksketch init tower.toml
  stacksketch init plaza.toml --kind scatter`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(args[0], kind, force)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", layout.KindStack, "layout kind: stack or scatter")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	return cmd
}

func runInit(path, kind string, force bool) error {
	if kind != layout.KindStack && kind != layout.KindScatter {
		return errors.New(errors.ErrCodeInvalidInput, "--kind must be %q or %q (got %q)",
			layout.KindStack, layout.KindScatter, kind)
	}
	if _, err := os.Stat(path); err == nil && !force {
		return errors.New(errors.ErrCodeInvalidInput, "%s already exists (use --force to overwrite)", path)
	}

	s := scene.Default(kind)
	s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	var buf bytes.Buffer
	if err := s.Encode(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	printSuccess("Created %s scene", kind)
	printFile(path)
	next := "stacksketch preview " + path
	if kind == layout.KindStack {
		next = "stacksketch build " + path
	}
	printNextStep("Next", next)
	return nil
}
