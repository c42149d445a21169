package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stacksketch/pkg/errors"
	"github.com/matzehuels/stacksketch/pkg/pool"
	"github.com/matzehuels/stacksketch/pkg/renderer"
)

const (
	previewInterval = 33 * time.Millisecond
	previewMinSpeed = 1.0 / 16
	previewMaxSpeed = 16

	// shades maps normalized instance height to a character, low to high.
	shades = " .:-=+*#%@"
)

var previewFrameStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorDim)

// previewCommand creates the preview command.
func (c *CLI) previewCommand() *cobra.Command {
	var speed float32

	cmd := &cobra.Command{
		Use:   "preview <scene.toml>",
		Short: "Play a scene as a live top-down view in the terminal",
		Long: `Preview animates a scene in the terminal. Each instance is projected onto
the ground plane and drawn with a character that gets denser with height.

Keys: space pause, +/- speed, → step while paused, r restart, q quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.openScene(ctx, args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			r, err := c.newRenderer(s)
			if err != nil {
				return err
			}
			defer r.Close()

			m := newPreviewModel(ctx, s, r)
			m.speed = max(min(speed, previewMaxSpeed), previewMinSpeed)
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			return err
		},
	}

	cmd.Flags().Float32Var(&speed, "speed", 1, "playback speed multiplier")

	return cmd
}

// =============================================================================
// previewModel - Live top-down animation
// =============================================================================

type previewTickMsg time.Time

type previewModel struct {
	ctx      context.Context
	session  *session
	renderer *renderer.Renderer[string, string]

	t      float32
	speed  float32
	paused bool

	width  int
	height int

	bounds viewBounds
	frame  renderer.Frame
	grid   []string
	err    error
}

func newPreviewModel(ctx context.Context, s *session, r *renderer.Renderer[string, string]) previewModel {
	return previewModel{
		ctx:      ctx,
		session:  s,
		renderer: r,
		speed:    1,
		width:    60,
		height:   20,
	}
}

func previewTick() tea.Cmd {
	return tea.Tick(previewInterval, func(t time.Time) tea.Msg { return previewTickMsg(t) })
}

func (m previewModel) Init() tea.Cmd {
	return previewTick()
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
		case "+", "=":
			m.speed = min(m.speed*2, previewMaxSpeed)
		case "-":
			m.speed = max(m.speed/2, previewMinSpeed)
		case "r":
			m.t = 0
			m.bounds = viewBounds{}
			m = m.step()
		case "right", "l":
			if m.paused {
				m.t += float32(previewInterval.Seconds())
				m = m.step()
			}
		}
	case tea.WindowSizeMsg:
		m.width = max(msg.Width-2, 10)
		m.height = max(msg.Height-6, 5)
		m = m.step()
	case previewTickMsg:
		if !m.paused {
			m.t += m.speed * float32(previewInterval.Seconds())
			m = m.step()
		}
		return m, previewTick()
	}
	return m, nil
}

// step renders the frame at m.t and reprojects it.
func (m previewModel) step() previewModel {
	f, err := m.renderer.Update(m.ctx, m.t, m.session.scene.Parent)
	if err != nil && !errors.Is(err, errors.ErrCodeResourceExhausted) {
		m.err = err
		return m
	}
	m.err = nil
	m.frame = f
	inst := m.renderer.Instances()
	m.bounds = m.bounds.grow(inst)
	m.grid = project(inst, m.bounds, m.width, m.height)
	return m
}

func (m previewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.session.scene.Name))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %s · %d instances", m.session.scene.Kind, m.frame.Count)))
	b.WriteString("\n")

	grid := strings.Join(m.grid, "\n")
	if grid == "" {
		grid = strings.Repeat(" ", m.width)
	}
	b.WriteString(previewFrameStyle.Render(grid))
	b.WriteString("\n")

	state := "playing"
	if m.paused {
		state = "paused"
	}
	b.WriteString(StyleNumber.Render(fmt.Sprintf("t=%.2fs", m.t)))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  ×%g  %s  frame %d (%s)",
		m.speed, state, m.frame.Number, m.frame.Duration.Round(time.Microsecond))))
	if m.err != nil {
		b.WriteString("  " + StyleWarning.Render(errors.UserMessage(m.err)))
	}
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("space pause  +/- speed  → step  r restart  q quit"))

	return b.String()
}

// =============================================================================
// Projection
// =============================================================================

// viewBounds is the ground-plane (x, z) rectangle and height range seen so
// far. It only grows, so the view does not jump as instances fade.
type viewBounds struct {
	minX, minZ, maxX, maxZ float32
	maxY                   float32
	ok                     bool
}

func (b viewBounds) grow(instances []pool.Instance[string, string]) viewBounds {
	for _, in := range instances {
		tr := in.Transform
		if !(tr.Scale.X > 0 && tr.Scale.Y > 0 && tr.Scale.Z > 0) {
			continue
		}
		x0, x1 := tr.Position.X-tr.Scale.X*0.5, tr.Position.X+tr.Scale.X*0.5
		z0, z1 := tr.Position.Z-tr.Scale.Z*0.5, tr.Position.Z+tr.Scale.Z*0.5
		top := tr.Position.Y + tr.Scale.Y*0.5
		if !b.ok {
			b = viewBounds{minX: x0, minZ: z0, maxX: x1, maxZ: z1, maxY: top, ok: true}
			continue
		}
		b.minX, b.maxX = min(b.minX, x0), max(b.maxX, x1)
		b.minZ, b.maxZ = min(b.minZ, z0), max(b.maxZ, z1)
		b.maxY = max(b.maxY, top)
	}
	return b
}

// project draws visible instances into a w×h character grid. Each cell
// shows the tallest instance top covering it; instances with a non-positive
// scale are skipped.
func project(instances []pool.Instance[string, string], b viewBounds, w, h int) []string {
	if w <= 0 || h <= 0 {
		return nil
	}
	heights := make([]float32, w*h)
	covered := make([]bool, w*h)

	sx := float32(w) / max(b.maxX-b.minX, 1e-6)
	sz := float32(h) / max(b.maxZ-b.minZ, 1e-6)
	col := func(x float32) int { return min(max(int((x-b.minX)*sx), 0), w-1) }
	row := func(z float32) int { return min(max(int((z-b.minZ)*sz), 0), h-1) }

	if b.ok {
		for _, in := range instances {
			tr := in.Transform
			if !(tr.Scale.X > 0 && tr.Scale.Y > 0 && tr.Scale.Z > 0) {
				continue
			}
			top := tr.Position.Y + tr.Scale.Y*0.5
			c0, c1 := col(tr.Position.X-tr.Scale.X*0.5), col(tr.Position.X+tr.Scale.X*0.5)
			r0, r1 := row(tr.Position.Z-tr.Scale.Z*0.5), row(tr.Position.Z+tr.Scale.Z*0.5)
			for r := r0; r <= r1; r++ {
				for c := c0; c <= c1; c++ {
					i := r*w + c
					if !covered[i] || top > heights[i] {
						heights[i] = top
						covered[i] = true
					}
				}
			}
		}
	}

	lines := make([]string, h)
	buf := make([]byte, w)
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			i := r*w + c
			buf[c] = shade(heights[i], b.maxY, covered[i])
		}
		lines[r] = string(buf)
	}
	return lines
}

func shade(height, maxY float32, covered bool) byte {
	if !covered {
		return shades[0]
	}
	levels := len(shades) - 1
	k := 1
	if maxY > 0 {
		k = 1 + int(height/maxY*float32(levels-1)+0.5)
	}
	return shades[min(max(k, 1), levels)]
}
