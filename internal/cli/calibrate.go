package cli

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/femtopgm/pkg/errors"
	"github.com/matzehuels/femtopgm/pkg/warp"
)

var (
	calibCurrentStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	calibDoneStyle    = lipgloss.NewStyle().Foreground(colorGreen)
	calibPendingStyle = lipgloss.NewStyle().Foreground(colorDim)
	calibErrorStyle   = lipgloss.NewStyle().Foreground(colorRed)
)

type calibrateFlags struct {
	size    []float64
	samples int
	margin  float64
	sample  string
	heights []float64
	cache   cacheFlags
}

// calibrateCommand creates the calibrate command.
func (c *CLI) calibrateCommand() *cobra.Command {
	var f calibrateFlags

	cmd := &cobra.Command{
		Use:   "calibrate",
		Short: "Measure focus heights and store a warp compensation surface",
		Long: `Calibrate lists a grid of positions on the sample, asks for the focus
height measured at each one, fits a bicubic surface and stores it in the
surface cache under the sample name. "femtopgm compile --warp" reads it back.

Heights can be given up front with --heights, in grid order (by x, then y).`,
		Example: `  femtopgm calibrate --sample-size 25,25 --sample wafer-12
  femtopgm calibrate --sample-size 25,25 --samples 16 --heights 0.01,0.012,...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCalibrate(cmd.Context(), f)
		},
	}

	cmd.Flags().Float64SliceVar(&f.size, "sample-size", nil, "sample size x,y in mm")
	cmd.Flags().IntVar(&f.samples, "samples", warp.MinSamples, "number of calibration points")
	cmd.Flags().Float64Var(&f.margin, "margin", warp.DefaultMargin, "distance of the grid from the sample edges, mm")
	cmd.Flags().StringVar(&f.sample, "sample", defaultSample, "name to store the surface under")
	cmd.Flags().Float64SliceVar(&f.heights, "heights", nil, "measured heights in grid order, skips the prompt")
	addCacheFlags(cmd, &f.cache)
	_ = cmd.MarkFlagRequired("sample-size")

	return cmd
}

func (c *CLI) runCalibrate(ctx context.Context, f calibrateFlags) error {
	if len(f.size) != 2 {
		return errors.Configuration("--sample-size must be x,y, got %v", f.size)
	}
	grid, err := warp.Grid(f.size[0], f.size[1], f.samples, f.margin)
	if err != nil {
		return err
	}

	samples := grid
	switch {
	case len(f.heights) > 0:
		if len(f.heights) != len(grid) {
			return errors.InvalidArgument("got %d heights for %d grid positions", len(f.heights), len(grid))
		}
		for i := range samples {
			samples[i].Z = f.heights[i]
		}
	default:
		final, err := tea.NewProgram(newCalibrationModel(grid), tea.WithContext(ctx)).Run()
		if err != nil {
			return fmt.Errorf("calibration prompt: %w", err)
		}
		m := final.(calibrationModel)
		if !m.Done() {
			printWarning("Calibration aborted, nothing stored")
			return nil
		}
		samples = m.Samples
	}

	surf, err := warp.Fit(samples)
	if err != nil {
		return err
	}

	store, closeCache, err := f.cache.open(ctx, c.Logger)
	if err != nil {
		return err
	}
	defer closeCache()
	if err := store.Save(ctx, f.sample, f.size[0], f.size[1], surf); err != nil {
		return fmt.Errorf("store surface: %w", err)
	}

	printSuccess("Stored warp surface for sample %s", StyleHighlight.Render(f.sample))
	printKeyValue("Points", strconv.Itoa(len(samples)))
	printKeyValue("Center", fmt.Sprintf("%.4f mm", surf.Eval(f.size[0]/2, f.size[1]/2)))
	printKeyValue("Max resid.", fmt.Sprintf("%.4f mm", maxResidual(surf, samples)))
	return nil
}

func maxResidual(s warp.Surface, samples []warp.Sample) float64 {
	var worst float64
	for _, p := range samples {
		if r := math.Abs(s.Eval(p.X, p.Y) - p.Z); r > worst {
			worst = r
		}
	}
	return worst
}

// =============================================================================
// calibrationModel - Interactive height entry
// =============================================================================

// calibrationModel prompts for one height per grid position.
type calibrationModel struct {
	Samples []warp.Sample
	Cursor  int
	Input   string
	Err     string
	Aborted bool
	Height  int
	Offset  int
}

func newCalibrationModel(grid []warp.Sample) calibrationModel {
	return calibrationModel{
		Samples: append([]warp.Sample(nil), grid...),
		Height:  12,
	}
}

// Done reports whether every height was entered.
func (m calibrationModel) Done() bool {
	return !m.Aborted && m.Cursor >= len(m.Samples)
}

func (m calibrationModel) Init() tea.Cmd {
	return nil
}

func (m calibrationModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.Aborted = true
			return m, tea.Quit
		case "backspace":
			if m.Input != "" {
				m.Input = m.Input[:len(m.Input)-1]
			} else if m.Cursor > 0 {
				m.Cursor--
				m.Input = strconv.FormatFloat(m.Samples[m.Cursor].Z, 'f', -1, 64)
			}
			m.Err = ""
		case "enter":
			z, err := strconv.ParseFloat(strings.TrimSpace(m.Input), 64)
			if err != nil {
				m.Err = fmt.Sprintf("%q is not a height in mm", m.Input)
				return m, nil
			}
			m.Samples[m.Cursor].Z = z
			m.Cursor++
			m.Input = ""
			m.Err = ""
			m.scroll()
			if m.Cursor >= len(m.Samples) {
				return m, tea.Quit
			}
		default:
			if msg.Type == tea.KeyRunes {
				for _, r := range msg.Runes {
					if strings.ContainsRune("0123456789.-+eE", r) {
						m.Input += string(r)
					}
				}
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
		m.scroll()
	}
	return m, nil
}

func (m *calibrationModel) scroll() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m calibrationModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Focus Calibration"))
	b.WriteString("\n")
	b.WriteString(calibPendingStyle.Render("type height in mm  ⏎ next  ⌫ back  esc abort"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Samples))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		s := m.Samples[i]
		z := ""
		switch {
		case i < m.Cursor:
			z = strconv.FormatFloat(s.Z, 'f', -1, 64)
		case i == m.Cursor:
			z = m.Input + "_"
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			strconv.FormatFloat(s.X, 'f', 3, 64),
			strconv.FormatFloat(s.Y, 'f', 3, 64),
			z,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "X [mm]", "Y [mm]", "Z [mm]").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			switch idx := m.Offset + row; {
			case idx == m.Cursor:
				return calibCurrentStyle
			case idx < m.Cursor:
				return calibDoneStyle
			}
			return calibPendingStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	if m.Err != "" {
		b.WriteString(calibErrorStyle.Render(m.Err))
		b.WriteString("\n")
	}
	b.WriteString(calibPendingStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, len(m.Samples)), len(m.Samples))))
	return b.String()
}
