package cmd

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/go-drift/starlayout/cmd/starlayout/internal/config"
	"github.com/go-drift/starlayout/pkg/starsizing"
)

func init() {
	RegisterCommand(&Command{
		Name:  "run",
		Short: "Measure a scenario at each of its widths",
		Long: `Build the layout described by a scenario file and measure it at every
width it lists, in order. Caches carry over from one width to the next, as
they would while a window is resized.

For each width the command prints the desired width and the remaining
space after group growth. It also prints the grow and shrink steps taken,
the grow steps still left, and the active variant of every group.

Flags:
  --width N    Measure at N instead of the scenario's widths (repeatable)`,
		Usage: "starlayout run [--width N]... <scenario.yaml>",
		Run:   runRun,
	})
}

type scenarioOptions struct {
	path      string
	widths    []float64
	cellWidth float64
}

// parseScenarioArgs extracts the scenario path and those of the shared
// flags (--width, --cell) that the command accepts.
func parseScenarioArgs(args []string, accepted ...string) (scenarioOptions, error) {
	var opts scenarioOptions
	for i := 0; i < len(args); i++ {
		arg := args[i]
		name, value, hasValue := strings.Cut(arg, "=")
		if strings.HasPrefix(name, "--") && !slices.Contains(accepted, name) {
			return opts, fmt.Errorf("unknown flag %s", arg)
		}
		switch name {
		case "--width", "--cell":
			if !hasValue {
				if i+1 >= len(args) {
					return opts, fmt.Errorf("%s requires a value", name)
				}
				value = args[i+1]
				i++
			}
			n, err := strconv.ParseFloat(value, 64)
			if err != nil || n < 0 {
				return opts, fmt.Errorf("invalid %s value %q", name, value)
			}
			if name == "--width" {
				opts.widths = append(opts.widths, n)
			} else {
				opts.cellWidth = n
			}
		default:
			if opts.path != "" {
				return opts, fmt.Errorf("only one scenario file may be given")
			}
			opts.path = arg
		}
	}
	if opts.path == "" {
		return opts, fmt.Errorf("scenario file is required")
	}
	return opts, nil
}

// loadTree loads the scenario and builds its tree with the CLI logger.
func loadTree(opts scenarioOptions) (*config.Scenario, *config.Tree, error) {
	s, err := config.Load(opts.path)
	if err != nil {
		return nil, nil, err
	}
	if len(opts.widths) > 0 {
		s.Widths = opts.widths
	}
	tree, err := s.Build(starsizing.WithLogger(logger.WithValues("scenario", opts.path)))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build %s: %w", opts.path, err)
	}
	return s, tree, nil
}

func runRun(args []string) error {
	opts, err := parseScenarioArgs(args, "--width")
	if err != nil {
		return err
	}
	s, tree, err := loadTree(opts)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "%-8s %-8s %-10s %-5s %-6s %-5s %-26s %s\n",
		"width", "desired", "remaining", "grow", "shrink", "left", "phases", "groups")
	for _, w := range s.Widths {
		size := tree.Layout(w, s.Height)
		stats := tree.Host.Stats()
		fmt.Fprintf(stdout, "%-8g %-8g %-10g %-5d %-6d %-5d %-26s %s\n",
			w, size.Width, stats.Remaining, stats.GrowSteps, stats.ShrinkSteps, tree.Ladder.Steps(),
			phaseList(stats), groupSummary(tree))
	}
	return nil
}

// phaseList collapses repeated phases, so "basic grow grow star" prints as
// "basic grow*2 star".
func phaseList(stats starsizing.Stats) string {
	var parts []string
	for i := 0; i < len(stats.Phases); {
		j := i
		for j < len(stats.Phases) && stats.Phases[j] == stats.Phases[i] {
			j++
		}
		if n := j - i; n > 1 {
			parts = append(parts, fmt.Sprintf("%s*%d", stats.Phases[i], n))
		} else {
			parts = append(parts, stats.Phases[i].String())
		}
		i = j
	}
	return strings.Join(parts, " ")
}

func groupSummary(tree *config.Tree) string {
	if len(tree.Groups) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(tree.Groups))
	for _, g := range tree.Groups {
		parts = append(parts, fmt.Sprintf("%s=%d/%d", g.Name, g.SizeIndex()+1, g.SizeCount()))
	}
	return strings.Join(parts, " ")
}
