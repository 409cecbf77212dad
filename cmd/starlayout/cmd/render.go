package cmd

import (
	"fmt"

	"github.com/go-drift/starlayout/cmd/starlayout/internal/render"
)

func init() {
	RegisterCommand(&Command{
		Name:  "render",
		Short: "Draw the arranged layout in the terminal",
		Long: `Measure and arrange a scenario, then draw it with one terminal cell per
--cell pixels. Labels show their text, star children are drawn as '*' and
fixed children as '#'.

Flags:
  --width N   Width to lay out at, repeatable (default: the scenario's widths)
  --cell N    Pixels per terminal cell (default: 7)`,
		Usage: "starlayout render [--width N] [--cell N] <scenario.yaml>",
		Run:   runRender,
	})
}

func runRender(args []string) error {
	opts, err := parseScenarioArgs(args, "--width", "--cell")
	if err != nil {
		return err
	}
	s, tree, err := loadTree(opts)
	if err != nil {
		return err
	}

	r := render.New(opts.cellWidth)
	for _, w := range s.Widths {
		size := tree.Layout(w, s.Height)
		fmt.Fprintln(stdout, r.Ruler(w))
		fmt.Fprintln(stdout, r.Box(tree.Host))
		if stats := tree.Host.Stats(); stats.Remaining < 0 {
			fmt.Fprintln(stdout, r.Overflow(-stats.Remaining))
		}
		logger.V(1).Info("rendered", "width", w, "desired", size.Width)
	}
	return nil
}
