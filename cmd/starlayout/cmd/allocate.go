package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-drift/starlayout/cmd/starlayout/internal/config"
	"github.com/go-drift/starlayout/pkg/layout"
	"github.com/go-drift/starlayout/pkg/star"
)

func init() {
	RegisterCommand(&Command{
		Name:  "allocate",
		Short: "Run the star allocator on a list of entries",
		Long: `Distribute a surplus over weighted entries and print each entry's
allocated width.

Entries come from the scenario's "entries" list, or from the command line
as weight:min[:max] triples (a missing max is unbounded).

Flags:
  --surplus N   Surplus to distribute (overrides the scenario's value)

Examples:
  starlayout allocate --surplus 50 1:0:30 1:0:100
  starlayout allocate entries.yaml`,
		Usage: "starlayout allocate [--surplus N] (<scenario.yaml> | weight:min[:max]...)",
		Run:   runAllocate,
	})
}

func runAllocate(args []string) error {
	var (
		surplus    float64
		hasSurplus bool
		specs      []config.EntrySpec
		path       string
	)
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--surplus" || strings.HasPrefix(arg, "--surplus="):
			value, ok := strings.CutPrefix(arg, "--surplus=")
			if !ok {
				if i+1 >= len(args) {
					return fmt.Errorf("--surplus requires a value")
				}
				value = args[i+1]
				i++
			}
			n, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return fmt.Errorf("invalid --surplus value %q: %w", value, err)
			}
			surplus, hasSurplus = n, true
		case strings.Contains(arg, ":"):
			spec, err := parseEntrySpec(arg)
			if err != nil {
				return err
			}
			specs = append(specs, spec)
		default:
			path = arg
		}
	}

	if path != "" {
		s, err := config.Load(path)
		if err != nil {
			return err
		}
		specs = append(s.Entries, specs...)
		if !hasSurplus {
			surplus = s.Surplus
		}
	}
	if len(specs) == 0 {
		return fmt.Errorf("no entries given\n\nUsage: starlayout allocate [--surplus N] weight:min[:max]...")
	}

	entries := make([]*star.Entry, 0, len(specs))
	for i, spec := range specs {
		e, err := spec.Entry()
		if err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		entries = append(entries, e)
	}

	leftover := star.Allocate(surplus, entries)

	fmt.Fprintf(stdout, "%-4s %-7s %-8s %-8s %-10s\n", "#", "weight", "min", "max", "allocated")
	for i, e := range entries {
		fmt.Fprintf(stdout, "%-4d %-7g %-8g %-8s %-10.4g\n",
			i, e.Weight(), e.MinWidth(), formatMax(e.MaxWidth()), e.AllocatedWidth())
	}
	fmt.Fprintf(stdout, "surplus %g, leftover %g\n", surplus, leftover)
	fmt.Fprintf(stdout, "total min %g, total allocated %g\n", star.TotalMinWidth(entries), star.TotalAllocatedWidth(entries))
	return nil
}

func parseEntrySpec(arg string) (config.EntrySpec, error) {
	parts := strings.Split(arg, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return config.EntrySpec{}, fmt.Errorf("invalid entry %q (want weight:min[:max])", arg)
	}
	values := make([]float64, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return config.EntrySpec{}, fmt.Errorf("invalid entry %q: %w", arg, err)
		}
		values[i] = n
	}
	spec := config.EntrySpec{Weight: values[0], Min: values[1]}
	if len(values) == 3 {
		spec.Max = &values[2]
	}
	return spec, nil
}

func formatMax(v float64) string {
	if !layout.IsFinite(v) {
		return "inf"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
