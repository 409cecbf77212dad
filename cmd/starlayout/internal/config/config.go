// Package config loads star layout scenarios from YAML and builds the
// layout trees they describe.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	layouterrors "github.com/go-drift/starlayout/pkg/errors"
	"github.com/go-drift/starlayout/pkg/layout"
	"github.com/go-drift/starlayout/pkg/star"
)

// SchemaVersion is the scenario schema this build understands.
const SchemaVersion = "v1"

var (
	// ErrUnsupportedVersion is reported for scenarios written for another
	// major schema version.
	ErrUnsupportedVersion = errors.New("unsupported scenario version")
	// ErrInvalidNode is reported for tree nodes that set zero or several kinds.
	ErrInvalidNode = errors.New("node must set exactly one of label, fixed, star, panel, group")
)

// Scenario is a layout tree plus the widths to measure it at.
type Scenario struct {
	Version string `yaml:"version"`
	// Width and Height are the space offered to the root coordinator.
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	// Widths, when set, lists widths to measure in sequence instead of Width.
	Widths []float64 `yaml:"widths,omitempty"`
	// MaxAdjustSteps overrides the coordinator's grow/shrink step cap.
	MaxAdjustSteps int `yaml:"maxAdjustSteps,omitempty"`
	// Children are the root coordinator's children, left to right.
	Children []Node `yaml:"children"`
	// Reduce names groups in the order they are shrunk once the grow
	// history is exhausted.
	Reduce []string `yaml:"reduce,omitempty"`

	// Surplus and Entries feed the allocate command directly.
	Surplus float64     `yaml:"surplus,omitempty"`
	Entries []EntrySpec `yaml:"entries,omitempty"`
}

// Node is one box in the tree. Exactly one field must be set.
type Node struct {
	Label *string    `yaml:"label,omitempty"`
	Fixed *FixedSpec `yaml:"fixed,omitempty"`
	Star  *EntrySpec `yaml:"star,omitempty"`
	Panel *PanelSpec `yaml:"panel,omitempty"`
	Group *GroupSpec `yaml:"group,omitempty"`
}

// FixedSpec describes a fixed-size leaf.
type FixedSpec struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// EntrySpec describes a star leaf or an allocator entry. A missing max
// means unbounded.
type EntrySpec struct {
	Weight float64  `yaml:"weight"`
	Min    float64  `yaml:"min"`
	Max    *float64 `yaml:"max,omitempty"`
	Height float64  `yaml:"height,omitempty"`
}

// MaxOrUnbounded returns Max, or layout.Unbounded when it is not set.
func (e EntrySpec) MaxOrUnbounded() float64 {
	if e.Max == nil {
		return layout.Unbounded
	}
	return *e.Max
}

// Entry converts the spec into an allocator entry.
func (e EntrySpec) Entry() (*star.Entry, error) {
	return star.NewEntry(e.Weight, e.Min, e.MaxOrUnbounded())
}

// PanelSpec describes a StarPanel.
type PanelSpec struct {
	Children []Node `yaml:"children"`
}

// GroupSpec describes a resizable group. Variants go from narrowest to
// widest.
type GroupSpec struct {
	Name     string `yaml:"name"`
	Variants []Node `yaml:"variants"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, configError("config.Load", path, fmt.Errorf("failed to read scenario: %w", err))
	}
	s, err := Parse(bytes.NewReader(data))
	if err != nil {
		var le *layouterrors.LayoutError
		if errors.As(err, &le) && le.Subject == "" {
			le.Subject = path
		}
		return nil, err
	}
	return s, nil
}

// Parse decodes and validates a scenario. Unknown fields are rejected.
func Parse(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Scenario
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, configError("config.Parse", "", fmt.Errorf("failed to parse scenario: empty document"))
		}
		return nil, configError("config.Parse", "", fmt.Errorf("failed to parse scenario: %w", err))
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the schema version and the tree shape, filling in
// defaults.
func (s *Scenario) Validate() error {
	version := strings.TrimSpace(s.Version)
	if version == "" {
		version = SchemaVersion
	}
	if !semver.IsValid(version) || semver.Major(version) != semver.Major(SchemaVersion) {
		return configError("config.Validate", version, ErrUnsupportedVersion)
	}
	s.Version = version

	if s.Height <= 0 {
		s.Height = 1e6
	}
	if len(s.Widths) == 0 {
		s.Widths = []float64{s.Width}
	}
	for _, w := range s.Widths {
		if w < 0 {
			return configError("config.Validate", "widths", fmt.Errorf("width %g is negative", w))
		}
	}

	groups := make(map[string]bool)
	for i := range s.Children {
		path := fmt.Sprintf("children[%d]", i)
		if err := validateNode(&s.Children[i], path, true, groups); err != nil {
			return err
		}
	}
	for _, name := range s.Reduce {
		if !groups[name] {
			return configError("config.Validate", "reduce", fmt.Errorf("unknown group %q", name))
		}
	}
	return nil
}

func validateNode(n *Node, path string, topLevel bool, groups map[string]bool) error {
	set := 0
	for _, present := range []bool{n.Label != nil, n.Fixed != nil, n.Star != nil, n.Panel != nil, n.Group != nil} {
		if present {
			set++
		}
	}
	if set != 1 {
		return configError("config.Validate", path, ErrInvalidNode)
	}

	switch {
	case n.Panel != nil:
		for i := range n.Panel.Children {
			if err := validateNode(&n.Panel.Children[i], fmt.Sprintf("%s.panel.children[%d]", path, i), false, groups); err != nil {
				return err
			}
		}
	case n.Group != nil:
		if !topLevel {
			return configError("config.Validate", path, fmt.Errorf("groups must be direct children of the layout"))
		}
		if n.Group.Name == "" {
			return configError("config.Validate", path, fmt.Errorf("group needs a name"))
		}
		if groups[n.Group.Name] {
			return configError("config.Validate", path, fmt.Errorf("duplicate group %q", n.Group.Name))
		}
		if len(n.Group.Variants) == 0 {
			return configError("config.Validate", path, fmt.Errorf("group %q has no variants", n.Group.Name))
		}
		groups[n.Group.Name] = true
		for i := range n.Group.Variants {
			v := &n.Group.Variants[i]
			if err := validateNode(v, fmt.Sprintf("%s.group.variants[%d]", path, i), false, groups); err != nil {
				return err
			}
		}
	}
	return nil
}

func configError(op, subject string, err error) error {
	e := layouterrors.New(op, layouterrors.KindConfig, err)
	e.Subject = subject
	return e
}
