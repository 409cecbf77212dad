package config

import (
	"github.com/go-drift/starlayout/pkg/growth"
	"github.com/go-drift/starlayout/pkg/layout"
	"github.com/go-drift/starlayout/pkg/starsizing"
	"github.com/go-drift/starlayout/pkg/widgets"
)

// Tree is a built scenario, ready to measure.
type Tree struct {
	Host   *starsizing.Coordinator
	Ladder *growth.Ladder
	Panels []*widgets.StarPanel
	Groups []*widgets.Group

	targets []any
}

// Build creates the boxes a scenario describes, registers every panel with
// a new coordinator and drives its groups with a growth.Ladder.
//
// A panel's allocation round is the root child it sits in: the panel
// itself, an enclosing panel, or the group whose variant holds it.
func (s *Scenario) Build(opts ...starsizing.Option) (*Tree, error) {
	t := &Tree{}
	if s.MaxAdjustSteps > 0 {
		opts = append(opts, starsizing.WithMaxAdjustSteps(s.MaxAdjustSteps))
	}
	t.Host = starsizing.NewCoordinator(opts...)

	children := make([]layout.Box, 0, len(s.Children))
	for i := range s.Children {
		box, err := t.buildNode(&s.Children[i], nil)
		if err != nil {
			return nil, err
		}
		children = append(children, box)
	}

	sizers := make([]growth.Sizer, 0, len(t.Groups))
	byName := make(map[string]growth.Sizer, len(t.Groups))
	for _, g := range t.Groups {
		sizers = append(sizers, g)
		byName[g.Name] = g
	}
	t.Ladder = growth.NewLadder(sizers...)
	if len(s.Reduce) > 0 {
		order := make([]growth.Sizer, 0, len(s.Reduce))
		for _, name := range s.Reduce {
			order = append(order, byName[name])
		}
		if err := t.Ladder.SetReductionOrder(order...); err != nil {
			return nil, err
		}
	}
	t.Host.SetPolicy(t.Ladder)

	for i, p := range t.Panels {
		if err := p.Attach(t.Host, t.targets[i]); err != nil {
			return nil, err
		}
	}
	t.Host.SetChildren(children...)
	return t, nil
}

// buildNode creates the box for n. target is the root child the node sits
// in, or nil for a root child.
func (t *Tree) buildNode(n *Node, target any) (layout.Box, error) {
	switch {
	case n.Label != nil:
		return widgets.NewLabel(*n.Label), nil

	case n.Fixed != nil:
		return widgets.NewFixed(n.Fixed.Width, n.Fixed.Height), nil

	case n.Star != nil:
		return widgets.NewStar(n.Star.Weight, n.Star.Min, n.Star.MaxOrUnbounded(), n.Star.Height)

	case n.Panel != nil:
		panel := widgets.NewStarPanel()
		if target == nil {
			target = panel
		}
		children := make([]layout.Box, 0, len(n.Panel.Children))
		for i := range n.Panel.Children {
			child, err := t.buildNode(&n.Panel.Children[i], target)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		panel.SetChildren(children...)
		// Panels attach once the whole tree exists.
		t.Panels = append(t.Panels, panel)
		t.targets = append(t.targets, target)
		return panel, nil

	case n.Group != nil:
		group := widgets.NewGroup(n.Group.Name)
		variants := make([]layout.Box, 0, len(n.Group.Variants))
		for i := range n.Group.Variants {
			v, err := t.buildNode(&n.Group.Variants[i], group)
			if err != nil {
				return nil, err
			}
			variants = append(variants, v)
		}
		group.SetVariants(variants...)
		t.Groups = append(t.Groups, group)
		return group, nil
	}
	return nil, configError("config.Build", "", ErrInvalidNode)
}

// Reset returns every group to its first variant and drops the host's grow
// caches, as if the tree had just been built.
func (t *Tree) Reset() {
	t.Ladder.Reset()
	t.Host.SetPolicy(t.Ladder)
}

// Layout measures and arranges the tree in the given space and returns the
// root's desired size.
func (t *Tree) Layout(width, height float64) layout.Size {
	size := t.Host.Measure(layout.Size{Width: width, Height: height})
	t.Host.Arrange(layout.RectFromLTWH(0, 0, width, size.Height))
	return size
}
