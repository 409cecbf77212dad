// Package widgets provides the boxes a star layout tree is built from.
//
// [StarPanel] stacks its children top to bottom in columns, wrapping to a
// new column when the available height runs out, and takes part in star
// allocation as a [starsizing.Provider]. [Star] children stretch between a
// minimum and maximum width in proportion to their weight. [Fixed] and
// [Label] children have a natural width that widens their column.
//
// [Group] holds several variants of the same content, ordered from
// narrowest to widest, and is resized one step at a time by a
// [growth.Ladder].
//
// A typical tree:
//
//	host := starsizing.NewCoordinator(starsizing.WithPolicy(ladder))
//	panel := widgets.NewStarPanel(
//	    widgets.NewLabel("Name"),
//	    widgets.MustStar(1, 40, 200, 14),
//	)
//	panel.Attach(host, panel)
//	host.SetChildren(panel)
//	host.Measure(layout.Size{Width: 320, Height: 40})
package widgets
