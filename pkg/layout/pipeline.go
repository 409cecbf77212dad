package layout

import "slices"

// Remeasurable is a box that can be measured again with the available size
// it last received. Scheduled boxes must implement it to be flushed.
type Remeasurable interface {
	Box
	LastAvailable() Size
}

// PipelineOwner tracks boxes whose measurement has been invalidated.
//
// Invalidation is cheap and deduplicated: scheduling the same box twice
// before a flush keeps one entry. FlushMeasure re-measures every scheduled
// box with its cached available size, parents first when boxes report a
// Depth.
type PipelineOwner struct {
	dirty     []Box
	dirtySet  map[Box]bool
	scheduled int
}

// ScheduleMeasure marks a box as needing measure.
func (p *PipelineOwner) ScheduleMeasure(box Box) {
	if box == nil {
		return
	}
	p.scheduled++
	if p.dirtySet == nil {
		p.dirtySet = make(map[Box]bool)
	}
	if p.dirtySet[box] {
		return
	}
	p.dirtySet[box] = true
	p.dirty = append(p.dirty, box)
}

// NeedsMeasure reports if any boxes are waiting to be measured.
func (p *PipelineOwner) NeedsMeasure() bool {
	return len(p.dirty) > 0
}

// IsScheduled reports whether box is waiting to be measured.
func (p *PipelineOwner) IsScheduled(box Box) bool {
	return p.dirtySet[box]
}

// ScheduleCount returns how many invalidation requests were received,
// including duplicates.
func (p *PipelineOwner) ScheduleCount() int {
	return p.scheduled
}

// FlushMeasure re-measures scheduled boxes and returns how many were measured.
//
// Boxes scheduled while the flush runs are processed in the same call, so a
// flush leaves the owner clean unless a box keeps invalidating itself. Such
// a loop is cut after maxRounds rounds.
func (p *PipelineOwner) FlushMeasure() int {
	const maxRounds = 8
	measured := 0
	for round := 0; round < maxRounds && len(p.dirty) > 0; round++ {
		slices.SortStableFunc(p.dirty, func(a, b Box) int {
			return getDepth(a) - getDepth(b)
		})

		dirty := p.dirty
		p.dirty = nil
		p.dirtySet = nil

		for _, box := range dirty {
			r, ok := box.(Remeasurable)
			if !ok {
				continue
			}
			r.Measure(r.LastAvailable())
			measured++
		}
	}
	return measured
}

// Reset drops all pending work without measuring.
func (p *PipelineOwner) Reset() {
	p.dirty = nil
	p.dirtySet = nil
}

func getDepth(box Box) int {
	if getter, ok := box.(interface{ Depth() int }); ok {
		return getter.Depth()
	}
	return 0
}
