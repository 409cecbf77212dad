package starsizing

import (
	"github.com/go-logr/logr"

	layouterrors "github.com/go-drift/starlayout/pkg/errors"
	"github.com/go-drift/starlayout/pkg/layout"
)

// DefaultMaxAdjustSteps caps the grow and shrink steps taken in one measure
// cycle. A policy that honours its contract never gets near it.
const DefaultMaxAdjustSteps = 1024

// Coordinator lays its children out left to right and runs star allocation
// for every registered provider.
type Coordinator struct {
	layout.BoxBase

	children []layout.Box
	policy   GrowthPolicy
	owner    *layout.PipelineOwner
	log      logr.Logger
	depth    int

	registry registry
	pending  layout.WorkQueue

	maxAdjustSteps int
	onInvalidate   func()
	needsMeasure   bool

	measuring   bool
	starPass    bool
	childWidths []float64

	cachedRemaining    float64
	hasCachedRemaining bool
	cachedChildCount   int
	growThreshold      float64
	hasGrowThreshold   bool

	stats Stats
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithPolicy sets the group growth policy. Without one the coordinator
// never grows or shrinks groups and goes straight to the star pass.
func WithPolicy(policy GrowthPolicy) Option {
	return func(c *Coordinator) { c.policy = policy }
}

// WithLogger sets the logger. State transitions log at V(1), individual
// steps at V(2).
func WithLogger(log logr.Logger) Option {
	return func(c *Coordinator) { c.log = log }
}

// WithOwner routes invalidations to a pipeline owner.
func WithOwner(owner *layout.PipelineOwner) Option {
	return func(c *Coordinator) { c.owner = owner }
}

// WithMaxAdjustSteps overrides DefaultMaxAdjustSteps.
func WithMaxAdjustSteps(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.maxAdjustSteps = n
		}
	}
}

// WithInvalidateHook registers a callback run on every invalidate-measure.
func WithInvalidateHook(hook func()) Option {
	return func(c *Coordinator) { c.onInvalidate = hook }
}

// NewCoordinator creates a coordinator with no children and no providers.
func NewCoordinator(opts ...Option) *Coordinator {
	c := &Coordinator{
		log:            logr.Discard(),
		maxAdjustSteps: DefaultMaxAdjustSteps,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetChildren replaces the children measured by the coordinator.
func (c *Coordinator) SetChildren(children ...layout.Box) {
	c.children = append(c.children[:0], children...)
	c.InvalidateMeasure()
}

// Children returns the current children.
func (c *Coordinator) Children() []layout.Box {
	return c.children
}

// SetPolicy replaces the growth policy.
func (c *Coordinator) SetPolicy(policy GrowthPolicy) {
	c.policy = policy
	c.resetCaches()
	c.InvalidateMeasure()
}

// SetDepth sets the tree depth reported to the pipeline owner.
func (c *Coordinator) SetDepth(depth int) { c.depth = depth }

// Depth returns the tree depth (root = 0).
func (c *Coordinator) Depth() int { return c.depth }

// IsStarLayoutPass reports whether the current measure is the star pass.
// Providers measure star children at their allocated width while it is
// true, and at their minimum width otherwise.
func (c *Coordinator) IsStarLayoutPass() bool {
	return c.starPass
}

// NeedsMeasure reports whether the coordinator was invalidated since its
// last measure.
func (c *Coordinator) NeedsMeasure() bool {
	return c.needsMeasure
}

// InvalidateMeasure requests a new measure cycle.
func (c *Coordinator) InvalidateMeasure() {
	c.needsMeasure = true
	if c.onInvalidate != nil {
		c.onInvalidate()
	}
	if c.owner != nil {
		c.owner.ScheduleMeasure(c)
	}
}

// Register adds a provider. Registering a provider twice is a no-op.
//
// During a measure cycle the registration is queued and applied before the
// next cycle; a measure is requested right away so that cycle happens.
func (c *Coordinator) Register(p Provider) error {
	if err := validateProvider("starsizing.Coordinator.Register", p); err != nil {
		return err
	}
	if c.measuring {
		c.pending.Post(func() { c.register(p, false) })
		c.InvalidateMeasure()
		return nil
	}
	c.register(p, true)
	return nil
}

// Unregister removes a provider. Unregistering an unknown provider is a
// no-op. Deferred like Register during a measure cycle.
func (c *Coordinator) Unregister(p Provider) error {
	if err := validateProvider("starsizing.Coordinator.Unregister", p); err != nil {
		return err
	}
	if c.measuring {
		c.pending.Post(func() { c.unregister(p, false) })
		c.InvalidateMeasure()
		return nil
	}
	c.unregister(p, true)
	return nil
}

func (c *Coordinator) register(p Provider, invalidate bool) {
	id, added := c.registry.add(p)
	if !added {
		return
	}
	c.log.V(2).Info("provider registered", "id", id.String())
	if invalidate {
		c.InvalidateMeasure()
	}
}

func (c *Coordinator) unregister(p Provider, invalidate bool) {
	if !c.registry.remove(p) {
		return
	}
	c.log.V(2).Info("provider unregistered")
	if invalidate {
		c.InvalidateMeasure()
	}
}

// Lookup returns the ID of a registered provider.
func (c *Coordinator) Lookup(p Provider) (ProviderID, bool) {
	return c.registry.lookup(p)
}

// Resolve returns the provider for id if it is still registered.
func (c *Coordinator) Resolve(id ProviderID) (Provider, bool) {
	return c.registry.resolve(id)
}

// ProviderCount returns the number of registered providers.
func (c *Coordinator) ProviderCount() int {
	return c.registry.len()
}

// PendingCount returns the number of queued registration changes.
func (c *Coordinator) PendingCount() int {
	return c.pending.Len()
}

// Flush applies queued registration changes outside a measure cycle and
// returns how many commands ran. It does nothing while measuring.
func (c *Coordinator) Flush() int {
	if c.measuring {
		return 0
	}
	return c.drainPending()
}

// drainPending runs queued registration changes. They requested a measure
// when they were posted, so they do not invalidate again.
func (c *Coordinator) drainPending() int {
	cmds := c.pending.Drain()
	for _, cmd := range cmds {
		if err := runPending(cmd); err != nil {
			c.log.Error(err, "deferred registration panicked")
		}
	}
	return len(cmds)
}

func runPending(cmd func()) (err error) {
	defer layouterrors.Recover("starsizing.Coordinator.drainPending", &err)
	cmd()
	return nil
}

// Stats returns a summary of the latest measure cycle.
func (c *Coordinator) Stats() Stats {
	return c.stats
}

// GrowThreshold returns the cached remaining width below which the
// coordinator will not attempt to grow a group.
func (c *Coordinator) GrowThreshold() (float64, bool) {
	return c.growThreshold, c.hasGrowThreshold
}

func (c *Coordinator) resetCaches() {
	c.hasCachedRemaining = false
	c.cachedRemaining = 0
	c.hasGrowThreshold = false
	c.growThreshold = 0
}

// Arrange places children left to right at their desired widths.
func (c *Coordinator) Arrange(final layout.Rect) {
	c.RecordArrange(final)
	x := final.X
	for i, child := range c.children {
		w := 0.0
		if i < len(c.childWidths) {
			w = c.childWidths[i]
		}
		child.Arrange(layout.RectFromLTWH(x, final.Y, w, final.Height))
		x += w
	}
}
