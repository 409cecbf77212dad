package starsizing

import (
	"errors"
	"fmt"
	"reflect"

	layouterrors "github.com/go-drift/starlayout/pkg/errors"
	"github.com/go-drift/starlayout/pkg/star"
)

var (
	// ErrNilProvider is the cause reported when a nil provider is registered.
	ErrNilProvider = errors.New("provider is nil")
	// ErrUncomparableProvider is the cause reported for providers whose
	// dynamic type cannot be used as a registry key.
	ErrUncomparableProvider = errors.New("provider type is not comparable")
)

// ProviderID is a stable handle for a registered provider. A slot reused
// after unregistration gets a new generation, so stale IDs never resolve.
type ProviderID struct {
	index      uint32
	generation uint32
}

// IsZero reports whether the ID is the zero value, which never resolves.
func (id ProviderID) IsZero() bool {
	return id.generation == 0
}

func (id ProviderID) String() string {
	return fmt.Sprintf("provider#%d.%d", id.index, id.generation)
}

type providerSlot struct {
	provider    Provider
	generation  uint32
	live        bool
	initializer LayoutInitializer
	observer    star.Observer
}

// registry is an arena of provider slots with generation-checked IDs.
// Capabilities are resolved once, when a provider is added.
type registry struct {
	slots []providerSlot
	free  []uint32
	ids   map[Provider]ProviderID
}

func validateProvider(op string, p Provider) error {
	if p == nil {
		return layouterrors.New(op, layouterrors.KindRegistration, ErrNilProvider)
	}
	v := reflect.ValueOf(p)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		if v.IsNil() {
			return &layouterrors.LayoutError{
				Op:      op,
				Kind:    layouterrors.KindRegistration,
				Subject: fmt.Sprintf("%T", p),
				Err:     ErrNilProvider,
			}
		}
	}
	if !v.Type().Comparable() {
		return &layouterrors.LayoutError{
			Op:      op,
			Kind:    layouterrors.KindRegistration,
			Subject: fmt.Sprintf("%T", p),
			Err:     ErrUncomparableProvider,
		}
	}
	return nil
}

// add registers p and reports whether it was newly added.
func (r *registry) add(p Provider) (ProviderID, bool) {
	if id, ok := r.ids[p]; ok {
		return id, false
	}
	if r.ids == nil {
		r.ids = make(map[Provider]ProviderID)
	}

	var index uint32
	if n := len(r.free); n > 0 {
		index = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		index = uint32(len(r.slots))
		r.slots = append(r.slots, providerSlot{})
	}

	slot := &r.slots[index]
	slot.generation++
	slot.provider = p
	slot.live = true
	slot.initializer, _ = p.(LayoutInitializer)
	slot.observer, _ = p.(star.Observer)

	id := ProviderID{index: index, generation: slot.generation}
	r.ids[p] = id
	return id, true
}

// remove unregisters p and reports whether it was registered.
func (r *registry) remove(p Provider) bool {
	id, ok := r.ids[p]
	if !ok {
		return false
	}
	delete(r.ids, p)
	slot := &r.slots[id.index]
	slot.provider = nil
	slot.initializer = nil
	slot.observer = nil
	slot.live = false
	r.free = append(r.free, id.index)
	return true
}

func (r *registry) lookup(p Provider) (ProviderID, bool) {
	id, ok := r.ids[p]
	return id, ok
}

func (r *registry) resolve(id ProviderID) (Provider, bool) {
	if id.IsZero() || int(id.index) >= len(r.slots) {
		return nil, false
	}
	slot := &r.slots[id.index]
	if !slot.live || slot.generation != id.generation {
		return nil, false
	}
	return slot.provider, true
}

func (r *registry) len() int {
	return len(r.ids)
}

// each visits live slots in slot order.
func (r *registry) each(visit func(slot *providerSlot)) {
	for i := range r.slots {
		if r.slots[i].live {
			visit(&r.slots[i])
		}
	}
}
