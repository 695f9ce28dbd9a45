package emit

import (
	"fmt"
	"reflect"
	"sort"

	"xfer-generator/internal/support"
	"xfer-generator/internal/walk"
)

// Serializer is a loaded serializer. A nil destination allocates a
// fresh instance; the produced instance is returned either way.
type Serializer func(source, destination any) (any, error)

// Set holds the loaded serializers of one generation run, keyed by
// triple.
type Set struct {
	m map[walk.Triple]Serializer
}

// Lookup returns the serializer for a triple.
func (s *Set) Lookup(t walk.Triple) (Serializer, bool) {
	fn, ok := s.m[t]
	return fn, ok
}

// Triples lists the loaded triples in sorted order.
func (s *Set) Triples() []walk.Triple {
	out := make([]walk.Triple, 0, len(s.m))
	for t := range s.m {
		out = append(out, t)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })

	return out
}

// Loader assembles the closure form of walked blueprints. Each loaded
// serializer re-executes the blueprint's instruction stream through
// the providers' runtime accessors, so the closures behave exactly
// like the emitted text.
type Loader struct {
	handlers *support.Handlers
}

// NewLoader creates a Loader resolving custom transformations against
// the given registry.
func NewLoader(handlers *support.Handlers) *Loader {
	if handlers == nil {
		handlers = support.NewHandlers()
	}

	return &Loader{handlers: handlers}
}

// Load builds the serializer set for the given blueprints. Handlers
// referenced by custom directives are resolved now, so a run never
// discovers a missing handler mid-copy.
func (l *Loader) Load(blueprints []*walk.Blueprint) (*Set, error) {
	set := &Set{m: make(map[walk.Triple]Serializer, len(blueprints))}

	for _, b := range blueprints {
		if !b.Complete() {
			return nil, &GenerationFailure{
				Triple: b.Triple,
				Err:    fmt.Errorf("blueprint %s is incomplete", b.Triple),
			}
		}

		for _, instr := range b.Instructions {
			if instr.Handler == "" {
				continue
			}

			if _, ok := l.handlers.Lookup(instr.Handler); !ok {
				return nil, &GenerationFailure{
					Triple: b.Triple,
					Err:    fmt.Errorf("handler %q is not registered", instr.Handler),
				}
			}
		}

		blueprint := b
		set.m[b.Triple] = func(source, destination any) (any, error) {
			// One instance cache per top-level call, so cyclic
			// instance graphs settle on shared results.
			return l.run(blueprint, make(map[string]any), source, destination)
		}
	}

	return set, nil
}

func (l *Loader) run(b *walk.Blueprint, state map[string]any, source, destination any) (any, error) {
	if nilValue(source) {
		return destination, nil
	}

	cacheKey := ""
	if key, ok := b.Source.Key(source); ok {
		cacheKey = b.Triple.String() + "|" + key
		if cached, hit := state[cacheKey]; hit {
			return cached, nil
		}
	}

	if nilValue(destination) {
		destination = b.Dest.New()
	}

	// Register before copying members, so a back edge reaching this
	// instance again reuses the in-progress result.
	if cacheKey != "" {
		state[cacheKey] = destination
	}

	for _, instr := range b.Instructions {
		if err := l.step(b, instr, state, source, destination); err != nil {
			return nil, err
		}
	}

	return destination, nil
}

func (l *Loader) step(b *walk.Blueprint, instr walk.Instruction, state map[string]any, source, destination any) error {
	switch instr.Kind {
	case walk.InstrField:
		v, err := b.Source.Get(source, instr.Member, instr.As)
		if err != nil {
			return err
		}

		if instr.Handler != "" {
			fn, _ := l.handlers.Lookup(instr.Handler)
			v = fn(v)
		}

		return b.Dest.Set(destination, instr.Member, instr.As, v)

	case walk.InstrSingle:
		v, err := b.Source.Get(source, instr.Member, instr.As)
		if err != nil {
			return err
		}

		if nilValue(v) {
			return nil
		}

		nested, err := l.run(instr.Nested, state, v, nil)
		if err != nil {
			return err
		}

		return b.Dest.Set(destination, instr.Member, instr.As, nested)

	case walk.InstrCollection:
		if err := b.Dest.Clear(destination, instr.Member, instr.As); err != nil {
			return err
		}

		elems, err := b.Source.Elems(source, instr.Member, instr.As)
		if err != nil {
			return err
		}

		for _, elem := range elems {
			nested, err := l.run(instr.Nested, state, elem, nil)
			if err != nil {
				return err
			}

			if err := b.Dest.Append(destination, instr.Member, instr.As, nested); err != nil {
				return err
			}
		}

		return nil

	default:
		return fmt.Errorf("unknown instruction kind %v for %s", instr.Kind, instr.Member)
	}
}

// nilValue treats typed nil pointers and nil maps the same as a plain
// nil interface.
func nilValue(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
