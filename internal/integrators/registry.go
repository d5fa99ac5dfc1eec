package integrators

import (
	"fmt"
	"sort"
)

// Factory builds a fresh Stepper. Steppers carry scratch buffers and are
// not safe for concurrent use, so each task gets its own.
type Factory func(tol Tolerance) Stepper

var registry = map[string]Factory{
	"dopri5":         func(tol Tolerance) Stepper { return NewDopri5(tol) },
	"bulirsch-stoer": func(tol Tolerance) Stepper { return NewBulirschStoer(tol) },
	"rk4":            func(Tolerance) Stepper { return NewRK4() },
}

// Lookup returns the factory registered under name.
func Lookup(name string) (Factory, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown stepper: %s (available: %v)", name, Names())
	}
	return fn, nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
