package transform

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Transformation)
)

// Register makes t available by name. Registering a name twice panics.
func Register(t Transformation) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[t.Name()]; dup {
		panic(fmt.Sprintf("transform: %q registered twice", t.Name()))
	}
	registry[t.Name()] = t
}

// Lookup returns the transformation registered as name.
func Lookup(name string) (Transformation, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	t, ok := registry[name]
	return t, ok
}

// Names lists the registered transformations in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Resolve looks up every name, failing on the first unknown one.
func Resolve(names []string) ([]Transformation, error) {
	out := make([]Transformation, 0, len(names))
	for _, n := range names {
		t, ok := Lookup(n)
		if !ok {
			return nil, fmt.Errorf("unknown transformation %q (known: %v)", n, Names())
		}
		out = append(out, t)
	}
	return out, nil
}
