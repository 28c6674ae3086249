package core

import (
	"fmt"
	"sort"
	"strings"
)

// Size describes the dimensions of a simulation grid.
type Size struct {
	W int
	H int
}

// Point is an integer grid coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns the component-wise sum of p and q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sim defines the minimal contract a steppable grid generator must implement.
type Sim interface {
	Name() string
	Size() Size
	Reset(seed int64)
	Step()
	Cells() []uint8
}

// Factory constructs a Sim using an optional configuration map. Invalid
// configuration is reported before any stepping happens.
type Factory func(cfg map[string]string) (Sim, error)

var sims = map[string]Factory{}

// Register adds a simulation factory under the provided name.
func Register(name string, f Factory) {
	if name == "" || f == nil {
		return
	}
	sims[name] = f
}

// Names returns the registered simulation names in sorted order.
func Names() []string {
	names := make([]string, 0, len(sims))
	for name := range sims {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup builds the named sim from the registry.
func Lookup(name string, cfg map[string]string) (Sim, error) {
	factory, ok := sims[name]
	if !ok {
		return nil, fmt.Errorf("unknown sim %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return factory(cfg)
}
