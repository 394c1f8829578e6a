// Package objectives is the registry of named benchmark criterion
// functions the server and CLI can minimize. The service never
// evaluates user-supplied code; callers pick a registered objective by
// name and the engine treats it as a black box.
package objectives

import (
	"math"
	"sort"

	"github.com/copyleftdev/RAVINE/internal/optimization"
)

// Objective is a registered benchmark function.
type Objective struct {
	Name        string
	Description string
	Func        optimization.ObjectiveFunc

	// Minimum is the known global minimum value, used by callers that
	// want a critlim early exit slightly above it.
	Minimum float64
}

var registry = map[string]Objective{
	"sphere": {
		Name:        "sphere",
		Description: "f(x) = sum(x_i^2), convex, minimum 0 at the origin",
		Func:        Sphere,
		Minimum:     0,
	},
	"rosenbrock": {
		Name:        "rosenbrock",
		Description: "banana-valley function, minimum 0 at (1,...,1)",
		Func:        Rosenbrock,
		Minimum:     0,
	},
	"rastrigin": {
		Name:        "rastrigin",
		Description: "highly multimodal, global minimum 0 at the origin",
		Func:        Rastrigin,
		Minimum:     0,
	},
	"shifted-quartic": {
		Name:        "shifted-quartic",
		Description: "f(x) = sum((x_i-3)^4), a flat-bottomed well at (3,...,3)",
		Func:        ShiftedQuartic,
		Minimum:     0,
	},
}

// Get returns the objective registered under name.
func Get(name string) (Objective, bool) {
	o, ok := registry[name]
	return o, ok
}

// Names returns the registered objective names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sphere is the standard convex quadratic test function.
func Sphere(x []float64) float64 {
	sum := 0.0
	for _, v := range x {
		sum += v * v
	}
	return sum
}

// Rosenbrock is the classic banana-valley function, a hard case for
// coordinate-wise search because the valley floor is curved.
func Rosenbrock(x []float64) float64 {
	sum := 0.0
	for i := 0; i < len(x)-1; i++ {
		a := x[i+1] - x[i]*x[i]
		b := 1.0 - x[i]
		sum += 100.0*a*a + b*b
	}
	return sum
}

// Rastrigin is a highly multimodal function; the engine only promises a
// local minimum on it.
func Rastrigin(x []float64) float64 {
	sum := 10.0 * float64(len(x))
	for _, v := range x {
		sum += v*v - 10.0*math.Cos(2.0*math.Pi*v)
	}
	return sum
}

// ShiftedQuartic has a very flat bottom, exercising the tolerance
// floors in the univariate refinement.
func ShiftedQuartic(x []float64) float64 {
	sum := 0.0
	for _, v := range x {
		d := v - 3.0
		d *= d
		sum += d * d
	}
	return sum
}
