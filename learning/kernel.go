package learning

import (
	"fmt"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"math"
)

// Kernel is a similarity between two feature vectors. It must be symmetric.
type Kernel interface {
	Eval(a, b []float64) float64
	Name() string
}

type linearKernel struct{}

// Gaussian is the radial basis function kernel exp(-||a-b||² / width).
type Gaussian struct {
	Width float64
}

// Polynomial is the kernel (a·b + offset)^degree.
type Polynomial struct {
	Degree float64
	Offset float64
}

// Linear is the dot product.
var Linear = linearKernel{}

func (linearKernel) Eval(a, b []float64) float64 {
	return floats.Dot(a, b)
}

func (linearKernel) Name() string {
	return "linear"
}

func (g Gaussian) Eval(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return math.Exp(-(d * d) / g.Width)
}

func (g Gaussian) Name() string {
	return fmt.Sprintf("gaussian(%v)", g.Width)
}

func (p Polynomial) Eval(a, b []float64) float64 {
	return math.Pow(floats.Dot(a, b)+p.Offset, p.Degree)
}

func (p Polynomial) Name() string {
	return fmt.Sprintf("polynomial(%v,%v)", p.Degree, p.Offset)
}

// NewKernel creates a kernel by name. The parameter is the width of a gaussian
// kernel or the degree of a polynomial kernel, and is ignored by the linear kernel.
func NewKernel(name string, param float64) (Kernel, error) {
	switch name {
	case "linear":
		return Linear, nil
	case "gaussian":
		if param <= 0 {
			return nil, errors.Errorf("gaussian width must be positive, got %v", param)
		}
		return Gaussian{Width: param}, nil
	case "polynomial":
		if param < 1 {
			return nil, errors.Errorf("polynomial degree must be at least one, got %v", param)
		}
		return Polynomial{Degree: param, Offset: 1}, nil
	}
	return nil, errors.Errorf("unknown kernel %q", name)
}
