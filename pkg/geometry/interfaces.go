package geometry

import (
	"errors"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
)

// ErrDegenerateSphere is returned when a sphere cannot produce well-defined intersections
var ErrDegenerateSphere = errors.New("degenerate sphere")

// Shape interface for objects that can be hit by rays
type Shape interface {
	Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool)
}

// Validator is implemented by shapes that can check their own parameters
type Validator interface {
	Validate() error
}
