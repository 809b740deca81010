package geometry

import (
	"fmt"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
)

// ShapeList is an ordered collection of shapes queried by brute-force linear scan
type ShapeList struct {
	Shapes []Shape
}

// NewShapeList creates a shape list
func NewShapeList(shapes ...Shape) *ShapeList {
	return &ShapeList{Shapes: shapes}
}

// Add appends shapes to the list
func (l *ShapeList) Add(shapes ...Shape) {
	l.Shapes = append(l.Shapes, shapes...)
}

// Len returns the number of shapes in the list
func (l *ShapeList) Len() int {
	return len(l.Shapes)
}

// Hit returns the closest intersection across all shapes in (tMin, tMax)
func (l *ShapeList) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	var closestHit *material.HitRecord
	closestSoFar := tMax

	for _, shape := range l.Shapes {
		if hit, isHit := shape.Hit(ray, tMin, closestSoFar); isHit {
			closestSoFar = hit.T
			closestHit = hit
		}
	}

	return closestHit, closestHit != nil
}

// Validate checks every shape that knows how to validate itself
func (l *ShapeList) Validate() error {
	for i, shape := range l.Shapes {
		if v, ok := shape.(Validator); ok {
			if err := v.Validate(); err != nil {
				return fmt.Errorf("shape %d: %w", i, err)
			}
		}
	}
	return nil
}
