// Package world provides the grid, clock, campaigns and locations of the market town.
package world

import (
	"fmt"
	"math"
)

// Coord is an integer position on the rectangular town grid.
type Coord struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Distance returns the Euclidean distance between two coordinates.
func Distance(a, b Coord) float64 {
	dx := float64(b.X - a.X)
	dy := float64(b.Y - a.Y)
	return math.Sqrt(dx*dx + dy*dy)
}
