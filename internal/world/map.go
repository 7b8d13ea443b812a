package world

import "fmt"

// Map is the rectangular play area. Valid coordinates are [0,Width)×[0,Height).
type Map struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// NewMap creates a map of the given size.
func NewMap(width, height int) Map {
	return Map{Width: width, Height: height}
}

// InBounds returns true if the coordinate lies inside the map.
func (m Map) InBounds(c Coord) bool {
	return c.X >= 0 && c.X < m.Width && c.Y >= 0 && c.Y < m.Height
}

// String returns a summary of the map.
func (m Map) String() string {
	return fmt.Sprintf("Map(%dx%d)", m.Width, m.Height)
}
