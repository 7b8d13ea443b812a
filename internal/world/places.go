package world

// Places is the ordered registry of locations keyed by name.
// Iteration order is insertion order, which keeps lookups deterministic.
type Places struct {
	list  []*Location
	index map[string]*Location
}

// NewPlaces creates a registry from the given locations. Later duplicates
// of a name replace earlier ones in place.
func NewPlaces(locs ...*Location) *Places {
	p := &Places{index: make(map[string]*Location, len(locs))}
	for _, l := range locs {
		p.Add(l)
	}
	return p
}

// Add registers a location.
func (p *Places) Add(l *Location) {
	if _, ok := p.index[l.Name]; ok {
		for i, existing := range p.list {
			if existing.Name == l.Name {
				p.list[i] = l
			}
		}
	} else {
		p.list = append(p.list, l)
	}
	p.index[l.Name] = l
}

// Get returns the location with the exact name, or nil.
func (p *Places) Get(name string) *Location {
	return p.index[name]
}

// At returns the first location at the exact coordinate, or nil.
func (p *Places) At(c Coord) *Location {
	for _, l := range p.list {
		if l.Coord == c {
			return l
		}
	}
	return nil
}

// All returns the locations in insertion order.
func (p *Places) All() []*Location {
	return p.list
}

// Names returns the location names in insertion order.
func (p *Places) Names() []string {
	names := make([]string, len(p.list))
	for i, l := range p.list {
		names[i] = l.Name
	}
	return names
}

// Len returns the number of locations.
func (p *Places) Len() int {
	return len(p.list)
}
