package world

// NeedEnergy is the need satisfied by food and drink products.
const NeedEnergy = "energy"

// DefaultCapacity is used when a location does not declare one.
const DefaultCapacity = 10

// Product is one item offered by a location.
type Product struct {
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Stock         int     `json:"stock"`
	SatisfiesNeed string  `json:"satisfies_need"`
}

// Location is a named place on the grid: a shop, a workplace or a home.
type Location struct {
	Name     string `json:"name"`
	Coord    Coord  `json:"coord"`
	Type     string `json:"type"`
	Capacity int    `json:"capacity"`

	// Products in the order they were added.
	Products     map[string]*Product `json:"products"`
	productOrder []string

	TotalSales float64 `json:"total_sales"`
	VisitCount int     `json:"visit_count"`

	occupants []string // agent IDs, in arrival order
}

// NewLocation creates an empty location.
func NewLocation(name string, coord Coord, kind string, capacity int) *Location {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Location{
		Name:     name,
		Coord:    coord,
		Type:     kind,
		Capacity: capacity,
		Products: make(map[string]*Product),
	}
}

// AddProduct adds or replaces a product. Negative price or stock is clamped to 0.
func (l *Location) AddProduct(name string, price float64, stock int, satisfies string) {
	if price < 0 {
		price = 0
	}
	if stock < 0 {
		stock = 0
	}
	if satisfies == "" {
		satisfies = NeedEnergy
	}
	if _, ok := l.Products[name]; !ok {
		l.productOrder = append(l.productOrder, name)
	}
	l.Products[name] = &Product{Name: name, Price: price, Stock: stock, SatisfiesNeed: satisfies}
}

// ProductNames returns product names in insertion order.
func (l *Location) ProductNames() []string {
	out := make([]string, len(l.productOrder))
	copy(out, l.productOrder)
	return out
}

// Product returns the named product, or nil.
func (l *Location) Product(name string) *Product {
	return l.Products[name]
}

// HasStock returns true if the product exists with at least qty units.
func (l *Location) HasStock(name string, qty int) bool {
	p, ok := l.Products[name]
	return ok && p.Stock >= qty && p.Stock > 0
}

// Sell removes qty units of stock and books the revenue. The caller must
// have checked HasStock; Sell reports false without mutating otherwise.
func (l *Location) Sell(name string, qty int, revenue float64) bool {
	if !l.HasStock(name, qty) {
		return false
	}
	l.Products[name].Stock -= qty
	l.TotalSales += revenue
	return true
}

// CanEnter reports whether there is room for one more occupant.
func (l *Location) CanEnter() bool {
	return len(l.occupants) < l.Capacity
}

// Enter adds the agent to the occupants. Returns false if the location is
// full or the agent is already inside.
func (l *Location) Enter(agentID string) bool {
	if !l.CanEnter() || l.IsOccupant(agentID) {
		return false
	}
	l.occupants = append(l.occupants, agentID)
	l.VisitCount++
	return true
}

// Leave removes the agent from the occupants, if present.
func (l *Location) Leave(agentID string) {
	for i, id := range l.occupants {
		if id == agentID {
			l.occupants = append(l.occupants[:i], l.occupants[i+1:]...)
			return
		}
	}
}

// IsOccupant reports whether the agent is inside.
func (l *Location) IsOccupant(agentID string) bool {
	for _, id := range l.occupants {
		if id == agentID {
			return true
		}
	}
	return false
}

// Occupants returns a copy of the occupant IDs in arrival order.
func (l *Location) Occupants() []string {
	out := make([]string, len(l.occupants))
	copy(out, l.occupants)
	return out
}
