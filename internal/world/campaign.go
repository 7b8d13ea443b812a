package world

// Campaign is a weekly recurring discount window for one location.
// It is active on DayOfWeek for StartHour <= hour < EndHour.
type Campaign struct {
	Location        string  `json:"location_name" yaml:"location_name"`
	DiscountPercent float64 `json:"discount_percent" yaml:"discount_percent"`
	DayOfWeek       int     `json:"day_of_week" yaml:"day_of_week"`
	StartHour       int     `json:"start_hour" yaml:"start_hour"`
	EndHour         int     `json:"end_hour" yaml:"end_hour"`
}

// ActiveAt reports whether the campaign window covers the given time.
func (c Campaign) ActiveAt(t Timestamp) bool {
	return c.DayOfWeek == t.DayOfWeek() && c.StartHour <= t.Hour && t.Hour < c.EndHour
}

// Discount returns the campaign discount as a fraction in [0,1].
func (c Campaign) Discount() float64 {
	return c.DiscountPercent / 100
}

// IsCampaignActive returns true if any campaign for the location is active now.
func (c *Clock) IsCampaignActive(location string) bool {
	_, ok := c.activeFor(location)
	return ok
}

// DiscountFor returns the discount fraction of the first active campaign for
// the location in list order, or 0 when none is active. Overlapping active
// campaigns on one location never stack.
func (c *Clock) DiscountFor(location string) float64 {
	camp, ok := c.activeFor(location)
	if !ok {
		return 0
	}
	return camp.Discount()
}

// ActiveCampaigns returns the indices of all campaigns active now.
func (c *Clock) ActiveCampaigns() []int {
	now := c.Now()
	var idx []int
	for i, camp := range c.Campaigns {
		if camp.ActiveAt(now) {
			idx = append(idx, i)
		}
	}
	return idx
}

func (c *Clock) activeFor(location string) (Campaign, bool) {
	now := c.Now()
	for _, camp := range c.Campaigns {
		if camp.Location == location && camp.ActiveAt(now) {
			return camp, true
		}
	}
	return Campaign{}, false
}
