package world

import "fmt"

// Default clock settings: the town wakes at 7:00 and each tick is one hour.
const (
	DefaultTickMinutes = 60
	DefaultStartHour   = 7
	MinutesPerHour     = 60
	HoursPerDay        = 24
	DaysPerWeek        = 7
)

var dayNames = [DaysPerWeek]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// Timestamp is a point in simulation time.
type Timestamp struct {
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// DayOfWeek returns 0 (Monday) through 6 (Sunday).
func (t Timestamp) DayOfWeek() int {
	return t.Day % DaysPerWeek
}

// Clock returns the time of day as HH:MM.
func (t Timestamp) Clock() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// String returns a human-readable time like "Wednesday, Day 2, 12:00".
func (t Timestamp) String() string {
	return fmt.Sprintf("%s, Day %d, %s", DayName(t.DayOfWeek()), t.Day, t.Clock())
}

// DayName returns the English name of a day-of-week index.
func DayName(dow int) string {
	if dow < 0 || dow >= DaysPerWeek {
		return "Unknown"
	}
	return dayNames[dow]
}

// Clock is the shared simulation clock plus the campaign registry.
type Clock struct {
	Day         int        `json:"day"`
	Hour        int        `json:"hour"`
	Minute      int        `json:"minute"`
	TickMinutes int        `json:"tick_minutes"`
	Campaigns   []Campaign `json:"campaigns"`
}

// NewClock creates a clock at day 0, startHour:00.
func NewClock(tickMinutes, startHour int) *Clock {
	if tickMinutes <= 0 {
		tickMinutes = DefaultTickMinutes
	}
	return &Clock{Hour: startHour, TickMinutes: tickMinutes}
}

// Now returns the current time.
func (c *Clock) Now() Timestamp {
	return Timestamp{Day: c.Day, Hour: c.Hour, Minute: c.Minute}
}

// DayOfWeek returns Day mod 7.
func (c *Clock) DayOfWeek() int {
	return c.Day % DaysPerWeek
}

// Advance moves the clock forward by TickMinutes. Minute overflow carries
// into hours and hour overflow into days, so no boundary is ever skipped.
func (c *Clock) Advance() {
	c.Minute += c.TickMinutes
	c.Hour += c.Minute / MinutesPerHour
	c.Minute %= MinutesPerHour
	c.Day += c.Hour / HoursPerDay
	c.Hour %= HoursPerDay
}
