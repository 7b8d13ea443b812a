package agents

// Activity names understood by Spend.
const (
	ActivityWalk     = "walk"
	ActivityDrive    = "drive"
	ActivityWork     = "work"
	ActivityExercise = "exercise"
	ActivityRest     = "rest"
	ActivityEat      = "eat"
)

// activityCost is the energy cost per activity. Negative values restore energy.
var activityCost = map[string]float64{
	ActivityWalk:     5,
	ActivityDrive:    1,
	ActivityWork:     10,
	ActivityExercise: 15,
	ActivityRest:     -10,
	ActivityEat:      -5,
}

const defaultActivityCost = 2.0

// Hourly decay.
const (
	BaseDecay       = 2.0
	WorkDecay       = 5.0  // extra while inside the workplace
	HungerDecay     = 3.0  // extra while groceries are low
	HungerThreshold = 20.0 // grocery level below which HungerDecay applies
	GroceryPerUnit  = 10.0 // grocery level gained per item eaten
)

// ActivityCost returns the energy cost of an activity.
func ActivityCost(activity string) float64 {
	if c, ok := activityCost[activity]; ok {
		return c
	}
	return defaultActivityCost
}

// Spend applies the activity's energy cost, keeping energy in [0,100].
func (a *Agent) Spend(activity string) {
	a.Energy = clamp(a.Energy-ActivityCost(activity), 0, MaxEnergy)
}

// HourlyDecay returns how much energy the agent loses in one hour.
func (a *Agent) HourlyDecay() float64 {
	d := BaseDecay
	if a.AtWork() {
		d += WorkDecay
	}
	if a.GroceryLevel < HungerThreshold {
		d += HungerDecay
	}
	return d
}

// Decay removes amount of energy, never below 0.
func (a *Agent) Decay(amount float64) {
	a.Energy = clamp(a.Energy-amount, 0, MaxEnergy)
}

// EatOne consumes one unit of the first held item and restocks groceries.
// Returns the item name, or false if the inventory is empty.
func (a *Agent) EatOne() (string, bool) {
	item, ok := a.Inventory.First()
	if !ok {
		return "", false
	}
	a.Inventory.Consume(item, 1)
	a.GroceryLevel = clamp(a.GroceryLevel+GroceryPerUnit, 0, MaxGroceryLevel)
	a.Spend(ActivityEat)
	return item, true
}
