// Package billing maps plan identifiers to prices and opens hosted checkout sessions.
package billing

// Interval is a recurring billing period.
type Interval string

const (
	Monthly Interval = "month"
	Yearly  Interval = "year"
)

// Plan is a purchasable subscription. Amount is in the currency's minor unit;
// JPY has none, so 980 means ¥980.
type Plan struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Amount   int64    `json:"amount"`
	Interval Interval `json:"interval"`
}

var plans = []Plan{
	{ID: "monthly", Name: "Basic plan (monthly)", Amount: 980, Interval: Monthly},
	{ID: "yearly", Name: "Premium plan (yearly)", Amount: 5980, Interval: Yearly},
}

// Plans returns the recognised plans in display order.
func Plans() []Plan {
	out := make([]Plan, len(plans))
	copy(out, plans)
	return out
}

// LookupPlan finds a plan by id.
func LookupPlan(id string) (Plan, bool) {
	for _, p := range plans {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}
