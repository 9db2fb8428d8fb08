package valueobjects

// ClickToken is the click counter a button reports with its event.
// A nil or zero counter is what the UI sends when a control is first rendered.
type ClickToken int

// Fired reports whether the token comes from a real click
func (c ClickToken) Fired() bool {
	return c > 0
}

// Trigger identifies the control that fired an event together with the click
// counters the UI recorded for every control of the same family.
type Trigger struct {
	Target string                `json:"target"`
	Clicks map[string]ClickToken `json:"clicks"`
}

// NewTrigger creates a trigger for a single control
func NewTrigger(target string, clicks ClickToken) Trigger {
	return Trigger{Target: target, Clicks: map[string]ClickToken{target: clicks}}
}

// IsRealClick reports whether the trigger was fired by an actual click on a
// control that is still present. Re-rendered controls report zero clicks and
// must not be mistaken for user input.
func (t Trigger) IsRealClick() bool {
	if t.Target == "" {
		return false
	}
	clicks, ok := t.Clicks[t.Target]
	return ok && clicks.Fired()
}
