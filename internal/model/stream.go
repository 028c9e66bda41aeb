package model

type AlertSource string

const (
	AlertSourceBehavior AlertSource = "behavior"
	AlertSourceGaming   AlertSource = "gaming"
)

// AlertEvent is pushed to alert stream subscribers. Behavior carries one new
// alert; Gaming carries the full current list.
type AlertEvent struct {
	Source   AlertSource
	Behavior *BehaviorAlert
	Gaming   []GameAlert
}
