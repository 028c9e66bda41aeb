package model

// SpinAttempt is what the client reports for one spin.
type SpinAttempt struct {
	Bet            int
	Won            bool
	WinAmount      int
	BalanceBefore  int
	BalanceAfter   int
	Symbols        []string
	Multiplier     float64
	FreeSpin       bool
	ConfirmationID string
}

// SpinOutcome is the combined answer of the gate, the behavior monitor and
// the alert list after one spin attempt.
type SpinOutcome struct {
	Allowed  bool
	Decision SpinDecision
	Metrics  BehaviorMetrics
	Alerts   []GameAlert
}
