package order

// transitions is the order state machine. Rejected, completed and
// cancelled are terminal.
var transitions = map[string][]string{
	StatusPending:   {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved:  {StatusCompleted, StatusCancelled},
	StatusRejected:  {},
	StatusCompleted: {},
	StatusCancelled: {},
}

// AllowTransition reports whether an order may move from one status to
// another.
func AllowTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status has no outgoing transitions.
func IsTerminal(status string) bool {
	return len(transitions[status]) == 0
}
