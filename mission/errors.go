package mission

import (
	"fmt"
	"strings"
)

type NotFoundError struct {
	Id string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("mission with id '%v' not found", e.Id)
}

// InvalidTransitionError is returned when an action is not legal from the
// mission's current status. Allowed carries the actions that would have been
// accepted so that clients can present them.
type InvalidTransitionError struct {
	Action  Action
	Current Status
	Allowed []Action
}

func (e *InvalidTransitionError) Error() string {
	if len(e.Allowed) == 0 {
		return fmt.Sprintf("cannot %v mission in %v status; no actions are allowed", e.Action, e.Current)
	}
	allowed := make([]string, len(e.Allowed))
	for i, a := range e.Allowed {
		allowed[i] = string(a)
	}
	return fmt.Sprintf("cannot %v mission in %v status; allowed actions are %v", e.Action, e.Current, strings.Join(allowed, ", "))
}

type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string {
	return "mission is invalid: " + e.Detail
}
