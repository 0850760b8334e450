package models

import "github.com/pkg/errors"

// RequestStatus describes the life-cycle state of a request.
type RequestStatus string

const (
	StatusNew       RequestStatus = "new"
	StatusInProcess RequestStatus = "in_process"
	StatusCompleted RequestStatus = "completed"
	StatusCanceled  RequestStatus = "canceled"
)

// Action is a staff operation on a request's life cycle.
type Action string

const (
	ActionAccept   Action = "accept"
	ActionReject   Action = "reject"
	ActionComplete Action = "complete"
)

// Transition is one edge of the request state machine.
type Transition struct {
	From RequestStatus
	To   RequestStatus
}

// transitions is the full state machine:
// new -> in_process -> {completed, canceled}. Terminal states have no
// outgoing edges; anything not listed here is rejected.
var transitions = map[Action]Transition{
	ActionAccept:   {From: StatusNew, To: StatusInProcess},
	ActionReject:   {From: StatusInProcess, To: StatusCanceled},
	ActionComplete: {From: StatusInProcess, To: StatusCompleted},
}

// ErrUnknownAction is returned for action values outside the state machine.
var ErrUnknownAction = errors.New("unknown lifecycle action")

// TransitionFor resolves the edge for an action, or ErrUnknownAction.
func TransitionFor(action Action) (Transition, error) {
	tr, ok := transitions[action]
	if !ok {
		return Transition{}, errors.Wrapf(ErrUnknownAction, "%q", action)
	}
	return tr, nil
}

// Terminal reports whether no transition leaves the given status.
func (s RequestStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}
