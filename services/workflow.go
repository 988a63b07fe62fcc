package services

import "pqrssi-portal/models"

// Workflow decides which status changes an administrator may apply.
//
// With no configured graph every status is reachable from every other. With a
// graph, a status missing from it is terminal. Re-applying the current status
// is always allowed so a comment can be logged without moving the request.
type Workflow struct {
	transitions map[int]map[int]struct{}
}

// NewWorkflow builds a workflow from a map of current status id to the ids it
// may move to. A nil or empty map gives the permissive workflow.
func NewWorkflow(graph map[int][]int) *Workflow {
	if len(graph) == 0 {
		return &Workflow{}
	}

	transitions := make(map[int]map[int]struct{}, len(graph))
	for from, targets := range graph {
		set := make(map[int]struct{}, len(targets))
		for _, to := range targets {
			set[to] = struct{}{}
		}
		transitions[from] = set
	}
	return &Workflow{transitions: transitions}
}

// Permissive reports whether any transition is allowed.
func (w *Workflow) Permissive() bool {
	return w == nil || w.transitions == nil
}

// Allows reports whether a request in status from may move to status to.
func (w *Workflow) Allows(from, to int) bool {
	if w.Permissive() || from == to {
		return true
	}
	targets, ok := w.transitions[from]
	if !ok {
		return false
	}
	_, ok = targets[to]
	return ok
}

// Targets filters statuses down to those reachable from the given status.
func (w *Workflow) Targets(from int, statuses []models.Status) []models.Status {
	if w.Permissive() {
		return statuses
	}
	out := make([]models.Status, 0, len(statuses))
	for _, st := range statuses {
		if w.Allows(from, st.StatusID) {
			out = append(out, st)
		}
	}
	return out
}
