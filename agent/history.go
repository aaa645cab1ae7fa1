package agent

import (
	"github.com/bluesky-social/grl/maze"
)

// Step is one completed interaction: the action taken and the percept it produced. The first step of a run has an empty action.
type Step struct {
	Action  maze.Action
	Percept maze.Percept
}

// StateMap reduces a history to the state an agent learns on. It must return a comparable value.
type StateMap func(steps []Step) any

// LastPercept maps a history to its most recent percept.
func LastPercept(steps []Step) any {
	if len(steps) == 0 {
		return nil
	}
	return steps[len(steps)-1].Percept
}

const DefaultHistoryLen = 10

// History is a bounded record of recent steps, oldest first.
type History struct {
	maxLen   int
	steps    []Step
	stateMap StateMap
}

// NewHistory keeps at most maxLen steps (DefaultHistoryLen if maxLen < 1) and maps states with stateMap (LastPercept if nil).
func NewHistory(maxLen int, stateMap StateMap) *History {
	if maxLen < 1 {
		maxLen = DefaultHistoryLen
	}
	if stateMap == nil {
		stateMap = LastPercept
	}
	return &History{
		maxLen:   maxLen,
		stateMap: stateMap,
	}
}

func (h *History) Record(a maze.Action, e maze.Percept) {
	h.steps = append(h.steps, Step{Action: a, Percept: e})
	if len(h.steps) > h.maxLen {
		h.steps = h.steps[len(h.steps)-h.maxLen:]
	}
}

// Steps returns a copy of the recorded steps.
func (h *History) Steps() []Step {
	out := make([]Step, len(h.steps))
	copy(out, h.steps)
	return out
}

func (h *History) Len() int {
	return len(h.steps)
}

// MappedState is the state of the current history under the configured StateMap.
func (h *History) MappedState() any {
	return h.stateMap(h.steps)
}
