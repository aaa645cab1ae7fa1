// Package maze implements the blind maze: a square grid in which the agent cannot see its position. Every step emits the same "blind" percept, except when the agent reaches the goal cell at the origin, which pays a reward of 1 and teleports the agent to a random cell.
package maze

import (
	"log/slog"
	"math/rand/v2"
)

type Action string

const (
	Up    Action = "u"
	Down  Action = "d"
	Left  Action = "l"
	Right Action = "r"
)

// Actions is the action set of the maze, in a fixed order.
var Actions = []Action{Up, Down, Left, Right}

type State struct {
	X int
	Y int
}

// Goal is the only rewarding cell.
var Goal = State{X: 0, Y: 0}

// Percept is what the agent observes after each step. It is comparable, so it can key a value table.
type Percept struct {
	Face   string
	Reward int
}

var (
	Blind   = Percept{Face: "-_-", Reward: 0}
	Arrived = Percept{Face: "o_o", Reward: 1}
)

const DefaultLen = 4

type BlindMaze struct {
	length int
	state  State
	rng    *rand.Rand
	logger *slog.Logger
}

// New creates a maze of length x length cells and places the agent on a random cell. Lengths below 1 fall back to DefaultLen.
func New(length int, rng *rand.Rand, logger *slog.Logger) *BlindMaze {
	if length < 1 {
		length = DefaultLen
	}
	if logger == nil {
		logger = slog.Default()
	}
	m := &BlindMaze{
		length: length,
		rng:    rng,
		logger: logger.With("system", "maze"),
	}
	m.Reset()
	return m
}

func (m *BlindMaze) Len() int {
	return m.length
}

func (m *BlindMaze) State() State {
	return m.state
}

// States lists every cell, column by column.
func (m *BlindMaze) States() []State {
	out := make([]State, 0, m.length*m.length)
	for x := range m.length {
		for y := range m.length {
			out = append(out, State{X: x, Y: y})
		}
	}
	return out
}

// Reset moves the agent to a uniformly random cell (which may be the goal).
func (m *BlindMaze) Reset() {
	states := m.States()
	m.state = states[m.rng.IntN(len(states))]
}

// Transition returns the cell reached from s by taking a. Moves into a wall leave the position unchanged on that axis; unknown actions (including the empty action) do not move.
func (m *BlindMaze) Transition(s State, a Action) State {
	switch a {
	case Up:
		return State{X: s.X, Y: min(s.Y+1, m.length-1)}
	case Down:
		return State{X: s.X, Y: max(s.Y-1, 0)}
	case Left:
		return State{X: max(s.X-1, 0), Y: s.Y}
	case Right:
		return State{X: min(s.X+1, m.length-1), Y: s.Y}
	default:
		return s
	}
}

// Emit returns the percept for the agent standing on s. Reaching the goal resets the agent to a random cell.
func (m *BlindMaze) Emit(s State) Percept {
	if s == Goal {
		m.logger.Debug("goal reached, resetting")
		m.Reset()
		return Arrived
	}
	return Blind
}

// React moves the agent and returns what it perceives.
func (m *BlindMaze) React(a Action) Percept {
	m.state = m.Transition(m.state, a)
	return m.Emit(m.state)
}

// Reward of a percept.
func Reward(p Percept) float64 {
	return float64(p.Reward)
}
