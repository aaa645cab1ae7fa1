// Package agent contains agents for the blind maze and the loop which runs them.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/bluesky-social/grl/maze"
)

// Agent picks the next action given the latest percept.
type Agent interface {
	Act(e maze.Percept) (maze.Action, error)
}

// Environment reacts to an action with a percept. The first call of a run gets the empty action.
type Environment interface {
	React(a maze.Action) maze.Percept
}

// RandomAgent picks actions uniformly at random.
type RandomAgent struct {
	actions []maze.Action
	rng     *rand.Rand
}

func NewRandomAgent(actions []maze.Action, rng *rand.Rand) *RandomAgent {
	return &RandomAgent{
		actions: actions,
		rng:     rng,
	}
}

func (a *RandomAgent) Act(e maze.Percept) (maze.Action, error) {
	if len(a.actions) == 0 {
		return "", fmt.Errorf("random agent has no actions")
	}
	actionsTaken.WithLabelValues("random").Inc()
	return a.actions[a.rng.IntN(len(a.actions))], nil
}

type Result struct {
	Steps       int
	TotalReward float64
	Goals       int
}

// Run drives the interaction loop for the given number of steps. The environment moves first: it reacts to the previous action (none on the first step), the outcome is recorded in the history, and the agent answers with the next action.
func Run(ctx context.Context, env Environment, ag Agent, hist *History, steps int, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("system", "agent")

	var res Result
	var a maze.Action
	for t := range steps {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		e := env.React(a)
		hist.Record(a, e)

		r := maze.Reward(e)
		res.Steps++
		res.TotalReward += r
		rewardTotal.Add(r)
		if e == maze.Arrived {
			res.Goals++
			logger.Info("goal reached", "step", t)
		}

		next, err := ag.Act(e)
		if err != nil {
			return res, fmt.Errorf("step %d: %w", t, err)
		}
		a = next
	}
	return res, nil
}
