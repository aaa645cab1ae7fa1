package agent

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/bluesky-social/grl/learning"
	"github.com/bluesky-social/grl/maze"
)

type GreedyConfig struct {
	// probability of taking a uniformly random action instead of the greedy one
	ExplorationFactor float64
	DiscountFactor    float64
	// range initial Q-values are drawn from
	QInit learning.Range
	// keep Q-values drawn by reads of unvisited pairs
	QPersist bool
	// initial per-pair learning rate; squared after every update of the pair
	LearningRateInit float64
}

func DefaultGreedyConfig() GreedyConfig {
	return GreedyConfig{
		ExplorationFactor: 0.1,
		DiscountFactor:    0.999,
		QInit:             learning.Range{Low: 1, High: 1},
		QPersist:          false,
		LearningRateInit:  0.999,
	}
}

// GreedyQAgent is an epsilon-greedy tabular Q-learning agent. Q-values and per-pair learning rates live in lazily populated tables indexed by (state, action), where the state is the history's mapped state.
type GreedyQAgent struct {
	cfg     GreedyConfig
	actions []maze.Action
	history *History
	rng     *rand.Rand
	logger  *slog.Logger

	Q     *learning.Storage[any]
	Alpha *learning.Storage[any]

	prevState  any
	prevAction maze.Action
	acted      bool
}

func NewGreedyQAgent(cfg GreedyConfig, actions []maze.Action, hist *History, rng *rand.Rand, logger *slog.Logger) *GreedyQAgent {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("system", "agent")

	q := learning.New[any](
		learning.WithRange(cfg.QInit.Low, cfg.QInit.High),
		learning.WithPersist(cfg.QPersist),
		learning.WithRand(rng),
		learning.WithLogger(logger),
	)
	keys := make([]any, len(actions))
	for i, a := range actions {
		keys[i] = a
	}
	q.SetDefaultKeys(keys...)

	alpha := learning.New[any](
		learning.WithRange(cfg.LearningRateInit, cfg.LearningRateInit),
		learning.WithRand(rng),
		learning.WithLogger(logger),
	)

	return &GreedyQAgent{
		cfg:     cfg,
		actions: actions,
		history: hist,
		rng:     rng,
		logger:  logger,
		Q:       q,
		Alpha:   alpha,
	}
}

// Act learns from the transition which produced e (if any), then picks the next action: greedy with respect to Q for the current state, or uniformly random with probability ExplorationFactor.
func (a *GreedyQAgent) Act(e maze.Percept) (maze.Action, error) {
	if len(a.actions) == 0 {
		return "", fmt.Errorf("greedy agent has no actions")
	}
	state := a.history.MappedState()

	if a.acted {
		if err := a.learn(a.prevState, a.prevAction, maze.Reward(e), state); err != nil {
			return "", err
		}
	}

	row, err := a.Q.Child(state)
	if err != nil {
		return "", err
	}
	best, err := row.Argmax()
	if err != nil {
		return "", fmt.Errorf("greedy action for %v: %w", state, err)
	}
	action, ok := best.(maze.Action)
	if !ok {
		return "", fmt.Errorf("unexpected Q-table key %v (%T)", best, best)
	}

	if a.rng.Float64() < a.cfg.ExplorationFactor {
		action = a.actions[a.rng.IntN(len(a.actions))]
		actionsTaken.WithLabelValues("explore").Inc()
	} else {
		actionsTaken.WithLabelValues("greedy").Inc()
	}

	a.prevState = state
	a.prevAction = action
	a.acted = true
	return action, nil
}

// one-step Q-learning update; the pair's learning rate decays by squaring
func (a *GreedyQAgent) learn(s any, act maze.Action, r float64, next any) error {
	qRow, err := a.Q.Child(s)
	if err != nil {
		return err
	}
	q, err := qRow.Value(act)
	if err != nil {
		return err
	}
	alphaRow, err := a.Alpha.Child(s)
	if err != nil {
		return err
	}
	alpha, err := alphaRow.Value(act)
	if err != nil {
		return err
	}
	nextRow, err := a.Q.Child(next)
	if err != nil {
		return err
	}
	best, err := nextRow.Max()
	if err != nil {
		return fmt.Errorf("max Q for %v: %w", next, err)
	}

	updated := q + alpha*(r+a.cfg.DiscountFactor*best-q)
	// with persist disabled the read of q detaches an empty row, so look it up again before writing
	qRow, err = a.Q.Child(s)
	if err != nil {
		return err
	}
	if err := qRow.Set(act, updated); err != nil {
		return err
	}
	if err := alphaRow.Set(act, alpha*alpha); err != nil {
		return err
	}
	valueUpdates.Inc()
	a.logger.Debug("updated q-value", "state", s, "action", act, "reward", r, "q", updated, "alpha", alpha)
	return nil
}
