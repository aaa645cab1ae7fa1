package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"github.com/bluesky-social/grl/agent"
	"github.com/bluesky-social/grl/learning"
	"github.com/bluesky-social/grl/maze"
	"github.com/bluesky-social/grl/pkg/metrics"

	"github.com/carlmjohnson/versioninfo"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v2"
	_ "go.uber.org/automaxprocs"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("exiting process", "error", err)
		os.Exit(-1)
	}
}

func run(args []string) error {
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	slog.SetDefault(slog.New(h))
	return newApp().Run(args)
}

func newApp() *cli.App {
	app := &cli.App{
		Name:    "grl",
		Usage:   "tabular reinforcement learning experiments on the blind maze",
		Version: versioninfo.Short(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log verbosity level (eg: warn, info, debug)",
				Value:   "info",
				EnvVars: []string{"GRL_LOG_LEVEL", "GO_LOG_LEVEL", "LOG_LEVEL"},
			},
		},
	}
	app.Commands = []*cli.Command{
		&cli.Command{
			Name:   "run",
			Usage:  "run an agent in the blind maze and print its learned tables",
			Action: runExperiment,
			Flags:  runFlags,
		},
		&cli.Command{
			Name:  "version",
			Usage: "print version",
			Action: func(cctx *cli.Context) error {
				fmt.Fprintln(cctx.App.Writer, versioninfo.Short())
				return nil
			},
		},
	}
	return app
}

var runFlags = []cli.Flag{
	&cli.IntFlag{
		Name:    "steps",
		Usage:   "number of interaction steps",
		Value:   50,
		EnvVars: []string{"GRL_STEPS"},
	},
	&cli.IntFlag{
		Name:    "maze-len",
		Usage:   "side length of the square maze",
		Value:   maze.DefaultLen,
		EnvVars: []string{"GRL_MAZE_LEN"},
	},
	&cli.StringFlag{
		Name:    "agent",
		Usage:   "agent to run (greedy, random)",
		Value:   "greedy",
		EnvVars: []string{"GRL_AGENT"},
	},
	&cli.Float64Flag{
		Name:    "exploration-factor",
		Usage:   "probability of a random action for the greedy agent",
		Value:   agent.DefaultGreedyConfig().ExplorationFactor,
		EnvVars: []string{"GRL_EXPLORATION_FACTOR"},
	},
	&cli.Float64Flag{
		Name:    "discount-factor",
		Usage:   "reward discount for the greedy agent",
		Value:   agent.DefaultGreedyConfig().DiscountFactor,
		EnvVars: []string{"GRL_DISCOUNT_FACTOR"},
	},
	&cli.Float64Flag{
		Name:    "q-init-low",
		Usage:   "lower bound of initial Q-values",
		Value:   agent.DefaultGreedyConfig().QInit.Low,
		EnvVars: []string{"GRL_Q_INIT_LOW"},
	},
	&cli.Float64Flag{
		Name:    "q-init-high",
		Usage:   "upper bound of initial Q-values",
		Value:   agent.DefaultGreedyConfig().QInit.High,
		EnvVars: []string{"GRL_Q_INIT_HIGH"},
	},
	&cli.BoolFlag{
		Name:    "q-persist",
		Usage:   "keep initial Q-values drawn for unvisited pairs",
		EnvVars: []string{"GRL_Q_PERSIST"},
	},
	&cli.Float64Flag{
		Name:    "learning-rate-init",
		Usage:   "initial per-pair learning rate",
		Value:   agent.DefaultGreedyConfig().LearningRateInit,
		EnvVars: []string{"GRL_LEARNING_RATE_INIT"},
	},
	&cli.Uint64Flag{
		Name:    "seed",
		Usage:   "random seed (0 seeds from the clock)",
		EnvVars: []string{"GRL_SEED"},
	},
	&cli.StringFlag{
		Name:    "metrics-listen",
		Usage:   "address for the prometheus metrics server (empty to disable)",
		EnvVars: []string{"GRL_METRICS_LISTEN"},
	},
}

func configLogger(cctx *cli.Context, writer io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cctx.String("log-level")) {
	case "error":
		level = slog.LevelError
	case "warn":
		level = slog.LevelWarn
	case "info":
		level = slog.LevelInfo
	case "debug":
		level = slog.LevelDebug
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

func newAgent(cctx *cli.Context, hist *agent.History, rng *rand.Rand, logger *slog.Logger) (agent.Agent, error) {
	switch cctx.String("agent") {
	case "random":
		return agent.NewRandomAgent(maze.Actions, rng), nil
	case "greedy":
		cfg := agent.GreedyConfig{
			ExplorationFactor: cctx.Float64("exploration-factor"),
			DiscountFactor:    cctx.Float64("discount-factor"),
			QInit: learning.Range{
				Low:  cctx.Float64("q-init-low"),
				High: cctx.Float64("q-init-high"),
			},
			QPersist:         cctx.Bool("q-persist"),
			LearningRateInit: cctx.Float64("learning-rate-init"),
		}
		return agent.NewGreedyQAgent(cfg, maze.Actions, hist, rng, logger), nil
	default:
		return nil, fmt.Errorf("unknown agent: %q", cctx.String("agent"))
	}
}

func runExperiment(cctx *cli.Context) error {
	logger := configLogger(cctx, os.Stderr)

	seed := cctx.Uint64("seed")
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed>>1))

	domain := maze.New(cctx.Int("maze-len"), rng, logger)
	hist := agent.NewHistory(agent.DefaultHistoryLen, agent.LastPercept)
	ag, err := newAgent(cctx, hist, rng, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cctx.Context)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	if addr := cctx.String("metrics-listen"); addr != "" {
		g.Go(func() error {
			return metrics.RunServer(ctx, addr, logger)
		})
	}

	var res agent.Result
	g.Go(func() error {
		defer cancel()
		var err error
		res, err = agent.Run(ctx, domain, ag, hist, cctx.Int("steps"), logger)
		return err
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("experiment finished", "seed", seed, "steps", res.Steps, "reward", res.TotalReward, "goals", res.Goals)

	if q, ok := ag.(*agent.GreedyQAgent); ok {
		out := cctx.App.Writer
		fmt.Fprintln(out, "Q")
		fmt.Fprint(out, q.Q.String())
		fmt.Fprintln(out, "alpha")
		fmt.Fprint(out, q.Alpha.String())
	}
	return nil
}
