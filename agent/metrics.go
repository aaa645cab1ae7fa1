package agent

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var actionsTaken = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "grl_agent_actions_total",
	Help: "Number of actions chosen by agents, by how they were chosen",
}, []string{"choice"})

var valueUpdates = promauto.NewCounter(prometheus.CounterOpts{
	Name: "grl_agent_value_updates_total",
	Help: "Number of Q-value updates applied",
})

var rewardTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "grl_agent_reward_total",
	Help: "Sum of rewards received by agents",
})
