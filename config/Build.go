package config

import (
	"fmt"
	"image"

	"github.com/samuelfneumann/pongdqn/agent/deepq"
	"github.com/samuelfneumann/pongdqn/agent/policy"
	"github.com/samuelfneumann/pongdqn/environment/pong"
	"github.com/samuelfneumann/pongdqn/experiment"
	"github.com/samuelfneumann/pongdqn/expreplay"
	"github.com/samuelfneumann/pongdqn/initwfn"
	"github.com/samuelfneumann/pongdqn/network"
	"github.com/samuelfneumann/pongdqn/solver"
)

// Geometry returns the field geometry described by the configuration
func (g GameConfig) Geometry() pong.Geometry {
	return pong.Geometry{
		FPS:          g.FPS,
		WindowWidth:  g.WindowWidth,
		WindowHeight: g.WindowHeight,
		GameHeight:   g.GameHeight,
		PaddleWidth:  g.PaddleWidth,
		PaddleHeight: g.PaddleHeight,
		PaddleBuffer: g.PaddleBuffer,
		BallWidth:    g.BallWidth,
		BallHeight:   g.BallHeight,
		PaddleSpeed:  g.PaddleSpeed,
		BallXSpeed:   g.BallXSpeed,
		BallYSpeed:   g.BallYSpeed,
		ServeBands:   g.ServeBands,
	}
}

// Crop returns the game area of a rendered frame, which excludes the
// strip below the field
func (g GameConfig) Crop() image.Rectangle {
	return image.Rect(0, 0, int(g.WindowWidth), int(g.GameHeight))
}

// Clock returns the clock pacing the environment steps
func (g GameConfig) Clock() (experiment.Clock, error) {
	if g.Realtime {
		return experiment.NewFrameClock(g.FPS)
	}
	return experiment.NewFixedClock(g.FPS)
}

// Rewards returns the reward scheme described by the configuration
func (r RewardsConfig) Rewards() pong.Rewards {
	return pong.Rewards{
		AgentHit:     r.AgentHit,
		AgentMiss:    r.AgentMiss,
		OpponentHit:  r.OpponentHit,
		OpponentMiss: r.OpponentMiss,
	}
}

// Architecture returns the Q-network architecture described by the
// configuration
func (c *Config) Architecture() network.Architecture {
	conv := make([]network.ConvLayer, len(c.Network.ConvFilters))
	for i := range conv {
		conv[i] = network.ConvLayer{
			Filters: c.Network.ConvFilters[i],
			Kernel:  c.Network.ConvKernels[i],
			Stride:  c.Network.ConvStrides[i],
		}
	}

	return network.Architecture{
		Channels:   c.Agent.FrameHistory,
		Height:     c.Agent.FrameHeight,
		Width:      c.Agent.FrameWidth,
		Conv:       conv,
		Hidden:     append([]int(nil), c.Network.Hidden...),
		Activation: c.Network.Activation,
		Outputs:    c.Agent.Actions,
	}
}

// DeepQ returns the configuration of the Deep Q agent
func (c *Config) DeepQ() (deepq.Config, error) {
	init, err := initwfn.New(initwfn.Type(c.Network.Init), c.Network.InitGain)
	if err != nil {
		return deepq.Config{}, fmt.Errorf("deepQ: %v", err)
	}

	s, err := solver.New(solver.Type(c.Solver.Type), c.Solver.LearningRate,
		c.Solver.Epsilon, c.Solver.Beta1, c.Solver.Beta2)
	if err != nil {
		return deepq.Config{}, fmt.Errorf("deepQ: %v", err)
	}

	config := deepq.Config{
		Network: c.Architecture(),
		InitWFn: init,
		Solver:  s,
		ExpReplay: expreplay.Config{
			Capacity:   c.Agent.ReplayCapacity,
			SampleSize: c.Agent.BatchSize,
		},
		Epsilon: policy.EpsilonSchedule{
			Initial:       c.Agent.InitialEpsilon,
			Final:         c.Agent.FinalEpsilon,
			ObservePeriod: c.Agent.ObservePeriod,
			DecaySteps:    c.Agent.EpsilonDecaySteps,
		},
		Gamma:                c.Agent.Gamma,
		TargetUpdateInterval: c.Agent.TargetUpdateFreq,
		Seed:                 c.Training.Seed,
	}
	return config, config.Validate()
}

// Online returns the configuration of the training driver
func (c *Config) Online() experiment.OnlineConfig {
	return experiment.OnlineConfig{
		Steps:           c.Training.Steps,
		FrameHistory:    c.Agent.FrameHistory,
		LogEvery:        c.Training.LogEvery,
		TerminalOnPoint: c.Training.TerminalOnPoint,
	}
}
