// Package config loads the layered configuration of a training run:
// built in defaults, then an optional YAML file, then PONGDQN_*
// environment variables
package config

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables overriding
// configuration keys. Nested keys join their sections with
// underscores, e.g. PONGDQN_AGENT_BATCH_SIZE.
const EnvPrefix = "PONGDQN"

// Config holds all configuration of a training run
type Config struct {
	Game     GameConfig     `mapstructure:"game"`
	Rewards  RewardsConfig  `mapstructure:"rewards"`
	Agent    AgentConfig    `mapstructure:"agent"`
	Network  NetworkConfig  `mapstructure:"network"`
	Solver   SolverConfig   `mapstructure:"solver"`
	Training TrainingConfig `mapstructure:"training"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// GameConfig holds the field geometry and frame rate
type GameConfig struct {
	FPS          int     `mapstructure:"fps"`
	WindowWidth  float64 `mapstructure:"window_width"`
	WindowHeight float64 `mapstructure:"window_height"`
	GameHeight   float64 `mapstructure:"game_height"`
	PaddleWidth  float64 `mapstructure:"paddle_width"`
	PaddleHeight float64 `mapstructure:"paddle_height"`
	PaddleBuffer float64 `mapstructure:"paddle_buffer"`
	BallWidth    float64 `mapstructure:"ball_width"`
	BallHeight   float64 `mapstructure:"ball_height"`
	PaddleSpeed  float64 `mapstructure:"paddle_speed"`
	BallXSpeed   float64 `mapstructure:"ball_x_speed"`
	BallYSpeed   float64 `mapstructure:"ball_y_speed"`
	ServeBands   int     `mapstructure:"serve_bands"`

	// Realtime paces steps with a wall clock instead of a fixed
	// frame interval
	Realtime bool `mapstructure:"realtime"`
}

// RewardsConfig holds the reward of each scoring event
type RewardsConfig struct {
	AgentHit     float64 `mapstructure:"agent_hit"`
	AgentMiss    float64 `mapstructure:"agent_miss"`
	OpponentHit  float64 `mapstructure:"opponent_hit"`
	OpponentMiss float64 `mapstructure:"opponent_miss"`
}

// AgentConfig holds the Deep Q agent's settings
type AgentConfig struct {
	Actions           int     `mapstructure:"actions"`
	FrameHistory      int     `mapstructure:"frame_history"`
	FrameHeight       int     `mapstructure:"frame_height"`
	FrameWidth        int     `mapstructure:"frame_width"`
	ObservePeriod     int     `mapstructure:"observe_period"`
	ReplayCapacity    int     `mapstructure:"replay_capacity"`
	BatchSize         int     `mapstructure:"batch_size"`
	Gamma             float64 `mapstructure:"gamma"`
	InitialEpsilon    float64 `mapstructure:"initial_epsilon"`
	FinalEpsilon      float64 `mapstructure:"final_epsilon"`
	EpsilonDecaySteps int     `mapstructure:"epsilon_decay_steps"`
	TargetUpdateFreq  int     `mapstructure:"target_update_freq"`
}

// NetworkConfig holds the Q-network architecture. ConvFilters,
// ConvKernels, and ConvStrides describe one convolution per index.
type NetworkConfig struct {
	ConvFilters []int   `mapstructure:"conv_filters"`
	ConvKernels []int   `mapstructure:"conv_kernels"`
	ConvStrides []int   `mapstructure:"conv_strides"`
	Hidden      []int   `mapstructure:"hidden"`
	Activation  string  `mapstructure:"activation"`
	Init        string  `mapstructure:"init"`
	InitGain    float64 `mapstructure:"init_gain"`
}

// SolverConfig holds the gradient solver settings
type SolverConfig struct {
	Type         string  `mapstructure:"type"`
	LearningRate float64 `mapstructure:"learning_rate"`
	Epsilon      float64 `mapstructure:"epsilon"`
	Beta1        float64 `mapstructure:"beta1"`
	Beta2        float64 `mapstructure:"beta2"`
}

// TrainingConfig holds the driver settings
type TrainingConfig struct {
	Steps           int    `mapstructure:"steps"`
	LogEvery        int    `mapstructure:"log_every"`
	Seed            uint64 `mapstructure:"seed"`
	CheckpointEvery int    `mapstructure:"checkpoint_every"`
	CheckpointDir   string `mapstructure:"checkpoint_dir"`
	HistoryFile     string `mapstructure:"history_file"`
	ModelFile       string `mapstructure:"model_file"`
	Progress        bool   `mapstructure:"progress"`
	TerminalOnPoint bool   `mapstructure:"terminal_on_point"`
	Resume          string `mapstructure:"resume"`
}

// LoggingConfig holds the logger settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// setDefaults sets all default values using Viper's SetDefault
func setDefaults(v *viper.Viper) {
	// Game defaults
	v.SetDefault("game.fps", 60)
	v.SetDefault("game.window_width", 400)
	v.SetDefault("game.window_height", 420)
	v.SetDefault("game.game_height", 400)
	v.SetDefault("game.paddle_width", 15)
	v.SetDefault("game.paddle_height", 60)
	v.SetDefault("game.paddle_buffer", 15)
	v.SetDefault("game.ball_width", 20)
	v.SetDefault("game.ball_height", 20)
	v.SetDefault("game.paddle_speed", 5)
	v.SetDefault("game.ball_x_speed", 3)
	v.SetDefault("game.ball_y_speed", 3)
	v.SetDefault("game.serve_bands", 10)
	v.SetDefault("game.realtime", false)

	// Reward defaults
	v.SetDefault("rewards.agent_hit", 100.0)
	v.SetDefault("rewards.agent_miss", -10.0)
	v.SetDefault("rewards.opponent_hit", 0.0)
	v.SetDefault("rewards.opponent_miss", 5.0)

	// Agent defaults
	v.SetDefault("agent.actions", 3)
	v.SetDefault("agent.frame_history", 4)
	v.SetDefault("agent.frame_height", 40)
	v.SetDefault("agent.frame_width", 40)
	v.SetDefault("agent.observe_period", 50000)
	v.SetDefault("agent.replay_capacity", 100000)
	v.SetDefault("agent.batch_size", 64)
	v.SetDefault("agent.gamma", 0.975)
	v.SetDefault("agent.initial_epsilon", 1.0)
	v.SetDefault("agent.final_epsilon", 0.01)
	v.SetDefault("agent.epsilon_decay_steps", 500000)
	v.SetDefault("agent.target_update_freq", 500)

	// Network defaults
	v.SetDefault("network.conv_filters", []int{32, 64, 64})
	v.SetDefault("network.conv_kernels", []int{4, 4, 3})
	v.SetDefault("network.conv_strides", []int{2, 2, 1})
	v.SetDefault("network.hidden", []int{512})
	v.SetDefault("network.activation", "relu")
	v.SetDefault("network.init", "GlorotU")
	v.SetDefault("network.init_gain", 1.0)

	// Solver defaults
	v.SetDefault("solver.type", "Adam")
	v.SetDefault("solver.learning_rate", 5e-5)
	v.SetDefault("solver.epsilon", 1e-7)
	v.SetDefault("solver.beta1", 0.9)
	v.SetDefault("solver.beta2", 0.999)

	// Training defaults
	v.SetDefault("training.steps", 100000)
	v.SetDefault("training.log_every", 250)
	v.SetDefault("training.seed", 1)
	v.SetDefault("training.checkpoint_every", 0)
	v.SetDefault("training.checkpoint_dir", "checkpoints")
	v.SetDefault("training.history_file", "score_history.bin")
	v.SetDefault("training.model_file", "model.bin")
	v.SetDefault("training.progress", false)
	v.SetDefault("training.terminal_on_point", false)
	v.SetDefault("training.resume", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Default returns the configuration made of built in defaults only
func Default() (*Config, error) {
	return Load("")
}

// Load returns the configuration built from defaults, the YAML file at
// path if path is non-empty, and PONGDQN_* environment variables, in
// increasing order of precedence
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "load: could not read config %v",
				path)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "load: unable to decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "load: invalid config")
	}
	return cfg, nil
}

// Validate checks the values which are not validated by the
// components built from the configuration
func (c *Config) Validate() error {
	n := len(c.Network.ConvFilters)
	if len(c.Network.ConvKernels) != n || len(c.Network.ConvStrides) != n {
		return fmt.Errorf("validate: convolution settings must have equal "+
			"lengths\n\thave(filters=%v, kernels=%v, strides=%v)",
			c.Network.ConvFilters, c.Network.ConvKernels,
			c.Network.ConvStrides)
	}
	if c.Agent.FrameHeight < 1 || c.Agent.FrameWidth < 1 {
		return fmt.Errorf("validate: frame size must be positive\n\t"+
			"have(%v×%v)", c.Agent.FrameHeight, c.Agent.FrameWidth)
	}
	if c.Training.Steps < 0 {
		return fmt.Errorf("validate: training steps must be >= 0\n\t"+
			"have(%v)", c.Training.Steps)
	}
	if c.Training.LogEvery < 1 {
		return fmt.Errorf("validate: log interval must be positive\n\t"+
			"have(%v)", c.Training.LogEvery)
	}
	if c.Training.CheckpointEvery < 0 {
		return fmt.Errorf("validate: checkpoint interval must be >= 0\n\t"+
			"have(%v)", c.Training.CheckpointEvery)
	}
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch c.Logging.Format {
	case FormatConsole, FormatJSON:
	default:
		return fmt.Errorf("validate: unknown log format %q\n\t"+
			"want(%q or %q)", c.Logging.Format, FormatConsole, FormatJSON)
	}
	return nil
}
