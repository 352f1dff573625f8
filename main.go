// Command pongdqn trains a Deep Q-Network to play the left paddle of
// Pong from raw pixels
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samuelfneumann/pongdqn/agent/deepq"
	"github.com/samuelfneumann/pongdqn/config"
	"github.com/samuelfneumann/pongdqn/environment/pong"
	"github.com/samuelfneumann/pongdqn/experiment"
	"github.com/samuelfneumann/pongdqn/experiment/checkpointer"
	"github.com/samuelfneumann/pongdqn/experiment/tracker"
	"github.com/samuelfneumann/pongdqn/preprocess"
	"github.com/samuelfneumann/pongdqn/render"
	"github.com/samuelfneumann/pongdqn/utils/progressbar"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML configuration "+
		"file")
	resume := flag.String("resume", "", "checkpoint to resume training "+
		"from, overriding training.resume")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pongdqn: %v\n", err)
		os.Exit(1)
	}
	if *resume != "" {
		cfg.Training.Resume = *resume
	}

	runID := uuid.New().String()
	logger, err := cfg.Logging.NewLogger(os.Stdout, runID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pongdqn: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, runID, logger); err != nil {
		logger.Fatal().Err(err).Msg("training failed")
	}
}

// run builds every component described by cfg and trains the agent
func run(cfg *config.Config, runID string, logger zerolog.Logger) error {
	// Environment
	geom := cfg.Game.Geometry()
	sim, err := pong.NewSimulation(geom, cfg.Rewards.Rewards(),
		cfg.Training.Seed)
	if err != nil {
		return err
	}
	game, err := pong.NewGame(sim, render.New(geom), logger)
	if err != nil {
		return err
	}
	grayscale, err := preprocess.NewGrayscale(cfg.Game.Crop(),
		cfg.Agent.FrameHeight, cfg.Agent.FrameWidth)
	if err != nil {
		return err
	}

	// Agent
	agentConfig, err := cfg.DeepQ()
	if err != nil {
		return err
	}
	q, err := deepq.New(agentConfig, logger)
	if err != nil {
		return err
	}
	defer q.Close()

	if cfg.Training.Resume != "" {
		if err := checkpointer.Load(cfg.Training.Resume, q); err != nil {
			return err
		}
	}

	// Tracking and checkpointing
	score, err := tracker.NewScore(cfg.Training.LogEvery,
		cfg.Training.HistoryFile)
	if err != nil {
		return err
	}

	var checkpointers []checkpointer.Checkpointer
	if cfg.Training.CheckpointEvery > 0 {
		filename := checkpointer.FilenameEnumerator(0,
			cfg.Training.CheckpointDir, runID+"-", ".bin")
		c, err := checkpointer.NewNStep(cfg.Training.CheckpointEvery, q,
			filename, logger)
		if err != nil {
			return err
		}
		checkpointers = append(checkpointers, c)
	}

	// Experiment
	clock, err := cfg.Game.Clock()
	if err != nil {
		return err
	}
	e, err := experiment.NewOnline(game, q, grayscale, clock, cfg.Online(),
		[]tracker.Tracker{score}, checkpointers, logger)
	if err != nil {
		return err
	}
	if cfg.Training.Progress {
		e.SetProgressBar(progressbar.NewManualProgressBar(os.Stderr, 50,
			cfg.Training.Steps))
	}

	logger.Info().
		Int("steps", cfg.Training.Steps).
		Int("observe", agentConfig.ObservePeriod()).
		Int("batch", agentConfig.BatchSize()).
		Str("architecture", fmt.Sprintf("%+v", agentConfig.Network)).
		Msg("training started")

	if err := e.Run(); err != nil {
		return err
	}
	if err := e.Save(); err != nil {
		return err
	}
	if err := checkpointer.Save(cfg.Training.ModelFile, q); err != nil {
		return err
	}

	summary := score.Summary()
	logger.Info().
		Int("steps", e.Steps()).
		Float64("final_score", summary.Final).
		Float64("mean_window_gain", summary.Mean).
		Float64("stddev_window_gain", summary.StdDev).
		Str("model", cfg.Training.ModelFile).
		Msg("training finished")
	return nil
}
