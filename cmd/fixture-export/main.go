package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/journey-engine/internal/config"
	"github.com/danielpatrickdp/journey-engine/internal/engine"
	"github.com/danielpatrickdp/journey-engine/internal/replay"
	"github.com/danielpatrickdp/journey-engine/internal/session"
	"github.com/danielpatrickdp/journey-engine/internal/state"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to journey.db")
	key := flag.String("key", "", "session key to export")
	outPath := flag.String("out", "", "output fixture JSON path")
	description := flag.String("description", "", "fixture description")
	cfgPath := flag.String("config", envOr(config.EnvConfigPath, ""), "path to journey.yaml the session was recorded under")
	flag.Parse()

	if *dbPath == "" || *key == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --db path/to/journey.db --key session-key --out path/to/fixture.json [--description text]")
		os.Exit(2)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(2)
	}
	if err := run(*dbPath, *key, *outPath, *description, cfg.Session); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region extract

func run(dbPath, key, outPath, description string, cfg session.Config) error {
	store, err := state.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer store.Close()

	ctx := context.Background()
	row, err := store.LoadSession(ctx, key)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	stored, err := session.Decode(row.Payload, cfg)
	if err != nil {
		return fmt.Errorf("decode session: %w", err)
	}
	events, err := store.ListEvents(ctx, row.SessionID, 0)
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}
	if len(events) == 0 {
		return fmt.Errorf("no events logged for session %s", row.SessionID)
	}

	steps := replay.StepsFromEvents(events)
	rc := replay.DefaultReplayConfig()
	rc.Session = cfg
	results, _ := replay.Replay(steps, rc)
	actions := make([]string, len(results))
	for i, r := range results {
		actions[i] = r.Action
	}

	if description == "" {
		description = fmt.Sprintf("Exported from %s, session %s (%d events)", key, row.SessionID, len(events))
	}
	f := &replay.Fixture{
		Description: description,
		Config: replay.FixtureConfig{
			Scoring: replay.FixtureScoringConfig{
				AssumedContentTotal:         cfg.Scoring.AssumedContentTotal,
				EngagementSaturationSeconds: cfg.Scoring.EngagementSaturationSeconds,
			},
			Gate: replay.FixtureGateConfig{
				MinWeight:         cfg.Gate.MinWeight,
				MaxWeight:         cfg.Gate.MaxWeight,
				MaxElapsedSeconds: cfg.Gate.MaxElapsedSeconds,
			},
		},
		Steps:           steps,
		ExpectedActions: actions,
		Expected:        expectedFrom(engine.ViewOf(key, stored)),
	}

	if err := replay.SaveFixture(outPath, f); err != nil {
		return err
	}
	fmt.Printf("Exported %d steps from %s to %s\n", len(steps), key, outPath)
	return nil
}

// expectedFrom pins every checked field to the stored session's view.
func expectedFrom(v engine.View) replay.FixtureExpected {
	scores := v.Scores
	coarse := v.Coarse
	completed := len(v.CompletedLayers)
	terminal := v.Terminal
	exp := replay.FixtureExpected{
		Category:       v.Category.String(),
		Scores:         &scores,
		Coarse:         &coarse,
		CurrentLayer:   v.CurrentLayer.String(),
		CompletedCount: &completed,
		Terminal:       &terminal,
	}
	if len(v.Actions) > 0 {
		exp.TopAction = string(v.Actions[0].ID)
	}
	return exp
}

// #endregion extract

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
