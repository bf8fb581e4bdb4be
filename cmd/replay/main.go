package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/journey-engine/internal/config"
	"github.com/danielpatrickdp/journey-engine/internal/logging"
	"github.com/danielpatrickdp/journey-engine/internal/replay"
	"github.com/danielpatrickdp/journey-engine/internal/session"
	"github.com/danielpatrickdp/journey-engine/internal/state"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to journey.db (DB mode)")
	key := flag.String("key", "", "session key to replay (DB mode)")
	fixturePath := flag.String("fixture", "", "path to fixture JSON (fixture mode)")
	cfgPath := flag.String("config", envOr(config.EnvConfigPath, ""), "path to journey.yaml (DB mode)")
	flag.Parse()

	if (*dbPath == "" && *fixturePath == "") || (*dbPath != "" && *fixturePath != "") || (*dbPath != "" && *key == "") {
		fmt.Fprintln(os.Stderr, "usage: replay --db path/to/journey.db --key session-key")
		fmt.Fprintln(os.Stderr, "       replay --fixture path/to/fixture.json")
		os.Exit(2)
	}

	var exitCode int
	if *fixturePath != "" {
		exitCode = runFixtureMode(*fixturePath)
	} else {
		cfg, err := config.Load(*cfgPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load config: %v\n", err)
			os.Exit(2)
		}
		exitCode = runDBMode(*dbPath, *key, cfg.Session)
	}
	os.Exit(exitCode)
}

// #endregion main

// #region db-mode

// runDBMode replays the event log of the session stored under key and
// compares the outcome with the stored record. cfg must match the settings
// the session was recorded under.
func runDBMode(dbPath, key string, cfg session.Config) int {
	store, err := state.NewStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		return 2
	}
	defer store.Close()

	ctx := context.Background()
	row, err := store.LoadSession(ctx, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load session: %v\n", err)
		return 2
	}
	stored, err := session.Decode(row.Payload, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "decode session: %v\n", err)
		return 2
	}
	events, err := store.ListEvents(ctx, row.SessionID, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list events: %v\n", err)
		return 2
	}
	if len(events) == 0 {
		fmt.Fprintf(os.Stderr, "no events logged for session %s\n", row.SessionID)
		return 2
	}

	steps := replay.StepsFromEvents(events)
	logged := make([]string, len(steps))
	for i, s := range steps {
		logged[i] = "accepted"
		if s.Kind == logging.EventRejected {
			logged[i] = "rejected"
		}
	}

	rc := replay.DefaultReplayConfig()
	rc.Session = cfg
	results, final := replay.Replay(steps, rc)
	code := printComparison(results, logged)

	want, got := stored.Scores().Rounded(), final.Scores().Rounded()
	if want != got || stored.CurrentLayer() != final.CurrentLayer() || stored.CompletedCount() != final.CompletedCount() {
		fmt.Printf("\nFinal state DIFF: stored layer=%s completed=%d scores=%+v, replayed layer=%s completed=%d scores=%+v\n",
			stored.CurrentLayer(), stored.CompletedCount(), want,
			final.CurrentLayer(), final.CompletedCount(), got)
		return 1
	}
	fmt.Println("\nFinal state OK")
	return code
}

// #endregion db-mode

// #region fixture-mode

func runFixtureMode(path string) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	results, final := replay.Replay(f.Steps, f.Config.ToReplayConfig())
	code := printComparison(results, f.ExpectedActions)

	sum := replay.Summarize(results, final)
	fmt.Println(replay.Describe(sum))
	if diffs := f.Expected.Check(sum); len(diffs) > 0 {
		for _, d := range diffs {
			fmt.Printf("  DIFF %s\n", d)
		}
		return 1
	}
	return code
}

// #endregion fixture-mode

// #region output

// printComparison outputs a comparison table and returns the exit code.
// expected holds the reference actions; steps beyond it are listed unchecked.
func printComparison(results []replay.StepResult, expected []string) int {
	fmt.Printf("%-5s| %-18s| %-12s| %-12s| %s\n", "Step", "Kind", "Expected", "Replayed", "Match")
	fmt.Printf("%-5s+%-19s+%-13s+%-13s+%s\n",
		"-----", "-------------------", "-------------", "-------------", "------")

	checked, matches := 0, 0
	for i, r := range results {
		exp, match := "-", ""
		if i < len(expected) {
			exp = expected[i]
			checked++
			match = "DIFF"
			if actionsMatch(exp, r.Action) {
				match = "OK"
				matches++
			}
		}
		fmt.Printf("%-5d| %-18s| %-12s| %-12s| %s\n", i, r.Kind, exp, r.Action, match)
	}

	diverge := checked - matches
	fmt.Printf("\nSummary: %d steps, %d checked, %d match, %d diverge\n", len(results), checked, matches, diverge)
	if diverge > 0 {
		return 1
	}
	return 0
}

// actionsMatch compares expected vs replayed action. "accepted" comes from
// the event log, which cannot tell applied from ignored.
func actionsMatch(expected, replayed string) bool {
	if expected == replayed {
		return true
	}
	return expected == "accepted" && (replayed == replay.ActionApplied || replayed == replay.ActionIgnored)
}

// #endregion output

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
