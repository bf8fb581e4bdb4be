package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/journey-engine/internal/config"
	"github.com/danielpatrickdp/journey-engine/internal/engine"
	"github.com/danielpatrickdp/journey-engine/internal/session"
	"github.com/danielpatrickdp/journey-engine/internal/state"
)

var (
	dbPath     string
	cfgPath    string
	jsonOut    bool
	listLast   int
	eventsLast int
)

// #region commands

var rootCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Inspect stored journeys and their event log",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if dbPath == "" {
			return fmt.Errorf("--db is required")
		}
		return nil
	},
	SilenceUsage: true,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recently updated sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store *state.Store) error {
			return runList(cmd.Context(), store)
		})
	},
}

var showCmd = &cobra.Command{
	Use:   "show <session-key>",
	Short: "Decode one stored session and print its derived outputs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store *state.Store) error {
			return runShow(cmd.Context(), store, args[0])
		})
	},
}

var eventsCmd = &cobra.Command{
	Use:   "events <session-id>",
	Short: "Print the event log of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store *state.Store) error {
			return runEvents(cmd.Context(), store, args[0])
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", os.Getenv(config.EnvDBPath), "path to journey.db")
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", os.Getenv(config.EnvConfigPath), "path to journey.yaml the sessions were recorded under")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output as JSON instead of table")
	listCmd.Flags().IntVar(&listLast, "last", 20, "show N most recent sessions")
	eventsCmd.Flags().IntVar(&eventsLast, "last", 0, "show the first N events (0 = all)")
	rootCmd.AddCommand(listCmd, showCmd, eventsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func withStore(fn func(*state.Store) error) error {
	store, err := state.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer store.Close()
	return fn(store)
}

// #endregion commands

// #region list

type listRow struct {
	Key          string `json:"key"`
	SessionID    string `json:"session_id"`
	Lens         string `json:"lens"`
	CurrentLayer string `json:"current_layer"`
	Completed    int    `json:"completed_count"`
	Responses    int    `json:"responses"`
	UpdatedAt    string `json:"updated_at"`
}

func runList(ctx context.Context, store *state.Store) error {
	rows, err := store.ListSessions(ctx, listLast)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(os.Stderr, "no sessions found")
		return nil
	}

	out := make([]listRow, len(rows))
	for i, r := range rows {
		out[i] = listRow{
			Key:          r.Key,
			SessionID:    r.SessionID,
			Lens:         r.Lens,
			CurrentLayer: r.CurrentLayer,
			Completed:    r.CompletedCount,
			Responses:    r.Responses,
			UpdatedAt:    r.UpdatedAt.Format("2006-01-02T15:04:05Z"),
		}
	}
	if jsonOut {
		return printJSON(out)
	}

	fmt.Printf("%-16s  %-12s  %-9s  %-18s  %4s  %5s  %s\n",
		"Key", "Session", "Lens", "Layer", "Done", "Resp", "Updated")
	fmt.Printf("%-16s+-%-12s+-%-9s+-%-18s+-%4s+-%5s+-%s\n",
		"----------------", "------------", "---------", "------------------", "----", "-----", "--------------------")
	for _, r := range out {
		fmt.Printf("%-16s  %-12s  %-9s  %-18s  %4d  %5d  %s\n",
			shortID(r.Key, 16), shortID(r.SessionID, 12), r.Lens, r.CurrentLayer, r.Completed, r.Responses, r.UpdatedAt)
	}
	return nil
}

// #endregion list

// #region show

type showOutput struct {
	Record session.Record `json:"record"`
	View   engine.View    `json:"view"`
}

func runShow(ctx context.Context, store *state.Store, key string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	row, err := store.LoadSession(ctx, key)
	if err != nil {
		return err
	}
	s, err := session.Decode(row.Payload, cfg.Session)
	if err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	v := engine.ViewOf(key, s)
	if jsonOut {
		return printJSON(showOutput{Record: s.Record(), View: v})
	}

	fmt.Printf("Key:        %s\n", key)
	fmt.Printf("Session:    %s\n", v.SessionID)
	fmt.Printf("Lens:       %s\n", v.Lens)
	fmt.Printf("Layer:      %s (question %d)\n", v.CurrentLayer, v.QuestionIndex)
	fmt.Printf("Completed:  %v\n", v.CompletedLayers)
	fmt.Printf("Responses:  %d   Viewed: %d   Conversions: %d\n", v.Responses, v.Viewed, v.Conversions)
	fmt.Printf("Scores:     alignment=%d awareness=%d persuasion=%d engagement=%d\n",
		v.Scores.ValueAlignment, v.Scores.DataAwareness, v.Scores.PersuasionLevel, v.Scores.EngagementDepth)
	fmt.Printf("Coarse:     %d -> %s\n", v.Coarse, v.Category)
	fmt.Printf("\nActions:\n")
	for _, a := range v.Actions {
		fmt.Printf("  %-12s %3d  %s\n", a.ID, a.Priority, a.Reasoning)
	}
	fmt.Printf("\n%s\n", v.Narrative)
	return nil
}

// #endregion show

// #region events

func runEvents(ctx context.Context, store *state.Store, sessionID string) error {
	events, err := store.ListEvents(ctx, sessionID, eventsLast)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Fprintln(os.Stderr, "no events found")
		return nil
	}
	if jsonOut {
		return printJSON(events)
	}
	fmt.Printf("%6s  %-18s  %-20s  %s\n", "ID", "Kind", "Time", "Detail")
	for _, e := range events {
		fmt.Printf("%6d  %-18s  %-20s  %s\n", e.ID, e.Kind, e.CreatedAt.Format("2006-01-02T15:04:05Z"), e.DetailJSON)
	}
	return nil
}

// #endregion events

// #region helpers

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func shortID(id string, n int) string {
	if len(id) > n {
		return id[:n]
	}
	return id
}

// #endregion helpers
