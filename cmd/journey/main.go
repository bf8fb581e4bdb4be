package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/journey-engine/internal/config"
	"github.com/danielpatrickdp/journey-engine/internal/engine"
	"github.com/danielpatrickdp/journey-engine/internal/journey"
	"github.com/danielpatrickdp/journey-engine/internal/logging"
	"github.com/danielpatrickdp/journey-engine/internal/metrics"
	"github.com/danielpatrickdp/journey-engine/internal/outcome"
	"github.com/danielpatrickdp/journey-engine/internal/persist"
	"github.com/danielpatrickdp/journey-engine/internal/state"
)

const help = `commands:
  lens <far-left|left|right|far-right>
  answer <question-id> <answer> <elapsed-seconds> <weight> [layer]
  view <content-id>
  advance
  convert <kind> [key=value ...]
  reset
  show
  quit`

// #region main
func main() {
	cfgPath := flag.String("config", envOr(config.EnvConfigPath, ""), "path to journey.yaml")
	key := flag.String("key", "cli", "session key to open")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logger.Sync()

	store, err := state.NewStore(cfg.Store.Path)
	if err != nil {
		logger.Fatal("open store", zap.String("path", cfg.Store.Path), zap.Error(err))
	}
	defer store.Close()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m, err = metrics.New(cfg.Metrics.Namespace, prometheus.DefaultRegisterer)
		if err != nil {
			logger.Fatal("register metrics", zap.Error(err))
		}
	}

	writer := persist.NewWriter(persist.StoreSaver{Store: store},
		persist.WithLogger(logger),
		persist.WithMetrics(m),
		persist.WithQueueSize(cfg.Persist.QueueSize),
		persist.WithWriteTimeout(cfg.Persist.WriteTimeout))
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := writer.Close(ctx); err != nil {
			logger.Warn("persist writer did not drain", zap.Error(err))
		}
	}()

	registry, err := engine.NewRegistry(store, cfg.Registry.MaxOpen, engine.Deps{
		Config:  cfg.Session,
		Writer:  writer,
		Logger:  logger,
		Metrics: m,
	})
	if err != nil {
		logger.Fatal("build registry", zap.Error(err))
	}
	defer registry.Close()

	j, err := registry.Get(context.Background(), *key)
	if err != nil {
		logger.Fatal("open journey", zap.String("key", *key), zap.Error(err))
	}

	v := j.View()
	fmt.Println("Journey engine ready.")
	fmt.Printf("  DB: %s | Key: %s | Session: %s | Layer: %s\n", cfg.Store.Path, *key, v.SessionID, v.CurrentLayer)
	fmt.Println(help)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			break
		}
		if err := run(j, fields); err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		v := j.View()
		fmt.Printf("[%s] layer=%s completed=%d coarse=%d category=%s scores=%+v\n",
			v.SessionID, v.CurrentLayer, len(v.CompletedLayers), v.Coarse, v.Category, v.Scores)
	}
}

// #endregion main

// #region commands
func run(j *engine.Journey, fields []string) error {
	args := fields[1:]
	switch fields[0] {
	case "lens":
		if len(args) != 1 {
			return fmt.Errorf("usage: lens <name>")
		}
		l, err := journey.ParseLens(args[0])
		if err != nil {
			return err
		}
		return j.SetLens(l)

	case "answer":
		if len(args) < 4 || len(args) > 5 {
			return fmt.Errorf("usage: answer <question-id> <answer> <elapsed-seconds> <weight> [layer]")
		}
		answer, err := journey.ParseAnswer(args[1])
		if err != nil {
			return err
		}
		elapsed, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("elapsed: %w", err)
		}
		weight, err := strconv.ParseFloat(args[3], 64)
		if err != nil {
			return fmt.Errorf("weight: %w", err)
		}
		layer := j.View().CurrentLayer
		if len(args) == 5 {
			if layer, err = journey.ParseLayer(args[4]); err != nil {
				return err
			}
		}
		return j.RecordResponse(args[0], answer, elapsed, weight, layer)

	case "view":
		if len(args) != 1 {
			return fmt.Errorf("usage: view <content-id>")
		}
		_, err := j.MarkViewed(args[0])
		return err

	case "advance":
		j.Advance()
		return nil

	case "convert":
		if len(args) < 1 {
			return fmt.Errorf("usage: convert <kind> [key=value ...]")
		}
		detail := make(map[string]string)
		for _, kv := range args[1:] {
			k, v, ok := strings.Cut(kv, "=")
			if !ok {
				return fmt.Errorf("detail %q is not key=value", kv)
			}
			detail[k] = v
		}
		_, err := j.RecordConversion(args[0], detail)
		return err

	case "reset":
		j.Reset()
		return nil

	case "show":
		b, err := outcome.MarshalJSON(j.View())
		if err != nil {
			return err
		}
		fmt.Println(string(b))
		return nil

	case "help":
		fmt.Println(help)
		return nil
	}
	return fmt.Errorf("unknown command %q (try help)", fields[0])
}

// #endregion commands

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
