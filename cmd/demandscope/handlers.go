package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/elonfeng/demandscope/internal/config"
	"github.com/elonfeng/demandscope/internal/scheduler"
	"github.com/elonfeng/demandscope/internal/store"
	"github.com/elonfeng/demandscope/pkg/server"
	"github.com/elonfeng/demandscope/pkg/source"
)

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func buildLogger() (*zap.Logger, error) {
	if os.Getenv("DEMANDSCOPE_DEBUG") != "" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func buildSources(cfg *config.Config, logger *zap.Logger) []source.Source {
	var sources []source.Source

	if cfg.Sources.Reddit.Enabled {
		sources = append(sources, source.NewReddit(
			cfg.Sources.Reddit.ClientID,
			cfg.Sources.Reddit.ClientSecret,
			cfg.Sources.Reddit.Subreddits,
			logger,
		))
	}
	if cfg.Sources.GitHub.Enabled && len(cfg.Sources.GitHub.Repos) > 0 {
		sources = append(sources, source.NewGitHub(cfg.Sources.GitHub.Token, cfg.Sources.GitHub.Repos, logger))
	}
	if cfg.Sources.Twitter.Enabled {
		sources = append(sources, source.NewTwitter(cfg.Sources.Twitter.NitterURL, cfg.Sources.Twitter.Accounts, logger))
	}

	return sources
}

func runCollect(filterPlatforms []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := buildLogger()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	allSources := buildSources(cfg, logger)

	var sources []source.Source
	if len(filterPlatforms) > 0 {
		wanted := make(map[string]bool)
		for _, p := range filterPlatforms {
			wanted[strings.ToLower(strings.TrimSpace(p))] = true
		}
		for _, s := range allSources {
			if wanted[string(s.Name())] {
				sources = append(sources, s)
			}
		}
		if len(sources) == 0 {
			return fmt.Errorf("no matching sources for: %s", strings.Join(filterPlatforms, ", "))
		}
	} else {
		sources = allSources
	}

	if len(sources) == 0 {
		return fmt.Errorf("no sources enabled; check config")
	}

	ctx := context.Background()
	total := 0

	for _, src := range sources {
		fmt.Fprintf(os.Stderr, "collecting from %s...\n", src.Name())
		demands, err := src.Collect(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  error: %v\n", err)
			continue
		}

		stored, err := db.UpsertDemands(ctx, demands)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  store error: %v\n", err)
			continue
		}

		fmt.Fprintf(os.Stderr, "  collected %d, stored %d\n", len(demands), stored)
		total += stored
	}

	fmt.Fprintf(os.Stderr, "\ntotal: %d demands from %d sources\n", total, len(sources))
	return nil
}

func runServe(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if port != 0 {
		cfg.Server.Port = port
	}
	logger, err := buildLogger()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	srv := server.New(db, buildSources(cfg, logger), cfg, logger)
	return srv.ListenAndServe()
}

func runDaemon(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if port != 0 {
		cfg.Server.Port = port
	}
	logger, err := buildLogger()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	sources := buildSources(cfg, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sched := scheduler.New(db, sources,
		cfg.Schedule.ParseCollectInterval(),
		cfg.Schedule.ParseTrendInterval(),
		logger,
	)

	go func() {
		if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("scheduler exited", zap.Error(err))
		}
	}()

	srv := server.New(db, sources, cfg, logger)
	go func() {
		<-ctx.Done()
		fmt.Fprintln(os.Stderr, "\nshutting down...")
	}()

	return srv.ListenAndServe()
}

func runStats(jsonOutput bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	overview, err := db.Overview(context.Background())
	if err != nil {
		return fmt.Errorf("load overview: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(overview)
	}

	fmt.Printf("total demands: %d\n\n", overview.TotalDemands)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PLATFORM\tTOTAL\tFEATURES\tBUGS\tCOMPLAINTS\tPRAISE\tAVG SCORE")
	for _, p := range overview.Platforms {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\t%.1f\n",
			p.Platform, p.TotalDemands, p.FeatureRequests, p.BugReports,
			p.Complaints, p.Praises, p.AvgInteractionScore)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(overview.TopTags) > 0 {
		fmt.Println("\ntop tags:")
		for _, t := range overview.TopTags {
			fmt.Printf("  %-20s %d\n", t.Name, t.Count)
		}
	}
	return nil
}
