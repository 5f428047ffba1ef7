// Package cli wires the command tree for the tracker binary.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"prtrack/config"
	"prtrack/internal/github"
	"prtrack/internal/membership"
	"prtrack/internal/piper"
	"prtrack/internal/report"
	"prtrack/internal/service"
	csvstore "prtrack/internal/storage/csv"
	pgxstore "prtrack/internal/storage/pgx"
	"prtrack/internal/workhours"
)

// New builds the root command. Subcommands mirror the steps of one full
// refresh so each can also run standalone.
func New(log *zap.SugaredLogger, cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "prtrack",
		Short:         "Track PR turn state and review latency for an upstream repository",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newAccumulateCmd(log, cfg),
		newRecomputeWIPCmd(log, cfg),
		newPlotDelaysCmd(log, cfg),
		newPlotCountsCmd(log, cfg),
		newLinksTableCmd(log, cfg),
		newPiperCommitsCmd(log),
		newUpdateCmd(log, cfg),
	)
	return root
}

func newAccumulateCmd(log *zap.SugaredLogger, cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "accumulate",
		Short: "Refresh PR records from the GitHub API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAccumulate(cmd.Context(), log, cfg)
		},
	}
}

func newRecomputeWIPCmd(log *zap.SugaredLogger, cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "recompute-wip",
		Short: "Clear cached turn state for open non-draft PRs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := openStore(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer closeStore()

			svc := service.NewService(nil, store, nil, nil, cfg.GitHub.ReviewLabel, log)
			_, err = svc.RecomputeWIP(cmd.Context())
			return err
		},
	}
}

func newPlotDelaysCmd(log *zap.SugaredLogger, cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "plot-delays",
		Short: "Render the lifecycle-delay box plot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlotDelays(cmd.Context(), log, cfg)
		},
	}
}

func newPlotCountsCmd(log *zap.SugaredLogger, cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "plot-counts",
		Short: "Render the monthly PR-count bar chart",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlotCounts(cmd.Context(), log, cfg)
		},
	}
}

func newLinksTableCmd(log *zap.SugaredLogger, cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "links-table",
		Short: "Rewrite the month → PR-links table in the README",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLinksTable(cmd.Context(), log, cfg)
		},
	}
}

func newPiperCommitsCmd(log *zap.SugaredLogger) *cobra.Command {
	var repoPath, output string
	cmd := &cobra.Command{
		Use:   "piper-commits",
		Short: "Scan a git clone for Piper-originated commits",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Infow("scanning repository for piper commits", "repo", repoPath)
			commits, err := piper.Scan(cmd.Context(), repoPath)
			if err != nil {
				return err
			}
			log.Infow("found piper commits", "count", len(commits))
			if err := piper.WriteCSV(commits, output); err != nil {
				return err
			}
			log.Infow("wrote piper commits", "path", output)
			return nil
		},
	}
	cmd.Flags().StringVar(&repoPath, "repo", ".", "path to the target git repository to scan")
	cmd.Flags().StringVar(&output, "output", "piper_commits.csv", "output CSV path")
	return cmd
}

// newUpdateCmd runs the full pipeline: refresh data, render both plots,
// rewrite the README table.
func newUpdateCmd(log *zap.SugaredLogger, cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Run accumulate, both plots, and the links table in order",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			steps := []struct {
				name string
				run  func(context.Context, *zap.SugaredLogger, *config.Config) error
			}{
				{"accumulate", runAccumulate},
				{"plot-delays", runPlotDelays},
				{"plot-counts", runPlotCounts},
				{"links-table", runLinksTable},
			}
			for _, step := range steps {
				log.Infow("running step", "step", step.name)
				if err := step.run(ctx, log, cfg); err != nil {
					return fmt.Errorf("%s: %w", step.name, err)
				}
				log.Infow("finished step", "step", step.name)
			}
			log.Infow("all steps completed successfully")
			return nil
		},
	}
}

func runAccumulate(ctx context.Context, log *zap.SugaredLogger, cfg *config.Config) error {
	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	client, err := github.NewClient(
		cfg.GitHub.Token,
		cfg.GitHub.Owner,
		cfg.GitHub.Repo,
		cfg.GitHub.HomeOrg,
		log,
	)
	if err != nil {
		return err
	}

	hours, err := workhours.NewAdjuster()
	if err != nil {
		return err
	}

	cls := membership.NewClassifier(client, membership.NewCache())
	svc := service.NewService(client, store, cls, hours, cfg.GitHub.ReviewLabel, log)
	return svc.Accumulate(ctx)
}

func runPlotDelays(ctx context.Context, log *zap.SugaredLogger, cfg *config.Config) error {
	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	records, err := store.Load(ctx)
	if err != nil {
		return err
	}
	if err := report.SaveDelaysPlot(records, cfg.GitHub.HeadRepo, cfg.Report.DelaysPath); err != nil {
		return err
	}
	log.Infow("plot saved", "path", cfg.Report.DelaysPath)
	return nil
}

func runPlotCounts(ctx context.Context, log *zap.SugaredLogger, cfg *config.Config) error {
	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	records, err := store.Load(ctx)
	if err != nil {
		return err
	}

	asOf := time.Now().UTC()
	if last, err := store.LastScrape(ctx); err == nil && last != nil {
		asOf = *last
	}

	if err := report.SaveCountsPlot(records, cfg.GitHub.HeadRepo, asOf, cfg.Report.CountsPath); err != nil {
		return err
	}
	log.Infow("plot saved", "path", cfg.Report.CountsPath)
	return nil
}

func runLinksTable(ctx context.Context, log *zap.SugaredLogger, cfg *config.Config) error {
	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	records, err := store.Load(ctx)
	if err != nil {
		return err
	}

	table := report.BuildLinksTable(records, cfg.GitHub.HeadRepo, cfg.UpstreamRepo())
	if table == "" {
		log.Infow("no matching PRs found, README left unchanged")
		return nil
	}
	if err := report.UpdateReadme(cfg.Report.ReadmePath, table); err != nil {
		return err
	}
	log.Infow("README updated", "path", cfg.Report.ReadmePath)
	return nil
}

func openStore(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (service.RecordStore, func(), error) {
	switch cfg.Storage.Driver {
	case "postgres":
		st, err := pgxstore.NewStorage(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, fmt.Errorf("init postgres storage: %w", err)
		}
		if err := st.Ping(ctx); err != nil {
			st.Close()
			return nil, nil, fmt.Errorf("ping postgres: %w", err)
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close()
			return nil, nil, err
		}
		return st, st.Close, nil
	default:
		st := csvstore.NewStore(cfg.Storage.CSVPath, cfg.Storage.MetaPath, log)
		return st, func() {}, nil
	}
}
