// eduseed 维护交易教育的课程数据
//
// 用法:
//
//	eduseed validate <catalog.yaml>
//	eduseed seed [--file catalog.yaml]
//	eduseed reconcile
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
	"trading_edu_backend/internal/catalog"
	"trading_edu_backend/internal/config"
	"trading_edu_backend/internal/model"
	"trading_edu_backend/internal/repository"
	"trading_edu_backend/pkg/database"
	"trading_edu_backend/pkg/logger"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

type rootFlags struct {
	configDir string
	timeout   time.Duration
}

func main() {
	var flags rootFlags

	root := &cobra.Command{
		Use:           "eduseed",
		Short:         "Seed and maintain the trading education catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configDir, "config", "configs", "Directory holding config.yaml")
	root.PersistentFlags().DurationVar(&flags.timeout, "timeout", 5*time.Minute, "Overall deadline for database work")

	root.AddCommand(newValidateCmd(), newSeedCmd(&flags), newReconcileCmd(&flags))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <catalog-file>",
		Short: "Check a catalog file against the schema and ordering rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.LoadFile(args[0])
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), cat)
			return nil
		},
	}
}

func newSeedCmd(flags *rootFlags) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert catalog modules and badges that are missing from the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := loadCatalog(file)
			if err != nil {
				return err
			}
			db, err := openDB(flags.configDir)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), flags.timeout)
			defer cancel()
			return seed(ctx, db, cat, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Catalog file to seed from (default: the bundled catalog)")
	return cmd
}

func newReconcileCmd(flags *rootFlags) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Recount per-level completion counters from module records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := loadCatalog(file)
			if err != nil {
				return err
			}
			db, err := openDB(flags.configDir)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), flags.timeout)
			defer cancel()
			return reconcile(ctx, db, cat, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Catalog file that maps modules to levels (default: the bundled catalog)")
	return cmd
}

func loadCatalog(file string) (*catalog.Catalog, error) {
	if file == "" {
		return catalog.Bundled()
	}
	return catalog.LoadFile(file)
}

func openDB(configDir string) (*gorm.DB, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	logger.InitLogger(cfg)
	return database.InitDB(&cfg.Database, true)
}

func seed(ctx context.Context, db *gorm.DB, cat *catalog.Catalog, out io.Writer) error {
	repo := repository.NewCatalogRepository(db)

	inserted, err := repo.SeedModules(ctx, cat.AllModules())
	if err != nil {
		return err
	}
	for _, id := range inserted {
		fmt.Fprintf(out, "inserted module %s\n", id)
	}

	badges, err := repo.SeedBadges(ctx, cat.Badges())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "modules: %d inserted, %d already present\n", len(inserted), cat.TotalModules()-len(inserted))
	fmt.Fprintf(out, "badges: %d inserted\n", badges)
	return nil
}

func reconcile(ctx context.Context, db *gorm.DB, cat *catalog.Catalog, out io.Writer) error {
	if cat.TotalModules() == 0 {
		return errors.New("catalog has no modules")
	}
	store := repository.NewGormProgressStore(db)
	changed, err := store.Reconcile(ctx, func(moduleID string) (model.Level, bool) {
		m, ok := cat.Module(moduleID)
		if !ok {
			return "", false
		}
		return m.Level, true
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "learners updated: %d\n", changed)
	return nil
}

func printSummary(out io.Writer, cat *catalog.Catalog) {
	for _, level := range model.Levels {
		fmt.Fprintf(out, "%-13s %d modules\n", level, cat.ModuleCount(level))
	}
	fmt.Fprintf(out, "badges        %d\n", len(cat.Badges()))
	fmt.Fprintln(out, "catalog OK")
}
