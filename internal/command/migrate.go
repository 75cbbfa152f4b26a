package command

import (
	"Chest/internal/config"
	"Chest/internal/logger"
	"Chest/internal/repo"
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			sugar, err := logger.New(cfg.LogLevel, cfg.LogDevelopment)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer func() { _ = sugar.Sync() }()

			db, err := repo.InitDB(cfg.DatabaseDSN, sugar)
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			sugar.Infow("migrations applied", "dialect", repo.DialectFromDSN(cfg.DatabaseDSN))
			return repo.Close(db)
		},
	}
}
