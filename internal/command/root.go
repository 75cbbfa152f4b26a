package command

import (
	"Chest/internal/config"

	"github.com/spf13/cobra"
)

// Execute читает конфигурацию из окружения и запускает корневую команду.
func Execute() error {
	cfg, err := config.NewConfig()
	if err != nil {
		return err
	}
	return NewRootCommand(cfg).Execute()
}

// NewRootCommand собирает дерево команд. Флаги перекрывают значения из env.
func NewRootCommand(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "chest",
		Short:         "Private intimacy journal backend",
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg.Finalize()
		},
	}
	cfg.BindFlags(root.PersistentFlags())

	root.AddCommand(newServeCommand(cfg))
	root.AddCommand(newMigrateCommand(cfg))
	return root
}
