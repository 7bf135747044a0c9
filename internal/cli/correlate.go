package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/infrascope/infrascope/internal/config"
	"github.com/infrascope/infrascope/internal/engine"
	"github.com/infrascope/infrascope/internal/pkg/logger"
)

func newCorrelateCmd() *cobra.Command {
	var (
		statePath      string
		subscriptionID string
		platformTenant string
	)

	cmd := &cobra.Command{
		Use:   "correlate",
		Short: "Run a point-in-time correlation across all configured sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile())
			if err != nil {
				return err
			}
			if statePath != "" {
				cfg.Terraform.StatePath = statePath
				cfg.Terraform.Enabled = true
			}
			if subscriptionID != "" {
				cfg.Azure.SubscriptionID = subscriptionID
				cfg.Azure.Enabled = true
			}
			if platformTenant != "" {
				cfg.Platform.Tenant = platformTenant
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log := logger.New(logger.Config{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
			})

			eng, err := engine.New(cfg, log)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			report, err := eng.Run(ctx)
			if err != nil {
				return err
			}

			return writeReport(report, outputFormat(), outputPath())
		},
	}

	cmd.Flags().StringVar(&statePath, "state", "", "path to the declarative state document")
	cmd.Flags().StringVar(&subscriptionID, "subscription", "", "cloud subscription id to inventory")
	cmd.Flags().StringVar(&platformTenant, "tenant", "", "edge platform tenant")

	return cmd
}
