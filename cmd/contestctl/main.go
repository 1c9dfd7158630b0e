// Command contestctl runs contest operations from a shell.
//
// Usage:
//
//	contestctl ingest
//	contestctl sweep
//	contestctl settle --type tournament --id trn-daily-derby
//	contestctl completion --type peer --id peer-weekend-showdown
//	contestctl availability --fixture fx-idn-001 --players idn-gk-01,idn-fw-02
//	contestctl wallet --user user-andi
//	contestctl inbox --user user-andi --limit 20
//	contestctl migrate up
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/riskibarqy/fantasy-contest/internal/app"
	"github.com/riskibarqy/fantasy-contest/internal/config"
	"github.com/riskibarqy/fantasy-contest/internal/platform/logging"
)

func main() {
	root := &cobra.Command{
		Use:           "contestctl",
		Short:         "Fantasy contest operations CLI",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(ingestCmd())
	root.AddCommand(sweepCmd())
	root.AddCommand(settleCmd())
	root.AddCommand(completionCmd())
	root.AddCommand(availabilityCmd())
	root.AddCommand(walletCmd())
	root.AddCommand(inboxCmd())
	root.AddCommand(migrateCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// withContainer builds the service graph for one command and tears it down
// afterwards.
func withContainer(fn func(ctx context.Context, c *app.Container) error) error {
	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}
	logger := app.NewLogger(cfg).Named("cli")
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer container.Close()

	return fn(ctx, container)
}

func printJSON(cmd *cobra.Command, value any) error {
	raw, err := sonic.ConfigStd.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(append(raw, '\n'))
	return err
}

func loadConfigAndLogger() (config.Config, *logging.Logger, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, app.NewLogger(cfg).Named("cli"), nil
}
