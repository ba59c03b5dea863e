// cmd/printctl/root.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	bridge "printer-bridge/internal/app"
	"printer-bridge/internal/config"
	"printer-bridge/internal/utils"
)

var (
	configFile string
	identifier string
	iface      string
	verbose    bool
	timeout    time.Duration

	rootCmd = &cobra.Command{
		Use:   "printctl",
		Short: "Drive a receipt printer from the command line",
		Long: `printctl runs the printer bridge in-process: it connects to one printer,
performs a single operation and disconnects again.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "configuration file (default searches ., ./config and /etc/printer-bridge)")
	rootCmd.PersistentFlags().StringVarP(&identifier, "identifier", "i", "", "printer identifier (host, port path or VID:PID)")
	rootCmd.PersistentFlags().StringVar(&iface, "interface", "", "printer interface: lan, usb or bluetooth")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr at debug level")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", time.Minute, "overall command timeout")

	rootCmd.AddCommand(
		newSearchCommand(),
		newStatusCommand(),
		newPrintCommand(),
		newDrawerCommand(),
		newDisplayCommand(),
	)
}

// runWithStack loads configuration, builds the stack and calls fn. When
// connect is set the printer is opened first and always released afterwards.
func runWithStack(cmd *cobra.Command, connect bool, fn func(ctx context.Context, c *bridge.Components) error) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cliLogging(&cfg.Logging)

	logger, err := utils.NewLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer utils.CloseLogger(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	components, err := bridge.New(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer components.Close(context.Background())

	if connect {
		target := iface
		if target == "" {
			target = cfg.Printer.DefaultInterface
		}
		if err := components.Printer.Connect(ctx, identifier, target); err != nil {
			return fmt.Errorf("connect %s: %w", identifier, err)
		}
	}

	return fn(ctx, components)
}

// cliLogging keeps the terminal clean unless verbose output was requested
func cliLogging(cfg *config.LoggingConfig) {
	cfg.Output = "stderr"
	cfg.Format = "console"
	if verbose {
		cfg.Level = "debug"
		return
	}
	cfg.Level = "error"
}
