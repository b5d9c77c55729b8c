package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"DeviceLineage/internal/app"
	"DeviceLineage/internal/config"
	"DeviceLineage/internal/domain"
	"DeviceLineage/internal/logging"
)

var (
	rootCmd = &cobra.Command{
		Use:           "devicelineage",
		Short:         "Reconstruct predicate lineage of FDA device submissions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	configPath string
	logLevel   string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path or URL of a YAML config (defaults to $DEVICE_LINEAGE_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(branchCmd)
}

func newApplication() (*app.Application, error) {
	var cfg config.Config
	if configPath != "" {
		cfg = config.LoadFrom(configPath)
	} else {
		cfg = config.Load()
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	return app.New(cfg, logger), nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := newApplication()
		if err != nil {
			return err
		}
		return application.Serve(cmd.Context())
	},
}

var treeCmd = &cobra.Command{
	Use:   "tree PCODE",
	Short: "Print the lineage tree of a product code as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := newApplication()
		if err != nil {
			return err
		}
		result, err := application.Tree(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printResult(cmd, result)
	},
}

var branchCmd = &cobra.Command{
	Use:   "branch ID",
	Short: "Print the lineage branch of one submission as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := newApplication()
		if err != nil {
			return err
		}
		result, err := application.Branch(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printResult(cmd, result)
	},
}

func printResult(cmd *cobra.Command, result domain.Result) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
