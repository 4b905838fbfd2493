package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cfphilippson/intune-export/internal/app"
	"github.com/cfphilippson/intune-export/internal/config"
)

const version = "0.4.0"

var (
	flagConfig       string
	flagTenantID     string
	flagClientID     string
	flagClientSecret string
	flagGraphURL     string
	flagOutput       string
	flagSelect       string
	flagVerbose      bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "intune-export",
	Short: "Export Intune policy configurations with resolved assignments",
	Long: `intune-export reads device configuration profiles, settings-catalog
policies and compliance policies from a Microsoft Intune tenant, resolves
each policy's assignment targets to readable labels, and writes one JSON
document per policy plus aggregate summary artifacts (JSON, CSV and a
DOT assignment graph) into a timestamped output directory.

Requires an Entra ID app registration with read access to device
management configuration (DeviceManagementConfiguration.Read.All and
Group.Read.All).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if flagVerbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		return nil
	},
	RunE: runExport,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one export against the configured tenant",
	RunE:  runExport,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the intune-export version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("intune-export %s\n", version)
	},
}

func runExport(cmd *cobra.Command, args []string) error {
	defer logger.Sync()

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	applyFlags(&cfg)

	svc, cleanup, err := app.BuildService(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	summary, err := svc.Export(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("Exported %d policies to %s\n", summary.PolicyCount, summary.OutputDir)
	for _, msg := range summary.Errors {
		fmt.Fprintf(os.Stderr, "warning: %s\n", msg)
	}
	return nil
}

// applyFlags lets CLI flags win over file and environment values.
func applyFlags(cfg *config.Config) {
	if flagTenantID != "" {
		cfg.TenantID = flagTenantID
	}
	if flagClientID != "" {
		cfg.ClientID = flagClientID
	}
	if flagClientSecret != "" {
		cfg.ClientSecret = flagClientSecret
	}
	if flagGraphURL != "" {
		cfg.GraphBaseURL = flagGraphURL
	}
	if flagOutput != "" {
		cfg.OutputDir = flagOutput
	}
	if flagSelect != "" {
		cfg.Select = flagSelect
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "path to YAML config file")
	pf.StringVar(&flagTenantID, "tenant-id", "", "Entra ID tenant id")
	pf.StringVar(&flagClientID, "client-id", "", "app registration client id")
	pf.StringVar(&flagClientSecret, "client-secret", "", "app registration client secret")
	pf.StringVar(&flagGraphURL, "graph-url", "", "Graph API base URL (override for testing)")
	pf.StringVar(&flagOutput, "output", "", "root directory for export output")
	pf.StringVar(&flagSelect, "select", "", `selection expression, e.g. 'IsActive && Category == "Compliance"'`)
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(runCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
