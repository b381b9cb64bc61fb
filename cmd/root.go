package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stonelake/ticketmap/internal/config"
	"github.com/stonelake/ticketmap/internal/jira"
	"github.com/stonelake/ticketmap/internal/telemetry"
	"github.com/stonelake/ticketmap/internal/ui"
)

var rootCmd = &cobra.Command{
	Use:   "ticketmap",
	Short: "Jira ticket relationship mapper",
	Long: "Ticketmap walks a Jira ticket's links and children, then renders the " +
		"result as a table, CSV, multi-sheet workbook, or draw.io diagram.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default .ticketmap.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("telemetry-file", "", "append JSONL run telemetry to this file")
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".ticketmap")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("TICKETMAP")
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}

// loadConfig loads configuration and applies persistent flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		cfg.Verbose = true
	}
	if f, _ := cmd.Flags().GetString("telemetry-file"); f != "" {
		cfg.TelemetryFile = f
	}
	return cfg, nil
}

// newStore validates connection settings and builds the Jira client.
func newStore(cfg config.Config) (*jira.Client, error) {
	if cfg.JiraBaseURL == "" {
		return nil, errors.New("jira_base_url is not set (config file, TICKETMAP_JIRA_BASE_URL, or flags)")
	}
	client := jira.NewClient(cfg.JiraBaseURL, cfg.JiraEmail, cfg.JiraToken, time.Duration(cfg.RequestTimeout)*time.Second)
	client.Verbose = cfg.Verbose
	if err := client.Validate(); err != nil {
		return nil, err
	}
	return client, nil
}

// newEmitter opens the telemetry stream, or returns a nil no-op emitter when
// no file is configured.
func newEmitter(cfg config.Config, printer *ui.Printer) *telemetry.Emitter {
	if cfg.TelemetryFile == "" {
		return nil
	}
	em, err := telemetry.NewEmitter(cfg.TelemetryFile)
	if err != nil {
		printer.Warn("telemetry disabled: %v", err)
		return nil
	}
	return em
}
