// Command pathwise is the operator entry point for the pathwise core: it
// wires configuration, logging, storage and the generation client, and runs
// one pipeline operation per invocation.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"pathwise/internal/config"
	"pathwise/internal/logging"
)

var (
	// Global flags
	verbose     bool
	configPath  string
	apiKey      string
	dbPath      string
	offline     bool
	timeout     time.Duration
	metricsFile string

	// Shared by subcommands
	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pathwise",
	Short: "pathwise - career intelligence core",
	Long: `pathwise turns a career profile into a strategic bundle (assessment, roadmap,
action plan, learning resources, mentor matches, vision) and tracks growth
from voice reflections and monthly skill audits.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if apiKey != "" {
			loaded.Generation.APIKey = apiKey
		}
		if dbPath != "" {
			loaded.Store.Path = dbPath
		}
		if verbose {
			loaded.Logging.Level = "debug"
		}
		if offline && loaded.Generation.APIKey == "" {
			loaded.Generation.APIKey = "offline"
		}
		if err := loaded.Validate(); err != nil {
			return err
		}

		if err := logging.Initialize(logging.Config{
			Level:      loaded.Logging.Level,
			Format:     loaded.Logging.Format,
			File:       loaded.Logging.File,
			Categories: loaded.Logging.Categories,
		}); err != nil {
			return err
		}
		logging.Boot("pathwise %s starting (store=%s offline=%v)", loaded.Version, loaded.Store.Driver, offline)
		cfg = loaded
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "pathwise.yaml", "Config file")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Gemini API key (or set GEMINI_API_KEY env)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "Use canned generation responses instead of Gemini")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Operation timeout")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics to this file on exit")

	synthesizeCmd.Flags().StringVarP(&profilePath, "profile", "p", "", "Profile file (YAML or JSON)")
	synthesizeCmd.Flags().BoolVar(&withExtras, "extras", true, "Also produce alerts, market signals and a strategic tip")
	synthesizeCmd.MarkFlagRequired("profile")

	for _, c := range []*cobra.Command{reflectCmd, auditCmd, growthCmd} {
		c.Flags().StringVar(&ownerID, "owner", "", "Owner id (required)")
		c.MarkFlagRequired("owner")
	}

	rootCmd.AddCommand(synthesizeCmd)
	rootCmd.AddCommand(reflectCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(growthCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
