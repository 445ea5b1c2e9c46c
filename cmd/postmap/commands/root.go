// Package commands implements the CLI commands for postmap.
package commands

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/postmap/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "postmap",
	Short: "Map semi-structured posts to normalized output using plugins",
	Long: `Postmap maps posts (nested JSON records) into a flat, normalized shape.

A plugin file declares the output fields. Each field has an extractor
expression: a "||" fallback chain of key paths (post.meta.author) and
extractor functions (extractHashtags(post.body)), tried in order.

Examples:
  # Render posts as text
  postmap extract -p plugin.json -i posts.json

  # JSON Lines output, four workers
  postmap extract -p plugin.yaml -i posts.jsonl -f json -c 4

  # Check a plugin before using it
  postmap validate -p plugin.json`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logger.Init(logger.Options{
			Debug: viper.GetBool("debug"),
			Quiet: viper.GetBool("quiet"),
			Level: viper.GetString("log_level"),
			JSON:  viper.GetBool("log_json"),
		})
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config file (default $HOME/.postmap.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "only log errors")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("log-json", false, "log as JSON")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log_json", rootCmd.PersistentFlags().Lookup("log-json"))
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".postmap")
		viper.SetConfigType("yaml")
	}

	// POSTMAP_FORMAT, POSTMAP_CONCURRENCY, ...
	viper.SetEnvPrefix("POSTMAP")
	viper.AutomaticEnv()

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
