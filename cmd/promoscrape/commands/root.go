// Package commands implements the CLI commands for promoscrape.
package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jmylchreest/promoscrape/internal/config"
	"github.com/jmylchreest/promoscrape/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "promoscrape",
	Short: "Collect discounted products from promotion listing pages",
	Long: `Promoscrape drives a headless Chrome over promotion listing pages,
extracts every discounted product card and prints a JSON report.

Examples:
  # Collect from the default youcom promotion pages
  promoscrape collect

  # Wait for the page instead of scrolling, and save the report
  promoscrape collect --mode wait -o products.json

  # Re-run extraction over pages saved earlier
  promoscrape extract page1.html page2.html`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(logger.Options{
			Debug: viper.GetBool("debug"),
			Quiet: viper.GetBool("quiet"),
			JSON:  viper.GetBool("log_json"),
		})
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default $HOME/.promoscrape.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "only log errors")
	rootCmd.PersistentFlags().Bool("log-json", false, "log as JSON records")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("log_json", rootCmd.PersistentFlags().Lookup("log-json"))
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".promoscrape")
		viper.SetConfigType("yaml")
	}

	config.ConfigureEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Error: reading config: %v\n", err)
		}
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

// loadConfig binds the command's flags to their config keys and decodes
// the merged configuration. Binding happens per invocation because several
// commands share keys such as output.format.
func loadConfig(flags *pflag.FlagSet, keys map[string]string) (config.Config, error) {
	for flag, key := range keys {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return config.Config{}, fmt.Errorf("failed to bind --%s: %w", flag, err)
		}
	}
	return config.Load(viper.GetViper())
}
