package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bizpulse/bizdash/internal"
	"github.com/bizpulse/bizdash/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "bizdash",
	Short: "Business dashboard client",
	Long:  `Terminal client for the bizpulse business dashboard: KPIs, role-gated screens and the conversational data assistant.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*internal.Config, error) {
	cfg := internal.Defaults()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.SetEnvPrefix("BIZDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// No config file is fine; defaults plus env cover local use.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger.Init(cfg.Logging.Env)
	return cfg, nil
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(devserverCmd)
}
