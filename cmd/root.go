// Package cmd implements the command-line interface for fundwatch.
// It provides the root command and subcommands for crawling the funding
// database and querying the versioned catalog.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/foerderdata/fundwatch/cmd/crawl"
	"github.com/foerderdata/fundwatch/cmd/schedule"
	"github.com/foerderdata/fundwatch/cmd/serve"
	"github.com/foerderdata/fundwatch/cmd/snapshot"
	"github.com/foerderdata/fundwatch/internal/config"
)

const version = "1.0.0"

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// debug enables debug logging for all commands.
	debug bool

	// rootCmd represents the root command for the fundwatch CLI.
	rootCmd = &cobra.Command{
		Use:   "fundwatch",
		Short: "A versioned crawler for the German funding-program database",
		Long: `fundwatch crawls the funding-program database, detects changes between
crawl runs and maintains a temporally versioned catalog: what exists now,
what existed before, when it changed and what disappeared.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	// Load .env early so environment variables are available to Viper.
	_ = godotenv.Load()

	_ = rootCmd.ParseFlags(os.Args[1:])

	if err := initConfig(); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"config file (default is ./config.yaml or ./config/config.yaml)",
	)
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("fundwatch version %s\n", version)
		},
	})

	rootCmd.AddCommand(crawl.Command())
	rootCmd.AddCommand(snapshot.Command())
	rootCmd.AddCommand(serve.Command())
	rootCmd.AddCommand(schedule.Command())
}

// initConfig reads the config file and environment variables into Viper.
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	config.SetDefaults()

	// The config file is optional; defaults and environment variables
	// cover every setting.
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: config file not found: %v (using defaults and environment variables)\n", err)
	}

	if err := viper.BindPFlag("app.debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		return fmt.Errorf("failed to bind debug flag: %w", err)
	}

	if err := config.BindEnvVars(); err != nil {
		return err
	}

	if debug || viper.GetBool("app.debug") {
		viper.Set("logger.level", "debug")
		viper.Set("logger.development", true)
		viper.Set("logger.encoding", "console")
	}

	return nil
}
