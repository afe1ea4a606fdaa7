package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rpupo63/project-showcase-backend/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// cfg is loaded once by the root command before any subcommand runs.
var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "showcase",
	Short: "Project showcase backend",
	Long: `Serves the project showcase API: accounts, published projects and likes.

Configuration is read from the environment, optionally seeded from a .env file
and from AWS SSM Parameter Store when SSM_PARAMETER_PATH is set.`,
	PersistentPreRunE: loadConfig,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	FParseErrWhitelist: cobra.FParseErrWhitelist{},
}

// Execute runs the root command. This is called by main.main().
func Execute() error {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, generateCmd)
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("error loading .env file: %w", err)
	}

	env := config.New()
	setupLogging(config.GetString(env, "LOG_LEVEL", "info"), config.GetString(env, "LOG_FORMAT", "console"))

	if path := config.GetString(env, "SSM_PARAMETER_PATH", ""); path != "" {
		client, err := config.NewSSMClient(cmd.Context(), config.GetString(env, "AWS_REGION", "us-east-1"))
		if err != nil {
			return err
		}
		n, err := config.OverlaySSM(cmd.Context(), client, path, env)
		if err != nil {
			return err
		}
		log.Info().Str("path", path).Int("parameters", n).Msg("loaded parameters from SSM")
	}

	cfg = config.Load(env)
	setupLogging(cfg.LogLevel, cfg.LogFormat)
	return nil
}
