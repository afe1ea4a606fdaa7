package cmd

import (
	"fmt"

	"github.com/rpupo63/project-showcase-backend/services"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the development account",
	Long:  fmt.Sprintf("Creates %s with password %s unless it already exists.", services.SeedUserEmail, services.SeedUserPassword),
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := openDatabase(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.Migrate(cmd.Context()); err != nil {
			return fmt.Errorf("error migrating database: %w", err)
		}

		created, err := services.NewIdentityService(db, nil, cfg.Session.BcryptCost).EnsureSeedUser(cmd.Context())
		if err != nil {
			return fmt.Errorf("error seeding user: %w", err)
		}
		log.Info().Bool("created", created).Str("email", services.SeedUserEmail).Msg("seed user ready")
		return nil
	},
}
