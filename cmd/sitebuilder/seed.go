package main

import (
	"github.com/spf13/cobra"

	"sitebuilder/internal/authz"
	"sitebuilder/internal/events"
)

func newSeedCommand() *cobra.Command {
	var opts authz.SeedOptions

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the role catalog and the initial accounts",
		Long: `Ensure the Ingresante, Usuario and Staff roles, the superuser "dueno"
and the collaborators "colaborador1" and "colaborador2".

Existing accounts keep their password unless --force-password is given.

Example:
  sitebuilder seed --password s3creta
  sitebuilder seed --password s3creta --force-password`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, dialect, err := openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()
			return authz.NewEngine(db, dialect, events.NewBus()).Seed(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Password, "password", authz.DefaultSeedPassword, "password for created accounts")
	cmd.Flags().BoolVar(&opts.ForcePassword, "force-password", false, "also reset the password of existing accounts")
	return cmd
}
