package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomthias/cleanAlbere9/internal/cache"
	"github.com/tomthias/cleanAlbere9/internal/client"
	"github.com/tomthias/cleanAlbere9/internal/config"
	"github.com/tomthias/cleanAlbere9/internal/model"
)

// LoginCmd returns the login command.
func LoginCmd() *cobra.Command {
	var pin string

	cmd := &cobra.Command{
		Use:   "login <person>",
		Short: "Select who you are on this machine",
		Long: `Select the flatmate this machine acts as. If that flatmate has set
a PIN it must be supplied with --pin. The selection is remembered
until the next login.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			person, err := model.ParsePerson(args[0])
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			c, err := cache.Open(cfg.CachePath)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}

			api := client.New(cfg.ServerURL)
			ok, err := api.VerifyPIN(cmd.Context(), person, pin)
			if err != nil {
				return fmt.Errorf("verify pin: %w", err)
			}
			if !ok {
				return fmt.Errorf("wrong PIN for %s", person)
			}

			if err := c.Set(cache.KeyCurrentUser, person); err != nil {
				return fmt.Errorf("remember user: %w", err)
			}
			fmt.Printf("logged in as %s\n", person)
			return nil
		},
	}

	cmd.Flags().StringVar(&pin, "pin", "", "PIN, if this flatmate has one")
	return cmd
}

// PinCmd returns the pin command group.
func PinCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pin",
		Short: "Set or clear your login PIN",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <pin>",
		Short: "Set a 4-8 digit PIN",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(cmd.Context(), true)
			if err != nil {
				return err
			}
			if err := sess.api.SetPIN(cmd.Context(), sess.user, args[0]); err != nil {
				return err
			}
			fmt.Println("PIN set")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove your PIN",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(cmd.Context(), true)
			if err != nil {
				return err
			}
			if err := sess.api.ClearPIN(cmd.Context(), sess.user); err != nil {
				return err
			}
			fmt.Println("PIN cleared")
			return nil
		},
	})

	return cmd
}
