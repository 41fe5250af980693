package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomthias/cleanAlbere9/internal/config"
	"github.com/tomthias/cleanAlbere9/internal/model"
)

// AreasCmd returns the areas command.
func AreasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "areas",
		Short: "List the cleaning zones and what each involves",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			lang := cfg.Lang()

			for _, area := range model.Areas {
				fmt.Printf("%s (%s)\n", area.Name(lang), area.ID)
				for _, task := range area.Tasks.For(lang) {
					fmt.Printf("  - %s\n", task)
				}
				fmt.Println()
			}
			return nil
		},
	}
}
