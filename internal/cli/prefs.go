package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tomthias/cleanAlbere9/internal/model"
)

// PrefsCmd returns the prefs command group.
func PrefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change your preferences",
	}
	cmd.AddCommand(prefsShowCmd())
	cmd.AddCommand(prefsSetCmd())
	return cmd
}

func prefsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show your current preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(cmd.Context(), true)
			if err != nil {
				return err
			}

			prefs := sess.coord.Preferences()
			fmt.Printf("user:     %s\n", prefs.UserName)
			fmt.Printf("name:     %s %s\n", prefs.AvatarEmoji, prefs.DisplayName)
			fmt.Printf("theme:    %s\n", prefs.Theme)
			fmt.Printf("language: %s\n", prefs.Language)
			fmt.Println("colors:")
			for _, person := range model.People {
				fmt.Printf("  %-8s %s\n", person, prefs.Colors[person])
			}
			return nil
		},
	}
}

func prefsSetCmd() *cobra.Command {
	var theme, lang, name, emoji string
	var colors []string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change preferences",
		Long: `Change one or more preferences. Edits are pushed together after a
short settle window, so a burst of changes lands as one write.

  flatmate prefs set --theme dark --color Martina=amber --lang en`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(cmd.Context(), true)
			if err != nil {
				return err
			}

			changed := false
			if theme != "" {
				t := model.Theme(theme)
				if !t.Valid() {
					return fmt.Errorf("unknown theme %q (light or dark)", theme)
				}
				sess.coord.SetTheme(t)
				changed = true
			}
			if lang != "" {
				l := model.Language(lang)
				if !l.Valid() {
					return fmt.Errorf("unknown language %q (it or en)", lang)
				}
				sess.coord.SetLanguage(l)
				changed = true
			}
			if name != "" || emoji != "" {
				display := name
				if display == "" {
					display = sess.coord.Preferences().DisplayName
				}
				sess.coord.SetDisplayName(display, emoji)
				changed = true
			}
			for _, pair := range colors {
				person, colorName, ok := strings.Cut(pair, "=")
				if !ok {
					return fmt.Errorf("color must be person=color, got %q", pair)
				}
				p, err := model.ParsePerson(person)
				if err != nil {
					return err
				}
				sess.coord.SetColor(p, colorName)
				changed = true
			}

			if !changed {
				return fmt.Errorf("nothing to change (see --help)")
			}

			sess.coord.FlushPreferences()
			if !sess.coord.Online() {
				return fmt.Errorf("preferences saved locally but the backend is unreachable")
			}
			fmt.Println("preferences saved")
			return nil
		},
	}

	cmd.Flags().StringVar(&theme, "theme", "", "theme: light or dark")
	cmd.Flags().StringVar(&lang, "lang", "", "language: it or en")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&emoji, "emoji", "", "avatar emoji")
	cmd.Flags().StringArrayVar(&colors, "color", nil, "person=color, repeatable")
	return cmd
}
