package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tomthias/cleanAlbere9/internal/model"
	"github.com/tomthias/cleanAlbere9/internal/rotation"
)

// ToggleCmd returns the toggle command.
func ToggleCmd() *cobra.Command {
	var weekFlag int

	cmd := &cobra.Command{
		Use:   "toggle <area>",
		Short: "Mark a zone done for the week, or undo it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			areaID, err := model.ParseAreaID(args[0])
			if err != nil {
				return err
			}

			sess, err := newSession(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer sess.coord.FlushPreferences()

			weeks := sess.coord.EffectiveWeeks()
			week, ok := pickWeek(weeks, weekFlag)
			if !ok {
				return fmt.Errorf("no week matches")
			}

			if err := sess.coord.Toggle(cmd.Context(), week.ID, areaID); err != nil {
				return err
			}

			area, _ := model.AreaByID(areaID)
			lang := sess.cfg.Lang()
			if sess.coord.Progress().Completed(week.ID, areaID) {
				fmt.Printf("%s %s done for week %d (%s)\n",
					color.New(color.FgHiGreen).Sprint("✓"),
					area.Name(lang), week.ID,
					rotation.FormatRange(week.StartDate, week.EndDate, lang))
			} else {
				fmt.Printf("%s %s no longer marked for week %d\n",
					color.New(color.FgYellow).Sprint("·"),
					area.Name(lang), week.ID)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&weekFlag, "week", 0, "week number (default: the current week)")
	return cmd
}
