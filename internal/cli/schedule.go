package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tomthias/cleanAlbere9/internal/model"
	"github.com/tomthias/cleanAlbere9/internal/rotation"
)

// ScheduleCmd returns the schedule command.
func ScheduleCmd() *cobra.Command {
	var count int
	var areaFlag string

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Show upcoming weeks of the rotation",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(cmd.Context(), false)
			if err != nil {
				return err
			}

			var only model.AreaID
			if areaFlag != "" {
				only, err = model.ParseAreaID(areaFlag)
				if err != nil {
					return err
				}
			}

			weeks := sess.coord.EffectiveWeeks()
			lang := sess.cfg.Lang()
			progress := sess.coord.Progress()
			now := time.Now()

			start := 0
			for i, w := range weeks {
				if rotation.IsCurrentWeek(w.StartDate, w.EndDate, now) || w.StartDate.After(now) {
					start = i
					break
				}
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			for i := start; i < len(weeks) && i < start+count; i++ {
				week := weeks[i]
				label := fmt.Sprintf("week %d", week.ID)
				if rotation.IsCurrentWeek(week.StartDate, week.EndDate, now) {
					label = color.New(color.FgHiGreen).Sprint(label)
				}
				for _, area := range model.Areas {
					if only != "" && area.ID != only {
						continue
					}
					mark := " "
					if progress.Completed(week.ID, area.ID) {
						mark = color.New(color.FgHiGreen).Sprint("✓")
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s %s\n",
						label,
						rotation.FormatRange(week.StartDate, week.EndDate, lang),
						area.Name(lang),
						mark, week.Assignees[area.ID])
					label = ""
				}
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&count, "weeks", 4, "how many weeks to show")
	cmd.Flags().StringVar(&areaFlag, "area", "", "limit to one zone")
	return cmd
}
