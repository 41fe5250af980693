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

// StatusCmd returns the status command.
func StatusCmd() *cobra.Command {
	var weekFlag int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the week's assignments and completion state",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer sess.coord.FlushPreferences()

			weeks := sess.coord.EffectiveWeeks()
			week, ok := pickWeek(weeks, weekFlag)
			if !ok {
				return fmt.Errorf("no week matches (schedule covers %s through %s)",
					weeks[0].StartDate.Format("2006-01-02"),
					weeks[len(weeks)-1].EndDate.Format("2006-01-02"))
			}

			lang := sess.cfg.Lang()
			progress := sess.coord.Progress()
			swaps := sess.coord.Swaps()
			profiles := sess.coord.Profiles()

			header := fmt.Sprintf("Week %d  %s", week.ID, rotation.FormatRange(week.StartDate, week.EndDate, lang))
			if rotation.IsCurrentWeek(week.StartDate, week.EndDate, time.Now()) {
				header += color.New(color.FgHiGreen).Sprint("  [this week]")
			}
			fmt.Println(header)
			fmt.Println()

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			for _, area := range model.Areas {
				assignee := week.Assignees[area.ID]
				name := string(assignee)
				if p, ok := profiles[assignee]; ok && p.DisplayName != "" {
					name = p.AvatarEmoji + " " + p.DisplayName
				}

				mark := color.New(color.FgYellow).Sprint("·")
				if progress.Completed(week.ID, area.ID) {
					mark = color.New(color.FgHiGreen).Sprint("✓")
				}

				badge := ""
				if pending := rotation.PendingSwap(swaps, week.ID, area.ID); pending != nil {
					badge = color.New(color.FgHiMagenta).Sprintf(" [swap pending: %s]", pending.OriginalPerson)
				}

				fmt.Fprintf(w, "%s\t%s\t%s%s\n", mark, area.Name(lang), name, badge)
			}
			w.Flush()

			if !sess.coord.Online() {
				fmt.Println()
				fmt.Println(color.New(color.FgRed).Sprint("offline, showing cached state"))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&weekFlag, "week", 0, "week number (default: the current week)")
	return cmd
}

// pickWeek resolves --week, falling back to today's week.
func pickWeek(weeks []rotation.Week, weekFlag int) (rotation.Week, bool) {
	if weekFlag > 0 {
		if weekFlag > len(weeks) {
			return rotation.Week{}, false
		}
		return weeks[weekFlag-1], true
	}
	now := time.Now()
	for _, w := range weeks {
		if rotation.IsCurrentWeek(w.StartDate, w.EndDate, now) {
			return w, true
		}
	}
	return rotation.Week{}, false
}
