package cli

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tomthias/cleanAlbere9/internal/client"
	"github.com/tomthias/cleanAlbere9/internal/model"
)

// SwapCmd returns the swap command group.
func SwapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swap",
		Short: "Request, accept or cancel turn swaps",
	}
	cmd.AddCommand(swapRequestCmd())
	cmd.AddCommand(swapAcceptCmd())
	cmd.AddCommand(swapCancelCmd())
	cmd.AddCommand(swapListCmd())
	return cmd
}

func swapRequestCmd() *cobra.Command {
	var weekFlag int

	cmd := &cobra.Command{
		Use:   "request <area>",
		Short: "Ask someone to take over your turn",
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

			weeks := sess.coord.EffectiveWeeks()
			week, ok := pickWeek(weeks, weekFlag)
			if !ok {
				return fmt.Errorf("no week matches")
			}

			if week.Assignees[areaID] != sess.user {
				return fmt.Errorf("week %d %s is assigned to %s, not you",
					week.ID, areaID, week.Assignees[areaID])
			}

			swap, err := sess.coord.RequestSwap(cmd.Context(), week.ID, areaID)
			if err != nil {
				if errors.Is(err, client.ErrConflict) {
					return fmt.Errorf("a swap for week %d %s is already open", week.ID, areaID)
				}
				return err
			}
			fmt.Printf("swap %s opened for week %d %s\n", swap.ID, swap.WeekID, swap.AreaID)
			return nil
		},
	}

	cmd.Flags().IntVar(&weekFlag, "week", 0, "week number (default: the current week)")
	return cmd
}

func swapAcceptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accept <id>",
		Short: "Take over someone's turn",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(cmd.Context(), true)
			if err != nil {
				return err
			}
			swap, err := sess.coord.AcceptSwap(cmd.Context(), args[0])
			if err != nil {
				if errors.Is(err, client.ErrConflict) {
					return fmt.Errorf("swap cannot be accepted (already resolved, or it is your own)")
				}
				return err
			}
			fmt.Printf("you take week %d %s (was %s)\n", swap.WeekID, swap.AreaID, swap.OriginalPerson)
			return nil
		},
	}
}

func swapCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <id>",
		Short: "Withdraw a swap you requested",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(cmd.Context(), true)
			if err != nil {
				return err
			}
			if err := sess.coord.CancelSwap(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("swap cancelled")
			return nil
		},
	}
}

func swapListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List open and accepted swaps",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(cmd.Context(), false)
			if err != nil {
				return err
			}

			swaps := sess.coord.Swaps()
			if len(swaps) == 0 {
				fmt.Println("no active swaps")
				return nil
			}

			lang := sess.cfg.Lang()
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			for _, s := range swaps {
				status := string(s.Status)
				if s.Status == model.SwapAccepted {
					status = color.New(color.FgHiGreen).Sprint(status)
				} else {
					status = color.New(color.FgYellow).Sprint(status)
				}
				with := "-"
				if s.SwappedWith != nil {
					with = string(*s.SwappedWith)
				}
				area, _ := model.AreaByID(s.AreaID)
				fmt.Fprintf(w, "%s\t%s\tweek %d\t%s\t%s → %s\n",
					s.ID, status, s.WeekID, area.Name(lang), s.OriginalPerson, with)
			}
			return w.Flush()
		},
	}
}
