package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tomthias/cleanAlbere9/internal/websocket"
)

// WatchCmd returns the watch command.
func WatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow changes made by other flatmates",
		Long: `Stay connected to the backend and report every change as it
happens. Each notification names only the table that changed; the
fresh state is fetched in full.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(cmd.Context(), false)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sub := websocket.NewSubscriber(sess.cfg.WebSocketURL(), sess.logger)

			report := func(what string) {
				stamp := time.Now().Format("15:04:05")
				fmt.Printf("%s %s\n", color.New(color.FgCyan).Sprint(stamp), what)
			}

			sub.OnTable(websocket.TableProgress, func() {
				sess.coord.ReloadProgress(ctx)
				report("progress changed")
			})
			sub.OnTable(websocket.TableSwaps, func() {
				sess.coord.ReloadSwaps(ctx)
				report("swaps changed")
			})
			sub.OnTable(websocket.TablePreferences, func() {
				sess.coord.ReloadPreferences(ctx)
				report("preferences changed")
			})

			go sub.Run(ctx)
			fmt.Printf("watching %s (ctrl-c to stop)\n", sess.cfg.ServerURL)

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			select {
			case <-quit:
			case <-ctx.Done():
			}
			sess.coord.FlushPreferences()
			return nil
		},
	}
}
