package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/T9ner/echo-sub000/internal/app"
	"github.com/T9ner/echo-sub000/internal/event_bus"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the background pollers until interrupted",
	Long: `Watch keeps the client running: the visible calendar window is
refreshed every polling interval and, when a provider token is configured,
the external feed is re-synced. Stop with Ctrl-C.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.NewApplication(ctx, cfgFile, tokenSourceFromEnv())
	if err != nil {
		return err
	}

	unsub := event_bus.SubscribeTyped[event_bus.ProviderSynced](application.Dependencies().Bus, event_bus.ProviderSyncedType,
		func(e event_bus.EventT[event_bus.ProviderSynced]) error {
			fmt.Printf("synced %d events from %s at %s\n",
				e.Data.Count, e.Data.CalendarID, e.Data.SyncedAt.Local().Format("15:04:05"))
			return nil
		})
	defer unsub()

	return application.Run(ctx)
}
