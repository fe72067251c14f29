package main

import (
	"time"

	"github.com/colorcity-labs/colorcity-sdk-go/pkg/collection"
	"github.com/colorcity-labs/colorcity-sdk-go/pkg/gallery"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [owner]",
	Short: "Redraw the gallery whenever the account's balance changes",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newApp(cmd.Context(), options)
		if err != nil {
			return err
		}
		defer rt.Close()

		owner, err := rt.owner(args)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		watcher, err := collection.NewWatcher(collection.WatcherConfig{
			Resolver: rt.resolver,
			Accounts: collection.StaticAccount(owner),
			Interval: watchInterval,
			Logger:   rt.logger,
			OnUpdate: func(result collection.Collection) {
				if err := gallery.Render(out, result); err != nil {
					rt.logger.Warn("failed to render gallery", zap.Error(err))
				}
			},
		})
		if err != nil {
			return err
		}

		if err := watcher.StartPolling(cmd.Context()); err != nil {
			return err
		}
		<-cmd.Context().Done()
		watcher.StopPolling()
		return nil
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", collection.DefaultWatchInterval, "how often to check the balance")
}
