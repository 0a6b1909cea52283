package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRunCmd(root *rootOptions) *cobra.Command {
	var resume string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the game loop reading commands from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			start := time.Now()
			cfg, err := root.load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			app, cleanup, err := initializeApp(ctx, cfg, RunOptions{
				Resume: resume,
				In:     os.Stdin,
				Out:    cmd.OutOrStdout(),
			})
			if err != nil {
				return err
			}
			defer cleanup()

			app.Logger.Info("engine initialized",
				zap.String("game_id", app.Game.ID),
				zap.Uint64("tick", app.Game.Tick),
				zap.Int("tick_rate", cfg.Engine.TickRate),
				zap.Duration("startup", time.Since(start)),
			)
			if err := app.Lifecycle.Run(ctx); err != nil {
				app.Logger.Error("engine error", zap.Error(err))
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&resume, "resume", "", "resume the latest snapshot of this game id")
	return cmd
}
