package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/statengine/internal/config"
	"github.com/cory-johannsen/statengine/internal/game/state"
	"github.com/cory-johannsen/statengine/internal/storage"
)

// errNoPersistentStore is returned by snapshot commands when neither Redis
// nor PostgreSQL is enabled.
var errNoPersistentStore = errors.New("no persistent snapshot store enabled; set redis.enabled or database.enabled")

func newSnapshotCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Save, load, and manage game state snapshots",
	}
	cmd.AddCommand(newSnapshotSaveCmd(root))
	cmd.AddCommand(newSnapshotLoadCmd(root))
	cmd.AddCommand(newSnapshotListCmd(root))
	cmd.AddCommand(newSnapshotPruneCmd(root))
	return cmd
}

// withStores loads configuration, connects the persistent stores, and runs fn.
func withStores(ctx context.Context, root *rootOptions, fn func(*Stores) error) error {
	cfg, err := root.load()
	if err != nil {
		return err
	}
	return withStoresFrom(ctx, cfg, fn)
}

func withStoresFrom(ctx context.Context, cfg *config.Config, fn func(*Stores) error) error {
	stores, cleanup, err := initializeStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	if !stores.Persistent() {
		return errNoPersistentStore
	}
	return fn(stores)
}

func newSnapshotSaveCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "save <file>",
		Short: "Store a game state JSON document, as printed by the json command",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading snapshot file: %w", err)
			}
			g, err := state.Decode(data)
			if err != nil {
				return err
			}
			return withStores(cmd.Context(), root, func(s *Stores) error {
				snap, err := snapshotOf(g)
				if err != nil {
					return err
				}
				if err := s.Chain.Save(cmd.Context(), snap); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "saved game %s at tick %d\n", g.ID, g.Tick)
				return nil
			})
		},
	}
}

func newSnapshotLoadCmd(root *rootOptions) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "load <game-id>",
		Short: "Print the latest snapshot of a game as indented JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(cmd.Context(), root, func(s *Stores) error {
				snap, err := s.Chain.Latest(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return writeSnapshot(cmd.OutOrStdout(), outPath, snap)
			})
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write to this file instead of stdout")
	return cmd
}

func newSnapshotListCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list <game-id>",
		Short: "List the ticks stored in PostgreSQL for a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(cmd.Context(), root, func(s *Stores) error {
				if s.Postgres == nil {
					return errors.New("snapshot list requires database.enabled")
				}
				ticks, err := s.Postgres.Ticks(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if len(ticks) == 0 {
					return storage.ErrSnapshotNotFound
				}
				for _, t := range ticks {
					fmt.Fprintln(cmd.OutOrStdout(), t)
				}
				return nil
			})
		},
	}
}

func newSnapshotPruneCmd(root *rootOptions) *cobra.Command {
	var keep int
	cmd := &cobra.Command{
		Use:   "prune <game-id>",
		Short: "Delete all but the newest snapshots of a game from PostgreSQL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if keep < 1 {
				return fmt.Errorf("--keep must be at least 1, got %d", keep)
			}
			return withStores(cmd.Context(), root, func(s *Stores) error {
				if s.Postgres == nil {
					return errors.New("snapshot prune requires database.enabled")
				}
				n, err := s.Postgres.Prune(cmd.Context(), args[0], keep)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "pruned %d snapshots\n", n)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&keep, "keep", 5, "number of newest snapshots to keep")
	return cmd
}

func snapshotOf(g *state.GameState) (storage.Snapshot, error) {
	data, err := g.MarshalJSON()
	if err != nil {
		return storage.Snapshot{}, err
	}
	return storage.Snapshot{
		GameID:  g.ID,
		Tick:    g.Tick,
		Version: g.Version,
		Data:    data,
		SavedAt: time.Now().UTC(),
	}, nil
}

func writeSnapshot(stdout io.Writer, outPath string, snap storage.Snapshot) error {
	g, err := state.Decode(snap.Data)
	if err != nil {
		return err
	}
	data, err := state.EncodeIndent(g)
	if err != nil {
		return err
	}
	if outPath == "" {
		_, err = fmt.Fprintln(stdout, string(data))
		return err
	}
	return os.WriteFile(outPath, append(data, '\n'), 0o644)
}
