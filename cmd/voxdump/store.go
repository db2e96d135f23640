package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/arloliu/voxpal/storage"
)

type storeFlags struct {
	dir   string
	world string
	x, z  int32
}

func (f *storeFlags) open(a *app, readOnly bool) (*storage.Store, error) {
	if f.dir == "" {
		return nil, fmt.Errorf("--dir is required")
	}
	opts := []storage.Option{storage.WithLogger(a.log)}
	if readOnly {
		opts = append(opts, storage.WithReadOnly())
	}

	return storage.Open(f.dir, opts...)
}

func (f *storeFlags) key() (storage.Key, error) {
	world, err := uuid.Parse(f.world)
	if err != nil {
		return storage.Key{}, fmt.Errorf("invalid --world: %w", err)
	}

	return storage.Key{World: world, X: f.x, Z: f.z}, nil
}

func newStoreCmd(a *app) *cobra.Command {
	f := &storeFlags{}

	cmd := &cobra.Command{
		Use:   "store",
		Short: "Work with a leveldb column store",
	}
	cmd.PersistentFlags().StringVar(&f.dir, "dir", "", "store directory")
	cmd.PersistentFlags().StringVar(&f.world, "world", "", "world id (uuid)")

	coords := func(c *cobra.Command) *cobra.Command {
		c.Flags().Int32Var(&f.x, "x", 0, "column x coordinate")
		c.Flags().Int32Var(&f.z, "z", 0, "column z coordinate")
		return c
	}

	cmd.AddCommand(
		newStoreLsCmd(a, f),
		coords(newStoreShowCmd(a, f)),
		coords(newStorePutCmd(a, f)),
	)

	return cmd
}

func newStoreLsCmd(a *app, f *storeFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List stored columns; without --world, list worlds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := f.open(a, true)
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			if f.world == "" {
				worlds, err := s.Worlds()
				if err != nil {
					return err
				}
				for _, w := range worlds {
					fmt.Fprintln(out, w)
				}

				return nil
			}

			world, err := uuid.Parse(f.world)
			if err != nil {
				return fmt.Errorf("invalid --world: %w", err)
			}
			keys, err := s.Keys(world)
			if err != nil {
				return err
			}
			for _, k := range keys {
				fmt.Fprintf(out, "%d %d\n", k.X, k.Z)
			}
			a.log.Debug("listed columns", "world", world, "count", len(keys))

			return nil
		},
	}
}

func newStoreShowCmd(a *app, f *storeFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Decode and print one stored column",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := f.key()
			if err != nil {
				return err
			}
			s, err := f.open(a, true)
			if err != nil {
				return err
			}
			defer s.Close()

			data, err := s.Get(key)
			if err != nil {
				return err
			}

			return printColumn(cmd.OutOrStdout(), data, true)
		},
	}
}

func newStorePutCmd(a *app, f *storeFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "put <file>",
		Short: "Store a column blob file under --world, --x and --z",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			key, err := f.key()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			s, err := f.open(a, false)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Put(key, data); err != nil {
				return err
			}
			a.log.Info("stored column", "key", key.String(), "bytes", len(data))

			return nil
		},
	}
}
