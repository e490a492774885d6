// SPDX-License-Identifier: EPL-2.0

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ik5/audmix/store"
)

func newLibraryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "library [collection]",
		Short:     "List the records of one or every collection",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: store.Collections,
		RunE: func(cmd *cobra.Command, args []string) error {
			collections := store.Collections
			if len(args) == 1 {
				collections = args
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "COLLECTION\tID\tNAME\tSIZE\tCREATED")

			for _, c := range collections {
				recs, err := a.store.List(cmd.Context(), c)
				if err != nil {
					return err
				}
				for _, r := range recs {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
						r.Collection, r.ID, r.Name,
						humanize.IBytes(uint64(r.Size)),
						r.CreatedAt.Local().Format(time.DateTime))
				}
			}

			return w.Flush()
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:       "import <collection> <file>",
		Short:     "Add a downloaded clip or a recording to the library",
		Args:      cobra.ExactArgs(2),
		ValidArgs: store.Collections,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			if name == "" {
				name = filepath.Base(args[1])
			}

			rec, err := a.store.Put(cmd.Context(), args[0], name, data)
			if err != nil {
				return fmt.Errorf("import %s: %w", args[1], err)
			}
			a.log.Info("imported",
				zap.String("collection", rec.Collection),
				zap.String("id", rec.ID),
				zap.String("name", rec.Name),
			)

			fmt.Fprintf(cmd.OutOrStdout(), "%s:%s\t%s\n", rec.Collection, rec.ID, rec.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "record name (default: the file name)")

	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <collection>:<id> <file>",
		Short: "Copy a library record to a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			collection, id, ok := parseRef(args[0])
			if !ok {
				return fmt.Errorf("%q is not a <collection>:<id> reference", args[0])
			}

			data, _, err := a.store.Get(cmd.Context(), collection, id)
			if err != nil {
				return err
			}
			return os.WriteFile(args[1], data, 0o644)
		},
	}
}
