// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/store"
)

func newMixCmd(a *app) *cobra.Command {
	var (
		gainA, gainB float64
		resample     bool
		out          string
	)

	cmd := &cobra.Command{
		Use:   "mix <source-a> <source-b>",
		Short: "Mix two clips and store the result in the library",
		Long: `Mix two clips into a 16-bit stereo WAV file and store it in the mixes
collection. A source is either a file path or a library record written as
<collection>:<id>, for example downloads:0b7e7c1e-6c55-4a49-9a4b-3b9d0c1e2f3a.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if !cmd.Flags().Changed("gain-a") {
				gainA = a.cfg.Mix.GainA
			}
			if !cmd.Flags().Changed("gain-b") {
				gainB = a.cfg.Mix.GainB
			}
			if !cmd.Flags().Changed("resample") {
				resample = a.cfg.Mix.Resample
			}

			srcA, err := resolveSource(ctx, a.store, args[0])
			if err != nil {
				return err
			}
			srcB, err := resolveSource(ctx, a.store, args[1])
			if err != nil {
				return err
			}

			file, err := a.newMixer(resample).MixSources(ctx, srcA, srcB, gainA, gainB)
			if err != nil {
				return fmt.Errorf("mix failed: %w", err)
			}

			if out != "" {
				if err := os.WriteFile(out, file.Data, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", out, err)
				}
				a.log.Info("mix written", zap.String("path", out))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s:%s\t%s\n", file.Record.Collection, file.Record.ID, file.Name)
			return nil
		},
	}

	cmd.Flags().Float64Var(&gainA, "gain-a", 0.7, "gain applied to the first source (default from config)")
	cmd.Flags().Float64Var(&gainB, "gain-b", 0.7, "gain applied to the second source (default from config)")
	cmd.Flags().BoolVar(&resample, "resample", false, "convert both sources to the higher sample rate before mixing")
	cmd.Flags().StringVarP(&out, "out", "o", "", "also write the mix to this file")

	return cmd
}

// parseRef splits a <collection>:<id> library reference.
func parseRef(arg string) (collection, id string, ok bool) {
	collection, id, ok = strings.Cut(arg, ":")
	if !ok || !slices.Contains(store.Collections, collection) {
		return "", "", false
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", "", false
	}
	return collection, id, true
}

// resolveSource loads a mix input from a library reference or a file.
func resolveSource(ctx context.Context, st store.Store, arg string) (audio.Blob, error) {
	if collection, id, ok := parseRef(arg); ok {
		data, rec, err := st.Get(ctx, collection, id)
		if err != nil {
			return audio.Blob{}, fmt.Errorf("load %s: %w", arg, err)
		}
		return audio.Blob{Name: rec.Name, Data: data, ReceivedAt: rec.CreatedAt}, nil
	}

	data, err := os.ReadFile(arg)
	if err != nil {
		return audio.Blob{}, err
	}

	return audio.Blob{Name: filepath.Base(arg), Data: data, ReceivedAt: time.Now()}, nil
}
