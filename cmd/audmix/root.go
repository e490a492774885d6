// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ik5/audmix"
	"github.com/ik5/audmix/config"
	"github.com/ik5/audmix/logger"
	"github.com/ik5/audmix/mixer"
	"github.com/ik5/audmix/store"
)

// app is the state shared by the subcommands of one invocation.
type app struct {
	configPath string
	envFile    string

	cfg   *config.Config
	log   *zap.Logger
	store store.Store
}

// run executes one command line and releases whatever it opened, whether or
// not the command succeeded.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{}

	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	return errors.Join(err, a.teardown())
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "audmix",
		Short:         "Mix two audio clips into a stereo WAV file",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML configuration file")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", "", "load environment variables from this file instead of ./.env")

	root.AddCommand(
		newMixCmd(a),
		newLibraryCmd(a),
		newImportCmd(a),
		newExportCmd(a),
		newServeCmd(a),
		newWatchCmd(a),
	)

	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	// help and shell completion need neither config nor store
	if cmd.Name() == "help" || cmd.Name() == cobra.ShellCompRequestCmd || cmd.HasParent() && cmd.Parent().Name() == "completion" {
		return nil
	}

	var envFiles []string
	if a.envFile != "" {
		envFiles = append(envFiles, a.envFile)
	}

	cfg, err := config.Load(a.configPath, envFiles...)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg

	a.log, err = logger.New(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		OutputPath: cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
		Output:     cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}

	a.store, err = openStore(cmd.Context(), cfg.Store)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store.Kind, err)
	}
	a.log.Debug("store opened", zap.String("kind", cfg.Store.Kind))

	return nil
}

func (a *app) teardown() error {
	var err error
	if a.store != nil {
		err = a.store.Close()
		a.store = nil
	}
	if a.log != nil {
		// stderr sync fails on some terminals
		_ = a.log.Sync()
	}
	return err
}

func (a *app) newMixer(resample bool) *mixer.Mixer {
	return mixer.New(audmix.NewRegistry(), a.store,
		mixer.WithLogger(a.log),
		mixer.WithResample(resample),
		mixer.WithDecodeCache(a.cfg.Mix.CacheSize),
	)
}

func openStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Kind {
	case config.StoreDir:
		return store.OpenDir(cfg.Dir)
	case config.StoreMinio:
		return store.OpenMinio(ctx, store.MinioConfig{
			Endpoint:  cfg.Minio.Endpoint,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			Bucket:    cfg.Minio.Bucket,
			Region:    cfg.Minio.Region,
			UseSSL:    cfg.Minio.UseSSL,
		})
	case config.StoreMemory:
		return store.NewMemory(), nil
	}
	return nil, errors.New("unknown store kind " + cfg.Kind)
}
