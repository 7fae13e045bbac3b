package main

import (
	"context"

	"github.com/google/uuid"
	"github.com/hupe1980/sigann"
	"github.com/hupe1980/sigann/blobstore"
	"github.com/hupe1980/sigann/blobstore/minio"
	"github.com/hupe1980/sigann/blobstore/s3"
	"github.com/hupe1980/sigann/config"
	"github.com/hupe1980/sigann/internal/resource"
	"github.com/spf13/cobra"
)

// app is the state shared by all subcommands after flag parsing.
type app struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg       *config.Config
	logger    *sigann.Logger
	resources *resource.Controller
	runID     string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "sigann",
		Short:         "Approximate nearest neighbor search with filters",
		Long:          `sigann builds a proximity graph and spatial trees over a record set and measures search recall against an exhaustive baseline.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "path to a YAML config file")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&a.logFormat, "log-format", "", "log format (text, json)")

	cmd.AddCommand(newGenerateCmd(a), newEvaluateCmd(a))
	return cmd
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Log.Format = a.logFormat
	}

	logger, err := cfg.Log.Logger()
	if err != nil {
		return err
	}
	rc, err := cfg.ResourceController()
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.runID = uuid.NewString()
	a.logger = logger.WithRunID(a.runID)
	a.resources = rc
	return nil
}

// openStore opens the configured storage backend.
func (a *app) openStore(ctx context.Context) (blobstore.Store, error) {
	sc := a.cfg.Storage
	switch sc.Backend {
	case "s3":
		opts := []s3.Option{s3.WithPrefix(sc.Prefix)}
		if sc.Region != "" {
			opts = append(opts, s3.WithRegion(sc.Region))
		}
		if sc.Endpoint != "" {
			opts = append(opts, s3.WithEndpoint(sc.Endpoint))
		}
		return s3.New(ctx, sc.Bucket, opts...)
	case "minio":
		store, err := minio.New(sc.Endpoint, sc.Bucket, minio.Credentials{
			AccessKey: sc.AccessKey,
			SecretKey: sc.SecretKey,
			Secure:    sc.Secure,
		})
		if err != nil {
			return nil, err
		}
		return store.WithPrefix(sc.Prefix), nil
	default:
		return blobstore.NewLocalStore(sc.Path), nil
	}
}
