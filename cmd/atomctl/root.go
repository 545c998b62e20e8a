package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AutomateThePlanet/atom-evaluate/internal/adapters/storage"
	service "github.com/AutomateThePlanet/atom-evaluate/internal/app"
	"github.com/AutomateThePlanet/atom-evaluate/internal/config"
	"github.com/AutomateThePlanet/atom-evaluate/pkg/logger"
)

// ErrNoStatePath is returned when neither --state nor the config names a file.
var ErrNoStatePath = errors.New("no state file configured (use --state or ATOM_STATE_PATH)")

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	statePath string
	verbose   bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "atomctl",
		Short: "Inspect and edit an ATOM Evaluate state file",
		Long: `atomctl works directly on the JSON state file the server persists to.
Every change is written back before the command exits.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.statePath, "state", "", "state file (default from ATOM_STATE_PATH or atom-state.json)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log service activity to stderr")

	cmd.AddCommand(
		newCompaniesCmd(opts),
		newCriteriaCmd(opts),
		newFingerprintCmd(opts),
		newScoreCmd(opts),
		newMetricsCmd(opts),
		newSnapshotCmd(opts),
		newExportCmd(opts),
		newImportCmd(opts),
		newResetCmd(opts),
	)
	return cmd
}

func (o *rootOptions) resolvePath(ctx context.Context) (string, error) {
	if o.statePath != "" {
		return o.statePath, nil
	}
	cfg, err := config.Load(ctx)
	if err != nil {
		return "", err
	}
	if cfg.StatePath == "" {
		return "", ErrNoStatePath
	}
	return cfg.StatePath, nil
}

// open starts a service that saves synchronously to the state file. A file
// that exists but cannot be decoded is refused so it is never overwritten.
func (o *rootOptions) open(cmd *cobra.Command) (*service.Service, error) {
	ctx := cmd.Context()
	path, err := o.resolvePath(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := storage.NewFileStorage(path).Load(ctx); err != nil && !errors.Is(err, storage.ErrNoState) {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	log := logger.Nop()
	if o.verbose {
		_ = logger.Init(logger.WithOutput(cmd.ErrOrStderr()))
		_ = logger.SetLevelString("debug")
		log = logger.Get().Named("atomctl")
	}

	svc := service.New(
		service.WithLogger(log),
		service.WithStatePath(path),
		service.WithPersistMode(service.PersistSync),
	)
	if err := svc.Start(ctx); err != nil {
		return nil, err
	}
	return svc, nil
}

// companyID returns id, or the selected company when id is empty.
func companyID(ctx context.Context, svc *service.Service, id string) (string, error) {
	if id != "" {
		return id, nil
	}
	c, err := svc.SelectedCompany(ctx)
	if err != nil {
		return "", err
	}
	return c.ID, nil
}
