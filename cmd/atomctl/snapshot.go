package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/AutomateThePlanet/atom-evaluate/internal/domain/model"
)

func newSnapshotCmd(opts *rootOptions) *cobra.Command {
	var company string
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Capture, list or remove metric snapshots",
	}
	cmd.PersistentFlags().StringVar(&company, "company", "", "company id (default: selected)")

	var asJSON bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List snapshots, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer svc.Stop()

			ctx := cmd.Context()
			id, err := companyID(ctx, svc, company)
			if err != nil {
				return err
			}
			snaps, err := svc.Snapshots(ctx, id)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), snaps)
			}
			if len(snaps) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render("no snapshots"))
				return nil
			}
			current := svc.Fingerprint(ctx).Hash
			for _, s := range snaps {
				printSnapshot(cmd, s, current)
			}
			return nil
		},
	}
	list.Flags().BoolVar(&asJSON, "json", false, "output JSON")

	capture := &cobra.Command{
		Use:   "capture",
		Short: "Record the current metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer svc.Stop()

			ctx := cmd.Context()
			id, err := companyID(ctx, svc, company)
			if err != nil {
				return err
			}
			snap, err := svc.CaptureSnapshot(ctx, id)
			if err != nil {
				return err
			}
			printSnapshot(cmd, snap, snap.CriteriaHash)
			return nil
		},
	}

	pop := &cobra.Command{
		Use:   "pop",
		Short: "Remove the most recent snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer svc.Stop()

			ctx := cmd.Context()
			id, err := companyID(ctx, svc, company)
			if err != nil {
				return err
			}
			snap, ok, err := svc.PopLastSnapshot(ctx, id)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render("no snapshots"))
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), "removed ")
			printSnapshot(cmd, snap, snap.CriteriaHash)
			return nil
		},
	}

	cmd.AddCommand(list, capture, pop)
	return cmd
}

// printSnapshot writes one line; snapshots taken under another criteria set
// are marked as not comparable.
func printSnapshot(cmd *cobra.Command, s model.Snapshot, currentHash string) {
	line := fmt.Sprintf("%s  TAEI %s  overall %s",
		s.Timestamp.Local().Format(time.DateTime),
		scoreStyle(s.Metrics.Composite).Render(formatScore(s.Metrics.Composite)),
		scoreStyle(s.Metrics.OverallByCriteria).Render(formatScore(s.Metrics.OverallByCriteria)),
	)
	if s.CriteriaHash != currentHash {
		line += " " + dimStyle.Render("(different criteria)")
	}
	fmt.Fprintln(cmd.OutOrStdout(), line)
}
