package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AutomateThePlanet/atom-evaluate/internal/domain/model"
)

func newCriteriaCmd(opts *rootOptions) *cobra.Command {
	var (
		asJSON    bool
		dimension string
	)
	cmd := &cobra.Command{
		Use:   "criteria",
		Short: "List criteria",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer svc.Stop()

			criteria := svc.Criteria(cmd.Context())
			if dimension != "" {
				dim := model.ParseDimension(dimension)
				filtered := make([]model.Criterion, 0, len(criteria))
				for _, c := range criteria {
					if c.Dimension == dim {
						filtered = append(filtered, c)
					}
				}
				criteria = filtered
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), criteria)
			}

			w := cmd.OutOrStdout()
			for _, c := range criteria {
				name := c.Name
				if !c.Enabled {
					name = dimStyle.Render(name + " (disabled)")
				}
				fmt.Fprintf(w, "%-6s %-5s w=%-4g %g..%g  %s\n", c.ID, c.Dimension, c.Weight, c.ScaleMin, c.ScaleMax, name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output JSON")
	cmd.Flags().StringVar(&dimension, "dimension", "", "only show TSI, TQI, ATC or OTHER")
	return cmd
}

func newFingerprintCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "fingerprint",
		Short: "Print the fingerprint of the current criteria set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer svc.Stop()

			fp := svc.Fingerprint(cmd.Context())
			if asJSON {
				return printJSON(cmd.OutOrStdout(), fp)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", headerStyle.Render(fp.Hash),
				dimStyle.Render(fmt.Sprintf("%d criteria, %d enabled", fp.Criteria, fp.EnabledCriteria)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output JSON")
	return cmd
}
