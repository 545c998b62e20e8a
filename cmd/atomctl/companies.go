package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCompaniesCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "companies",
		Short: "List companies; the selected one is marked with *",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer svc.Stop()

			ctx := cmd.Context()
			companies := svc.Companies(ctx)
			selected, _ := svc.SelectedCompany(ctx)
			if asJSON {
				return printJSON(cmd.OutOrStdout(), companies)
			}
			for _, c := range companies {
				mark := " "
				if c.ID == selected.ID {
					mark = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s  %s\n", mark, dimStyle.Render(c.ID), c.Name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output JSON")
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add NAME",
			Short: "Add a company and select it",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				svc, err := opts.open(cmd)
				if err != nil {
					return err
				}
				defer svc.Stop()

				c, err := svc.AddCompany(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s)\n", c.Name, c.ID)
				return nil
			},
		},
		&cobra.Command{
			Use:   "select ID",
			Short: "Select a company",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				svc, err := opts.open(cmd)
				if err != nil {
					return err
				}
				defer svc.Stop()
				return svc.SelectCompany(cmd.Context(), args[0])
			},
		},
	)
	return cmd
}
