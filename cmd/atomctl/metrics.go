package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMetricsCmd(opts *rootOptions) *cobra.Command {
	var (
		company string
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Evaluate a company's current assessment",
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
			eval, err := svc.Evaluate(ctx, id)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), eval)
			}

			w := cmd.OutOrStdout()
			m := eval.Metrics
			fmt.Fprintf(w, "%s %s\n", headerStyle.Render(eval.CompanyName), dimStyle.Render("("+eval.CompanyID+")"))
			printScoreRow(w, "TSI", m.TSI)
			printScoreRow(w, "TQI", m.TQI)
			printScoreRow(w, "ATC", m.ATC)
			printScoreRow(w, "TAEI", m.Composite)
			printScoreRow(w, "Overall (criteria)", m.OverallByCriteria)
			printScoreRow(w, "Overall (dimensions)", m.OverallByDimension)
			if eval.DeltaCriteriaVsDimensions != nil {
				fmt.Fprintf(w, "  %-22s %+.2f\n", "Delta", *eval.DeltaCriteriaVsDimensions)
			}
			if eval.Disagreement {
				fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("Criteria and dimension averages disagree by %.2f or more.", eval.Threshold)))
			}
			for _, msg := range eval.Warnings {
				fmt.Fprintln(w, warnStyle.Render(msg))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&company, "company", "", "company id (default: selected)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output JSON")
	return cmd
}
