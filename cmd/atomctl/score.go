package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newScoreCmd(opts *rootOptions) *cobra.Command {
	var (
		company string
		note    string
	)
	cmd := &cobra.Command{
		Use:   "score CRITERION VALUE|clear",
		Short: "Set or clear a raw score for a criterion",
		Long: `Set a raw score on the criterion's own scale. Values outside the scale
are clamped. Pass "clear" to remove the score.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			score, err := parseScore(args[1])
			if err != nil {
				return err
			}

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
			if err := svc.SetScore(ctx, id, args[0], score); err != nil {
				return err
			}
			if cmd.Flags().Changed("note") {
				if err := svc.SetNote(ctx, id, args[0], note); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s\n", dimStyle.Render(id), args[0], formatScore(score))
			return nil
		},
	}
	cmd.Flags().StringVar(&company, "company", "", "company id (default: selected)")
	cmd.Flags().StringVar(&note, "note", "", "also set the criterion note; empty clears it")
	return cmd
}

// parseScore reads a raw score; "clear" yields nil.
func parseScore(s string) (*float64, error) {
	if strings.EqualFold(s, "clear") {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid score %q: %w", s, err)
	}
	return &v, nil
}
