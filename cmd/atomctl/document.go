package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AutomateThePlanet/atom-evaluate/internal/adapters/storage"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the whole document as JSON or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := formatFor(format, output)
			if err != nil {
				return err
			}
			svc, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer svc.Stop()

			var buf bytes.Buffer
			if err := svc.Export(cmd.Context(), &buf, f); err != nil {
				return err
			}
			if output == "" {
				_, err := cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			return os.WriteFile(output, buf.Bytes(), 0o600)
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "json or yaml (default from the output extension, else json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	return cmd
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Replace the whole document with an exported file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := formatFor(format, args[0])
			if err != nil {
				return err
			}
			in, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer in.Close()

			svc, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer svc.Stop()

			ctx := cmd.Context()
			if err := svc.Import(ctx, in, f); err != nil {
				return err
			}
			st := svc.GetStats(ctx)
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d companies, %d criteria\n", st.Companies, st.Criteria)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "json or yaml (default from the file extension)")
	return cmd
}

func newResetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the default company and criteria, dropping all scores and snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer svc.Stop()

			svc.Reset(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "reset to defaults")
			return nil
		},
	}
}

// formatFor resolves an explicit --format, falling back to the file extension.
func formatFor(flag, path string) (storage.Format, error) {
	if flag != "" {
		return storage.ParseFormat(flag)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return storage.FormatYAML, nil
	default:
		return storage.FormatJSON, nil
	}
}
