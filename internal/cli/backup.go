package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newExportCmd(e *env) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a backup of every stored entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withSession(func(s *session) error {
				pkg, err := s.Export(cmd.Context())
				if err != nil {
					return err
				}
				if outPath == "-" {
					_, err := fmt.Fprintln(cmd.OutOrStdout(), pkg.Text)
					return err
				}
				path := outPath
				if path == "" {
					path = pkg.FilenameHint
				}
				if err := os.WriteFile(path, []byte(pkg.Text), 0o600); err != nil {
					return fmt.Errorf("write backup: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", len(pkg.Entries), path)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file, - for stdout (default is a dated file name)")
	return cmd
}

func newImportCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Restore entries from a backup",
		Long: `Restore entries from a backup made by export. Each entry being replaced
is first copied to a backup slot in the store.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read backup: %w", err)
			}
			return e.withSession(func(s *session) error {
				res, err := s.Import(cmd.Context(), string(raw))
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Imported: %s\n", strings.Join(res.Imported, ", "))
				for _, w := range res.Warnings {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
				}
				return nil
			})
		},
	}
}

func newFootprintCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "footprint",
		Short: "Show how much storage the app uses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withSession(func(s *session) error {
				fp, err := s.Footprint(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d entries, %d bytes", fp.EntryCount, fp.TotalBytes)
				if quota := e.cfg.Storage.QuotaBytes; quota > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), " of %d (%.1f%%)", quota, float64(fp.TotalBytes)*100/float64(quota))
				}
				fmt.Fprintln(cmd.OutOrStdout())
				return nil
			})
		},
	}
}
