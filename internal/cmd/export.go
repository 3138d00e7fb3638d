package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/assessment/internal/filelock"
	"github.com/harrison/assessment/internal/parser"
)

// exportLockTimeout bounds the wait for another export of the same file
const exportLockTimeout = 10 * time.Second

// NewExportCommand creates and returns the export subcommand
func NewExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <slug>",
		Short: "Export an assessment as a normalized YAML or JSON document",
		Long: `Export writes the registered definition back out as a document. Defaults
are omitted, so the output is the smallest document that loads back into an
equal definition. Built-in assessments can be exported to seed a document.

Writes to stdout unless -o is given; files are replaced atomically.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment(cmd, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			format, _ := cmd.Flags().GetString("format")
			outPath, _ := cmd.Flags().GetString("output")
			return runExport(cmd.Context(), env, args[0], format, outPath, cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}

	cmd.Flags().String("format", "yaml", "Output format: yaml or json")
	cmd.Flags().StringP("output", "o", "", "Write to this file instead of stdout")

	return cmd
}

func runExport(ctx context.Context, env *environment, slug, formatName, outPath string, output io.Writer) error {
	format := parser.ParseFormat(formatName)
	if format != parser.FormatYAML && format != parser.FormatJSON {
		return fmt.Errorf("unsupported export format %q (use yaml or json)", formatName)
	}

	def, err := env.registry.Find(slug)
	if err != nil {
		return err
	}

	if outPath == "" {
		return parser.Encode(output, def, format)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, exportLockTimeout)
	defer cancel()

	err = filelock.WriteFile(ctx, outPath, func(w io.Writer) error {
		return parser.Encode(w, def, format)
	})
	if err != nil {
		return fmt.Errorf("failed to export %s: %w", slug, err)
	}
	fmt.Fprintf(output, "✓ Exported %s to %s\n", slug, outPath)
	return nil
}
