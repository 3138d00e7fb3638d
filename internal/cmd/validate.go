package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/harrison/assessment/internal/builtin"
	"github.com/harrison/assessment/internal/display"
	"github.com/harrison/assessment/internal/logger"
	"github.com/harrison/assessment/internal/models"
	"github.com/harrison/assessment/internal/parser"
	"github.com/harrison/assessment/internal/registry"
)

// NewValidateCommand creates and returns the validate subcommand
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [file-or-directory]...",
		Short: "Validate assessment definitions",
		Long: `Parse and validate assessment definitions, checking for:
  - Well-formed YAML, JSON or Markdown frontmatter
  - A slug on every definition
  - Questions without an id, duplicate question and option ids,
    and result rules whose score bounds never match (warnings)
  - Slugs defined more than once (warning)

Without arguments the configured assessments_paths and built-in
assessments are validated.

Exit code: 0 if valid, 1 if errors found`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args, cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}

	return cmd
}

func runValidate(cmd *cobra.Command, args []string, output io.Writer) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var defs []*models.Definition
	var report models.LoadReport

	if len(args) == 0 {
		loader := registry.NewLoader(registry.New(), cfg.AssessmentsPaths, builtin.Sources(), logger.NewNoOpLogger())
		defs, report, err = loader.Collect()
		if err != nil {
			return err
		}
	} else {
		defs, report, err = collectPaths(args)
		if err != nil {
			return err
		}
	}

	return printValidation(output, defs, report)
}

// collectPaths validates explicit files and directories
func collectPaths(paths []string) ([]*models.Definition, models.LoadReport, error) {
	var defs []*models.Definition
	var report models.LoadReport
	var dirs []string

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, report, fmt.Errorf("failed to access path: %w", err)
		}
		if info.IsDir() {
			dirs = append(dirs, path)
			continue
		}

		def, err := parser.ParseFile(path)
		if err == nil {
			err = def.Validate()
		}
		if err != nil {
			report.Failures = append(report.Failures, models.SourceFailure{Path: path, Err: err})
			continue
		}
		defs = append(defs, def)
		report.Loaded = append(report.Loaded, def.Slug)
	}

	if len(dirs) > 0 {
		loader := registry.NewLoader(registry.New(), dirs, nil, logger.NewNoOpLogger())
		dirDefs, dirReport, err := loader.Collect()
		if err != nil {
			return nil, report, err
		}
		defs = append(defs, dirDefs...)
		report.Loaded = append(report.Loaded, dirReport.Loaded...)
		report.Failures = append(report.Failures, dirReport.Failures...)
	}

	return defs, report, nil
}

func printValidation(output io.Writer, defs []*models.Definition, report models.LoadReport) error {
	fmt.Fprintf(output, "Validating assessments:\n")

	origins := make(map[string][]string)
	var order []string
	for _, def := range defs {
		origin := def.SourcePath
		if origin == "" {
			origin = "built-in"
		}
		if _, ok := origins[def.Slug]; !ok {
			order = append(order, def.Slug)
			fmt.Fprintf(output, "✓ %s (%d questions, %d result rules) from %s\n",
				def.Slug, len(def.Questions), len(def.ResultRules), origin)
		}
		origins[def.Slug] = append(origins[def.Slug], origin)
	}

	for _, slug := range order {
		if sources := origins[slug]; len(sources) > 1 {
			display.WarnDuplicateSlug(slug, sources).Display(output)
		}
	}
	for _, def := range defs {
		if problems := def.Lint(); len(problems) > 0 {
			origin := def.SourcePath
			if origin == "" {
				origin = "built-in"
			}
			display.WarnDefinitionProblems(def.Slug, origin, problems).Display(output)
		}
	}

	for _, failure := range report.Failures {
		fmt.Fprintf(output, "✗ %s\n", failure.Path)
		fmt.Fprintf(output, "  Error: %v\n", failure.Err)
	}

	if report.OK() {
		fmt.Fprintf(output, "\n✓ %d assessment(s) valid!\n", len(report.Loaded))
		return nil
	}

	fmt.Fprintf(output, "\n✗ Validation failed\n")
	fmt.Fprintf(output, "Found %d invalid source(s), %d valid\n", len(report.Failures), len(report.Loaded))
	return fmt.Errorf("%d assessment source(s) failed validation", len(report.Failures))
}
