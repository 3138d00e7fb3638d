package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewListCommand creates and returns the list subcommand
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered assessments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment(cmd, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return printList(env, cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}

	return cmd
}

func printList(env *environment, output io.Writer) error {
	defs := env.registry.All()
	if len(defs) == 0 {
		fmt.Fprintf(output, "No assessments found in %v\n", env.cfg.AssessmentsPaths)
		return nil
	}

	fmt.Fprintf(output, "%-28s %-36s %9s %6s  %s\n", "SLUG", "TITLE", "QUESTIONS", "RULES", "SOURCE")
	for _, def := range defs {
		source := def.SourcePath
		if source == "" {
			source = "built-in"
		}
		fmt.Fprintf(output, "%-28s %-36s %9d %6d  %s\n",
			truncate(def.Slug, 28), truncate(def.Title, 36), len(def.Questions), len(def.ResultRules), source)
	}
	return nil
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
