package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrison/assessment/internal/response"
	"github.com/harrison/assessment/internal/service"
)

// NewEvaluateCommand creates and returns the evaluate subcommand
func NewEvaluateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate <slug>",
		Short: "Build answers and evaluate result rules without storing anything",
		Long: `Evaluate resolves answers against an assessment and prints the canonical
answers, derived tags and score, and the selected result.

Answers are given as question=value pairs; repeat --answer for multi-select
questions:

  assessment evaluate digital-readiness --answer release=weekly \
    --answer practices=tests --answer practices=ci --answer ownership=team`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment(cmd, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			answers, _ := cmd.Flags().GetStringArray("answer")
			asJSON, _ := cmd.Flags().GetBool("json")
			return runEvaluate(env, args[0], answers, asJSON, cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringArray("answer", nil, "Answer as question=value (repeatable)")
	cmd.Flags().Bool("json", false, "Print the result as JSON")

	return cmd
}

// parseAnswers turns question=value pairs into response input; repeated
// questions accumulate into a list
func parseAnswers(pairs []string) (response.Input, error) {
	values := make(map[string][]string)
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid answer %q, expected question=value", pair)
		}
		values[key] = append(values[key], strings.TrimSpace(value))
	}
	return response.InputFromValues(values), nil
}

func runEvaluate(env *environment, slug string, pairs []string, asJSON bool, output io.Writer) error {
	input, err := parseAnswers(pairs)
	if err != nil {
		return err
	}

	svc := service.New(service.Options{
		Definitions:  env.registry,
		FallbackText: env.cfg.FallbackResultText,
		Logger:       env.log,
	})

	sub, err := svc.Preview(slug, input)
	if err != nil {
		return err
	}

	if asJSON {
		result := map[string]interface{}{
			"assessment_slug": sub.Response.AssessmentSlug,
			"answers":         sub.Response.Answers,
			"tags":            sub.Response.Tags(),
			"score":           sub.Response.Score(),
			"result":          nil,
		}
		if sub.Rule != nil {
			result["result"] = map[string]interface{}{
				"id":       sub.Rule.ID,
				"text":     sub.Rule.Text,
				"payload":  sub.Rule.Payload,
				"fallback": sub.Rule.Fallback,
			}
		}
		enc := json.NewEncoder(output)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Fprintf(output, "Assessment: %s\n\n", sub.Definition.Title)

	ids := make([]string, 0, len(sub.Response.Answers))
	for id := range sub.Response.Answers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		answer := sub.Response.Answers[id]
		var texts []string
		for _, opt := range answer.Selected() {
			texts = append(texts, opt.Text)
		}
		fmt.Fprintf(output, "  %s: %s\n", id, strings.Join(texts, ", "))
	}

	fmt.Fprintf(output, "\nTags:  %s\n", strings.Join(sub.Response.Tags(), ", "))
	fmt.Fprintf(output, "Score: %g\n", sub.Response.Score())

	if sub.Rule == nil {
		fmt.Fprintf(output, "\n✗ No result matched\n")
		return nil
	}
	label := sub.Rule.ID
	if sub.Rule.Fallback {
		label += ", fallback"
	}
	fmt.Fprintf(output, "\n✓ Result (%s): %s\n", label, sub.Rule.Text)
	return nil
}
