package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/harrison/assessment/internal/theme"
)

// themeOptions are the theme subcommand flags
type themeOptions struct {
	variant    string
	assessment string
	mode       string
	css        bool
}

// NewThemeCommand creates and returns the theme subcommand
func NewThemeCommand() *cobra.Command {
	var opts themeOptions

	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Print the resolved theme",
		Long: `Resolve the theme the way a request would see it: the configured base
theme, then the variant chosen by the strategy, then the assessment's own
override. Output is YAML, or CSS custom properties with --css.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment(cmd, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return runTheme(env, opts, cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVar(&opts.variant, "variant", "", "Variant name passed to the param strategy")
	cmd.Flags().StringVar(&opts.assessment, "assessment", "", "Apply this assessment's theme override")
	cmd.Flags().StringVar(&opts.mode, "mode", "", "Render mode (light or dark)")
	cmd.Flags().BoolVar(&opts.css, "css", false, "Print CSS custom properties instead of YAML")

	return cmd
}

func runTheme(env *environment, opts themeOptions, output io.Writer) error {
	params := theme.Params{}
	if opts.variant != "" {
		keys := env.cfg.ThemeParamKeys
		key := "theme"
		if len(keys) > 0 {
			key = keys[0]
		}
		params[key] = opts.variant
	}
	if opts.mode != "" {
		params["mode"] = opts.mode
	}

	var override theme.Tree
	if opts.assessment != "" {
		def, err := env.registry.Find(opts.assessment)
		if err != nil {
			return err
		}
		override = theme.Normalize(def.Theme)
	}

	resolver := env.themeResolver()
	if opts.variant != "" && resolver.Strategy() == theme.StrategyParam {
		if _, ok := resolver.Variant(opts.variant); !ok {
			env.log.LogWarn(fmt.Sprintf("Unknown theme variant %q, using base theme", opts.variant))
		}
	}

	tree := theme.NewCache(resolver, params).Resolve(override, nil)
	mode := opts.mode
	if mode == "" {
		mode = theme.DarkModeDefault(tree)
	}
	tree = theme.ForMode(tree, mode)

	if opts.css {
		_, err := fmt.Fprintln(output, theme.CSSVariables(tree, env.cfg.ThemeCSSPrefix))
		return err
	}

	enc := yaml.NewEncoder(output)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]interface{}(tree)); err != nil {
		return fmt.Errorf("failed to encode theme: %w", err)
	}
	return enc.Close()
}
