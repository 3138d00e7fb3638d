package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/harrison/assessment/internal/builtin"
	"github.com/harrison/assessment/internal/config"
	"github.com/harrison/assessment/internal/logger"
	"github.com/harrison/assessment/internal/models"
	"github.com/harrison/assessment/internal/registry"
	"github.com/harrison/assessment/internal/theme"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for assessment
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assessment",
		Short: "Questionnaire engine with tag and score based results",
		Long: `Assessment loads questionnaire definitions from YAML, JSON and Markdown
documents, turns submitted answers into tags and a score, and selects the
matching result rule.

It can validate and export definitions, evaluate answers from the command
line, preview resolved themes, and serve everything over HTTP.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "Path to config file (default: "+config.DefaultPath+")")
	cmd.PersistentFlags().String("log-level", "", "Log level: trace, debug, info, warn, error")
	cmd.PersistentFlags().StringSlice("path", nil, "Assessment directories (overrides assessments_paths)")

	cmd.AddCommand(NewValidateCommand())
	cmd.AddCommand(NewListCommand())
	cmd.AddCommand(NewEvaluateCommand())
	cmd.AddCommand(NewThemeCommand())
	cmd.AddCommand(NewExportCommand())
	cmd.AddCommand(NewServeCommand())

	return cmd
}

// loadConfig reads the config file and applies persistent flags that were set
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	var cfg *config.Config
	var err error

	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		cfg, err = config.LoadConfigFromDir(".")
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	var paths *[]string
	var logLevel *string
	if cmd.Flags().Changed("path") {
		p, _ := cmd.Flags().GetStringSlice("path")
		paths = &p
	}
	if cmd.Flags().Changed("log-level") {
		l, _ := cmd.Flags().GetString("log-level")
		logLevel = &l
	}
	cfg.MergeWithFlags(paths, logLevel, nil, nil, nil)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// environment is the loaded state shared by the read-only subcommands
type environment struct {
	cfg      *config.Config
	log      logger.Logger
	registry *registry.Registry
	loader   *registry.Loader
	report   models.LoadReport
}

// newEnvironment loads config, then every definition from the configured roots
// plus the built-in sources. Diagnostics go to errOut.
func newEnvironment(cmd *cobra.Command, errOut io.Writer) (*environment, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	log := logger.NewConsoleLogger(errOut, cfg.LogLevel)
	reg := registry.New()
	loader := registry.NewLoader(reg, cfg.AssessmentsPaths, builtin.Sources(), log)

	report, err := loader.Reload()
	if err != nil {
		return nil, err
	}

	return &environment{
		cfg:      cfg,
		log:      log,
		registry: reg,
		loader:   loader,
		report:   report,
	}, nil
}

// themeResolver builds the resolver configured for env
func (env *environment) themeResolver() *theme.Resolver {
	return theme.NewResolver(env.cfg.ThemeConfig(modeCompute, env.log))
}

// modeCompute backs the computed strategy: a "mode" request parameter picks
// the dark-mode default, and "accent" replaces the primary color.
func modeCompute(req theme.RequestContext) theme.Tree {
	tree := theme.Tree{}
	if mode, ok := req.Param("mode"); ok && mode != "" {
		tree["dark_mode"] = theme.Tree{"default": mode}
	}
	if accent, ok := req.Param("accent"); ok && accent != "" {
		tree["colors"] = theme.Tree{"primary": accent}
	}
	return tree
}
