package registry

import (
	"fmt"
	"sort"

	"github.com/harrison/assessment/internal/fileutil"
	"github.com/harrison/assessment/internal/logger"
	"github.com/harrison/assessment/internal/models"
	"github.com/harrison/assessment/internal/parser"
)

// Source is a code-defined definition, typically assembled with the builder package
type Source struct {
	Name  string
	Build func() (*models.Definition, error)
}

// Loader collects definitions from document roots and code-defined sources
// and installs them into a Registry.
type Loader struct {
	Roots    []string // Directories scanned recursively for documents
	Sources  []Source // Code-defined definitions, evaluated after documents
	Registry *Registry
	Logger   logger.Logger
}

// NewLoader creates a loader for the given roots and registry
func NewLoader(reg *Registry, roots []string, sources []Source, log logger.Logger) *Loader {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Loader{
		Roots:    roots,
		Sources:  sources,
		Registry: reg,
		Logger:   log,
	}
}

// Collect builds every definition without touching the registry.
// Documents come first (root order, sorted paths within a root), then sources
// sorted by name. A source that fails to parse or build, or has no slug, is
// recorded in the report and skipped. Only an unusable root aborts the pass.
func (l *Loader) Collect() ([]*models.Definition, models.LoadReport, error) {
	var report models.LoadReport
	var defs []*models.Definition

	scan, err := fileutil.ScanRoots(l.Roots, fileutil.ScanOptions{
		Extensions: parser.Extensions(),
		Recursive:  true,
	})
	if err != nil {
		return nil, report, fmt.Errorf("failed to scan assessment paths: %w", err)
	}
	for _, root := range scan.Missing {
		l.Logger.LogDebug(fmt.Sprintf("Assessment path %s does not exist, skipping", root))
	}
	for _, scanErr := range scan.Errors {
		l.Logger.LogWarn(scanErr.Error())
	}

	for _, path := range scan.Files {
		def, err := parser.ParseFile(path)
		if err == nil {
			err = def.Validate()
		}
		if err != nil {
			report.Failures = append(report.Failures, models.SourceFailure{Path: path, Err: err})
			continue
		}
		l.Logger.LogTrace(fmt.Sprintf("Loaded %s from %s", def.Slug, path))
		l.logProblems(path, def)
		defs = append(defs, def)
		report.Loaded = append(report.Loaded, def.Slug)
	}

	sources := make([]Source, len(l.Sources))
	copy(sources, l.Sources)
	sort.SliceStable(sources, func(i, j int) bool { return sources[i].Name < sources[j].Name })

	for _, src := range sources {
		def, err := buildSource(src)
		if err == nil {
			err = def.Validate()
		}
		if err != nil {
			report.Failures = append(report.Failures, models.SourceFailure{Path: src.Name, Err: err})
			continue
		}
		l.logProblems(src.Name, def)
		defs = append(defs, def)
		report.Loaded = append(report.Loaded, def.Slug)
	}

	return defs, report, nil
}

// logProblems logs authoring problems that do not stop a definition from loading
func (l *Loader) logProblems(origin string, def *models.Definition) {
	for _, problem := range def.Lint() {
		l.Logger.LogDebug(fmt.Sprintf("%s (%s): %s", def.Slug, origin, problem))
	}
}

// Reload collects every definition and replaces the registry contents with
// them, so slugs whose source disappeared are dropped.
func (l *Loader) Reload() (models.LoadReport, error) {
	defs, report, err := l.Collect()
	if err != nil {
		l.Logger.LogError(err.Error())
		return report, err
	}
	l.Registry.Replace(defs)
	logger.LogLoadReport(l.Logger, report)
	return report, nil
}

// buildSource runs a source, converting a panic into an error
func buildSource(src Source) (def *models.Definition, err error) {
	if src.Build == nil {
		return nil, fmt.Errorf("source %s has no build function", src.Name)
	}
	defer func() {
		if r := recover(); r != nil {
			def = nil
			err = fmt.Errorf("source %s panicked: %v", src.Name, r)
		}
	}()

	def, err = src.Build()
	if err != nil {
		return nil, err
	}
	if def == nil {
		return nil, fmt.Errorf("source %s returned no definition", src.Name)
	}
	return def, nil
}
