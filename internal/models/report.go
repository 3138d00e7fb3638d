package models

// SourceFailure records a definition source that could not be loaded
type SourceFailure struct {
	Path string // File path or builtin source name
	Err  error
}

// LoadReport summarizes one registry load pass
type LoadReport struct {
	Loaded   []string        // Slugs registered, in load order
	Failures []SourceFailure // Sources skipped with a warning
}

// OK reports whether every source loaded
func (r LoadReport) OK() bool {
	return len(r.Failures) == 0
}
