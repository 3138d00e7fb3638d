// Package display formats user-facing CLI diagnostics.
//
// Warnings are printed in yellow when the output supports color:
//
//	warning := display.WarnDuplicateSlug("readiness", []string{"a.yml", "b.json"})
//	warning.Display(os.Stdout)
package display
