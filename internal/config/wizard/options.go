package wizard

import "github.com/charmbracelet/huh"

// VersionOption represents an application release.
type VersionOption struct {
	Value       string
	Label       string
	Description string
}

// AppVersions contains the supported application releases, newest first.
var AppVersions = []VersionOption{
	{Value: "18.0", Label: "18.0", Description: "Latest release"},
	{Value: "17.0", Label: "17.0", Description: "Long-term release (default)"},
	{Value: "16.0", Label: "16.0", Description: "Previous long-term release"},
}

// WorkerCountOptions offers the process layouts. Zero keeps threaded mode.
var WorkerCountOptions = []huh.Option[int]{
	huh.NewOption("Threaded (small sites)", 0),
	huh.NewOption("2 workers", 2),
	huh.NewOption("4 workers", 4),
	huh.NewOption("8 workers", 8),
}

// VersionsToOptions converts version options to huh select options.
func VersionsToOptions(versions []VersionOption) []huh.Option[string] {
	opts := make([]huh.Option[string], len(versions))
	for i, v := range versions {
		opts[i] = huh.NewOption(v.Label+" - "+v.Description, v.Value)
	}
	return opts
}

// DefaultAppVersion returns the preselected release.
func DefaultAppVersion() string {
	for _, v := range AppVersions {
		if v.Value == "17.0" {
			return v.Value
		}
	}
	return AppVersions[0].Value
}
