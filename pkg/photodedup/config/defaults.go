// Package config provides configuration management for photodedup.
package config

// Default configuration values for photodedup.
const (
	// AppName names the configuration, state and log directories.
	AppName = "photodedup"

	// EnvPrefix prefixes environment overrides (PHOTODEDUP_POLICY, ...).
	EnvPrefix = "PHOTODEDUP"

	// DefaultPath is the default path to scan when none is specified.
	DefaultPath = "."

	// DefaultPolicy selects partial hashing as a pre-filter for full hashing.
	DefaultPolicy = "prefilter"

	// DefaultPartialSize is the prefix length hashed by the partial strategy.
	DefaultPartialSize = "4KiB"

	// DefaultChunkSize is the read buffer used by the full strategy.
	DefaultChunkSize = "8KiB"

	// DefaultMinSize keeps zero-length images so they can group together.
	DefaultMinSize = "0"

	// DefaultOutput is the report format.
	DefaultOutput = "pretty"

	// DefaultSort orders groups by wasted space.
	DefaultSort = "size"

	// DefaultLimit is the number of groups shown in a report.
	DefaultLimit = 5

	// DefaultRetentionDays is the default number of days to retain manifests.
	DefaultRetentionDays = 30

	// DefaultConfigDir is the default configuration directory path.
	DefaultConfigDir = "~/.config/photodedup"

	// DefaultManifestDir is the default directory for manifest files.
	DefaultManifestDir = "~/.config/photodedup/.manifest"
)

// DefaultExtensions are the image extensions scanned by default.
var DefaultExtensions = []string{
	".jpg", ".jpeg", ".png", ".gif", ".webp", ".heic", ".tiff", ".tif", ".bmp", ".svg",
}

// DefaultIgnorePrefixes are directory name prefixes that are never walked.
var DefaultIgnorePrefixes = []string{"_", ".", "node_modules"}

// DefaultComponentLevels sets per-component log levels.
var DefaultComponentLevels = map[string]string{
	"scanner":  "info",
	"dedup":    "info",
	"hasher":   "warn",
	"output":   "info",
	"manifest": "info",
	"cli":      "info",
}
