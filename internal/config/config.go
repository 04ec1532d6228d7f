// Package config loads the exporter configuration from YAML files and
// environment variables.
package config

// Config represents the full application configuration.
type Config struct {
	Store         StoreConfig         `yaml:"store"`
	Output        OutputConfig        `yaml:"output"`
	Export        ExportConfig        `yaml:"export"`
	Verify        VerifyConfig        `yaml:"verify"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// StoreConfig locates the SmartSHARK snapshot database.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// OutputConfig configures where artifacts are written.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	// Report toggles the Markdown summary written next to the commit index.
	Report bool `yaml:"report"`
}

// ExportConfig configures which commits are exported.
type ExportConfig struct {
	// Projects is the default project selection; flags override it.
	Projects []string `yaml:"projects"`
	// Number stops the export after that many commits; zero exports all.
	Number int `yaml:"number"`
}

// VerifyConfig configures the commit verification command.
type VerifyConfig struct {
	// ReposDir holds one clone per project, named after the project.
	ReposDir string `yaml:"reposDir"`
}

// ObservabilityConfig configures logging.
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig configures structured log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warning, error
	Format string `yaml:"format"` // json, human
}
