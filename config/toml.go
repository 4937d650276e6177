package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/creachadair/atomicfile"
)

// defaultDirPerm is the default permissions used when creating directories.
const defaultDirPerm = 0700

var configTemplate *template.Template

func init() {
	var err error
	tmpl := template.New("configFileTemplate")
	if configTemplate, err = tmpl.Parse(defaultConfigTemplate); err != nil {
		panic(err)
	}
}

/****** these are for production settings ***********/

// EnsureRoot creates the root, config, and data directories if they don't
// exist and writes the default config file if there is none.
func EnsureRoot(rootDir string) error {
	for _, dir := range []string{
		rootDir,
		filepath.Join(rootDir, defaultConfigDir),
		filepath.Join(rootDir, defaultDataDir),
	} {
		if err := os.MkdirAll(dir, defaultDirPerm); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return writeDefaultConfigFileIfNone(rootDir)
}

// ConfigFilePath returns the location of the config file under rootDir.
func ConfigFilePath(rootDir string) string {
	return filepath.Join(rootDir, defaultConfigFilePath)
}

// WriteConfigFile renders config using the template and writes it to
// the config file under rootDir.
func WriteConfigFile(rootDir string, config *Config) error {
	return config.WriteToTemplate(ConfigFilePath(rootDir))
}

// WriteToTemplate writes the config to the exact file specified by
// the path, in the default toml template and does not mangle the path
// or filename at all.
func (cfg *Config) WriteToTemplate(path string) error {
	bz, err := cfg.Render()
	if err != nil {
		return err
	}

	if _, err := atomicfile.WriteAll(path, bytes.NewReader(bz), 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// Render returns the config in the default toml template.
func (cfg *Config) Render() ([]byte, error) {
	var buffer bytes.Buffer
	if err := configTemplate.Execute(&buffer, cfg); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func writeDefaultConfigFileIfNone(rootDir string) error {
	if _, err := os.Stat(ConfigFilePath(rootDir)); os.IsNotExist(err) {
		return WriteConfigFile(rootDir, DefaultConfig())
	}
	return nil
}

// Note: any changes to the comments/variables/mapstructure
// must be reflected in the appropriate struct in config/config.go
const defaultConfigTemplate = `# This is a TOML config file.
# For more information, see https://github.com/toml-lang/toml

# NOTE: Any path below can be absolute (e.g. "/var/auctiond/data") or
# relative to the home directory (e.g. "data"). The home directory is
# "$HOME/.auctiond" by default, but could be changed via $AUCTIOND_HOME env
# variable or --home cmd flag.

#######################################################################
###                   Main Base Config Options                      ###
#######################################################################

# Chain the auction state belongs to
chain-id = "{{ .BaseConfig.ChainID }}"

# Database backend: goleveldb | cleveldb | boltdb | rocksdb | badgerdb | memdb
# * goleveldb (github.com/syndtr/goleveldb - most popular implementation)
#   - pure go
#   - stable
# * memdb
#   - nothing is persisted, useful for dry runs
db-backend = "{{ .BaseConfig.DBBackend }}"

# Database directory
db-dir = "{{ js .BaseConfig.DBPath }}"

# Output level for logging: debug | info | warn | error
log-level = "{{ .BaseConfig.LogLevel }}"

# Output format: 'plain' (colored text) or 'json'
log-format = "{{ .BaseConfig.LogFormat }}"

# Optional dotenv file with AUCTIOND_* variables, loaded on startup
env-file = "{{ js .BaseConfig.EnvFile }}"

#######################################################
###           Query Configuration Options           ###
#######################################################
[query]

# Page size used when a request names no limit
default-limit = {{ .Query.DefaultLimit }}

# Largest page size a request may ask for
max-limit = {{ .Query.MaxLimit }}

#######################################################
###       Instrumentation Configuration Options     ###
#######################################################
[instrumentation]

# When true, Prometheus metrics are collected. They are written to
# the textfile below after every command, for node_exporter's textfile
# collector to pick up.
prometheus = {{ .Instrumentation.Prometheus }}

# Path of the Prometheus textfile collector output
textfile = "{{ js .Instrumentation.Textfile }}"

# Instrumentation namespace
namespace = "{{ .Instrumentation.Namespace }}"
`
