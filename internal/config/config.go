package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/ecairns22/urlwait/internal/service"
)

const defaultConfigPath = "/etc/urlwait/urlwait.conf"

const (
	envOverride = "URLWAIT_CONFIG"
	envVarName  = "URLWAIT_VARNAME"
	envTimeout  = "URLWAIT_TIMEOUT"
)

// DefaultVarName is the environment variable read for the service URL.
const DefaultVarName = "DATABASE_URL"

// Settings controls where the target URL comes from and how long to wait.
type Settings struct {
	VarName string `toml:"varname"`
	Timeout int    `toml:"timeout"`
}

// Target is a fully resolved wait request.
type Target struct {
	URL     string
	Timeout int
	Source  string // "argument" or the environment variable name
}

// DefaultPath returns the settings file path.
func DefaultPath() string {
	if p := os.Getenv(envOverride); p != "" {
		return p
	}
	return defaultConfigPath
}

// Load reads settings from the default path and applies environment
// overrides. A missing file at the built-in default path is not an error.
func Load() (*Settings, error) {
	path := DefaultPath()
	return load(path, path != defaultConfigPath)
}

// LoadFrom reads settings from path, which must exist, and applies
// environment overrides.
func LoadFrom(path string) (*Settings, error) {
	return load(path, true)
}

func load(path string, required bool) (*Settings, error) {
	s := &Settings{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, s); err != nil {
			return nil, service.Configf("parsing config %s: %v", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !required:
	default:
		return nil, service.Configf("reading config %s: %v", path, err)
	}

	// Apply defaults
	if s.VarName == "" {
		s.VarName = DefaultVarName
	}
	if s.Timeout == 0 {
		s.Timeout = service.DefaultTimeout
	}
	if s.Timeout < 0 {
		return nil, service.Configf("config %s: timeout must not be negative", path)
	}

	if v := os.Getenv(envVarName); v != "" {
		s.VarName = v
	}
	if v := os.Getenv(envTimeout); v != "" {
		t, err := ParseTimeout(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", envTimeout, err)
		}
		s.Timeout = t
	}

	return s, nil
}

// ParseTimeout converts a timeout given as text into whole seconds.
func ParseTimeout(v string) (int, error) {
	t, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, service.Configf("invalid timeout %q: must be a whole number of seconds", v)
	}
	if t < 0 {
		return 0, service.Configf("invalid timeout %q: must not be negative", v)
	}
	return t, nil
}

// Resolve picks the URL and timeout for this run. Positional arguments
// take precedence over the environment: args[0] is the service URL and
// args[1] the timeout.
func (s *Settings) Resolve(args []string) (*Target, error) {
	t := &Target{Timeout: s.Timeout}

	if len(args) > 0 {
		t.URL = args[0]
		t.Source = "argument"
		if len(args) > 1 {
			timeout, err := ParseTimeout(args[1])
			if err != nil {
				return nil, err
			}
			t.Timeout = timeout
		}
		return t, nil
	}

	url := os.Getenv(s.VarName)
	if url == "" {
		return nil, service.Configf("environment variable %s is not set; pass SERVICE_URL or set %s to the variable holding it", s.VarName, envVarName)
	}
	t.URL = url
	t.Source = s.VarName
	return t, nil
}

// TemplateConfig returns an example settings file.
func TemplateConfig() string {
	return `# urlwait settings; URLWAIT_VARNAME and URLWAIT_TIMEOUT override these.
varname = "DATABASE_URL"
timeout = 15
`
}
