// pkg/config/config.go - configuration settings for silverback components.
//
// Datto RMM hands a component its configuration as environment variables, so
// those win. Underneath them sits an optional YAML policy file for
// fleet-wide defaults, and on Windows an enterprise-policy registry key
// below that. Failure to assemble a valid Settings is the one fatal,
// pre-transition condition a component has.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/windowsadmins/silverback/pkg/command"
	"github.com/windowsadmins/silverback/pkg/deploy"
)

// PolicyPathEnv overrides the policy file location.
const PolicyPathEnv = "SilverbackPolicy"

// Settings holds the configurable options for a component run.
type Settings struct {
	ProductName     string   `yaml:"ProductName"`
	Action          string   `yaml:"Action"`
	InstallerPath   string   `yaml:"InstallerPath"`
	InstallerArgs   []string `yaml:"InstallerArgs"`
	InstallerURL    string   `yaml:"InstallerURL"`
	InstallerSHA256 string   `yaml:"InstallerSHA256"`
	MinimumVersion  string   `yaml:"MinimumVersion"`
	TimeoutSeconds  int      `yaml:"TimeoutSeconds"`
	BlockingApps    []string `yaml:"BlockingApps"`
	InstallerLog    string   `yaml:"InstallerLog"`
	CachePath       string   `yaml:"CachePath"`
	LogFile         string   `yaml:"LogFile"`
	LogLevel        string   `yaml:"LogLevel"`
	Debug           bool     `yaml:"Debug"`
}

// Defaults provides default configuration values.
func Defaults() *Settings {
	dataDir := defaultDataDir()
	return &Settings{
		Action:         "install",
		TimeoutSeconds: 900,
		CachePath:      filepath.Join(dataDir, "cache"),
		LogFile:        filepath.Join(dataDir, "logs", "silverback.log"),
		LogLevel:       "INFO",
	}
}

// Load assembles Settings from defaults, the policy file, the Windows policy
// registry key, and finally the environment. lookup defaults to
// os.LookupEnv; tests inject their own.
func Load(lookup func(string) (string, bool)) (*Settings, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	s := Defaults()

	policyPath := defaultPolicyPath()
	if p, ok := lookup(PolicyPathEnv); ok && p != "" {
		policyPath = p
	}
	if err := s.applyPolicyFile(policyPath); err != nil {
		return nil, err
	}

	applyPolicyRegistry(s)
	s.applyEnv(lookup)

	return s, nil
}

// applyPolicyFile layers a YAML policy file over the current settings. A
// missing file is fine; a malformed one is not.
func (s *Settings) applyPolicyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read policy file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return fmt.Errorf("failed to parse policy file %s: %w", path, err)
	}
	return nil
}

// applyEnv overlays environment variables onto the settings.
func (s *Settings) applyEnv(lookup func(string) (string, bool)) {
	setString(lookup, "ProductName", &s.ProductName)
	setString(lookup, "Action", &s.Action)
	setString(lookup, "InstallerPath", &s.InstallerPath)
	setString(lookup, "InstallerURL", &s.InstallerURL)
	setString(lookup, "InstallerSHA256", &s.InstallerSHA256)
	setString(lookup, "MinimumVersion", &s.MinimumVersion)
	setString(lookup, "InstallerLog", &s.InstallerLog)
	setString(lookup, "CachePath", &s.CachePath)
	setString(lookup, "LogFile", &s.LogFile)
	setString(lookup, "LogLevel", &s.LogLevel)
	setInt(lookup, "TimeoutSeconds", &s.TimeoutSeconds)
	setBool(lookup, "Debug", &s.Debug)
	setList(lookup, "BlockingApps", &s.BlockingApps)

	if val, ok := lookup("InstallerArgs"); ok && val != "" {
		s.InstallerArgs = strings.Fields(val)
	}
}

// Validate checks that the settings describe a runnable transition.
func (s *Settings) Validate() error {
	if strings.TrimSpace(s.ProductName) == "" {
		return fmt.Errorf("ProductName is required")
	}
	action, err := deploy.ParseAction(s.Action)
	if err != nil {
		return err
	}
	if action != deploy.ActionUninstall && s.InstallerPath == "" && s.InstallerURL == "" {
		return fmt.Errorf("action %s requires InstallerPath or InstallerURL", action)
	}
	if s.TimeoutSeconds <= 0 {
		return fmt.Errorf("TimeoutSeconds must be positive, got %d", s.TimeoutSeconds)
	}
	return nil
}

// Timeout returns the configured per-process bound.
func (s *Settings) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// Request builds the transition request described by the settings. Callers
// run Validate first; the installer path must be resolved (downloaded) by
// then.
func (s *Settings) Request() (deploy.Request, error) {
	action, err := deploy.ParseAction(s.Action)
	if err != nil {
		return deploy.Request{}, err
	}
	return deploy.Request{
		NamePattern:  s.ProductName,
		Action:       action,
		Installer:    command.Spec{Path: s.InstallerPath, Args: s.InstallerArgs},
		Timeout:      s.Timeout(),
		MinVersion:   s.MinimumVersion,
		BlockingApps: s.BlockingApps,
		InstallerLog: s.InstallerLog,
	}, nil
}

func defaultDataDir() string {
	if pd := os.Getenv("ProgramData"); pd != "" {
		return filepath.Join(pd, "Silverback")
	}
	return filepath.Join(os.TempDir(), "silverback")
}

func defaultPolicyPath() string {
	return filepath.Join(defaultDataDir(), "policy.yaml")
}

func setString(lookup func(string) (string, bool), name string, target *string) {
	if val, ok := lookup(name); ok && val != "" {
		*target = val
	}
}

func setInt(lookup func(string) (string, bool), name string, target *int) {
	if val, ok := lookup(name); ok && val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			*target = parsed
		}
	}
}

func setBool(lookup func(string) (string, bool), name string, target *bool) {
	if val, ok := lookup(name); ok && val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			*target = parsed
		}
	}
}

func setList(lookup func(string) (string, bool), name string, target *[]string) {
	val, ok := lookup(name)
	if !ok || val == "" {
		return
	}
	parts := strings.Split(val, ",")
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			filtered = append(filtered, trimmed)
		}
	}
	if len(filtered) > 0 {
		*target = filtered
	}
}
