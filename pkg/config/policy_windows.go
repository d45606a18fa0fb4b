//go:build windows

package config

import (
	"strconv"
	"strings"

	"golang.org/x/sys/windows/registry"
)

// PolicyRegistryPath is the enterprise policy key (CSP OMA-URI target) that
// fleet management tools write component defaults to.
const PolicyRegistryPath = `SOFTWARE\Silverback\Config`

// applyPolicyRegistry layers the policy registry key, if present, over the
// current settings. Absence of the key is the normal case.
func applyPolicyRegistry(s *Settings) {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, PolicyRegistryPath, registry.READ)
	if err != nil {
		return
	}
	defer key.Close()

	loadStringFromRegistry(key, "ProductName", &s.ProductName)
	loadStringFromRegistry(key, "Action", &s.Action)
	loadStringFromRegistry(key, "InstallerPath", &s.InstallerPath)
	loadStringFromRegistry(key, "InstallerURL", &s.InstallerURL)
	loadStringFromRegistry(key, "InstallerSHA256", &s.InstallerSHA256)
	loadStringFromRegistry(key, "MinimumVersion", &s.MinimumVersion)
	loadStringFromRegistry(key, "InstallerLog", &s.InstallerLog)
	loadStringFromRegistry(key, "CachePath", &s.CachePath)
	loadStringFromRegistry(key, "LogFile", &s.LogFile)
	loadStringFromRegistry(key, "LogLevel", &s.LogLevel)
	loadIntFromRegistry(key, "TimeoutSeconds", &s.TimeoutSeconds)
	loadBoolFromRegistry(key, "Debug", &s.Debug)
	loadStringArrayFromRegistry(key, "BlockingApps", &s.BlockingApps)
	loadStringArrayFromRegistry(key, "InstallerArgs", &s.InstallerArgs)
}

// loadStringFromRegistry loads a string value from registry if it exists.
func loadStringFromRegistry(key registry.Key, valueName string, target *string) {
	if val, _, err := key.GetStringValue(valueName); err == nil && val != "" {
		*target = val
	}
}

// loadBoolFromRegistry loads a boolean value from registry if it exists.
// Accepts "true"/"false", "1"/"0", or DWORD 1/0.
func loadBoolFromRegistry(key registry.Key, valueName string, target *bool) {
	if val, _, err := key.GetStringValue(valueName); err == nil {
		if parsed, parseErr := strconv.ParseBool(val); parseErr == nil {
			*target = parsed
			return
		}
	}
	if val, _, err := key.GetIntegerValue(valueName); err == nil {
		*target = val != 0
	}
}

// loadIntFromRegistry loads an integer value from registry if it exists.
func loadIntFromRegistry(key registry.Key, valueName string, target *int) {
	if val, _, err := key.GetStringValue(valueName); err == nil {
		if parsed, parseErr := strconv.Atoi(val); parseErr == nil {
			*target = parsed
			return
		}
	}
	if val, _, err := key.GetIntegerValue(valueName); err == nil {
		*target = int(val)
	}
}

// loadStringArrayFromRegistry loads a string array stored either as
// REG_MULTI_SZ or as a comma-separated single string.
func loadStringArrayFromRegistry(key registry.Key, valueName string, target *[]string) {
	if vals, _, err := key.GetStringsValue(valueName); err == nil && len(vals) > 0 {
		filtered := make([]string, 0, len(vals))
		for _, val := range vals {
			if trimmed := strings.TrimSpace(val); trimmed != "" {
				filtered = append(filtered, trimmed)
			}
		}
		if len(filtered) > 0 {
			*target = filtered
			return
		}
	}

	if val, _, err := key.GetStringValue(valueName); err == nil && val != "" {
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
}
