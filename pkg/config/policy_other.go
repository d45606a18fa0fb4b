//go:build !windows

package config

// applyPolicyRegistry is a no-op where there is no registry.
func applyPolicyRegistry(s *Settings) {}
