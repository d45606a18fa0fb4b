//go:build !windows

package facts

func collectPlatform(f *SystemFacts) {}
