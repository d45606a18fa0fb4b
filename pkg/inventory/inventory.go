// pkg/inventory/inventory.go - installed-software detection for silverback.
//
// Records come from the OS uninstall registry hives and are re-read on every
// query; nothing is cached across component runs. Enumeration never touches
// the Windows Installer database APIs (Win32_Product and friends): merely
// listing products through those triggers a consistency repair on every
// installed MSI package. Only the lightweight uninstall-key read path is used.

package inventory

import (
	"regexp"
	"strings"
)

// Hive identifies which uninstall registry hive a record came from.
type Hive string

const (
	HiveNative Hive = "native"
	HiveWow64  Hive = "wow6432"
)

// RegexPrefix marks a name pattern as a regular expression rather than a
// case-insensitive substring.
const RegexPrefix = "re:"

// Record is a read-only snapshot of one entry in the OS uninstall registry.
type Record struct {
	DisplayName      string
	DisplayVersion   string // may be absent or malformed
	UninstallCommand string // MSI product-code reference or arbitrary command line
	Publisher        string
	KeyPath          string
	Hive             Hive
}

// Source provides fresh snapshots of the registered uninstallable products.
type Source interface {
	Records() ([]Record, error)
}

// StaticSource is a fixed snapshot, used on platforms without an uninstall
// registry and in tests.
type StaticSource []Record

func (s StaticSource) Records() ([]Record, error) {
	out := make([]Record, len(s))
	copy(out, s)
	return out, nil
}

// Query returns the records whose display name matches the pattern,
// deduplicated by product identity when the same product is registered in
// both hives. An empty result is the normal not-found signal, not an error.
func Query(src Source, pattern string) ([]Record, error) {
	records, err := src.Records()
	if err != nil {
		return nil, err
	}

	match, err := compileMatcher(pattern)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var matched []Record
	for _, rec := range records {
		if rec.DisplayName == "" || !match(rec.DisplayName) {
			continue
		}
		id := identity(rec)
		if seen[id] {
			continue
		}
		seen[id] = true
		matched = append(matched, rec)
	}
	return matched, nil
}

// DistinctNames returns the distinct display names in a set of matched
// records. More than one distinct name means the pattern was too broad.
func DistinctNames(records []Record) []string {
	seen := make(map[string]bool)
	var names []string
	for _, rec := range records {
		key := strings.ToLower(rec.DisplayName)
		if seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, rec.DisplayName)
	}
	return names
}

// compileMatcher builds a case-insensitive match function. Patterns with the
// "re:" prefix are regular expressions; everything else is a substring match.
func compileMatcher(pattern string) (func(string) bool, error) {
	if expr, ok := strings.CutPrefix(pattern, RegexPrefix); ok {
		re, err := regexp.Compile("(?i)" + expr)
		if err != nil {
			return nil, err
		}
		return re.MatchString, nil
	}

	needle := strings.ToLower(pattern)
	return func(name string) bool {
		return strings.Contains(strings.ToLower(name), needle)
	}, nil
}

func identity(rec Record) string {
	return strings.ToLower(rec.DisplayName) + "\x00" + strings.ToLower(rec.DisplayVersion)
}
