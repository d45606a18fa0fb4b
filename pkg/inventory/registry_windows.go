//go:build windows

package inventory

import (
	"golang.org/x/sys/windows/registry"
)

// uninstallKeyPaths are the two uninstall hives: native and 32-bit-on-64-bit.
var uninstallKeyPaths = []struct {
	path string
	hive Hive
}{
	{`Software\Microsoft\Windows\CurrentVersion\Uninstall`, HiveNative},
	{`Software\Wow6432Node\Microsoft\Windows\CurrentVersion\Uninstall`, HiveWow64},
}

// SystemSource reads the Windows uninstall registry hives.
type SystemSource struct{}

// NewSystemSource returns a Source backed by the local machine registry.
func NewSystemSource() Source {
	return SystemSource{}
}

// Records enumerates both uninstall hives. Subkeys without a DisplayName or
// UninstallString are not uninstallable products and are skipped. A hive that
// cannot be opened at all surfaces its error so the caller can distinguish
// permission problems from an empty machine.
func (SystemSource) Records() ([]Record, error) {
	var records []Record
	var firstErr error

	for _, loc := range uninstallKeyPaths {
		key, err := registry.OpenKey(registry.LOCAL_MACHINE, loc.path, registry.READ)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		subKeys, err := key.ReadSubKeyNames(0)
		if err != nil {
			key.Close()
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		for _, subKey := range subKeys {
			fullPath := loc.path + `\` + subKey
			rec, ok := readUninstallEntry(fullPath)
			if !ok {
				continue
			}
			rec.Hive = loc.hive
			records = append(records, rec)
		}
		key.Close()
	}

	if len(records) == 0 && firstErr != nil {
		return nil, firstErr
	}
	return records, nil
}

func readUninstallEntry(keyPath string) (Record, bool) {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, keyPath, registry.READ)
	if err != nil {
		return Record{}, false
	}
	defer key.Close()

	rec := Record{KeyPath: keyPath}
	if name, _, err := key.GetStringValue("DisplayName"); err == nil {
		rec.DisplayName = name
	}
	if uninstall, _, err := key.GetStringValue("UninstallString"); err == nil {
		rec.UninstallCommand = uninstall
	}
	if rec.DisplayName == "" || rec.UninstallCommand == "" {
		return Record{}, false
	}

	if versionStr, _, err := key.GetStringValue("DisplayVersion"); err == nil {
		rec.DisplayVersion = versionStr
	}
	if publisher, _, err := key.GetStringValue("Publisher"); err == nil {
		rec.Publisher = publisher
	}
	return rec, true
}
