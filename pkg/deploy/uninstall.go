// pkg/deploy/uninstall.go - turning a registry UninstallString into a silent,
// non-interactive invocation.

package deploy

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/windowsadmins/silverback/pkg/command"
	"github.com/windowsadmins/silverback/pkg/inventory"
)

// productCodeRe matches an MSI product code GUID inside an uninstall command.
var productCodeRe = regexp.MustCompile(`\{[0-9A-Fa-f]{8}(?:-[0-9A-Fa-f]{4}){3}-[0-9A-Fa-f]{12}\}`)

// uninstallSpec derives the command to run from a record's UninstallString.
// MSI-registered products get a canonical "msiexec /x {code} /qn /norestart"
// regardless of how the vendor phrased the string (many register "/I" or omit
// the quiet flags). Anything else is tokenized and run as registered.
func uninstallSpec(rec inventory.Record) (command.Spec, error) {
	raw := strings.TrimSpace(rec.UninstallCommand)
	if raw == "" {
		return command.Spec{}, fmt.Errorf("registry entry %s has no uninstall command", rec.KeyPath)
	}

	if strings.Contains(strings.ToLower(raw), "msiexec") {
		code := productCodeRe.FindString(raw)
		if code == "" {
			return command.Spec{}, fmt.Errorf("msiexec uninstall command without a product code: %q", raw)
		}
		return command.Spec{
			Path: msiexecPath(),
			Args: []string{"/x", code, "/qn", "/norestart"},
		}, nil
	}

	tokens := splitCommandLine(raw)
	if len(tokens) == 0 {
		return command.Spec{}, fmt.Errorf("unparseable uninstall command: %q", raw)
	}
	return command.Spec{Path: tokens[0], Args: tokens[1:]}, nil
}

// splitCommandLine tokenizes a registered command line, honoring double
// quotes around paths with spaces.
func splitCommandLine(s string) []string {
	var tokens []string
	var current strings.Builder
	inQuotes := false

	for _, r := range s {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ' ' && !inQuotes:
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}
