// pkg/monitor/monitor.go - the Datto RMM monitor output contract.
//
// A monitor component prints a diagnostic block followed by a result block
// holding exactly one "Var=value" line; the platform parses that line and
// alerts on a non-zero process exit. Severity rides in the value prefix,
// not the exit code.

package monitor

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"
)

// Output markers recognized by the RMM platform.
const (
	StartDiagnostic = "<-Start Diagnostic->"
	EndDiagnostic   = "<-End Diagnostic->"
	StartResult     = "<-Start Result->"
	EndResult       = "<-End Result->"
)

// Result value severity prefixes.
const (
	SeverityOK       = "OK"
	SeverityWarning  = "WARN"
	SeverityCritical = "CRIT"
)

// FormatStatus composes a result value like "CRIT: 4% free on C:".
func FormatStatus(severity, message string) string {
	return fmt.Sprintf("%s: %s", severity, message)
}

// WriteReport emits a complete monitor report: the diagnostic lines between
// diagnostic markers, then the single result line between result markers.
func WriteReport(w io.Writer, diagnostic []string, outputVar, value string) error {
	var b strings.Builder
	b.WriteString(StartDiagnostic + "\n")
	for _, line := range diagnostic {
		b.WriteString(line + "\n")
	}
	b.WriteString(EndDiagnostic + "\n")
	b.WriteString(StartResult + "\n")
	b.WriteString(outputVar + "=" + value + "\n")
	b.WriteString(EndResult + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// Validate checks a captured monitor output against the platform contract:
// exactly one of each marker, in order, with exactly one non-empty
// "outputVar=value" line inside the result block and no space after the
// equals sign. The returned slice lists every problem found; nil means the
// output is valid.
func Validate(text, outputVar string) []string {
	var problems []string

	lines := strings.Split(text, "\n")
	findAll := func(marker string) []int {
		var idx []int
		for i, line := range lines {
			if strings.TrimSpace(line) == marker {
				idx = append(idx, i)
			}
		}
		return idx
	}

	diagStart := findAll(StartDiagnostic)
	diagEnd := findAll(EndDiagnostic)
	resStart := findAll(StartResult)
	resEnd := findAll(EndResult)

	for _, m := range []struct {
		name string
		idx  []int
	}{
		{StartDiagnostic, diagStart},
		{EndDiagnostic, diagEnd},
		{StartResult, resStart},
		{EndResult, resEnd},
	} {
		if len(m.idx) != 1 {
			problems = append(problems, fmt.Sprintf("expected exactly one %q line, found %d", m.name, len(m.idx)))
		}
	}
	if len(problems) > 0 {
		return problems
	}

	ds, de, rs, re := diagStart[0], diagEnd[0], resStart[0], resEnd[0]
	if !(ds < de && de < rs && rs < re) {
		return append(problems,
			"marker order must be: Start Diagnostic, End Diagnostic, Start Result, End Result")
	}

	var nonEmpty []string
	for _, line := range lines[rs+1 : re] {
		if strings.TrimSpace(line) != "" {
			nonEmpty = append(nonEmpty, line)
		}
	}
	if len(nonEmpty) == 0 {
		return append(problems, "result block is empty; expected one output variable line")
	}

	pattern := regexp.MustCompile("^" + regexp.QuoteMeta(outputVar) + "=.+$")
	var matching []string
	for _, line := range nonEmpty {
		if pattern.MatchString(line) {
			matching = append(matching, line)
		}
	}
	if len(matching) != 1 {
		return append(problems, fmt.Sprintf(
			"expected exactly one %q line inside the result block; found %d", outputVar+"=...", len(matching)))
	}
	if len(nonEmpty) != 1 {
		return append(problems, "result block must contain exactly one non-empty line")
	}

	value := matching[0][len(outputVar)+1:]
	if len(value) > 0 && unicode.IsSpace(rune(value[0])) {
		return append(problems, "no space allowed after '=' in the result line")
	}

	return nil
}
