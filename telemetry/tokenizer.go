package telemetry

import (
	"bufio"
	"strings"

	"github.com/Brazzo978/RemoteSignalMonitor-Mikrotik/at"
)

// ParsedLine is one logical line of a response, stripped of the command
// echo and the final status marker. Extractors consume its Raw text;
// internal structure (commas, colons, quotes) is preserved verbatim.
type ParsedLine struct {
	Raw string
}

// fields splits the text after the given marker prefix into positional
// CSV fields, honoring double quotes. Quotes are stripped from the
// returned fields; the placeholder "-" passes through unchanged.
func (l ParsedLine) fields(prefix string) []string {
	rest := strings.TrimSpace(strings.TrimPrefix(l.Raw, prefix))
	return splitCSV(rest)
}

func (l ParsedLine) hasPrefix(p string) bool {
	return strings.HasPrefix(l.Raw, p)
}

// splitCSV splits comma separated fields, keeping commas inside double
// quotes (band labels like "LTE BAND 3") intact. Surrounding quotes and
// whitespace are trimmed from each field.
func splitCSV(s string) []string {
	var (
		out      []string
		start    int
		inQuotes bool
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuotes = !inQuotes
		case ',':
			if !inQuotes {
				out = append(out, trimField(s[start:i]))
				start = i + 1
			}
		}
	}
	out = append(out, trimField(s[start:]))
	return out
}

func trimField(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"`)
}

// tokenize splits raw response text into ordered non-empty logical
// lines. The echoed command and the trailing OK marker are removed; a
// trailing ERROR (or +CME/+CMS error) aborts with a *CommandError
// carrying whatever partial text preceded it.
func tokenize(raw RawResponse) ([]ParsedLine, error) {
	scanner := bufio.NewScanner(strings.NewReader(raw.Text))
	scanner.Split(at.Splitter)

	cmd := strings.TrimSpace(raw.Command)
	var lines []ParsedLine
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if cmd != "" && strings.EqualFold(line, cmd) {
			continue // command echo
		}
		if at.Classify(line) == at.TypeFinal {
			if at.Success(line) {
				return lines, nil
			}
			return nil, &CommandError{
				Command: raw.Command,
				Status:  line,
				Raw:     joinRaw(lines),
			}
		}
		lines = append(lines, ParsedLine{Raw: line})
	}
	// A missing terminal token is the transport layer's concern; parse
	// what arrived.
	return lines, nil
}

func joinRaw(lines []ParsedLine) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = l.Raw
	}
	return strings.Join(parts, "\n")
}
