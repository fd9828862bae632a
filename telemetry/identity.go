package telemetry

import "strings"

// looksLikeIdentification reports whether the lines have the shape of an
// ATI response: labelled identification fields such as "Revision: x".
func looksLikeIdentification(lines []ParsedLine) bool {
	for _, l := range lines {
		if l.hasPrefix("Manufacturer:") || l.hasPrefix("Revision:") {
			return true
		}
	}
	return false
}

// parseIdentification handles ATI output in both styles seen in the
// field: labelled lines ("Manufacturer: MikroTik") and the Quectel
// positional form (manufacturer line, model line, "Revision: ...""").
func parseIdentification(lines []ParsedLine) *TelemetryRecord {
	rec := newRecord()
	id := &Identity{}
	var bare []string

	for _, l := range lines {
		key, value, ok := strings.Cut(l.Raw, ":")
		if ok {
			value = strings.TrimSpace(value)
			switch strings.ToLower(strings.TrimSpace(key)) {
			case "manufacturer":
				id.Manufacturer = value
				continue
			case "model":
				id.Model = value
				continue
			case "revision":
				id.Revision = value
				continue
			case "imei":
				id.IMEI = value
				continue
			case "svn":
				id.SVN = value
				continue
			}
		}
		bare = append(bare, l.Raw)
	}

	// Quectel style: manufacturer and model precede the Revision line.
	if id.Manufacturer == "" && len(bare) > 0 {
		id.Manufacturer = bare[0]
	}
	if id.Model == "" && len(bare) > 1 {
		id.Model = bare[1]
	}

	rec.Identity = id
	return rec
}

// parseBareIdentity handles the single-value identification commands
// (AT+CGMI, AT+CGMM, AT+CGMR, AT+GSN, AT+CIMI): the first data line is
// the value.
func parseBareIdentity(lines []ParsedLine, assign func(*Identity, string)) *TelemetryRecord {
	rec := newRecord()
	id := &Identity{}
	if len(lines) > 0 {
		assign(id, strings.TrimSpace(lines[0].Raw))
	}
	rec.Identity = id
	return rec
}
