package telemetry

import (
	"strings"

	"github.com/Brazzo978/RemoteSignalMonitor-Mikrotik/at"
)

// Parse converts the full text returned for one AT command invocation
// into a TelemetryRecord. It either returns a fully assembled record
// (possibly carrying non-fatal warnings) or a typed error, never both.
//
// Dispatch inspects the tokenized lines for a discriminating marker,
// first match wins; responses with no recognizable discriminator are
// routed by the issuing command for the bare-line identity families, and
// otherwise rejected with *UnknownFormatError.
func Parse(raw RawResponse) (*TelemetryRecord, error) {
	lines, err := tokenize(raw)
	if err != nil {
		return nil, err
	}

	switch {
	case anyPrefix(lines, "RAT:"):
		return parseQualcommDebug(lines)
	case anyPrefix(lines, "+QENG:"):
		if qengNeighbour(lines) {
			return parseNeighbourCells(lines)
		}
		return parseQuectelServing(lines)
	case anyPrefix(lines, "+QCAINFO:"):
		return parseCarrierAggregation(lines)
	case anyPrefix(lines, "+QCSQ:"):
		return parseQuickSignal(lines)
	case anyPrefix(lines, "+QTEMP"):
		return parseTemperature(lines)
	case anyPrefix(lines, "+CREG:"), anyPrefix(lines, "+CGREG:"), anyPrefix(lines, "+CEREG:"):
		return parseRegistration(lines)
	case anyPrefix(lines, "+QCCID:"):
		return parseICCID(lines)
	case anyPrefix(lines, "+CPIN:"):
		return parsePinStatus(lines)
	}

	if rec, ok := parseByCommand(raw.Command, lines); ok {
		return rec, nil
	}
	return nil, &UnknownFormatError{Command: raw.Command, Raw: joinRaw(lines)}
}

func anyPrefix(lines []ParsedLine, prefix string) bool {
	for _, l := range lines {
		if l.hasPrefix(prefix) {
			return true
		}
	}
	return false
}

// qengNeighbour reports whether the +QENG lines carry neighbour cell
// data rather than serving cell data.
func qengNeighbour(lines []ParsedLine) bool {
	for _, l := range lines {
		if l.hasPrefix("+QENG:") {
			if strings.Contains(l.Raw, `"neighbourcell`) {
				return true
			}
			return false
		}
	}
	return false
}

// parseByCommand routes responses without a body marker: the bare-line
// identification commands and ATI output.
func parseByCommand(command string, lines []ParsedLine) (*TelemetryRecord, bool) {
	switch strings.ToUpper(strings.TrimSpace(command)) {
	case at.CmdIdentify:
		return parseIdentification(lines), true
	case at.CmdManufacturer, "AT+GMI":
		return parseBareIdentity(lines, func(id *Identity, v string) { id.Manufacturer = v }), true
	case at.CmdModel, "AT+GMM":
		return parseBareIdentity(lines, func(id *Identity, v string) { id.Model = v }), true
	case at.CmdRevision, "AT+GMR":
		return parseBareIdentity(lines, func(id *Identity, v string) { id.Revision = v }), true
	case at.CmdIMEI, "AT+CGSN":
		return parseBareIdentity(lines, func(id *Identity, v string) { id.IMEI = v }), true
	case at.CmdIMSI:
		return parseBareIdentity(lines, func(id *Identity, v string) { id.IMSI = v }), true
	}
	// ATI responses are recognizable by shape even when the issuing
	// command string was not preserved.
	if looksLikeIdentification(lines) {
		return parseIdentification(lines), true
	}
	return nil, false
}
