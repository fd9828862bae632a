package telemetry

import (
	"strconv"
	"strings"
)

// Quectel technology literals as they appear quoted in +QENG/+QCSQ
// output.
const (
	quectelLTE   = "LTE"
	quectelNSA   = "NR5G-NSA"
	quectelSA    = "NR5G-SA"
	quectelWCDMA = "WCDMA"
)

// parseQuectelServing handles +QENG="servingcell" responses. Three
// layouts occur in the field: a single line carrying the technology
// literal, and the EN-DC split form where a bare
// `+QENG: "servingcell",<state>` header is followed by one "LTE" line
// and one "NR5G-NSA" line.
func parseQuectelServing(lines []ParsedLine) (*TelemetryRecord, error) {
	rec := newRecord()
	op := &Operator{}
	disc := RATUnknown
	state := ""
	sawHeader := false

	for _, l := range lines {
		if !l.hasPrefix("+QENG:") {
			continue
		}
		args := l.fields("+QENG:")
		if len(args) == 0 {
			continue
		}

		switch args[0] {
		case "servingcell":
			if len(args) == 2 {
				// EN-DC split header; technology lines follow.
				state = args[1]
				sawHeader = true
				continue
			}
			if len(args) < 3 {
				continue
			}
			state = args[1]
			if err := servingCell(rec, op, args[2], args[3:], state, &disc); err != nil {
				return nil, err
			}
		case quectelLTE:
			if err := servingCell(rec, op, quectelLTE, args[1:], state, &disc); err != nil {
				return nil, err
			}
		case quectelNSA:
			if err := servingCell(rec, op, quectelNSA, args[1:], state, &disc); err != nil {
				return nil, err
			}
		}
	}

	if len(rec.ServingCells) == 0 && sawHeader {
		// Header with no technology line: the modem is searching.
		return nil, ErrNoService
	}
	rec.Operator = op
	return finalizeRadio(rec, disc)
}

// servingCell extracts one serving cell entry using the positional
// table for its technology literal.
func servingCell(rec *TelemetryRecord, op *Operator, tech string, values []string, state string, disc *RAT) error {
	c := CellMeasurement{State: state, Role: RolePrimary}
	var table fieldTable

	switch tech {
	case quectelLTE:
		c.Tech = TechLTE
		table = lteServingTail
		if *disc == RATUnknown {
			*disc = RATLTE
		}
	case quectelNSA:
		c.Tech = TechNR
		c.Role = RoleSecondary
		table = nsaNRTail
		*disc = RATLTENRNSA
	case quectelSA:
		c.Tech = TechNR
		table = saServingTail
		*disc = RATNR5GSA
	case quectelWCDMA:
		c.Tech = TechWCDMA
		table = wcdmaServingTail
		*disc = RATWCDMA
	default:
		return &UnrecognizedRATError{Value: tech}
	}

	malformed := extractPositional(&c, op, table, values)
	appendCell(rec, c, malformed)
	return nil
}

// parseNeighbourCells handles +QENG="neighbourcell" responses. Each line
// yields one lightweight measurement; the record carries no serving
// cells, so its RAT stays UNKNOWN.
func parseNeighbourCells(lines []ParsedLine) (*TelemetryRecord, error) {
	rec := newRecord()
	for _, l := range lines {
		if !l.hasPrefix("+QENG:") {
			continue
		}
		args := l.fields("+QENG:")
		if len(args) < 4 || !strings.HasPrefix(args[0], "neighbourcell") {
			continue
		}

		n := NeighbourMeasurement{
			Scope: strings.TrimPrefix(args[0], "neighbourcell "),
		}
		switch args[1] {
		case quectelLTE:
			n.Tech = TechLTE
		case quectelNSA, quectelSA, "NR5G":
			n.Tech = TechNR
		case quectelWCDMA:
			n.Tech = TechWCDMA
		default:
			rec.warn(&MalformedFieldError{Field: "neighbour_tech", Raw: args[1]})
			continue
		}

		// <earfcn>,<pcid>,<rsrq>,<rsrp>,<rssi>,<sinr>,<srxlev>,...
		assign := []struct {
			apply func(string) error
		}{
			{func(s string) (err error) { n.Channel, err = parseOptInt("channel", s); return }},
			{func(s string) (err error) { n.PCI, err = parseOptInt("pci", s); return }},
			{func(s string) (err error) { n.RSRQ, err = parseMetric("rsrq", s); return }},
			{func(s string) (err error) { n.RSRP, err = parseMetric("rsrp", s); return }},
			{func(s string) (err error) { n.RSSI, err = parseMetric("rssi", s); return }},
			{func(s string) (err error) { n.SINR, err = parseMetric("sinr", s); return }},
			{func(s string) (err error) { n.Srxlev, err = parseOptInt("srxlev", s); return }},
		}
		for i, a := range assign {
			if i+2 >= len(args) {
				break
			}
			if err := a.apply(args[i+2]); err != nil {
				rec.warn(err)
			}
		}
		rec.NeighbourCells = append(rec.NeighbourCells, n)
	}

	if len(rec.NeighbourCells) == 0 {
		return nil, ErrNoUsableCells
	}
	return rec, nil
}

// parseCarrierAggregation handles +QCAINFO responses. Each PCC/SCC line
// becomes one serving cell entry in encounter order; a standalone parse
// infers the RAT from the technologies present.
func parseCarrierAggregation(lines []ParsedLine) (*TelemetryRecord, error) {
	rec := newRecord()
	op := &Operator{}

	for _, l := range lines {
		if !l.hasPrefix("+QCAINFO:") {
			continue
		}
		// "PCC",<earfcn>,<bw code>,"<band label>",<pstate>,<pcid>[,<rsrp>,<rsrq>,<rssi>,<sinr>]
		args := l.fields("+QCAINFO:")
		if len(args) < 6 {
			continue
		}

		c := CellMeasurement{Role: RolePrimary}
		if args[0] == "SCC" {
			c.Role = RoleSecondary
		}
		c.Tech, c.Band = parseBandLabel(args[3])

		table := fieldTable{fChannel, fDLBWCode, fSkip, fSkip, fPCI, fRSRP, fRSRQ, fRSSI, fSINR}
		malformed := extractPositional(&c, op, table, args[1:])
		appendCell(rec, c, malformed)
	}

	return finalizeRadio(rec, RATUnknown)
}

// parseBandLabel maps a QCAINFO band label ("LTE BAND 3",
// "NR5G BAND 78") to a technology tag and the canonical band string.
func parseBandLabel(label string) (Tech, string) {
	fields := strings.Fields(label)
	if len(fields) < 3 {
		return TechLTE, label
	}
	num := fields[len(fields)-1]
	if strings.HasPrefix(fields[0], "NR5G") {
		return TechNR, "n" + num
	}
	return TechLTE, num
}

// parseQuickSignal handles +QCSQ responses: a single-cell quick read
// whose value layout depends on the sysmode literal.
func parseQuickSignal(lines []ParsedLine) (*TelemetryRecord, error) {
	rec := newRecord()

	for _, l := range lines {
		if !l.hasPrefix("+QCSQ:") {
			continue
		}
		args := l.fields("+QCSQ:")
		if len(args) == 0 {
			continue
		}

		var (
			c     CellMeasurement
			table []cellField
			disc  RAT
		)
		switch args[0] {
		case "NOSERVICE":
			return nil, ErrNoService
		case quectelLTE:
			c.Tech, disc = TechLTE, RATLTE
			table = []cellField{fRSSI, fRSRP, fSINR, fRSRQ}
		case quectelSA:
			c.Tech, disc = TechNR, RATNR5GSA
			table = []cellField{fRSSI, fRSRP, fSINR, fRSRQ}
		case quectelNSA:
			// Only the NR layer of the EN-DC pair is reported; the
			// sysmode literal itself records the LTE anchor.
			c.Tech, disc = TechNR, RATLTENRNSA
			table = []cellField{fRSRP, fSINR, fRSRQ}
		case quectelWCDMA:
			c.Tech, disc = TechWCDMA, RATWCDMA
			table = []cellField{fRSSI, fRSCP, fSINR, fECIO}
		default:
			return nil, &UnrecognizedRATError{Value: args[0]}
		}
		c.Role = RolePrimary

		// QCSQ values carry no unit text and their SINR scaling is
		// firmware-dependent; they stay unit-tagged as raw numbers.
		op := &Operator{}
		malformed := extractPositional(&c, op, table, args[1:])
		appendCell(rec, c, malformed)
		return finalizeRadio(rec, disc)
	}
	return nil, ErrNoUsableCells
}

// parseTemperature handles +QTEMP responses: repeated
// `+QTEMP:"<sensor>","<celsius>"` lines.
func parseTemperature(lines []ParsedLine) (*TelemetryRecord, error) {
	rec := newRecord()
	rec.Temperature = make(map[string]float64)

	for _, l := range lines {
		if !l.hasPrefix("+QTEMP") {
			continue
		}
		args := l.fields("+QTEMP:")
		if len(args) < 2 {
			continue
		}
		v, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			rec.warn(&MalformedFieldError{Field: "temperature/" + args[0], Raw: args[1]})
			continue
		}
		rec.Temperature[args[0]] = v
	}
	return rec, nil
}

// parseRegistration handles +CREG/+CGREG/+CEREG query responses:
// `+CEREG: <n>,<stat>[,<tac>,<ci>[,<AcT>]]` with hex location fields.
func parseRegistration(lines []ParsedLine) (*TelemetryRecord, error) {
	rec := newRecord()

	for _, l := range lines {
		var prefix, domain string
		switch {
		case l.hasPrefix("+CREG:"):
			prefix, domain = "+CREG:", "cs"
		case l.hasPrefix("+CGREG:"):
			prefix, domain = "+CGREG:", "ps"
		case l.hasPrefix("+CEREG:"):
			prefix, domain = "+CEREG:", "eps"
		default:
			continue
		}

		args := l.fields(prefix)
		reg := &Registration{Domain: domain}
		if len(args) >= 2 {
			var err error
			if reg.Status, err = parseOptInt("stat", args[1]); err != nil {
				rec.warn(err)
			}
		}
		if len(args) >= 4 {
			var err error
			if reg.TAC, err = parseIdent("tac", args[2], true); err != nil {
				rec.warn(err)
			}
			if reg.CellID, err = parseIdent("ci", args[3], true); err != nil {
				rec.warn(err)
			}
		}
		if len(args) >= 5 {
			var err error
			if reg.AccessTech, err = parseOptInt("act", args[4]); err != nil {
				rec.warn(err)
			}
		}
		rec.Registration = reg
		return rec, nil
	}
	return rec, nil
}

func parseICCID(lines []ParsedLine) (*TelemetryRecord, error) {
	rec := newRecord()
	for _, l := range lines {
		if l.hasPrefix("+QCCID:") {
			rec.Identity = &Identity{
				ICCID: strings.TrimSpace(strings.TrimPrefix(l.Raw, "+QCCID:")),
			}
			break
		}
	}
	return rec, nil
}

func parsePinStatus(lines []ParsedLine) (*TelemetryRecord, error) {
	rec := newRecord()
	for _, l := range lines {
		if l.hasPrefix("+CPIN:") {
			rec.SIMStatus = strings.TrimSpace(strings.TrimPrefix(l.Raw, "+CPIN:"))
			break
		}
	}
	return rec, nil
}
