package telemetry

import (
	"regexp"
	"strconv"
	"strings"
)

// Qualcomm AT^DEBUG? RAT discriminator values.
var qualcommRATs = map[string]RAT{
	"WCDMA":   RATWCDMA,
	"LTE":     RATLTE,
	"LTE+NR":  RATLTENRNSA,
	"NR5G_SA": RATNR5GSA,
}

// lte_ant_rsrp:rx_diversity:<n> (<v1>,<v2>,<v3>,<v4>) — n is the count
// of valid antenna branches, each value may be the literal NA.
var antennaRSRPRe = regexp.MustCompile(`^lte_ant_rsrp:rx_diversity:(\d+)\s*\(([^)]*)\)$`)

// parseQualcommDebug handles the Qualcomm AT^DEBUG? key:value layout:
// one RAT: marker, optional operator codes, one pcell: line, repeated
// scell:/nrcell: lines, and the per-antenna RSRP compound.
func parseQualcommDebug(lines []ParsedLine) (*TelemetryRecord, error) {
	rec := newRecord()
	op := &Operator{}
	disc := RATUnknown

	// Technology of pcell/scell labels under this discriminator.
	cellTech := func() Tech {
		switch disc {
		case RATWCDMA:
			return TechWCDMA
		case RATNR5GSA:
			return TechNR
		default:
			return TechLTE
		}
	}

	for _, l := range lines {
		switch {
		case l.hasPrefix("RAT:"):
			value := strings.TrimSpace(strings.TrimPrefix(l.Raw, "RAT:"))
			r, ok := qualcommRATs[value]
			if !ok {
				return nil, &UnrecognizedRATError{Value: value}
			}
			disc = r

		case l.hasPrefix("pcell:"):
			c := keyValueCell(cellTech(), RolePrimary, strings.TrimPrefix(l.Raw, "pcell:"))
			appendCell(rec, c.cell, c.malformed)

		case l.hasPrefix("scell:"):
			c := keyValueCell(cellTech(), RoleSecondary, strings.TrimPrefix(l.Raw, "scell:"))
			appendCell(rec, c.cell, c.malformed)

		case l.hasPrefix("nrcell:"):
			c := keyValueCell(TechNR, RoleSecondary, strings.TrimPrefix(l.Raw, "nrcell:"))
			appendCell(rec, c.cell, c.malformed)

		case l.hasPrefix("lte_ant_rsrp:"):
			applyAntennaRSRP(rec, l.Raw)

		default:
			// Top-level key:value pairs (mcc:222,mnc:88).
			applyTopLevel(rec, op, l.Raw)
		}
	}

	rec.Operator = op
	return finalizeRadio(rec, disc)
}

type extractedCell struct {
	cell      CellMeasurement
	malformed []error
}

// keyValueCell parses one pcell:/scell:/nrcell: line body, a comma
// separated list of key:value pairs with unit-suffixed numbers and
// decimal identifiers.
func keyValueCell(tech Tech, role CellRole, body string) extractedCell {
	out := extractedCell{cell: CellMeasurement{Tech: tech, Role: role}}
	c := &out.cell

	for _, pair := range strings.Split(body, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		var err error
		switch key {
		case "band":
			if !isPlaceholder(value) {
				c.Band = value
				if strings.HasPrefix(value, "n") {
					c.Tech = TechNR
				}
			}
		case "bw":
			c.Bandwidth, err = parseMetric("bw", value)
		case "channel":
			c.Channel, err = parseOptInt("channel", value)
		case "pci":
			c.PCI, err = parseOptInt("pci", value)
		case "cellid":
			c.CellID, err = parseIdent("cellID", value, false)
		case "tac":
			c.TAC, err = parseIdent("tac", value, false)
		case "lac":
			c.LAC, err = parseIdent("lac", value, false)
		case "rssi":
			c.RSSI, err = parseMetric("rssi", value)
		case "rsrp":
			c.RSRP, err = parseMetric("rsrp", value)
		case "rsrq":
			c.RSRQ, err = parseMetric("rsrq", value)
		case "snr", "sinr":
			c.SINR, err = parseMetric("sinr", value)
		case "rscp":
			c.RSCP, err = parseMetric("rscp", value)
		case "ecio":
			c.ECIO, err = parseMetric("ecio", value)
		case "cqi":
			c.CQI, err = parseOptInt("cqi", value)
		case "txpwr", "tx_power":
			c.TxPower, err = parseMetric("tx_power", value)
		}
		if err != nil {
			out.malformed = append(out.malformed, err)
		}
	}
	return out
}

// applyAntennaRSRP parses the per-antenna RSRP compound onto the most
// recent LTE serving cell. The declared branch count is validated
// against the values parsed; a mismatch is recorded as a warning but
// does not abort the parse.
func applyAntennaRSRP(rec *TelemetryRecord, line string) {
	m := antennaRSRPRe.FindStringSubmatch(line)
	if m == nil {
		rec.warn(&MalformedFieldError{Field: "lte_ant_rsrp", Raw: line})
		return
	}

	target := lastLTECell(rec)
	if target == nil {
		rec.warn(&MalformedFieldError{Field: "lte_ant_rsrp", Raw: line})
		return
	}

	declared, _ := strconv.Atoi(m[1])
	target.RxBranches = OptInt{Value: declared, Valid: true}

	valid := 0
	for i, v := range strings.Split(m[2], ",") {
		v = strings.TrimSpace(v)
		metric, err := parseMetric("lte_ant_rsrp/"+strconv.Itoa(i), v)
		if err != nil {
			rec.warn(err)
		}
		if metric.Valid {
			valid++
		}
		target.AntennaRSRP = append(target.AntennaRSRP, metric)
	}

	if valid != declared {
		rec.warn(&AntennaMismatchError{Declared: declared, Parsed: valid})
	}
}

func lastLTECell(rec *TelemetryRecord) *CellMeasurement {
	for i := len(rec.ServingCells) - 1; i >= 0; i-- {
		if rec.ServingCells[i].Tech == TechLTE {
			return &rec.ServingCells[i]
		}
	}
	return nil
}

// applyTopLevel handles key:value pairs outside any cell label, such as
// the operator codes.
func applyTopLevel(rec *TelemetryRecord, op *Operator, line string) {
	for _, pair := range strings.Split(line, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok {
			continue
		}
		var err error
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "mcc":
			op.MCC, err = parseOptInt("mcc", strings.TrimSpace(value))
		case "mnc":
			op.MNC, err = parseOptInt("mnc", strings.TrimSpace(value))
		}
		if err != nil {
			rec.warn(err)
		}
	}
}
