package telemetry

import (
	"strconv"
	"strings"
)

// isPlaceholder reports whether a field's source text is one of the
// vendor "not available" tokens. Placeholders normalize to an explicit
// unavailable marker, never to zero.
func isPlaceholder(s string) bool {
	return s == "" || s == "-" || strings.EqualFold(s, "NA")
}

// unit suffixes stripped from numeric fields before parsing. Ordering
// matters: dBm before dB.
var unitSuffixes = []string{"dBm", "dB", "MHz"}

// parseMetric parses a numeric field, stripping a known unit suffix if
// present. Placeholders yield an unavailable Metric with no error; any
// other unparseable text yields an unavailable Metric plus a
// *MalformedFieldError for the warning list.
func parseMetric(field, text string) (Metric, error) {
	if isPlaceholder(text) {
		return Metric{Raw: text}, nil
	}
	num, unit := text, ""
	for _, suffix := range unitSuffixes {
		if strings.HasSuffix(text, suffix) {
			num = strings.TrimSpace(strings.TrimSuffix(text, suffix))
			unit = suffix
			break
		}
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Metric{Raw: text}, &MalformedFieldError{Field: field, Raw: text}
	}
	return Metric{Value: v, Unit: unit, Raw: text, Valid: true}, nil
}

func parseOptInt(field, text string) (OptInt, error) {
	if isPlaceholder(text) {
		return OptInt{}, nil
	}
	v, err := strconv.Atoi(text)
	if err != nil {
		return OptInt{}, &MalformedFieldError{Field: field, Raw: text}
	}
	return OptInt{Value: v, Valid: true}, nil
}

// parseIdent parses a cell id, TAC or LAC. hex selects base-16 parsing
// (Quectel); decimal sources (Qualcomm) pass through base 10. The source
// base is recorded on the result.
func parseIdent(field, text string, hex bool) (CellIdentifier, error) {
	if isPlaceholder(text) {
		return CellIdentifier{Raw: text, Hex: hex}, nil
	}
	base := 10
	if hex {
		base = 16
	}
	v, err := strconv.ParseInt(text, base, 64)
	if err != nil {
		return CellIdentifier{Raw: text, Hex: hex}, &MalformedFieldError{Field: field, Raw: text}
	}
	return CellIdentifier{Value: v, Raw: text, Hex: hex, Valid: true}, nil
}

// cellField names one semantic slot of a CellMeasurement (or the
// operator codes that ride along in serving cell lines).
type cellField int

const (
	fSkip cellField = iota
	fDuplex
	fMCC
	fMNC
	fCellIDHex
	fPCI
	fChannel
	fBand   // numeric LTE band
	fBandNR // numeric NR band, rendered "n<band>"
	fULBWCode
	fDLBWCode
	fSCSCode
	fTACHex
	fLACHex
	fRSRP
	fRSRQ
	fRSSI
	fSINR
	fCQI
	fTxPower
	fSrxlev
	fRSCP
	fECIO
	fPSC
	fRAC
)

var cellFieldNames = map[cellField]string{
	fDuplex:    "duplex",
	fMCC:       "mcc",
	fMNC:       "mnc",
	fCellIDHex: "cellID",
	fPCI:       "pci",
	fChannel:   "channel",
	fBand:      "band",
	fBandNR:    "band",
	fULBWCode:  "ul_bandwidth",
	fDLBWCode:  "dl_bandwidth",
	fSCSCode:   "scs",
	fTACHex:    "tac",
	fLACHex:    "lac",
	fRSRP:      "rsrp",
	fRSRQ:      "rsrq",
	fRSSI:      "rssi",
	fSINR:      "sinr",
	fCQI:       "cqi",
	fTxPower:   "tx_power",
	fSrxlev:    "srxlev",
	fRSCP:      "rscp",
	fECIO:      "ecio",
	fPSC:       "psc",
	fRAC:       "rac",
}

func (f cellField) String() string { return cellFieldNames[f] }

// fieldTable maps CSV position to semantic field. The per-technology
// serving cell layouts differ only in these tables, so a new firmware
// variant is a data change.
type fieldTable []cellField

// Quectel +QENG="servingcell" positional layouts, positions counted
// after the technology literal.
var (
	lteServingTail = fieldTable{
		fDuplex, fMCC, fMNC, fCellIDHex, fPCI, fChannel, fBand,
		fULBWCode, fDLBWCode, fTACHex, fRSRP, fRSRQ, fRSSI, fSINR,
		fCQI, fTxPower, fSrxlev,
	}
	nsaNRTail = fieldTable{
		fMCC, fMNC, fPCI, fRSRP, fSINR, fRSRQ, fChannel, fBandNR,
		fDLBWCode, fSCSCode,
	}
	saServingTail = fieldTable{
		fDuplex, fMCC, fMNC, fCellIDHex, fPCI, fTACHex, fChannel,
		fBandNR, fDLBWCode, fRSRP, fRSRQ, fSINR, fSCSCode, fSrxlev,
	}
	wcdmaServingTail = fieldTable{
		fMCC, fMNC, fLACHex, fCellIDHex, fChannel, fPSC, fRAC,
		fRSCP, fECIO,
	}
)

// applyCellField assigns one raw positional value into the measurement.
// Malformed values are recorded as unavailable and returned as a
// *MalformedFieldError; the caller attaches them to the warning list.
func applyCellField(c *CellMeasurement, op *Operator, f cellField, text string) error {
	var err error
	switch f {
	case fSkip:
	case fDuplex:
		if !isPlaceholder(text) {
			c.Duplex = text
		}
	case fMCC:
		op.MCC, err = parseOptInt(f.String(), text)
	case fMNC:
		op.MNC, err = parseOptInt(f.String(), text)
	case fCellIDHex:
		c.CellID, err = parseIdent(f.String(), text, true)
	case fTACHex:
		c.TAC, err = parseIdent(f.String(), text, true)
	case fLACHex:
		c.LAC, err = parseIdent(f.String(), text, true)
	case fPCI:
		c.PCI, err = parseOptInt(f.String(), text)
	case fChannel:
		c.Channel, err = parseOptInt(f.String(), text)
	case fBand:
		if !isPlaceholder(text) {
			c.Band = text
		}
	case fBandNR:
		if !isPlaceholder(text) {
			c.Band = "n" + text
		}
	case fULBWCode:
		// Uplink code is reported but the record tracks the downlink
		// code; firmware variants disagree on the uplink meaning.
	case fDLBWCode:
		c.BandwidthCode, err = parseOptInt(f.String(), text)
	case fSCSCode:
		c.SCSCode, err = parseOptInt(f.String(), text)
	case fRSRP:
		c.RSRP, err = parseMetric(f.String(), text)
	case fRSRQ:
		c.RSRQ, err = parseMetric(f.String(), text)
	case fRSSI:
		c.RSSI, err = parseMetric(f.String(), text)
	case fSINR:
		c.SINR, err = parseMetric(f.String(), text)
	case fRSCP:
		c.RSCP, err = parseMetric(f.String(), text)
	case fECIO:
		c.ECIO, err = parseMetric(f.String(), text)
	case fCQI:
		c.CQI, err = parseOptInt(f.String(), text)
	case fTxPower:
		c.TxPower, err = parseMetric(f.String(), text)
	case fSrxlev:
		c.Srxlev, err = parseOptInt(f.String(), text)
	case fPSC, fRAC:
		// Parsed for validation but not carried on the record.
		_, err = parseOptInt(f.String(), text)
	}
	return err
}

// extractPositional walks a field table over positional values, filling
// the measurement. Trailing positions missing from the source are left
// unavailable. The returned errors are the malformed fields encountered;
// the caller attaches them as warnings and applies the escalation rule.
func extractPositional(c *CellMeasurement, op *Operator, table fieldTable, values []string) []error {
	var malformed []error
	for i, f := range table {
		if i >= len(values) {
			break
		}
		if err := applyCellField(c, op, f, values[i]); err != nil {
			malformed = append(malformed, err)
		}
	}
	return malformed
}

var signalFieldNames = map[string]bool{
	"rsrp": true, "rsrq": true, "rssi": true,
	"sinr": true, "rscp": true, "ecio": true,
}

// hasMalformedSignal reports whether any of the malformed-field errors
// concerns a signal-bearing field.
func hasMalformedSignal(errs []error) bool {
	for _, err := range errs {
		if mf, ok := err.(*MalformedFieldError); ok && signalFieldNames[mf.Field] {
			return true
		}
	}
	return false
}
