package telemetry

// appendCell attaches a freshly extracted cell entry to the record,
// folding its malformed-field errors into the warning list. An entry
// whose signal-bearing fields are all malformed carries no usable data
// and is omitted; entries that are merely unavailable (placeholders) are
// kept, since explicit unavailability is a valid reading.
func appendCell(rec *TelemetryRecord, c CellMeasurement, malformed []error) {
	for _, err := range malformed {
		rec.warn(err)
	}
	if !c.hasSignal() && hasMalformedSignal(malformed) {
		return
	}
	rec.ServingCells = append(rec.ServingCells, c)
}

// finalizeRadio closes out a radio-telemetry parse: a record claiming a
// technology must carry at least one serving cell, and the final RAT
// reflects the combined technology state rather than the discriminator
// alone.
func finalizeRadio(rec *TelemetryRecord, disc RAT) (*TelemetryRecord, error) {
	if len(rec.ServingCells) == 0 {
		return nil, ErrNoUsableCells
	}
	rec.RAT = combinedRAT(disc, rec.ServingCells)
	return rec, nil
}

// combinedRAT resolves the record-level technology from the serving cell
// mix. LTE_NR_NSA requires both an LTE and an NR entry; a discriminator
// that promised EN-DC but delivered only the LTE anchor degrades to LTE.
// An NR-only reading under an "NR5G-NSA" discriminator keeps the NSA
// tag, since the literal itself asserts the LTE anchor exists (quick
// signal reads report only the NR layer).
func combinedRAT(disc RAT, cells []CellMeasurement) RAT {
	var hasLTE, hasNR, hasWCDMA bool
	for _, c := range cells {
		switch c.Tech {
		case TechLTE:
			hasLTE = true
		case TechNR:
			hasNR = true
		case TechWCDMA:
			hasWCDMA = true
		}
	}

	switch {
	case hasLTE && hasNR:
		return RATLTENRNSA
	case hasNR:
		if disc == RATLTENRNSA {
			return RATLTENRNSA
		}
		return RATNR5GSA
	case hasLTE:
		return RATLTE
	case hasWCDMA:
		return RATWCDMA
	}
	return disc
}
