package telemetry

// Quectel transmits bandwidth and subcarrier spacing as small integer
// codes whose meaning is firmware-dependent. The parser keeps the codes
// opaque on the record; these tables are the documented reference
// mapping for consumers that choose to expand them.

// LTEBandwidthMHz maps the LTE DL/UL bandwidth code to megahertz.
var LTEBandwidthMHz = map[int]float64{
	0: 1.4,
	1: 3,
	2: 5,
	3: 10,
	4: 15,
	5: 20,
}

// NRBandwidthMHz maps the NR5G DL bandwidth code to megahertz.
var NRBandwidthMHz = map[int]float64{
	0:  5,
	1:  10,
	2:  15,
	3:  20,
	4:  25,
	5:  30,
	6:  40,
	7:  50,
	8:  60,
	9:  80,
	10: 90,
	11: 100,
	12: 200,
	13: 400,
}

// SCSKHz maps the NR subcarrier spacing code to kilohertz.
var SCSKHz = map[int]int{
	0: 15,
	1: 30,
	2: 60,
	3: 120,
	4: 240,
}
