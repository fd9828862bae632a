// Package telemetry normalizes vendor-specific AT command responses from
// Qualcomm and Quectel based cellular modems into a single structured
// representation of current radio conditions.
//
// The package is a pure transformation: one raw response in, one
// TelemetryRecord or one typed error out. It performs no I/O and keeps no
// state between calls.
package telemetry

// RawResponse is the unparsed text of one command's output together with
// the command string that produced it.
type RawResponse struct {
	// Command is the AT command that was issued, echo optional.
	Command string
	// Text is the complete response block, including the terminal
	// OK or ERROR token.
	Text string
}

// RAT identifies the combined radio technology state of a reading.
type RAT string

const (
	RATUnknown  RAT = "UNKNOWN"
	RATWCDMA    RAT = "WCDMA"
	RATLTE      RAT = "LTE"
	RATLTENRNSA RAT = "LTE_NR_NSA"
	RATNR5GSA   RAT = "NR5G_SA"
)

// Tech tags an individual cell measurement with its radio technology.
type Tech string

const (
	TechLTE   Tech = "LTE"
	TechNR    Tech = "NR"
	TechWCDMA Tech = "WCDMA"
)

// CellRole distinguishes the primary serving cell from secondary
// component carriers and NR secondary cells.
type CellRole string

const (
	RolePrimary   CellRole = "primary"
	RoleSecondary CellRole = "secondary"
)

// Metric is a numeric reading that is either a concrete value or
// explicitly unavailable. The source text and unit suffix are retained so
// firmware-dependent scalings (SINR, tx power) stay inspectable and the
// normalization is reversible for debugging.
type Metric struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
	Raw   string  `json:"raw,omitempty"`
	Valid bool    `json:"valid"`
}

// OptInt is an integer field that may be unavailable.
type OptInt struct {
	Value int  `json:"value"`
	Valid bool `json:"valid"`
}

// CellIdentifier is a cell id, tracking area code or location area code
// normalized to an integer. Hex records the source representation so the
// conversion is reversible.
type CellIdentifier struct {
	Value int64  `json:"value"`
	Raw   string `json:"raw,omitempty"`
	Hex   bool   `json:"hex"`
	Valid bool   `json:"valid"`
}

// Identity holds modem identification, populated only from
// identification commands (ATI, AT+CGMI/CGMM/CGMR/GSN, AT+CIMI, AT+QCCID).
type Identity struct {
	Manufacturer string `json:"manufacturer,omitempty"`
	Model        string `json:"model,omitempty"`
	Revision     string `json:"revision,omitempty"`
	IMEI         string `json:"imei,omitempty"`
	SVN          string `json:"svn,omitempty"`
	IMSI         string `json:"imsi,omitempty"`
	ICCID        string `json:"iccid,omitempty"`
}

// Operator holds the mobile country and network codes.
type Operator struct {
	MCC OptInt `json:"mcc"`
	MNC OptInt `json:"mnc"`
}

// Registration is the parsed result of a +CREG/+CGREG/+CEREG query.
type Registration struct {
	// Domain is "cs", "ps" or "eps" depending on the command family.
	Domain     string         `json:"domain"`
	Status     OptInt         `json:"status"`
	TAC        CellIdentifier `json:"tac,omitempty"`
	CellID     CellIdentifier `json:"cell_id,omitempty"`
	AccessTech OptInt         `json:"access_tech,omitempty"`
}

// CellMeasurement describes one serving component carrier or RAT layer.
type CellMeasurement struct {
	Tech   Tech     `json:"tech"`
	Role   CellRole `json:"role"`
	State  string   `json:"state,omitempty"`  // NOCONN/CONNECT/LIMSRV (Quectel)
	Duplex string   `json:"duplex,omitempty"` // FDD/TDD

	Band string `json:"band,omitempty"` // "3" for LTE B3, "n78" for NR

	// Bandwidth is populated when the source reports a unit-suffixed
	// value (Qualcomm "20.0MHz"). Quectel transmits small integer codes
	// instead; those stay opaque in BandwidthCode (see LTEBandwidthMHz
	// and NRBandwidthMHz for the documented reference mapping).
	Bandwidth     Metric `json:"bandwidth,omitempty"`
	BandwidthCode OptInt `json:"bandwidth_code,omitempty"`
	SCSCode       OptInt `json:"scs_code,omitempty"`

	Channel OptInt         `json:"channel"` // EARFCN/ARFCN/UARFCN
	PCI     OptInt         `json:"pci"`
	CellID  CellIdentifier `json:"cell_id"`
	TAC     CellIdentifier `json:"tac"`
	LAC     CellIdentifier `json:"lac,omitempty"` // WCDMA only

	RSRP    Metric `json:"rsrp"`
	RSRQ    Metric `json:"rsrq"`
	RSSI    Metric `json:"rssi"` // LTE only
	SINR    Metric `json:"sinr"`
	RSCP    Metric `json:"rscp,omitempty"` // WCDMA only
	ECIO    Metric `json:"ecio,omitempty"` // WCDMA only
	TxPower Metric `json:"tx_power,omitempty"`
	CQI     OptInt `json:"cqi,omitempty"` // LTE only
	Srxlev  OptInt `json:"srxlev,omitempty"`

	// AntennaRSRP preserves per-branch RSRP by antenna index; branches
	// the modem reported as NA stay marked unavailable. RxBranches is
	// the branch count the modem declared alongside the list.
	AntennaRSRP []Metric `json:"antenna_rsrp,omitempty"`
	RxBranches  OptInt   `json:"rx_branches,omitempty"`
}

// NeighbourMeasurement is a lightweight reading for one neighbour cell.
type NeighbourMeasurement struct {
	Scope   string `json:"scope"` // "intra" or "inter"
	Tech    Tech   `json:"tech"`
	Channel OptInt `json:"channel"`
	PCI     OptInt `json:"pci"`
	RSRQ    Metric `json:"rsrq"`
	RSRP    Metric `json:"rsrp"`
	RSSI    Metric `json:"rssi"`
	SINR    Metric `json:"sinr"`
	Srxlev  OptInt `json:"srxlev,omitempty"`
}

// TelemetryRecord is the canonical, technology-agnostic parse result.
// It is constructed once per Parse call and carries no relation to prior
// readings.
type TelemetryRecord struct {
	RAT RAT `json:"rat"`

	Identity *Identity `json:"identity,omitempty"`
	Operator *Operator `json:"operator,omitempty"`

	// ServingCells is ordered: primary cell first, then secondary and
	// NR cells in the order they appeared in the source text.
	ServingCells   []CellMeasurement      `json:"serving_cells,omitempty"`
	NeighbourCells []NeighbourMeasurement `json:"neighbour_cells,omitempty"`

	// Temperature maps sensor name to a reading in degrees Celsius.
	Temperature map[string]float64 `json:"temperature,omitempty"`

	Registration *Registration `json:"registration,omitempty"`
	SIMStatus    string        `json:"sim_status,omitempty"`

	// Warnings lists non-fatal problems (malformed fields recorded as
	// unavailable, antenna branch count mismatches).
	Warnings []string `json:"warnings,omitempty"`
}

func newRecord() *TelemetryRecord {
	return &TelemetryRecord{RAT: RATUnknown}
}

func (r *TelemetryRecord) warn(err error) {
	r.Warnings = append(r.Warnings, err.Error())
}

// hasSignal reports whether at least one signal-bearing field of the cell
// holds a concrete value.
func (c *CellMeasurement) hasSignal() bool {
	for _, m := range []Metric{c.RSRP, c.RSRQ, c.RSSI, c.SINR, c.RSCP, c.ECIO} {
		if m.Valid {
			return true
		}
	}
	return false
}
