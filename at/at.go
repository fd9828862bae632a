package at

const (
	// Terminal Control
	CRLF = "\r\n"

	// Response Codes
	OK        = "OK"
	ERROR     = "ERROR"
	NoCarrier = "NO CARRIER"
	CmeError  = "+CME ERROR:"
	CmsError  = "+CMS ERROR:"
)

// Commands issued by the telemetry poller. The same strings are used by the
// parser to route responses whose body carries no discriminating marker
// (bare-line identity commands such as AT+CGMI).
const (
	CmdAT      = "AT"
	CmdEchoOff = "ATE0"

	CmdIdentify = "ATI"
	CmdDebug    = "AT^DEBUG?"

	CmdServingCell   = `AT+QENG="servingcell"`
	CmdNeighbourCell = `AT+QENG="neighbourcell"`
	CmdCAInfo        = "AT+QCAINFO"
	CmdSignalQuality = "AT+QCSQ"
	CmdTemperature   = "AT+QTEMP"

	CmdManufacturer = "AT+CGMI"
	CmdModel        = "AT+CGMM"
	CmdRevision     = "AT+CGMR"
	CmdIMEI         = "AT+GSN"
	CmdIMSI         = "AT+CIMI"
	CmdICCID        = "AT+QCCID"
	CmdPinStatus    = "AT+CPIN?"

	CmdCSRegistration  = "AT+CREG?"
	CmdPSRegistration  = "AT+CGREG?"
	CmdEPSRegistration = "AT+CEREG?"
)

type ResponseType int

const (
	TypeFinal ResponseType = iota // OK, ERROR, +CME/+CMS ERROR
	TypeData                      // Intermediate command output (+QENG: ...)
)
