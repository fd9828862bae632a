package telemetry_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/Brazzo978/RemoteSignalMonitor-Mikrotik/at"
	"github.com/Brazzo978/RemoteSignalMonitor-Mikrotik/telemetry"
)

func TestParseDebugLTEPlusNR(t *testing.T) {
	rec, err := telemetry.Parse(telemetry.RawResponse{
		Command: at.CmdDebug,
		Text: response(
			"AT^DEBUG?",
			"RAT:LTE+NR",
			"mcc:222,mnc:88",
			"pcell:band:3,bw:20.0MHz,channel:1650,PCI:28,CellID:99717653,TAC:56848,RSSI:-65dBm,RSRP:-94dBm,RSRQ:-10dB,SNR:14.0dB,CQI:11,TXpwr:21dBm",
			"lte_ant_rsrp:rx_diversity:2 (-94,-97,NA,NA)",
			"nrcell:band:n78,channel:638016,PCI:44,RSRP:-88dBm,RSRQ:-11dB,SNR:17.5dB",
			"OK",
		),
	})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if rec.RAT != telemetry.RATLTENRNSA {
		t.Errorf("RAT = %q, want %q", rec.RAT, telemetry.RATLTENRNSA)
	}
	if got := rec.Operator.MCC; !got.Valid || got.Value != 222 {
		t.Errorf("MCC = %+v, want 222", got)
	}
	if got := rec.Operator.MNC; !got.Valid || got.Value != 88 {
		t.Errorf("MNC = %+v, want 88", got)
	}
	if len(rec.ServingCells) != 2 {
		t.Fatalf("len(ServingCells) = %d, want 2", len(rec.ServingCells))
	}

	lte := rec.ServingCells[0]
	if lte.Tech != telemetry.TechLTE || lte.Role != telemetry.RolePrimary {
		t.Errorf("pcell tech/role = %q/%q, want LTE/primary", lte.Tech, lte.Role)
	}
	if lte.Band != "3" {
		t.Errorf("Band = %q, want 3", lte.Band)
	}
	if !lte.Bandwidth.Valid || lte.Bandwidth.Value != 20 || lte.Bandwidth.Unit != "MHz" {
		t.Errorf("Bandwidth = %+v, want 20 MHz", lte.Bandwidth)
	}
	if !lte.Channel.Valid || lte.Channel.Value != 1650 {
		t.Errorf("Channel = %+v, want 1650", lte.Channel)
	}
	if !lte.PCI.Valid || lte.PCI.Value != 28 {
		t.Errorf("PCI = %+v, want 28", lte.PCI)
	}
	// Qualcomm identifiers arrive in decimal.
	if !lte.CellID.Valid || lte.CellID.Value != 99717653 || lte.CellID.Hex {
		t.Errorf("CellID = %+v, want decimal 99717653", lte.CellID)
	}
	if !lte.TAC.Valid || lte.TAC.Value != 56848 {
		t.Errorf("TAC = %+v, want 56848", lte.TAC)
	}
	if !lte.RSSI.Valid || lte.RSSI.Value != -65 || lte.RSSI.Unit != "dBm" {
		t.Errorf("RSSI = %+v, want -65 dBm", lte.RSSI)
	}
	if !lte.RSRP.Valid || lte.RSRP.Value != -94 {
		t.Errorf("RSRP = %+v, want -94", lte.RSRP)
	}
	if !lte.RSRQ.Valid || lte.RSRQ.Value != -10 || lte.RSRQ.Unit != "dB" {
		t.Errorf("RSRQ = %+v, want -10 dB", lte.RSRQ)
	}
	if !lte.SINR.Valid || lte.SINR.Value != 14 {
		t.Errorf("SINR = %+v, want 14", lte.SINR)
	}
	if !lte.CQI.Valid || lte.CQI.Value != 11 {
		t.Errorf("CQI = %+v, want 11", lte.CQI)
	}
	if !lte.TxPower.Valid || lte.TxPower.Value != 21 {
		t.Errorf("TxPower = %+v, want 21", lte.TxPower)
	}

	if !lte.RxBranches.Valid || lte.RxBranches.Value != 2 {
		t.Errorf("RxBranches = %+v, want 2", lte.RxBranches)
	}
	if len(lte.AntennaRSRP) != 4 {
		t.Fatalf("len(AntennaRSRP) = %d, want 4", len(lte.AntennaRSRP))
	}
	if !lte.AntennaRSRP[0].Valid || lte.AntennaRSRP[0].Value != -94 {
		t.Errorf("AntennaRSRP[0] = %+v, want -94", lte.AntennaRSRP[0])
	}
	if !lte.AntennaRSRP[1].Valid || lte.AntennaRSRP[1].Value != -97 {
		t.Errorf("AntennaRSRP[1] = %+v, want -97", lte.AntennaRSRP[1])
	}
	// NA branches stay explicitly unavailable.
	if lte.AntennaRSRP[2].Valid || lte.AntennaRSRP[3].Valid {
		t.Errorf("AntennaRSRP[2:] = %+v, want unavailable", lte.AntennaRSRP[2:])
	}

	nr := rec.ServingCells[1]
	if nr.Tech != telemetry.TechNR || nr.Role != telemetry.RoleSecondary {
		t.Errorf("nrcell tech/role = %q/%q, want NR/secondary", nr.Tech, nr.Role)
	}
	if nr.Band != "n78" {
		t.Errorf("NR Band = %q, want n78", nr.Band)
	}
	if !nr.Channel.Valid || nr.Channel.Value != 638016 {
		t.Errorf("NR Channel = %+v, want 638016", nr.Channel)
	}
	if !nr.SINR.Valid || nr.SINR.Value != 17.5 {
		t.Errorf("NR SINR = %+v, want 17.5", nr.SINR)
	}

	// Declared branch count matches the two valid values, so nothing to
	// warn about.
	if len(rec.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", rec.Warnings)
	}
}

func TestParseDebugAntennaMismatch(t *testing.T) {
	rec, err := telemetry.Parse(telemetry.RawResponse{
		Command: at.CmdDebug,
		Text: response(
			"RAT:LTE",
			"pcell:band:3,channel:1650,PCI:28,RSRP:-94dBm",
			"lte_ant_rsrp:rx_diversity:4 (-94,-97,NA,NA)",
			"OK",
		),
	})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(rec.ServingCells) != 1 {
		t.Fatalf("len(ServingCells) = %d, want 1", len(rec.ServingCells))
	}
	c := rec.ServingCells[0]
	if !c.RxBranches.Valid || c.RxBranches.Value != 4 {
		t.Errorf("RxBranches = %+v, want 4", c.RxBranches)
	}
	if len(c.AntennaRSRP) != 4 {
		t.Errorf("len(AntennaRSRP) = %d, want 4", len(c.AntennaRSRP))
	}

	found := false
	for _, w := range rec.Warnings {
		if strings.Contains(w, "antenna branch count mismatch") {
			found = true
		}
	}
	if !found {
		t.Errorf("Warnings = %v, want an antenna mismatch warning", rec.Warnings)
	}
}

func TestParseDebugUnsupportedRAT(t *testing.T) {
	_, err := telemetry.Parse(telemetry.RawResponse{
		Command: at.CmdDebug,
		Text: response(
			"RAT:GSM",
			"pcell:band:3,channel:62",
			"OK",
		),
	})

	var ratErr *telemetry.UnrecognizedRATError
	if !errors.As(err, &ratErr) {
		t.Fatalf("Parse() error = %v, want *UnrecognizedRATError", err)
	}
	if ratErr.Value != "GSM" {
		t.Errorf("Value = %q, want GSM", ratErr.Value)
	}
}

func TestParseDebugWCDMA(t *testing.T) {
	rec, err := telemetry.Parse(telemetry.RawResponse{
		Command: at.CmdDebug,
		Text: response(
			"RAT:WCDMA",
			"mcc:222,mnc:88",
			"pcell:band:1,channel:10738,LAC:24350,CellID:10597059,RSCP:-92dBm,ECIO:-5dB",
			"OK",
		),
	})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if rec.RAT != telemetry.RATWCDMA {
		t.Errorf("RAT = %q, want %q", rec.RAT, telemetry.RATWCDMA)
	}
	if len(rec.ServingCells) != 1 {
		t.Fatalf("len(ServingCells) = %d, want 1", len(rec.ServingCells))
	}
	c := rec.ServingCells[0]
	if c.Tech != telemetry.TechWCDMA {
		t.Errorf("Tech = %q, want WCDMA", c.Tech)
	}
	if !c.LAC.Valid || c.LAC.Value != 24350 {
		t.Errorf("LAC = %+v, want 24350", c.LAC)
	}
	if !c.RSCP.Valid || c.RSCP.Value != -92 {
		t.Errorf("RSCP = %+v, want -92", c.RSCP)
	}
	if !c.ECIO.Valid || c.ECIO.Value != -5 {
		t.Errorf("ECIO = %+v, want -5", c.ECIO)
	}
}

func TestParseDebugLTEOnlyUnderENDCMarker(t *testing.T) {
	// An EN-DC discriminator with no NR cell in the body reflects what
	// was actually measured: plain LTE.
	rec, err := telemetry.Parse(telemetry.RawResponse{
		Command: at.CmdDebug,
		Text: response(
			"RAT:LTE+NR",
			"pcell:band:3,channel:1650,PCI:28,RSRP:-94dBm,RSRQ:-10dB",
			"OK",
		),
	})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if rec.RAT != telemetry.RATLTE {
		t.Errorf("RAT = %q, want %q without an NR cell", rec.RAT, telemetry.RATLTE)
	}
}
