package monitor_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/Brazzo978/RemoteSignalMonitor-Mikrotik/at"
	"github.com/Brazzo978/RemoteSignalMonitor-Mikrotik/monitor"
	"github.com/Brazzo978/RemoteSignalMonitor-Mikrotik/session"
	"github.com/Brazzo978/RemoteSignalMonitor-Mikrotik/telemetry"
)

func response(lines ...string) string {
	return strings.Join(lines, "\r\n") + "\r\n"
}

func TestPollMergesFullSnapshot(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := session.NewMockRunner(ctrl)

	runner.EXPECT().Run(gomock.Any(), at.CmdServingCell).Return(response(
		`+QENG: "servingcell","NOCONN","LTE","FDD",222,88,5F19215,28,1650,3,5,5,DE10,-94,-10,-65,14,11,-,40`,
		"OK",
	), nil)
	runner.EXPECT().Run(gomock.Any(), at.CmdCAInfo).Return(response(
		`+QCAINFO: "PCC",1650,100,"LTE BAND 3",1,28,-94,-10,-65,14`,
		`+QCAINFO: "SCC",638016,12,"NR5G BAND 78",2,44`,
		"OK",
	), nil)
	runner.EXPECT().Run(gomock.Any(), at.CmdNeighbourCell).Return(response(
		`+QENG: "neighbourcell intra","LTE",1650,27,-11,-95,-66,13,38`,
		"OK",
	), nil)
	runner.EXPECT().Run(gomock.Any(), at.CmdTemperature).Return(response(
		`+QTEMP:"qfe_wtr_pa0","39"`,
		"OK",
	), nil)
	runner.EXPECT().Run(gomock.Any(), at.CmdEPSRegistration).Return(response(
		`+CEREG: 0,1,"DE10","5F19215",7`,
		"OK",
	), nil)
	runner.EXPECT().Run(gomock.Any(), at.CmdIdentify).Return(response(
		"Quectel",
		"RG502Q-EA",
		"Revision: RG502QEAAAR11A06M4G",
		"OK",
	), nil)
	runner.EXPECT().Run(gomock.Any(), at.CmdICCID).Return(response(
		"+QCCID: 8939104201234567890F",
		"OK",
	), nil)
	runner.EXPECT().Run(gomock.Any(), at.CmdPinStatus).Return(response(
		"+CPIN: READY",
		"OK",
	), nil)

	rec, err := monitor.New(runner, nil).Poll(context.Background())
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}

	// The serving cell plus the NR secondary carrier from QCAINFO.
	if len(rec.ServingCells) != 2 {
		t.Fatalf("len(ServingCells) = %d, want 2", len(rec.ServingCells))
	}
	if rec.RAT != telemetry.RATLTENRNSA {
		t.Errorf("RAT = %q, want %q after NR carrier merge", rec.RAT, telemetry.RATLTENRNSA)
	}
	if rec.ServingCells[1].Band != "n78" {
		t.Errorf("merged carrier band = %q, want n78", rec.ServingCells[1].Band)
	}
	if len(rec.NeighbourCells) != 1 {
		t.Errorf("len(NeighbourCells) = %d, want 1", len(rec.NeighbourCells))
	}
	if rec.Temperature["qfe_wtr_pa0"] != 39 {
		t.Errorf("Temperature = %v, want qfe_wtr_pa0=39", rec.Temperature)
	}
	if rec.Registration == nil || rec.Registration.Domain != "eps" {
		t.Errorf("Registration = %+v, want eps", rec.Registration)
	}
	if rec.Identity == nil || rec.Identity.Manufacturer != "Quectel" {
		t.Errorf("Identity = %+v, want Quectel", rec.Identity)
	}
	if rec.Identity.ICCID != "8939104201234567890F" {
		t.Errorf("ICCID = %q, want 8939104201234567890F", rec.Identity.ICCID)
	}
	if rec.SIMStatus != "READY" {
		t.Errorf("SIMStatus = %q, want READY", rec.SIMStatus)
	}
	if len(rec.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", rec.Warnings)
	}
}

func TestPollFallsBackToDebugDump(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := session.NewMockRunner(ctrl)

	runner.EXPECT().Run(gomock.Any(), at.CmdServingCell).Return(response("ERROR"), nil)
	runner.EXPECT().Run(gomock.Any(), at.CmdDebug).Return(response(
		"RAT:LTE",
		"mcc:222,mnc:88",
		"pcell:band:3,bw:20.0MHz,channel:1650,PCI:28,RSRP:-94dBm,RSRQ:-10dB",
		"OK",
	), nil)
	// Every supplementary read is rejected by this firmware.
	for _, cmd := range []string{
		at.CmdCAInfo, at.CmdNeighbourCell, at.CmdTemperature,
		at.CmdEPSRegistration, at.CmdIdentify, at.CmdICCID, at.CmdPinStatus,
	} {
		runner.EXPECT().Run(gomock.Any(), cmd).Return(response("ERROR"), nil)
	}

	rec, err := monitor.New(runner, nil).Poll(context.Background())
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}

	if rec.RAT != telemetry.RATLTE {
		t.Errorf("RAT = %q, want LTE from the debug dump", rec.RAT)
	}
	if len(rec.ServingCells) != 1 {
		t.Errorf("len(ServingCells) = %d, want 1", len(rec.ServingCells))
	}
	if len(rec.Warnings) == 0 {
		t.Error("Warnings empty, want one per failed supplementary command")
	}
}

func TestPollNoRadioSnapshot(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := session.NewMockRunner(ctrl)

	runner.EXPECT().Run(gomock.Any(), at.CmdServingCell).Return(response("ERROR"), nil)
	runner.EXPECT().Run(gomock.Any(), at.CmdDebug).Return(response("ERROR"), nil)
	runner.EXPECT().Run(gomock.Any(), at.CmdSignalQuality).Return(response("ERROR"), nil)

	if _, err := monitor.New(runner, nil).Poll(context.Background()); err == nil {
		t.Fatal("Poll() expected error when no radio read succeeds")
	}
}

func TestPollReportsNoService(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := session.NewMockRunner(ctrl)

	runner.EXPECT().Run(gomock.Any(), at.CmdServingCell).Return(response(
		`+QENG: "servingcell","SEARCH"`,
		"OK",
	), nil)

	_, err := monitor.New(runner, nil).Poll(context.Background())
	if !errors.Is(err, telemetry.ErrNoService) {
		t.Fatalf("Poll() error = %v, want ErrNoService", err)
	}
}

func TestPollRunnerFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := session.NewMockRunner(ctrl)

	transportErr := errors.New("broken pipe")
	runner.EXPECT().Run(gomock.Any(), at.CmdServingCell).Return("", transportErr)
	runner.EXPECT().Run(gomock.Any(), at.CmdDebug).Return("", transportErr)
	runner.EXPECT().Run(gomock.Any(), at.CmdSignalQuality).Return("", transportErr)

	_, err := monitor.New(runner, nil).Poll(context.Background())
	if !errors.Is(err, transportErr) {
		t.Fatalf("Poll() error = %v, want wrapped transport error", err)
	}
}
