// Package monitor drives the telemetry poll cycle: it issues the
// documented AT command set over a session.Runner and merges the
// per-command parse results into one TelemetryRecord.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Brazzo978/RemoteSignalMonitor-Mikrotik/at"
	"github.com/Brazzo978/RemoteSignalMonitor-Mikrotik/session"
	"github.com/Brazzo978/RemoteSignalMonitor-Mikrotik/telemetry"
)

// Poller reads one full telemetry snapshot from a modem. It is
// stateless between polls; every Poll produces an independent record.
type Poller struct {
	runner session.Runner
	logger *slog.Logger
}

// New creates a poller over the given runner.
func New(runner session.Runner, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		runner: runner,
		logger: logger.With("component", "poller"),
	}
}

// Poll assembles a merged telemetry record. The radio snapshot (serving
// cells) is mandatory and its failure fails the poll; every supplementary
// read degrades to a warning on the record instead.
func (p *Poller) Poll(ctx context.Context) (*telemetry.TelemetryRecord, error) {
	rec, err := p.radioSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	p.mergeCarriers(ctx, rec)
	p.mergeNeighbours(ctx, rec)
	p.mergeTemperature(ctx, rec)
	p.mergeRegistration(ctx, rec)
	p.mergeIdentity(ctx, rec)
	return rec, nil
}

// command issues one AT command and parses its response.
func (p *Poller) command(ctx context.Context, cmd string) (*telemetry.TelemetryRecord, error) {
	text, err := p.runner.Run(ctx, cmd)
	if err != nil {
		return nil, fmt.Errorf("run %q: %w", cmd, err)
	}
	return telemetry.Parse(telemetry.RawResponse{Command: cmd, Text: text})
}

// radioSnapshot obtains the serving cell picture. Quectel modems answer
// the QENG query; Qualcomm firmwares that reject it get the debug dump;
// the quick signal read is the last resort.
func (p *Poller) radioSnapshot(ctx context.Context) (*telemetry.TelemetryRecord, error) {
	rec, err := p.command(ctx, at.CmdServingCell)
	if err == nil {
		return rec, nil
	}
	if errors.Is(err, telemetry.ErrNoService) {
		return nil, err
	}
	p.logger.Debug("serving cell query failed, trying debug dump", "error", err)

	if rec, derr := p.command(ctx, at.CmdDebug); derr == nil {
		return rec, nil
	}
	if rec, qerr := p.command(ctx, at.CmdSignalQuality); qerr == nil {
		return rec, nil
	}
	return nil, fmt.Errorf("no radio snapshot available: %w", err)
}

// mergeCarriers folds QCAINFO secondary carriers into the record. A
// modem with carrier aggregation idle reports nothing, which is not a
// fault.
func (p *Poller) mergeCarriers(ctx context.Context, rec *telemetry.TelemetryRecord) {
	ca, err := p.command(ctx, at.CmdCAInfo)
	if err != nil {
		p.note(rec, at.CmdCAInfo, err)
		return
	}

	for _, c := range ca.ServingCells {
		if c.Role != telemetry.RoleSecondary {
			continue // the primary carrier is already in the record
		}
		rec.ServingCells = append(rec.ServingCells, c)
		if rec.RAT == telemetry.RATLTE && c.Tech == telemetry.TechNR {
			// An NR secondary carrier upgrades an LTE anchor to EN-DC.
			rec.RAT = telemetry.RATLTENRNSA
		}
	}
	rec.Warnings = append(rec.Warnings, ca.Warnings...)
}

func (p *Poller) mergeNeighbours(ctx context.Context, rec *telemetry.TelemetryRecord) {
	nb, err := p.command(ctx, at.CmdNeighbourCell)
	if err != nil {
		p.note(rec, at.CmdNeighbourCell, err)
		return
	}
	rec.NeighbourCells = nb.NeighbourCells
	rec.Warnings = append(rec.Warnings, nb.Warnings...)
}

func (p *Poller) mergeTemperature(ctx context.Context, rec *telemetry.TelemetryRecord) {
	tm, err := p.command(ctx, at.CmdTemperature)
	if err != nil {
		p.note(rec, at.CmdTemperature, err)
		return
	}
	rec.Temperature = tm.Temperature
	rec.Warnings = append(rec.Warnings, tm.Warnings...)
}

func (p *Poller) mergeRegistration(ctx context.Context, rec *telemetry.TelemetryRecord) {
	reg, err := p.command(ctx, at.CmdEPSRegistration)
	if err != nil {
		p.note(rec, at.CmdEPSRegistration, err)
		return
	}
	rec.Registration = reg.Registration
	rec.Warnings = append(rec.Warnings, reg.Warnings...)
}

// mergeIdentity gathers the identification commands (ATI, ICCID, SIM
// status) into the record.
func (p *Poller) mergeIdentity(ctx context.Context, rec *telemetry.TelemetryRecord) {
	if id, err := p.command(ctx, at.CmdIdentify); err != nil {
		p.note(rec, at.CmdIdentify, err)
	} else if id.Identity != nil {
		rec.Identity = id.Identity
	}

	if id, err := p.command(ctx, at.CmdICCID); err != nil {
		p.note(rec, at.CmdICCID, err)
	} else if id.Identity != nil && id.Identity.ICCID != "" {
		if rec.Identity == nil {
			rec.Identity = &telemetry.Identity{}
		}
		rec.Identity.ICCID = id.Identity.ICCID
	}

	if pin, err := p.command(ctx, at.CmdPinStatus); err != nil {
		p.note(rec, at.CmdPinStatus, err)
	} else {
		rec.SIMStatus = pin.SIMStatus
	}
}

// note records a supplementary command failure as a warning. An empty
// result set is a normal reading, not a fault.
func (p *Poller) note(rec *telemetry.TelemetryRecord, cmd string, err error) {
	if errors.Is(err, telemetry.ErrNoUsableCells) {
		return
	}
	p.logger.Debug("supplementary command failed", "command", cmd, "error", err)
	rec.Warnings = append(rec.Warnings, fmt.Sprintf("%s: %v", cmd, err))
}
