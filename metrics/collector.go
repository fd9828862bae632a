// Package metrics exposes the latest telemetry reading of every live
// session as Prometheus gauges.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Brazzo978/RemoteSignalMonitor-Mikrotik/session"
	"github.com/Brazzo978/RemoteSignalMonitor-Mikrotik/telemetry"
)

// Source yields the readings to export. *session.Store satisfies it.
type Source interface {
	Readings() []session.Reading
}

// Collector implements prometheus.Collector over the most recent
// telemetry record of each session. Only values the modem actually
// reported become samples; unavailable fields are skipped rather than
// exported as zero.
type Collector struct {
	source Source

	rsrpDesc *prometheus.Desc
	rsrqDesc *prometheus.Desc
	rssiDesc *prometheus.Desc
	sinrDesc *prometheus.Desc

	pciDesc     *prometheus.Desc
	channelDesc *prometheus.Desc
	cellIDDesc  *prometheus.Desc
	tacDesc     *prometheus.Desc

	temperatureDesc *prometheus.Desc
	neighbourDesc   *prometheus.Desc
	sessionsDesc    *prometheus.Desc
}

// NewCollector creates a collector over the given reading source.
func NewCollector(source Source) *Collector {
	cellLabels := []string{"device", "interface", "tech", "role", "band"}

	return &Collector{
		source: source,

		rsrpDesc: prometheus.NewDesc(
			"modem_signal_rsrp_dbm",
			"Reference Signal Received Power in dBm",
			cellLabels,
			nil,
		),
		rsrqDesc: prometheus.NewDesc(
			"modem_signal_rsrq_db",
			"Reference Signal Received Quality in dB",
			cellLabels,
			nil,
		),
		rssiDesc: prometheus.NewDesc(
			"modem_signal_rssi_dbm",
			"Received Signal Strength Indicator in dBm",
			cellLabels,
			nil,
		),
		sinrDesc: prometheus.NewDesc(
			"modem_signal_sinr_db",
			"Signal to Interference plus Noise Ratio as reported by the modem",
			cellLabels,
			nil,
		),

		pciDesc: prometheus.NewDesc(
			"modem_cell_pci",
			"Physical Cell ID of the serving cell",
			cellLabels,
			nil,
		),
		channelDesc: prometheus.NewDesc(
			"modem_cell_channel",
			"Serving cell channel number (EARFCN/ARFCN/UARFCN)",
			cellLabels,
			nil,
		),
		cellIDDesc: prometheus.NewDesc(
			"modem_cell_id",
			"Serving cell identifier",
			cellLabels,
			nil,
		),
		tacDesc: prometheus.NewDesc(
			"modem_cell_tac",
			"Tracking Area Code of the serving cell",
			cellLabels,
			nil,
		),

		temperatureDesc: prometheus.NewDesc(
			"modem_temperature_celsius",
			"Modem temperature sensor reading in degrees Celsius",
			[]string{"device", "interface", "sensor"},
			nil,
		),
		neighbourDesc: prometheus.NewDesc(
			"modem_neighbour_cells",
			"Number of neighbour cells the modem reported",
			[]string{"device", "interface"},
			nil,
		),
		sessionsDesc: prometheus.NewDesc(
			"modem_sessions",
			"Number of sessions with a telemetry reading",
			nil,
			nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.rsrpDesc
	ch <- c.rsrqDesc
	ch <- c.rssiDesc
	ch <- c.sinrDesc
	ch <- c.pciDesc
	ch <- c.channelDesc
	ch <- c.cellIDDesc
	ch <- c.tacDesc
	ch <- c.temperatureDesc
	ch <- c.neighbourDesc
	ch <- c.sessionsDesc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	readings := c.source.Readings()
	ch <- prometheus.MustNewConstMetric(c.sessionsDesc, prometheus.GaugeValue, float64(len(readings)))

	for _, r := range readings {
		for _, cell := range r.Record.ServingCells {
			labels := []string{r.Host, r.Interface, string(cell.Tech), string(cell.Role), cell.Band}

			emitMetric(ch, c.rsrpDesc, cell.RSRP, labels)
			emitMetric(ch, c.rsrqDesc, cell.RSRQ, labels)
			emitMetric(ch, c.rssiDesc, cell.RSSI, labels)
			emitMetric(ch, c.sinrDesc, cell.SINR, labels)

			emitInt(ch, c.pciDesc, cell.PCI, labels)
			emitInt(ch, c.channelDesc, cell.Channel, labels)
			emitIdent(ch, c.cellIDDesc, cell.CellID, labels)
			emitIdent(ch, c.tacDesc, cell.TAC, labels)
		}

		for sensor, celsius := range r.Record.Temperature {
			ch <- prometheus.MustNewConstMetric(
				c.temperatureDesc, prometheus.GaugeValue, celsius,
				r.Host, r.Interface, sensor,
			)
		}

		ch <- prometheus.MustNewConstMetric(
			c.neighbourDesc, prometheus.GaugeValue,
			float64(len(r.Record.NeighbourCells)),
			r.Host, r.Interface,
		)
	}
}

func emitMetric(ch chan<- prometheus.Metric, desc *prometheus.Desc, m telemetry.Metric, labels []string) {
	if !m.Valid {
		return
	}
	ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, m.Value, labels...)
}

func emitInt(ch chan<- prometheus.Metric, desc *prometheus.Desc, v telemetry.OptInt, labels []string) {
	if !v.Valid {
		return
	}
	ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, float64(v.Value), labels...)
}

func emitIdent(ch chan<- prometheus.Metric, desc *prometheus.Desc, id telemetry.CellIdentifier, labels []string) {
	if !id.Valid {
		return
	}
	ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, float64(id.Value), labels...)
}
