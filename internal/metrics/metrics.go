// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package metrics exports decoder and producer counters to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/relabs-tech/gnss_decoder/internal/gps"
	"github.com/relabs-tech/gnss_decoder/internal/nmea"
)

// Metrics holds the GNSS collectors. It implements nmea.Observer.
type Metrics struct {
	sentences      *prometheus.CounterVec // by sentence type and outcome
	satsInView     *prometheus.GaugeVec   // by talker, last complete GSV report
	satsUsed       prometheus.Gauge
	hdop           prometheus.Gauge
	homeDistance   prometheus.Gauge
	published      *prometheus.CounterVec // MQTT messages by topic
	publishErrors  *prometheus.CounterVec
	lastPositionTS prometheus.Gauge
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		sentences: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gnss_sentences_total",
			Help: "NMEA sentences handed to the decoder, by type and outcome",
		}, []string{"type", "outcome"}),
		satsInView: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gnss_satellites_in_view",
			Help: "Satellites in the last complete GSV report, by talker",
		}, []string{"talker"}),
		satsUsed: f.NewGauge(prometheus.GaugeOpts{
			Name: "gnss_satellites_used",
			Help: "Satellites used in the fix (GGA)",
		}),
		hdop: f.NewGauge(prometheus.GaugeOpts{
			Name: "gnss_hdop",
			Help: "Horizontal dilution of precision",
		}),
		homeDistance: f.NewGauge(prometheus.GaugeOpts{
			Name: "gnss_home_distance_meters",
			Help: "Distance from the configured home point",
		}),
		published: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gnss_mqtt_published_total",
			Help: "Messages published to MQTT, by topic",
		}, []string{"topic"}),
		publishErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gnss_mqtt_publish_errors_total",
			Help: "Failed MQTT publishes, by topic",
		}, []string{"topic"}),
		lastPositionTS: f.NewGauge(prometheus.GaugeOpts{
			Name: "gnss_last_position_timestamp_seconds",
			Help: "Unix time a position was last decoded",
		}),
	}
}

var _ nmea.Observer = (*Metrics)(nil)

func (m *Metrics) ObserveSentence(t nmea.SentenceType, err error) {
	m.sentences.WithLabelValues(t.String(), nmea.Outcome(err)).Inc()
}

// ObserveState updates the gauges from a decoded snapshot.
func (m *Metrics) ObserveState(s gps.State) {
	for talker, view := range s.Satellites {
		m.satsInView.WithLabelValues(talker).Set(float64(view.InView))
	}
	if s.SatellitesUsed != nil {
		m.satsUsed.Set(float64(*s.SatellitesUsed))
	}
	if s.HDOP != nil {
		m.hdop.Set(*s.HDOP)
	}
	if s.HasPosition() {
		m.lastPositionTS.Set(float64(time.Now().Unix()))
	}
}

func (m *Metrics) ObserveHomeDistance(meters float64) {
	m.homeDistance.Set(meters)
}

func (m *Metrics) Published(topic string, err error) {
	if err != nil {
		m.publishErrors.WithLabelValues(topic).Inc()
		return
	}
	m.published.WithLabelValues(topic).Inc()
}

// Handler serves the metrics gathered by g in the text exposition format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
