// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/relabs-tech/gnss_decoder/internal/config"
	"github.com/relabs-tech/gnss_decoder/internal/geo"
	"github.com/relabs-tech/gnss_decoder/internal/metrics"
	"github.com/relabs-tech/gnss_decoder/internal/nmea"
	"github.com/relabs-tech/gnss_decoder/internal/source"
)

// Publisher sends one retained payload to a topic.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

type mqttPublisher struct {
	client mqtt.Client
}

func (p mqttPublisher) Publish(topic string, payload []byte) error {
	token := p.client.Publish(topic, 0, true, payload)
	token.Wait()
	return token.Error()
}

// stateSentences trigger a state publish when decoded without error.
// The other sentences only update the state carried by the next one.
var stateSentences = map[nmea.SentenceType]bool{
	nmea.TypeGGA:    true,
	nmea.TypeRMC:    true,
	nmea.TypeGLL:    true,
	nmea.TypeSTI030: true,
}

// ProducerConfig wires a Producer to its topics.
type ProducerConfig struct {
	Decoder         nmea.Options
	StateTopic      string
	SatellitesTopic string
	Home            *geo.Point    // optional
	Interval        time.Duration // pause between lines, 0 for none
}

// Producer owns a decoder and publishes its snapshots.
// It is driven from a single goroutine.
type Producer struct {
	cfg       ProducerConfig
	decoder   *nmea.Decoder
	pub       Publisher
	metrics   *metrics.Metrics
	session   string
	seq       uint64
	lastEpoch uint64
	lastType  nmea.SentenceType
}

type typeRecorder struct {
	p    *Producer
	next nmea.Observer
}

func (r typeRecorder) ObserveSentence(t nmea.SentenceType, err error) {
	r.p.lastType = t
	if r.next != nil {
		r.next.ObserveSentence(t, err)
	}
}

// NewProducer returns a Producer with a fresh session id. m may be nil.
func NewProducer(cfg ProducerConfig, pub Publisher, m *metrics.Metrics) *Producer {
	p := &Producer{
		cfg:     cfg,
		pub:     pub,
		metrics: m,
		session: uuid.NewString(),
	}
	var next nmea.Observer
	if m != nil {
		next = m
	}
	cfg.Decoder.Observer = typeRecorder{p: p, next: next}
	p.decoder = nmea.NewDecoder(cfg.Decoder)
	return p
}

// Session identifies this producer run in every published message.
func (p *Producer) Session() string { return p.session }

// HandleLine decodes one line and publishes whatever it completed.
// Decode errors are logged and swallowed; only publish failures are
// returned.
func (p *Producer) HandleLine(line string) error {
	err := p.decoder.Decode(line)
	switch {
	case errors.Is(err, nmea.ErrDecodeFailure):
		log.Printf("gps producer: %v (line: %q)", err, line)
		return nil
	case err != nil:
		// noisy receivers send partial lines; counted in metrics only
		return nil
	}

	if epoch := p.decoder.SatelliteEpoch(); epoch != p.lastEpoch {
		p.lastEpoch = epoch
		if err := p.publishSatellites(epoch); err != nil {
			return err
		}
	}
	if stateSentences[p.lastType] {
		return p.publishState()
	}
	return nil
}

func (p *Producer) publishState() error {
	s := p.decoder.State()
	p.seq++
	msg := StateMessage{Session: p.session, Seq: p.seq, State: s}

	if pt, ok := geo.PointFromState(s); ok && p.cfg.Home != nil {
		v, err := geo.Between(*p.cfg.Home, pt)
		if err != nil {
			log.Printf("gps producer: home vector: %v", err)
		} else {
			msg.Home = &v
			if p.metrics != nil {
				p.metrics.ObserveHomeDistance(v.DistanceM)
			}
		}
	}
	if p.metrics != nil {
		p.metrics.ObserveState(s)
	}
	return p.publish(p.cfg.StateTopic, msg)
}

func (p *Producer) publishSatellites(epoch uint64) error {
	msg := SatellitesMessage{
		Session:    p.session,
		Epoch:      epoch,
		Satellites: p.decoder.State().Satellites,
	}
	return p.publish(p.cfg.SatellitesTopic, msg)
}

func (p *Producer) publish(topic string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("gps producer: marshal %s: %w", topic, err)
	}
	err = p.pub.Publish(topic, payload)
	if p.metrics != nil {
		p.metrics.Published(topic, err)
	}
	if err != nil {
		return fmt.Errorf("gps producer: publish %s: %w", topic, err)
	}
	return nil
}

// Run reads src until it is exhausted or ctx is cancelled.
// Publish errors are logged and do not stop the loop.
func (p *Producer) Run(ctx context.Context, src source.Source) error {
	var tick <-chan time.Time
	if p.cfg.Interval > 0 {
		t := time.NewTicker(p.cfg.Interval)
		defer t.Stop()
		tick = t.C
	}

	for {
		if tick != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-tick:
			}
		} else if ctx.Err() != nil {
			return nil
		}

		line, err := src.Next()
		if errors.Is(err, io.EOF) {
			log.Println("gps producer: source exhausted")
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("gps producer: read: %w", err)
		}
		if err := p.HandleLine(line); err != nil {
			log.Printf("%v", err)
		}
	}
}

// openSource picks the GPS input named by GPS_SOURCE.
func openSource(cfg *config.Config) (source.Source, time.Duration, error) {
	switch cfg.GPSSource {
	case config.SourceFile:
		src, err := source.OpenFile(cfg.GPSReplayFile)
		return src, time.Duration(cfg.MockInterval) * time.Millisecond, err
	case config.SourceMock:
		return source.NewMockSource(source.DefaultMockConfig()), time.Duration(cfg.MockInterval) * time.Millisecond, nil
	default:
		src, err := source.OpenSerial(source.SerialConfig{Port: cfg.GPSSerialPort, BaudRate: uint(cfg.GPSBaudRate)})
		return src, 0, err
	}
}

// RunGPSProducer reads NMEA from the configured source, decodes it and
// publishes state and satellites snapshots as JSON to MQTT.
func RunGPSProducer() error {
	cfg := config.Get()
	if cfg == nil {
		return fmt.Errorf("config not loaded")
	}

	// ---- 1) Connect to MQTT broker ----
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDGPS)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Printf("gps producer: connected to MQTT broker at %s", cfg.MQTTBroker)

	// ---- 2) Open GPS source ----
	src, interval, err := openSource(cfg)
	if err != nil {
		return err
	}
	defer src.Close()
	log.Printf("gps producer: reading %s source", cfg.GPSSource)

	// ---- 3) Metrics ----
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)
	if cfg.MetricsPort > 0 {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(reg))
		addr := fmt.Sprintf(":%d", cfg.MetricsPort)
		go func() {
			log.Printf("gps producer: metrics on %s/metrics", addr)
			if err := http.ListenAndServe(addr, mux); err != nil {
				log.Printf("gps producer: metrics server: %v", err)
			}
		}()
	}

	pc := ProducerConfig{
		Decoder:         cfg.DecoderOptions(),
		StateTopic:      cfg.TopicGPSState,
		SatellitesTopic: cfg.TopicGPSSatellites,
		Interval:        interval,
	}
	home, ok, err := cfg.Home()
	if err != nil {
		return err
	}
	if ok {
		pc.Home = &home
	}
	p := NewProducer(pc, mqttPublisher{client: client}, m)
	log.Printf("gps producer: session %s", p.Session())

	// ---- 4) Decode until Ctrl+C ----
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		// unblocks a serial read
		src.Close()
	}()

	err = p.Run(ctx, src)
	log.Println("gps producer: shutting down")
	return err
}
