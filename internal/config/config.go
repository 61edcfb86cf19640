// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/relabs-tech/gnss_decoder/internal/geo"
	"github.com/relabs-tech/gnss_decoder/internal/nmea"
)

// Source kinds for GPS_SOURCE.
const (
	SourceSerial = "serial"
	SourceFile   = "file"
	SourceMock   = "mock"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker          string
	MQTTClientIDGPS     string
	MQTTClientIDConsole string
	MQTTClientIDWeb     string

	// Topics
	TopicGPSState      string
	TopicGPSSatellites string

	// GPS input
	GPSSource     string // "serial", "file" or "mock"
	GPSSerialPort string
	GPSBaudRate   int
	GPSReplayFile string // plain or .gz NMEA log

	// Decoder
	NMEAUnits         string // "raw" or "human"
	NMEACoordinates   string // "decimal" or "raw"
	NMEAChecksum      bool
	NMEADecimalPlaces int

	// Home point for distance and bearing, decimal degrees. Optional.
	HomeLat string
	HomeLon string

	// Timing
	MockInterval       int // milliseconds between mock or replayed sentences
	ConsoleLogInterval int // milliseconds

	// Servers
	WebServerPort int
	MetricsPort   int // 0 disables /metrics
}

// Package-level unexported variables for singleton pattern:
//   - globalConfig: only reachable through Get().
//   - configOnce: ensures InitGlobal() only runs once, even if called multiple times.
//   - configMu: write lock for initialization, read lock for Get().
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns a Config with every optional value filled in.
func Default() *Config {
	return &Config{
		MQTTClientIDGPS:     "gnss-gps-producer",
		MQTTClientIDConsole: "gnss-console",
		MQTTClientIDWeb:     "gnss-web",
		TopicGPSState:       "gnss/state",
		TopicGPSSatellites:  "gnss/satellites",
		GPSSource:           SourceSerial,
		GPSBaudRate:         9600,
		NMEAUnits:           "raw",
		NMEACoordinates:     "decimal",
		NMEAChecksum:        true,
		NMEADecimalPlaces:   10,
		MockInterval:        200,
		ConsoleLogInterval:  1000,
		WebServerPort:       8080,
		MetricsPort:         9100,
	}
}

// Load reads the configuration file and returns a Config struct.
// Files ending in .yaml or .yml hold a mapping of the same keys; anything
// else is read as KEY=VALUE lines.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := Default()
	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yaml", ".yml":
		err = cfg.loadYAML(file)
	default:
		err = cfg.loadKeyValue(file)
	}
	if err != nil {
		return nil, err
	}

	// Validate required fields
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadKeyValue(file *os.File) error {
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		if err := c.setValue(strings.TrimSpace(key), strings.TrimSpace(value)); err != nil {
			return fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

func (c *Config) loadYAML(file *os.File) error {
	var doc yaml.Node
	if err := yaml.NewDecoder(file).Decode(&doc); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("config: expected a mapping at line %d", root.Line)
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		k, v := root.Content[i], root.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return fmt.Errorf("config line %d: %q must be a scalar", v.Line, k.Value)
		}
		if err := c.setValue(strings.ToUpper(k.Value), v.Value); err != nil {
			return fmt.Errorf("config line %d: %w", k.Line, err)
		}
	}
	return nil
}

func parseInt(key, value string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return v, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	var err error
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_GPS":
		c.MQTTClientIDGPS = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value

	// Topics
	case "TOPIC_GPS_STATE":
		c.TopicGPSState = value
	case "TOPIC_GPS_SATELLITES":
		c.TopicGPSSatellites = value

	// GPS input
	case "GPS_SOURCE":
		c.GPSSource = strings.ToLower(value)
	case "GPS_SERIAL_PORT":
		c.GPSSerialPort = value
	case "GPS_BAUD_RATE":
		c.GPSBaudRate, err = parseInt(key, value)
	case "GPS_REPLAY_FILE":
		c.GPSReplayFile = value

	// Decoder
	case "NMEA_UNITS":
		c.NMEAUnits = strings.ToLower(value)
	case "NMEA_COORDINATES":
		c.NMEACoordinates = strings.ToLower(value)
	case "NMEA_CHECKSUM":
		c.NMEAChecksum, err = strconv.ParseBool(value)
		if err != nil {
			err = fmt.Errorf("invalid NMEA_CHECKSUM %q: %w", value, err)
		}
	case "NMEA_DECIMAL_PLACES":
		c.NMEADecimalPlaces, err = parseInt(key, value)

	// Home point
	case "HOME_LAT":
		c.HomeLat = value
	case "HOME_LON":
		c.HomeLon = value

	// Timing
	case "MOCK_INTERVAL":
		c.MockInterval, err = parseInt(key, value)
	case "CONSOLE_LOG_INTERVAL":
		c.ConsoleLogInterval, err = parseInt(key, value)

	// Servers
	case "WEB_SERVER_PORT":
		c.WebServerPort, err = parseInt(key, value)
	case "METRICS_PORT":
		c.MetricsPort, err = parseInt(key, value)

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return err
}

// validate checks that all required fields are set and consistent.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	switch c.GPSSource {
	case SourceSerial:
		if c.GPSSerialPort == "" {
			return fmt.Errorf("GPS_SERIAL_PORT is required")
		}
		if c.GPSBaudRate <= 0 {
			return fmt.Errorf("GPS_BAUD_RATE is required")
		}
	case SourceFile:
		if c.GPSReplayFile == "" {
			return fmt.Errorf("GPS_REPLAY_FILE is required when GPS_SOURCE=file")
		}
	case SourceMock:
	default:
		return fmt.Errorf("GPS_SOURCE must be serial, file or mock, got %q", c.GPSSource)
	}
	if c.NMEAUnits != "raw" && c.NMEAUnits != "human" {
		return fmt.Errorf("NMEA_UNITS must be raw or human, got %q", c.NMEAUnits)
	}
	if c.NMEACoordinates != "decimal" && c.NMEACoordinates != "raw" {
		return fmt.Errorf("NMEA_COORDINATES must be decimal or raw, got %q", c.NMEACoordinates)
	}
	if c.NMEADecimalPlaces < 1 || c.NMEADecimalPlaces > 30 {
		return fmt.Errorf("NMEA_DECIMAL_PLACES must be in 1..30, got %d", c.NMEADecimalPlaces)
	}
	if (c.HomeLat == "") != (c.HomeLon == "") {
		return fmt.Errorf("HOME_LAT and HOME_LON must be set together")
	}
	if _, _, err := c.Home(); err != nil {
		return err
	}
	if c.MockInterval <= 0 {
		return fmt.Errorf("MOCK_INTERVAL must be positive")
	}
	if c.ConsoleLogInterval <= 0 {
		return fmt.Errorf("CONSOLE_LOG_INTERVAL must be positive")
	}
	return nil
}

// DecoderOptions converts the NMEA_* keys into decoder options.
func (c *Config) DecoderOptions() nmea.Options {
	opts := nmea.Options{
		SkipChecksum: !c.NMEAChecksum,
		Places:       c.NMEADecimalPlaces,
	}
	if c.NMEAUnits == "human" {
		opts.Units = nmea.UnitsHuman
	}
	if c.NMEACoordinates == "raw" {
		opts.Coordinates = nmea.CoordRaw
	}
	return opts
}

// Home returns the configured home point; ok is false when none is set.
func (c *Config) Home() (p geo.Point, ok bool, err error) {
	if c.HomeLat == "" || c.HomeLon == "" {
		return geo.Point{}, false, nil
	}
	p, err = geo.ParsePoint(c.HomeLat, c.HomeLon)
	if err != nil {
		return geo.Point{}, false, fmt.Errorf("invalid HOME_LAT/HOME_LON: %w", err)
	}
	return p, true, nil
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
