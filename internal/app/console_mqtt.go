package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/gnss_decoder/internal/config"
)

// throttle lets one event through per interval.
type throttle struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

func (t *throttle) allow(now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.last.IsZero() && now.Sub(t.last) < t.interval {
		return false
	}
	t.last = now
	return true
}

func RunConsoleMQTT() error {
	cfg := config.Get()
	if cfg == nil {
		return fmt.Errorf("config not loaded")
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	// Subscribe to state, at most one line per CONSOLE_LOG_INTERVAL
	limit := &throttle{interval: time.Duration(cfg.ConsoleLogInterval) * time.Millisecond}
	stateToken := client.Subscribe(cfg.TopicGPSState, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var m StateMessage
		if err := json.Unmarshal(msg.Payload(), &m); err != nil {
			log.Printf("console: state unmarshal error: %v", err)
			return
		}
		if !limit.allow(time.Now()) {
			return
		}
		fmt.Println(stateSummary(m.State, m.Home))
	})
	stateToken.Wait()
	if stateToken.Error() != nil {
		return stateToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicGPSState)

	// Subscribe to satellites in view
	satsToken := client.Subscribe(cfg.TopicGPSSatellites, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var m SatellitesMessage
		if err := json.Unmarshal(msg.Payload(), &m); err != nil {
			log.Printf("console: satellites unmarshal error: %v", err)
			return
		}
		fmt.Println(satellitesSummary(m.Satellites))
	})
	satsToken.Wait()
	if satsToken.Error() != nil {
		return satsToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicGPSSatellites)

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
