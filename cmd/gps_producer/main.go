package main

import (
	"log"

	"github.com/spf13/pflag"

	"github.com/relabs-tech/gnss_decoder/internal/app"
	"github.com/relabs-tech/gnss_decoder/internal/config"
)

func main() {
	configPath := pflag.StringP("config", "c", "gnss_config.txt", "Path to configuration file (KEY=VALUE or .yaml)")
	pflag.Parse()

	log.Println("starting gnss-decoder GPS producer (NMEA → MQTT)")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunGPSProducer(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
