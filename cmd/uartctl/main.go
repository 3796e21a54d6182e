package main

import (
	"flag"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/uartctl/internal/config"
	"github.com/danmuck/uartctl/internal/logging"
	"github.com/danmuck/uartctl/internal/logsink"
	"github.com/danmuck/uartctl/internal/payload"
	"github.com/danmuck/uartctl/internal/protocol"
	"github.com/danmuck/uartctl/internal/session"
)

const defaultPrefsPath = "cmd/uartctl/prefs.toml"

func main() {
	var configPath string
	var prefsPath string
	flag.StringVar(&configPath, "config", "uartctl.toml", "runtime config file (TOML)")
	flag.StringVar(&prefsPath, "prefs", defaultPrefsPath, "persisted UI preferences file (TOML)")
	flag.Parse()

	logging.ConfigureRuntime()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Error().Err(err).Msg("uartctl startup failed")
		os.Exit(1)
	}

	sink := logsink.Open(logsink.Config{
		Path:       cfg.Log.Path,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	defer sink.Close()

	codec := protocol.Codec{
		StartMarker: cfg.Protocol.StartMarker,
		EndMarker:   cfg.Protocol.EndMarker,
	}
	injector := protocol.NewInjector(codec, nil,
		protocol.WithDeltaBounds(cfg.Protocol.DeltaMin, cfg.Protocol.DeltaMax),
		protocol.WithOversizeTarget(cfg.Protocol.OversizeTarget),
	)
	sess := session.New(
		session.Config{MaxPayloadBytes: cfg.Protocol.MaxPayload},
		codec, injector, sink, log.Logger,
	)

	app := NewApp(cfg, prefsPath, sess, payload.JSONProducer{})
	if err := app.Run(); err != nil {
		log.Error().Err(err).Msg("uartctl exited with error")
		os.Exit(1)
	}
}
