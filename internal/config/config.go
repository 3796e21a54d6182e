package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config is the explicit runtime configuration handed to the session
// driver at construction; there are no package-level tunables.
type Config struct {
	Serial   SerialConfig   `toml:"serial"`
	Protocol ProtocolConfig `toml:"protocol"`
	Log      LogConfig      `toml:"log"`
	Status   StatusConfig   `toml:"status"`
}

type SerialConfig struct {
	BaudRate      int   `toml:"baud_rate"`
	ReadTimeoutMS int64 `toml:"read_timeout_ms"`
}

type ProtocolConfig struct {
	StartMarker    byte `toml:"start_marker"`
	EndMarker      byte `toml:"end_marker"`
	MaxPayload     int  `toml:"max_payload"`
	DeltaMin       int  `toml:"delta_min"`
	DeltaMax       int  `toml:"delta_max"`
	OversizeTarget int  `toml:"oversize_target"`
}

type LogConfig struct {
	Path       string `toml:"path"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

// StatusConfig controls the optional HTTP sidecar; an empty addr keeps it
// off.
type StatusConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the wire-contract constants the embedded receiver is
// built against.
func Default() Config {
	return Config{
		Serial: SerialConfig{
			BaudRate:      115200,
			ReadTimeoutMS: 1000,
		},
		Protocol: ProtocolConfig{
			StartMarker:    0x02,
			EndMarker:      0x03,
			MaxPayload:     128,
			DeltaMin:       -3,
			DeltaMax:       7,
			OversizeTarget: 600,
		},
		Log: LogConfig{
			Path:       "log.txt",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// Load overlays the file at path on the defaults. A missing file is not
// an error: the defaults alone match the wire contract.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if cfg.Serial.BaudRate <= 0 {
		return fmt.Errorf("config: baud_rate must be positive, got %d", cfg.Serial.BaudRate)
	}
	if cfg.Serial.ReadTimeoutMS < 0 {
		return fmt.Errorf("config: read_timeout_ms must not be negative, got %d", cfg.Serial.ReadTimeoutMS)
	}
	if cfg.Protocol.StartMarker == cfg.Protocol.EndMarker {
		return fmt.Errorf("config: start and end markers must differ, both 0x%02X", cfg.Protocol.StartMarker)
	}
	if cfg.Protocol.MaxPayload <= 0 || cfg.Protocol.MaxPayload > 65535 {
		return fmt.Errorf("config: max_payload must be in [1,65535], got %d", cfg.Protocol.MaxPayload)
	}
	if cfg.Protocol.DeltaMin > cfg.Protocol.DeltaMax {
		return fmt.Errorf("config: delta_min %d exceeds delta_max %d", cfg.Protocol.DeltaMin, cfg.Protocol.DeltaMax)
	}
	if cfg.Protocol.OversizeTarget <= cfg.Protocol.MaxPayload {
		return fmt.Errorf("config: oversize_target %d must exceed max_payload %d",
			cfg.Protocol.OversizeTarget, cfg.Protocol.MaxPayload)
	}
	if cfg.Protocol.OversizeTarget > 65535 {
		return fmt.Errorf("config: oversize_target must fit in 16 bits, got %d", cfg.Protocol.OversizeTarget)
	}
	if cfg.Log.Path == "" {
		return fmt.Errorf("config: log path must not be empty")
	}
	return nil
}

// ReadTimeout converts the serial read timeout to a duration.
func (c SerialConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutMS) * time.Millisecond
}
