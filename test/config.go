package test

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// TEST_RECEIVE_TIMEOUT bounds how long a scenario waits for one frame
	ReceiveTimeout time.Duration `envconfig:"TEST_RECEIVE_TIMEOUT" default:"2s"`
	// TEST_DEBUG_FRAMES dumps every received frame for scenario debugging
	DebugFrames bool `envconfig:"TEST_DEBUG_FRAMES" default:"false"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
