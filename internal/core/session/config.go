package session

import (
	"time"

	"swifthub/internal/platform/config"
)

// Config carries the session knobs
type Config struct {
	StartupDelay   time.Duration
	AuthFile       string
	BannersEnabled bool
}

// LoadConfig reads SESSION_STARTUP_DELAY, AUTH_FILE and BANNERS_ENABLED under
// cfg. A delay of 0 becomes NoStartupDelay
func LoadConfig(cfg config.Conf) Config {
	delay := cfg.MayDuration("SESSION_STARTUP_DELAY", DefaultStartupDelay)
	if delay == 0 {
		delay = NoStartupDelay
	}
	return Config{
		StartupDelay:   delay,
		AuthFile:       cfg.MayPath("AUTH_FILE", "~/.swifthub/credentials.yaml"),
		BannersEnabled: cfg.MayBool("BANNERS_ENABLED", true),
	}
}
