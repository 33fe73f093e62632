package config

import "github.com/caarlos0/env/v6"

type Config struct {
	Server struct {
		Port int `env:"PORT" envDefault:"5250"`
	}

	// Feeds configuration
	Feeds struct {
		// URL of the general new-builds feed (Kyero XML)
		GeneralURL string `env:"FEED_GENERAL_URL" envDefault:"https://xml.redsp.net/file/450/23a140q0551/general-zone-1-kyero.xml"`

		// URL of the inland-properties feed; falls back to the general feed
		// when unset
		InlandURL string `env:"FEED_INLAND_URL"`

		// HTTP timeout for a single feed fetch (in seconds)
		TimeoutSeconds int `env:"FEED_TIMEOUT" envDefault:"30"`

		// Age after which a cached generation is due for re-fetch (in seconds)
		RevalidateSeconds int `env:"FEED_REVALIDATE" envDefault:"300"`

		// Ceiling on upstream requests per minute
		RequestsPerMinute int `env:"FEED_RATE_LIMIT" envDefault:"6"`

		// Maximum number of fetch retries within one cycle
		MaxRetries int `env:"FEED_MAX_RETRIES" envDefault:"2"`

		// Delay between fetch retries in seconds
		RetryDelaySeconds int `env:"FEED_RETRY_DELAY" envDefault:"5"`
	}

	Database struct {
		// Location of the feed cycle log
		Path string `env:"FEEDLOG_DB_PATH" envDefault:"database/feedlog.db"`
	}

	// Optional JSON file with extra town-to-region entries, merged at startup
	RegionOverridesPath string `env:"REGION_OVERRIDES_PATH"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if cfg.Feeds.InlandURL == "" {
		cfg.Feeds.InlandURL = cfg.Feeds.GeneralURL
	}
	return cfg, nil
}
