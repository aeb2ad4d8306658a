package config

import "time"

type RideConfig struct {
	SearchRadiusKM     float64       `yaml:"search_radius_km"`
	ChatTimezone       string        `yaml:"chat_timezone"`
	CancelRequiresAuth bool          `yaml:"cancel_requires_auth"`
	BackgroundTimeout  time.Duration `yaml:"background_timeout"`
}

func loadRideConfig() *RideConfig {
	return &RideConfig{
		SearchRadiusKM:     getEnvAsFloat64("RIDE_SEARCH_RADIUS_KM", 4),
		ChatTimezone:       getEnv("CHAT_TIMEZONE", "Asia/Kolkata"),
		CancelRequiresAuth: getEnvAsBool("RIDE_CANCEL_REQUIRE_AUTH", false),
		BackgroundTimeout:  getEnvAsDuration("RIDE_BACKGROUND_TIMEOUT", 30*time.Second),
	}
}
