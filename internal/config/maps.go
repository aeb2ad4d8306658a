package config

import "time"

type MapsConfig struct {
	Provider       string            `yaml:"provider"`
	GoogleMaps     *GoogleMapsConfig `yaml:"google_maps"`
	RequestTimeout time.Duration     `yaml:"request_timeout"`
}

type GoogleMapsConfig struct {
	APIKey string `yaml:"api_key"`
}

func loadMapsConfig() *MapsConfig {
	return &MapsConfig{
		Provider: getEnv("MAPS_PROVIDER", "google"),
		GoogleMaps: &GoogleMapsConfig{
			APIKey: getEnv("GOOGLE_MAPS_API", getEnv("GOOGLE_MAPS_API_KEY", "")),
		},
		RequestTimeout: getEnvAsDuration("MAPS_REQUEST_TIMEOUT", 10*time.Second),
	}
}
