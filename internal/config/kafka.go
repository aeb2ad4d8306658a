package config

import "time"

type KafkaConfig struct {
	Brokers      []string      `yaml:"brokers"`
	RideTopic    string        `yaml:"ride_topic"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Enabled reports whether a ride event stream should be opened.
func (k *KafkaConfig) Enabled() bool {
	return k != nil && len(k.Brokers) > 0
}

func loadKafkaConfig() *KafkaConfig {
	return &KafkaConfig{
		Brokers:      getEnvAsSlice("KAFKA_BROKERS", []string{}),
		RideTopic:    getEnv("KAFKA_RIDE_TOPIC", "ride-events"),
		WriteTimeout: getEnvAsDuration("KAFKA_WRITE_TIMEOUT", 2*time.Second),
	}
}
