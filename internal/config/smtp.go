package config

type SMTPConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	FromEmail string `yaml:"from_email"`
	FromName  string `yaml:"from_name"`
	// ClientURL is the frontend origin that verification and reset links
	// point at.
	ClientURL string `yaml:"client_url"`
}

func loadSMTPConfig() *SMTPConfig {
	return &SMTPConfig{
		Host:      getEnv("SMTP_HOST", ""),
		Port:      getEnvAsInt("SMTP_PORT", 587),
		Username:  getEnv("SMTP_USERNAME", ""),
		Password:  getEnv("SMTP_PASSWORD", ""),
		FromEmail: getEnv("SMTP_FROM_EMAIL", "noreply@quickride.in"),
		FromName:  getEnv("SMTP_FROM_NAME", "QuickRide"),
		ClientURL: getEnv("CLIENT_URL", "http://localhost:5173"),
	}
}

// Enabled reports whether mail should go out over SMTP. Without a host the
// server logs outgoing mail instead.
func (c *SMTPConfig) Enabled() bool {
	return c.Host != ""
}
