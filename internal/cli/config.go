package cli

import "os"

// Config holds CLI configuration
type Config struct {
	ServerAddr string
	Player     string
	Output     string
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerAddr: getEnvOrDefault("BITBOXING_SERVER", "localhost:9999"),
		Player:     os.Getenv("BITBOXING_PLAYER"),
		Output:     "text",
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
