// internal/workers/pricing/compute-quote/config.go
package computequote

import "time"

type Config struct {
	Timeout time.Duration
	// Location interprets date-only asOf values and names the pricing day.
	Location *time.Location
}

func LoadConfig() *Config {
	return &Config{
		Timeout:  20 * time.Second,
		Location: time.UTC,
	}
}
