package engine

import "fmt"

// Config holds tunables for the grouping engine
type Config struct {
	// Threshold is the minimum number of postings sharing a rule's key
	// values for them to form a duplicate group.
	Threshold int `json:"duplicate_threshold"`
}

// DefaultConfig returns the default grouping configuration
func DefaultConfig() *Config {
	return &Config{
		Threshold: 2,
	}
}

// Validate validates the grouping configuration
func (c *Config) Validate() error {
	if c.Threshold < 2 {
		return fmt.Errorf("duplicate threshold must be at least 2, got %d", c.Threshold)
	}
	return nil
}

// Clone returns a copy of the configuration
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
