// Package numerator issues sequential catalog codes (e.g., CUR-00001).
package numerator

// Config holds numbering configuration.
type Config struct {
	// Prefix added to all numbers (e.g., "CUR", "NOM")
	Prefix string

	// PadWidth is the minimum number width (default 5)
	PadWidth int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:   prefix,
		PadWidth: 5,
	}
}

func (c Config) width() int {
	if c.PadWidth <= 0 {
		return 5
	}
	return c.PadWidth
}
