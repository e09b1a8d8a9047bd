package repository

// IsValidGranularity returns true if g is a supported grouping granularity.
func IsValidGranularity(g Granularity) bool {
	switch g {
	case GranWeek, GranMonth:
		return true
	default:
		return false
	}
}

// DefaultGranularity returns the default grouping granularity.
func DefaultGranularity() Granularity { return GranMonth }

// NormalizeGranularity converts raw string to a valid granularity (or default).
func NormalizeGranularity(s string) Granularity {
	if s == "" {
		return DefaultGranularity()
	}
	g := Granularity(s)
	if IsValidGranularity(g) {
		return g
	}
	return DefaultGranularity()
}
