package config

func TryStrings(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}

// TryInt returns value if it was set and at least min, and fallback otherwise.
func TryInt(value int, set bool, min, fallback int) int {
	if set && value >= min {
		return value
	}
	return fallback
}
