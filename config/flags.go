package config

func StringFlag(name string) string {
	if ctx == nil {
		return ""
	}
	return ctx.String(name)
}

func BoolFlag(name string) bool {
	if ctx == nil {
		return false
	}
	return ctx.Bool(name)
}

// IntFlag returns the flag's value and whether it was set at all.
func IntFlag(name string) (int, bool) {
	if ctx == nil || !ctx.IsSet(name) {
		return 0, false
	}
	return ctx.Int(name), true
}

func StringSliceFlag(name string) []string {
	if ctx == nil {
		return nil
	}
	return ctx.StringSlice(name)
}
