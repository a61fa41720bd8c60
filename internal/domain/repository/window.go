package repository

// Window is a history lookback understood by the market data source.
type Window string

const (
	Window1d  Window = "1d"
	Window5d  Window = "5d"
	Window1mo Window = "1mo"
	Window3mo Window = "3mo"
	Window6mo Window = "6mo"
	Window1y  Window = "1y"
)

// IsValidWindow returns true if w is a supported window.
func IsValidWindow(w Window) bool {
	switch w {
	case Window1d, Window5d, Window1mo, Window3mo, Window6mo, Window1y:
		return true
	default:
		return false
	}
}

// NormalizeWindow converts a raw string to a valid window, falling back to def.
func NormalizeWindow(s string, def Window) Window {
	w := Window(s)
	if IsValidWindow(w) {
		return w
	}
	return def
}
