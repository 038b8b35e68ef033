package terminal

const (
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Cyan   = "\033[36m"
	Gray   = "\033[90m" // Bright black, often appears as gray

	ResetColor = "\033[0m" // Reset to default color
)

func paint(enabled bool, colour, text string) string {
	if !enabled {
		return text
	}
	return colour + text + ResetColor
}
