package markdown

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values, so rendered
// output automatically matches any color scheme.
type Theme struct {
	Accent int // Headings, links
	Muted  int // Code gutters, URLs, status text
	Error  int // Stream failures
	CodeBg int // Code block background
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		Accent: 5,
		Muted:  8,
		Error:  1,
		CodeBg: 0,
	}
}
