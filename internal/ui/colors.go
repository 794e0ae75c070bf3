package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Spotify green for headings, the rest follow the terminal's usual status colors.
var styles = NewPalette(Colors{
	Heading: "#1DB954",
	Created: "#04B575",
	Failed:  "#FF5F87",
	Notice:  "#FFA500",
	Hint:    "#626262",
})

// Colors names the hex color used for each kind of status line.
type Colors struct {
	Heading string
	Created string
	Failed  string
	Notice  string
	Hint    string
}

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	heading lipgloss.Style
	created lipgloss.Style
	failed  lipgloss.Style
	notice  lipgloss.Style
	hint    lipgloss.Style
}

func NewPalette(c Colors) *Palette {
	return &Palette{
		heading: NewBold(c.Heading),
		created: NewBold(c.Created),
		failed:  NewBold(c.Failed),
		notice:  NewStyle(c.Notice),
		hint:    NewEm(c.Hint),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

func Title(s string) string   { return styles.heading.Render(s) }
func Success(s string) string { return styles.created.Render("✓ " + s) }
func Failure(s string) string { return styles.failed.Render("✗ " + s) }
func Warning(s string) string { return styles.notice.Render("⚠ " + s) }
func Hint(s string) string    { return styles.hint.Render(s) }
