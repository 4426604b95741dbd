// Package ui styles the terminal output of the moodmusic CLI with lipgloss.
//
// A [Palette] renders titles, success and failure marks, warnings and muted help text. The CLI prints
// provider checks with [Palette.Check] and groups them with [Palette.Lines].
package ui
