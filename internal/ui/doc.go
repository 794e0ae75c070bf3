// Package ui renders terminal output for the CLI: a small [lipgloss] palette for status lines
// and go-pretty table summaries of runs and definitions.
//
// Nothing here is interactive. Every function writes once and returns.
package ui
