// Package ui provides terminal color themes for sinsum's output.
//
// Colors are plain ANSI escape codes selected through a process-wide theme,
// plus a lipgloss style for boxed summaries. NO_COLOR, the -no-color flag and
// non-terminal outputs all select NoColorTheme.
package ui
