package ui

import (
	"github.com/gdamore/tcell/v2"
)

// Styles for the map pane.
var (
	StyleMap    = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	StyleCursor = tcell.StyleDefault.Foreground(tcell.ColorWhite).Reverse(true)
	StyleStatus = tcell.StyleDefault.Foreground(tcell.ColorYellow)
)

// MapView draws the rendered map lines, the cursor cell, and a status line
// at the bottom of the screen.
type MapView struct{}

// NewMapView creates a map view.
func NewMapView() *MapView {
	return &MapView{}
}

// Draw paints the map into the screen. The cursor cell is drawn reversed
// even when its row was stripped from the rendered lines (blank cells still
// have a position a screen-reader user can land on).
func (m *MapView) Draw(screen tcell.Screen, lines []string, cursorX, cursorY int, status string) {
	width, height := screen.Size()

	for y, line := range lines {
		if y >= height-1 {
			break
		}
		for x, char := range line {
			if x >= width {
				break
			}
			screen.SetContent(x, y, char, nil, StyleMap)
		}
	}

	// Cursor overlay
	if cursorY < height-1 && cursorX < width {
		char := ' '
		if cursorY < len(lines) && cursorX < len(lines[cursorY]) {
			char = rune(lines[cursorY][cursorX])
		}
		screen.SetContent(cursorX, cursorY, char, nil, StyleCursor)
	}

	// Status line on the bottom row
	for x, char := range status {
		if x >= width {
			break
		}
		screen.SetContent(x, height-1, char, nil, StyleStatus)
	}
}
