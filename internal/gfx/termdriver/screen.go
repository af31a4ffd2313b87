// Package termdriver implements gfx.Driver on a tcell terminal screen. One
// terminal cell is one pixel of the drawable.
package termdriver

import "github.com/gdamore/tcell/v2"

// Screen wraps tcell.Screen and acts as the drawable layer.
type Screen struct {
	screen tcell.Screen
	style  tcell.Style
}

// NewScreen creates and initializes a new terminal screen.
func NewScreen() (*Screen, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return Wrap(s)
}

// Wrap initializes s and wraps it. Tests pass a tcell.SimulationScreen.
func Wrap(s tcell.Screen) (*Screen, error) {
	if err := s.Init(); err != nil {
		return nil, err
	}
	style := tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite)
	s.SetStyle(style)
	s.EnableMouse()
	s.Clear()
	return &Screen{screen: s, style: style}, nil
}

// Close finalizes the screen and restores terminal state.
func (s *Screen) Close() {
	s.screen.Fini()
}

// PollEvent waits for and returns the next terminal event.
func (s *Screen) PollEvent() tcell.Event {
	return s.screen.PollEvent()
}

// Size returns the current terminal dimensions.
func (s *Screen) Size() (width, height int) {
	return s.screen.Size()
}

// Sync forces a complete redraw of the screen.
func (s *Screen) Sync() {
	s.screen.Sync()
}

// RenderMessage writes msg on row y over whatever was presented last.
func (s *Screen) RenderMessage(msg string, y int) {
	style := s.style.Foreground(tcell.ColorWhite)
	for i, ch := range msg {
		s.screen.SetContent(i, y, ch, nil, style)
	}
	s.screen.Show()
}
