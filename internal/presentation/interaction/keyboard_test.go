package interaction

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInput(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected *KeyEvent
	}{
		{name: "regular_char", input: "a", expected: &KeyEvent{Key: 'a', Type: KeyChar}},
		{name: "escape", input: "\x1b", expected: &KeyEvent{Key: 27, Type: KeyEscape}},
		{name: "ctrl_c", input: "\x03", expected: &KeyEvent{Key: keyCtrlC, Type: KeyChar}},
		{name: "enter", input: "\r", expected: &KeyEvent{Key: '\r', Type: KeyEnter}},
		{name: "up", input: "\x1b[A", expected: &KeyEvent{Type: KeyUp}},
		{name: "down", input: "\x1b[B", expected: &KeyEvent{Type: KeyDown}},
		{name: "right", input: "\x1b[C", expected: &KeyEvent{Type: KeyRight}},
		{name: "left", input: "\x1b[D", expected: &KeyEvent{Type: KeyLeft}},
		{name: "page_up", input: "\x1b[5~", expected: &KeyEvent{Type: KeyPageUp}},
		{name: "page_down", input: "\x1b[6~", expected: &KeyEvent{Type: KeyPageDown}},
		{name: "unknown_sequence", input: "\x1b[Z", expected: nil},
		{name: "empty", input: "", expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseInput([]byte(tt.input)))
		})
	}
}

func TestKeyboardReaderEvents(t *testing.T) {
	kr := newKeyboardReader(strings.NewReader("q"))
	go kr.readInput()

	select {
	case ev := <-kr.Events():
		assert.Equal(t, KeyEvent{Key: 'q', Type: KeyChar}, ev)
	case <-time.After(time.Second):
		t.Fatal("no key event")
	}
	require.NoError(t, kr.Close())
}
