// Package speech defines the accessible-output sink. The engine packages
// never import it; whichever layer needs to announce text receives an Output
// at construction time.
package speech

import (
	"fmt"
	"io"
)

// Output accepts one string at a time and announces it through whatever
// modality is available. Implementations must tolerate being called with
// empty strings and must never fail the caller.
type Output interface {
	Speak(text string)
}

// Writer announces by writing one line per utterance to an io.Writer,
// suitable for piping into an external TTS engine or capturing in tests.
type Writer struct {
	w io.Writer
}

// NewWriter creates a writer-backed output.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Speak writes the text followed by a newline. Write errors are swallowed:
// the caller never depends on the sink's success.
func (s *Writer) Speak(text string) {
	fmt.Fprintln(s.w, text)
}

// Multi fans one utterance out to several outputs.
type Multi []Output

// Speak forwards the text to every output in order.
func (m Multi) Speak(text string) {
	for _, out := range m {
		out.Speak(text)
	}
}
