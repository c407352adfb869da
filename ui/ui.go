package ui

import (
	"encoding/json"
	"io"
)

// Severity is the visual weight of a piece of inline text. Terminals map it
// to a colour, JSON and tests see the plain text.
type Severity uint8

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityWarn
	SeverityError
	SeverityCritical
)

// StyledText is a string with a Severity. Pass it to [UI.Style] to embed it
// in a line:
//
//	u.Info("Stall: %s", u.Style(stall))
type StyledText struct {
	Text     string
	Severity Severity
}

// MarshalJSON serializes StyledText as its plain text.
func (s StyledText) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Text)
}

func Styled(text string, severity Severity) StyledText {
	return StyledText{Text: text, Severity: severity}
}

// UI is all terminal interaction of the kiosk commands. Commands get a
// TerminalUI in production and a RecordingUI in tests.
type UI interface {
	Style(t StyledText) string

	Info(format string, args ...any)
	Success(format string, args ...any)
	Warn(format string, args ...any)
	// Error does not exit, callers decide what happens next.
	Error(format string, args ...any)
	// Critical is for data the user must review, such as a transaction
	// about to be signed or the hash of one just broadcast.
	Critical(format string, args ...any)
	Section(title string)
	KeyValue(rows [][2]string)
	Table(headers []string, rows [][]string)
	TableWithGroups(headers []string, groups [][][]string)
	// JSON writes v as indented json, for --json output.
	JSON(v any) error

	// Spinner starts a spinner with msg and returns the function that
	// stops it.
	Spinner(msg string) func()
	// Interpret shows what was understood from the last input.
	Interpret(value string)

	// Ask reads a line, repeating until validate accepts it. A nil
	// validate accepts everything.
	Ask(validate func(string) error) string
	Confirm(prompt string, defaultYes bool) bool
	// Choose returns the 0-based index of the chosen option.
	Choose(prompt string, options []string) int

	// Indent returns a child UI one level deeper that shares the writer
	// and reader.
	Indent() UI
	// Writer prepends the current indentation to every line.
	Writer() io.Writer
}
