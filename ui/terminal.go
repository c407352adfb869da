package ui

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/logrusorgru/aurora"
	indent "github.com/openconfig/goyang/pkg/indent"
	"golang.org/x/term"
)

const (
	indentUnit      = "  "
	sectionWidth    = 50
	promptPrefix    = "> "
	interpretPrefix = "→ "
)

// TerminalUI writes to a terminal, colouring output when the terminal
// supports it.
type TerminalUI struct {
	depth int
	out   io.Writer
	in    *bufio.Reader
	au    aurora.Aurora
	color bool
	// tty is set when out is an interactive terminal, spinners need one.
	tty bool
}

// colorsWanted follows the NO_COLOR convention (https://no-color.org).
func colorsWanted(tty bool) bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	return tty
}

// NewTerminalUI talks to os.Stdout and os.Stdin.
func NewTerminalUI() *TerminalUI {
	tty := term.IsTerminal(int(os.Stdout.Fd()))
	color := colorsWanted(tty)
	return &TerminalUI{
		out:   os.Stdout,
		in:    bufio.NewReader(os.Stdin),
		au:    aurora.NewAurora(color),
		color: color,
		tty:   tty,
	}
}

// NewTerminalUIWithIO never colours and never animates. Used by --json
// runs and when the caller redirects output.
func NewTerminalUIWithIO(out io.Writer, in io.Reader) *TerminalUI {
	return &TerminalUI{
		out: out,
		in:  bufio.NewReader(in),
		au:  aurora.NewAurora(false),
	}
}

func (u *TerminalUI) println(line string) {
	fmt.Fprintf(u.out, "%s%s\n", strings.Repeat(indentUnit, u.depth), line)
}

func (u *TerminalUI) paint(severity Severity, text string) string {
	switch severity {
	case SeveritySuccess:
		return u.au.Green(text).String()
	case SeverityWarn:
		return u.au.Yellow(text).String()
	case SeverityError:
		return u.au.Red(text).String()
	case SeverityCritical:
		return u.au.Bold(text).String()
	}
	return text
}

func (u *TerminalUI) Style(t StyledText) string {
	return u.paint(t.Severity, t.Text)
}

func (u *TerminalUI) say(severity Severity, format string, args []any) {
	u.println(u.paint(severity, fmt.Sprintf(format, args...)))
}

func (u *TerminalUI) Info(format string, args ...any) { u.say(SeverityInfo, format, args) }
func (u *TerminalUI) Success(format string, args ...any) { u.say(SeveritySuccess, format, args) }
func (u *TerminalUI) Warn(format string, args ...any) { u.say(SeverityWarn, format, args) }
func (u *TerminalUI) Error(format string, args ...any) { u.say(SeverityError, format, args) }
func (u *TerminalUI) Critical(format string, args ...any) { u.say(SeverityCritical, format, args) }

// Section prints "===== title =====" between blank lines.
func (u *TerminalUI) Section(title string) {
	titled := " " + title + " "
	bars := max(sectionWidth-visibleWidth(titled), 6)
	left := bars / 2
	fmt.Fprintln(u.out)
	u.println(strings.Repeat("=", left) + titled + strings.Repeat("=", bars-left))
	fmt.Fprintln(u.out)
}

// Interpret shows what an input was understood as, one level deeper than
// the current line.
func (u *TerminalUI) Interpret(value string) {
	u.println(indentUnit + interpretPrefix + u.au.Cyan(value).String())
}

func (u *TerminalUI) Ask(validate func(string) error) string {
	for {
		fmt.Fprint(u.out, strings.Repeat(indentUnit, u.depth)+promptPrefix)
		text, err := u.in.ReadString('\n')
		input := strings.TrimRight(text, "\r\n")
		if err != nil && input == "" {
			// closed stdin answers with the empty string
			return ""
		}
		if validate == nil {
			return input
		}
		verr := validate(input)
		if verr == nil {
			return input
		}
		u.println(u.au.Red(verr.Error()).String())
	}
}

// Confirm accepts the default on an empty answer.
func (u *TerminalUI) Confirm(prompt string, defaultYes bool) bool {
	options := "[y/N]"
	if defaultYes {
		options = "[Y/n]"
	}
	u.Info("%s %s", prompt, options)
	answer := u.Ask(func(s string) error {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "", "y", "yes", "n", "no":
			return nil
		}
		return fmt.Errorf("please enter y or n")
	})
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "":
		return defaultYes
	case "y", "yes":
		return true
	}
	return false
}

func (u *TerminalUI) Choose(prompt string, options []string) int {
	for i, opt := range options {
		u.Info("%d. %s", i+1, opt)
	}
	u.Info("%s [1-%d]", prompt, len(options))
	pick := func(s string) (int, error) {
		idx, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || idx < 1 || idx > len(options) {
			return 0, fmt.Errorf("please enter a number between 1 and %d", len(options))
		}
		return idx - 1, nil
	}
	idx, _ := pick(u.Ask(func(s string) error {
		_, err := pick(s)
		return err
	}))
	return idx
}

// KeyValue aligns values on the longest label.
func (u *TerminalUI) KeyValue(rows [][2]string) {
	width := 0
	for _, r := range rows {
		width = max(width, visibleWidth(r[0]))
	}
	for _, r := range rows {
		u.println(r[0] + strings.Repeat(" ", width-visibleWidth(r[0])) + "  " + r[1])
	}
}

// Table renders a bordered table, without header row when headers is
// empty.
func (u *TerminalUI) Table(headers []string, rows [][]string) {
	u.TableWithGroups(headers, [][][]string{rows})
}

func (u *TerminalUI) TableWithGroups(headers []string, groups [][][]string) {
	if len(groups) == 0 {
		return
	}
	for _, line := range newTableLayout(headers, groups, u.color).lines() {
		u.println(line)
	}
}

// Spinner animates msg until the returned func is called. Without a
// terminal msg is printed once.
func (u *TerminalUI) Spinner(msg string) func() {
	if !u.tty {
		u.println(msg)
		return func() {}
	}
	s := spinner.New(spinner.CharSets[14], 80*time.Millisecond, spinner.WithWriter(u.out))
	s.Suffix = " " + msg
	s.Start()
	return func() {
		s.Stop()
		// spinner clears the line with \r only
		fmt.Fprintln(u.out)
	}
}

func (u *TerminalUI) Indent() UI {
	child := *u
	child.depth++
	return &child
}

func (u *TerminalUI) Writer() io.Writer {
	if u.depth == 0 {
		return u.out
	}
	return indent.NewWriter(u.out, strings.Repeat(indentUnit, u.depth))
}

func (u *TerminalUI) JSON(v any) error {
	enc := json.NewEncoder(u.Writer())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
