package demo

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Entry is one selectable demo.
type Entry struct {
	Key   string
	Title string
	Run   func(w io.Writer) error
}

// Menu lists demos and runs the one matching a single key.
type Menu struct {
	Title   string
	Entries []Entry
}

// DefaultMenu returns the menu of available demos.
func DefaultMenu() *Menu {
	return &Menu{
		Title: "GOF patterns",
		Entries: []Entry{
			{Key: "1", Title: "Observer", Run: RunObserver},
		},
	}
}

// Print writes the numbered list and the prompt.
func (m *Menu) Print(w io.Writer) {
	fmt.Fprintf(w, "%s\n\n", m.Title)
	for _, e := range m.Entries {
		fmt.Fprintf(w, "%s. %s\n", e.Key, e.Title)
	}
	fmt.Fprint(w, "\nRun: ")
}

// Dispatch runs the demo bound to key. Unknown keys do nothing and report
// false.
func (m *Menu) Dispatch(key string, w io.Writer) (bool, error) {
	for _, e := range m.Entries {
		if e.Key == key {
			slog.Debug("running demo", "key", key, "title", e.Title)
			return true, e.Run(w)
		}
	}
	return false, nil
}

// Run prints the menu, reads one key from in and dispatches it. Only the
// first non-space character of the input counts.
func (m *Menu) Run(in io.Reader, out io.Writer) error {
	m.Print(out)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return fmt.Errorf("reading selection: %w", err)
	}
	fmt.Fprint(out, "\n\n")

	key := strings.TrimSpace(line)
	if key == "" {
		return nil
	}
	_, err = m.Dispatch(string([]rune(key)[0]), out)
	return err
}
