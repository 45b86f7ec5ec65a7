package tui

import (
	"fmt"
	"strings"
)

const helpText = "word: add  /query <text>: central query  /rm <word>: delete  /import <file.json>: load  /quit"

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString("wordmap\n\n")

	if q := m.session.CentralQuery(); q != "" {
		fmt.Fprintf(&b, "Central Query: %s\n\n", q)
	} else {
		b.WriteString("Central Query: (not set)\n\n")
	}

	entries := m.session.Display()
	if len(entries) == 0 {
		b.WriteString("  (no words yet)\n")
	}
	for i, e := range entries {
		if e.Similarity != nil {
			fmt.Fprintf(&b, "  %2d. %s (Similarity: %.2f)\n", i+1, e.Text, *e.Similarity)
		} else {
			fmt.Fprintf(&b, "  %2d. %s\n", i+1, e.Text)
		}
	}
	b.WriteString("\n")

	if m.pending > 0 {
		b.WriteString("Loading visualization...\n")
	}
	if m.plotVisible && m.status != "" {
		b.WriteString(m.status + "\n")
	}
	if m.notice != "" {
		b.WriteString("! " + m.notice + "\n")
	}

	fmt.Fprintf(&b, "\n> %s\n\n%s\n", string(m.input), helpText)
	return b.String()
}
