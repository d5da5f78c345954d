package importer

import (
	"strings"
	"unicode"
)

// SplitLine splits one CSV line into fields.
//
// Quoted fields may contain commas, and a doubled quote inside quotes is a
// literal quote. Whitespace outside quotes is trimmed. Malformed quoting is
// never an error: each stray quote just toggles the in-quote state. Bank
// exports are too varied to reject a line over it.
func SplitLine(line string) []string {
	var (
		fields   []string
		buf      []rune
		inside   []bool // whether buf[i] came from within quotes
		inQuotes bool
	)
	runes := []rune(line)

	flush := func() {
		start, end := 0, len(buf)
		for start < end && !inside[start] && unicode.IsSpace(buf[start]) {
			start++
		}
		for end > start && !inside[end-1] && unicode.IsSpace(buf[end-1]) {
			end--
		}
		fields = append(fields, string(buf[start:end]))
		buf = buf[:0]
		inside = inside[:0]
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '"' && inQuotes && i+1 < len(runes) && runes[i+1] == '"':
			buf = append(buf, '"')
			inside = append(inside, true)
			i++
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			flush()
		default:
			buf = append(buf, r)
			inside = append(inside, inQuotes)
		}
	}
	flush()
	return fields
}

// splitLines breaks a document into lines, dropping carriage returns and
// blank lines.
func splitLines(doc string) []string {
	raw := strings.Split(doc, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimRight(l, "\r")
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}
