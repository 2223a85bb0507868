// Package source models chart source text as an ordered sequence of lines.
//
// Every parsed entity records the index of the line it came from, and every
// edit is expressed as a whole-line replace, insert or delete at such an
// index. A [Document] remembers the line terminator and whether the text
// ended with one, so that Split followed by String reproduces the input
// byte for byte.
package source

import (
	"slices"
	"strings"
)

// Document is a mutable line buffer over a chart's source text.
//
// The zero value is an empty document with "\n" terminators.
type Document struct {
	lines    []string
	eol      string
	trailing bool
}

// Split breaks text into lines. A CRLF document keeps CRLF on output.
// An empty string yields a document with a single empty line.
func Split(text string) *Document {
	eol := "\n"
	if strings.Contains(text, "\r\n") {
		eol = "\r\n"
	}
	trailing := strings.HasSuffix(text, eol)
	body := text
	if trailing {
		body = strings.TrimSuffix(text, eol)
	}
	return &Document{
		lines:    strings.Split(body, eol),
		eol:      eol,
		trailing: trailing,
	}
}

// Lines is a convenience wrapper returning the lines of text.
func Lines(text string) []string {
	return Split(text).lines
}

// Len returns the number of lines.
func (d *Document) Len() int { return len(d.lines) }

// Line returns line i, or "" and false when i is out of range.
func (d *Document) Line(i int) (string, bool) {
	if i < 0 || i >= len(d.lines) {
		return "", false
	}
	return d.lines[i], true
}

// Lines returns a copy of all lines.
func (d *Document) Lines() []string { return slices.Clone(d.lines) }

// Replace overwrites line i. Out-of-range indices are ignored and reported
// as false.
func (d *Document) Replace(i int, line string) bool {
	if i < 0 || i >= len(d.lines) {
		return false
	}
	d.lines[i] = line
	return true
}

// Insert places lines before index i. i == Len() appends. Indices are
// clamped into range.
func (d *Document) Insert(i int, lines ...string) {
	i = max(0, min(i, len(d.lines)))
	d.lines = slices.Insert(d.lines, i, lines...)
}

// Append adds lines at the end, keeping a blank last line (the usual
// trailing empty line of hand-written files) after them.
func (d *Document) Append(lines ...string) {
	end := len(d.lines)
	for end > 0 && strings.TrimSpace(d.lines[end-1]) == "" {
		end--
	}
	d.Insert(end, lines...)
}

// Delete removes n lines starting at i. Out-of-range parts are ignored.
func (d *Document) Delete(i, n int) {
	if n <= 0 || i < 0 || i >= len(d.lines) {
		return
	}
	end := min(i+n, len(d.lines))
	d.lines = slices.Delete(d.lines, i, end)
}

// DeleteSet removes every listed index in one pass. Duplicates and
// out-of-range indices are ignored.
func (d *Document) DeleteSet(indices ...int) {
	drop := make(map[int]bool, len(indices))
	for _, i := range indices {
		drop[i] = true
	}
	kept := d.lines[:0:0]
	for i, l := range d.lines {
		if !drop[i] {
			kept = append(kept, l)
		}
	}
	d.lines = kept
}

// String joins the lines back into text.
func (d *Document) String() string {
	eol := d.eol
	if eol == "" {
		eol = "\n"
	}
	s := strings.Join(d.lines, eol)
	if d.trailing {
		s += eol
	}
	return s
}

// Indent returns the leading whitespace of line.
func Indent(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}
