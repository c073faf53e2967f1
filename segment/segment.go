// Package segment splits long reply text into transport-sized chunks. Chat
// gateways cap message length (2000 bytes for the default transport), so a
// long completion reply is delivered as an ordered chunk sequence. Splits
// prefer readable boundaries and never land inside a multi-byte rune.
package segment

import "unicode/utf8"

// Split divides text into chunks of at most max bytes each. Concatenating the
// chunks reproduces the input exactly. Chunk boundaries prefer, in order: the
// last newline within the limit, the last space within the limit, then a hard
// cut at the nearest rune boundary. Empty input yields no chunks. A max <= 0
// returns the whole text as a single chunk.
func Split(text string, max int) []string {
	if text == "" {
		return nil
	}
	if max <= 0 || len(text) <= max {
		return []string{text}
	}

	var chunks []string
	remaining := text
	for len(remaining) > 0 {
		cut := breakPoint(remaining, max)
		chunks = append(chunks, remaining[:cut])
		remaining = remaining[cut:]
	}
	return chunks
}

// breakPoint returns the byte offset to cut at, 0 < offset <= max (unless the
// whole text fits). The newline or space is kept at the end of the leading
// chunk so concatenation stays lossless.
func breakPoint(text string, max int) int {
	if max >= len(text) {
		return len(text)
	}

	safe := runeBoundary(text, max)

	if pos := lastIndexByte(text[:safe], '\n'); pos >= 0 {
		return pos + 1
	}
	if pos := lastIndexByte(text[:safe], ' '); pos >= 0 {
		return pos + 1
	}

	if safe == 0 {
		// max is smaller than the first rune; emit the rune whole rather
		// than corrupt it.
		_, size := utf8.DecodeRuneInString(text)
		return size
	}
	return safe
}

// runeBoundary walks pos back to the nearest rune start at or before it.
// Callers guarantee pos < len(text).
func runeBoundary(text string, pos int) int {
	for pos > 0 && !utf8.RuneStart(text[pos]) {
		pos--
	}
	return pos
}

func lastIndexByte(s string, b byte) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == b {
			return i
		}
	}
	return -1
}
