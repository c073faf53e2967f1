package segment

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplit_EmptyAndShort(t *testing.T) {
	if got := Split("", 2000); got != nil {
		t.Errorf("empty input should yield no chunks, got %v", got)
	}
	got := Split("short message", 2000)
	if len(got) != 1 || got[0] != "short message" {
		t.Errorf("short input should be a single chunk, got %v", got)
	}
}

func TestSplit_BreaksAtNewline(t *testing.T) {
	text := "This is a test\nwith a newline"
	chunks := Split(text, 20)
	if chunks[0] != "This is a test\n" {
		t.Errorf("expected break after newline, got %q", chunks[0])
	}
}

func TestSplit_BreaksAtSpace(t *testing.T) {
	text := "This is a test with spaces only here"
	chunks := Split(text, 15)
	if chunks[0] != "This is a test " {
		t.Errorf("expected break after space, got %q", chunks[0])
	}
}

func TestSplit_MultiByteBoundary(t *testing.T) {
	// Korean text: every rune is 3 bytes; 10 lands mid-rune.
	text := "안녕하세요반갑습니다"
	chunks := Split(text, 10)
	for i, c := range chunks {
		if !utf8.ValidString(c) {
			t.Errorf("chunk %d contains a split rune: %q", i, c)
		}
		if len(c) > 10 {
			t.Errorf("chunk %d exceeds limit: %d bytes", i, len(c))
		}
	}
	if chunks[0] != "안녕하" {
		t.Errorf("expected cut at rune boundary 9, got %q", chunks[0])
	}
}

func TestSplit_SpaceInMultiByteText(t *testing.T) {
	text := "안녕하세요 반갑습니다"
	chunks := Split(text, 16)
	// The space at byte 15 is the preferred break.
	if chunks[0] != "안녕하세요 " {
		t.Errorf("expected break after space, got %q", chunks[0])
	}
}

func TestSplit_Lossless(t *testing.T) {
	inputs := []string{
		"plain ascii with some words repeated over and over again",
		"line one\nline two\nline three\n",
		"안녕하세요 반갑습니다 오늘 날씨가 좋네요",
		strings.Repeat("nospacesorlinebreaksatall", 40),
		strings.Repeat("가나다라", 100),
	}
	limits := []int{1, 2, 3, 7, 16, 100, 1999}

	for _, text := range inputs {
		for _, max := range limits {
			chunks := Split(text, max)
			if strings.Join(chunks, "") != text {
				t.Fatalf("concat mismatch for max=%d input=%q", max, text[:min(20, len(text))])
			}
			for _, c := range chunks {
				if !utf8.ValidString(c) {
					t.Fatalf("invalid utf8 chunk for max=%d", max)
				}
			}
		}
	}
}

func TestSplit_Deterministic(t *testing.T) {
	text := strings.Repeat("deterministic output please ", 50)
	a := Split(text, 64)
	b := Split(text, 64)
	if len(a) != len(b) {
		t.Fatalf("chunk counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("chunk %d differs between runs", i)
		}
	}
}

func TestSplit_LongReplyChunkCount(t *testing.T) {
	// A 9001-byte reply with no preferred boundaries splits into exactly
	// five chunks at the 2000-byte transport limit.
	text := strings.Repeat("a", 9001)
	chunks := Split(text, 2000)
	if len(chunks) != 5 {
		t.Fatalf("expected 5 chunks, got %d", len(chunks))
	}
	for i, c := range chunks[:4] {
		if len(c) != 2000 {
			t.Errorf("chunk %d should be full: %d bytes", i, len(c))
		}
	}
	if len(chunks[4]) != 1001 {
		t.Errorf("last chunk should carry the remainder, got %d", len(chunks[4]))
	}
}
