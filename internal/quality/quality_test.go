package quality

import (
	"strings"
	"testing"
)

// wordsOfLength builds n space-separated words each exactly length runes
// long, so the mean word length is exactly `length`.
func wordsOfLength(n, length int) string {
	word := strings.Repeat("a", length)
	words := make([]string, n)
	for i := range words {
		words[i] = word
	}
	return strings.Join(words, " ")
}

func TestWordCountBoundaries(t *testing.T) {
	cases := []struct {
		n      int
		accept bool
	}{
		{49, false},
		{50, true},
		{100000, true},
		{100001, false},
	}
	for _, c := range cases {
		text := wordsOfLength(c.n, 5)
		if got := Accept(text); got != c.accept {
			t.Errorf("n=%d: Accept=%v, want %v", c.n, got, c.accept)
		}
	}
}

func TestMeanWordLengthBoundaries(t *testing.T) {
	// 60 words clears the word-count gate; every word has the same length,
	// so the mean word length is exactly that integer.
	build := func(mean float64) string {
		return wordsOfLength(60, int(mean))
	}

	if Accept(build(2)) {
		t.Error("mean word length 2 should be rejected (< 3)")
	}
	if !Accept(build(3)) {
		t.Error("mean word length 3 should be accepted")
	}
	if !Accept(build(10)) {
		t.Error("mean word length 10 should be accepted")
	}
	if Accept(build(11)) {
		t.Error("mean word length 11 should be rejected (> 10)")
	}
}

func TestEllipsisRatioBoundary(t *testing.T) {
	// 100 lines of one five-letter word each (100 words) ensures the
	// word-count/length gates pass; vary how many lines end in "...".
	makeText := func(ellipsisLines int) string {
		lines := make([]string, 100)
		for i := range lines {
			line := wordsOfLength(1, 5)
			if i < ellipsisLines {
				line += "..."
			}
			lines[i] = line
		}
		return strings.Join(lines, "\n")
	}

	if !Accept(makeText(30)) {
		t.Error("ellipsis ratio of exactly 0.30 should be accepted")
	}
	if Accept(makeText(31)) {
		t.Error("ellipsis ratio of 0.31 should be rejected")
	}
}

func TestAlphaWordRatioBoundary(t *testing.T) {
	makeText := func(alphaWords int) string {
		words := make([]string, 100)
		for i := range words {
			if i < alphaWords {
				words[i] = "word"
			} else {
				words[i] = "123"
			}
		}
		return strings.Join(words, " ")
	}

	if !Accept(makeText(70)) {
		t.Error("alpha ratio of exactly 0.70 should be accepted")
	}
	if Accept(makeText(69)) {
		t.Error("alpha ratio of 0.69 should be rejected")
	}
}

func TestTokenizeBasic(t *testing.T) {
	words := Tokenize("Hello, world! It's a test-case.")
	want := []string{"Hello", "world", "It's", "a", "test-case"}
	if len(words) != len(want) {
		t.Fatalf("got %v, want %v", words, want)
	}
	for i := range want {
		if words[i] != want[i] {
			t.Errorf("word %d: got %q, want %q", i, words[i], want[i])
		}
	}
}
