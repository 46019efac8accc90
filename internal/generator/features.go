package generator

import (
	"math"
	"sort"
	"strings"

	"github.com/ajitpratap0/chops/internal/chaos"
)

// maxTags bounds how many tags feature extraction yields per idea.
const maxTags = 6

// stopwords are excluded from tag extraction.
var stopwords = map[string]struct{}{
	"about": {}, "after": {}, "could": {}, "every": {}, "might": {},
	"other": {}, "their": {}, "there": {}, "these": {}, "thing": {},
	"think": {}, "those": {}, "through": {}, "using": {}, "which": {},
	"while": {}, "would": {}, "where": {}, "should": {}, "because": {},
}

// ExtractFeatures derives the scoring inputs from generated idea text.
// Tags are the most frequent content words plus the domain itself, so
// the tag set is non-empty whenever a domain is given.
func ExtractFeatures(text, domain string) chaos.Features {
	return chaos.Features{
		Length:      len(text),
		TextEntropy: textEntropy(text),
		Tags:        extractTags(text, domain),
	}
}

// textEntropy is the Shannon entropy of the character distribution,
// normalized against the maximum for the observed alphabet size.
func textEntropy(text string) float64 {
	if text == "" {
		return 0
	}
	counts := make(map[rune]int)
	total := 0
	for _, r := range strings.ToLower(text) {
		counts[r]++
		total++
	}
	if len(counts) < 2 {
		return 0
	}
	entropy := 0.0
	for _, c := range counts {
		p := float64(c) / float64(total)
		entropy -= p * math.Log2(p)
	}
	return entropy / math.Log2(float64(len(counts)))
}

// extractTags picks the most frequent content words of length five or
// more, lowercased, ties broken lexically.
func extractTags(text, domain string) []string {
	freq := make(map[string]int)
	for _, word := range strings.FieldsFunc(strings.ToLower(text), isWordBoundary) {
		if len(word) < 5 {
			continue
		}
		if _, skip := stopwords[word]; skip {
			continue
		}
		freq[word]++
	}

	words := make([]string, 0, len(freq))
	for w := range freq {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if freq[words[i]] != freq[words[j]] {
			return freq[words[i]] > freq[words[j]]
		}
		return words[i] < words[j]
	})
	if len(words) > maxTags-1 {
		words = words[:maxTags-1]
	}

	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain != "" && !containsWord(words, domain) {
		words = append(words, domain)
	}
	return words
}

func isWordBoundary(r rune) bool {
	return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
}

func containsWord(list []string, w string) bool {
	for _, e := range list {
		if e == w {
			return true
		}
	}
	return false
}

// TitleFrom derives an idea title from the first non-empty line of the
// generated text, truncated at a word boundary.
func TitleFrom(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "#*- "))
		if line == "" {
			continue
		}
		const maxTitle = 80
		if len(line) <= maxTitle {
			return line
		}
		cut := line[:maxTitle]
		if idx := strings.LastIndex(cut, " "); idx > maxTitle/2 {
			cut = cut[:idx]
		}
		return cut + "..."
	}
	return "untitled idea"
}
