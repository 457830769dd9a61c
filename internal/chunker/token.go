package chunker

import (
	"strings"
	"unicode"
)

const (
	latinWordTokens  = 1.33
	arabicWordTokens = 2.0
)

// EstimateTokens gives a rough token count from the words of text.
// Arabic-script words cost more: clitics and the lack of short vowels make
// tokenizers split them further than English words.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	var total float64
	for _, w := range strings.Fields(text) {
		total += wordTokens(w)
	}
	if tokens := int(total); tokens > 0 {
		return tokens
	}
	return 1
}

func wordTokens(w string) float64 {
	for _, r := range w {
		if unicode.Is(unicode.Arabic, r) {
			return arabicWordTokens
		}
	}
	return latinWordTokens
}
