package openiti

import "strings"

// StripPhraseTags removes every inline tag from text and returns the
// remaining prose with whitespace runs collapsed to one space. The result
// may be empty. StripPhraseTags(StripPhraseTags(s)) == StripPhraseTags(s).
func StripPhraseTags(text string) string {
	for {
		out := stripOnce(text)
		if out == text {
			return out
		}
		text = out
	}
}

// stripOnce runs the two removal passes. Removing a tag can splice its
// neighbours into a new tag, so StripPhraseTags repeats until stable.
func stripOnce(text string) string {
	for _, tag := range phraseTags {
		text = strings.ReplaceAll(text, tag, "")
	}
	text = strippableRe.ReplaceAllString(text, "")
	text = whitespaceRunRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
