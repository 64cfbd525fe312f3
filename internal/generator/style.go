package generator

import (
	"strings"

	"local.dev/oshi-engine/internal/models"
)

const sweetSuffix = " ♡"

// Substitutions run in a single pass; at each position the first listed
// pattern that matches wins.
var (
	formalReplacer = strings.NewReplacer(
		"I'm", "I am",
		"you're", "you are",
		"You're", "You are",
		"don't", "do not",
		"Don't", "Do not",
		"can't", "cannot",
		"it's", "it is",
		"It's", "It is",
		"Let's", "Let us",
		"Yay", "Wonderful",
		"Hehe, ", "",
		"!", ".",
	)
	dialectReplacer = strings.NewReplacer(
		"you all", "y'all",
		"going to", "fixin' to",
		"Hello", "Howdy",
		"Hi ", "Howdy ",
		"your", "yer",
		"you", "ya",
		"friend", "pardner",
	)
	characterReplacer = strings.NewReplacer(
		".", "~♪",
		"!", "!♪",
	)
)

// ApplyStyle rewrites text in the given speech style. Unknown styles leave
// text unchanged.
func ApplyStyle(style models.SpeechStyle, text string) string {
	switch style {
	case models.StyleFormal:
		return formalReplacer.Replace(text)
	case models.StyleSweet:
		if strings.HasSuffix(text, sweetSuffix) {
			return text
		}
		return text + sweetSuffix
	case models.StyleDialect:
		return dialectReplacer.Replace(text)
	case models.StyleCharacter:
		return characterReplacer.Replace(text)
	default:
		return text
	}
}
