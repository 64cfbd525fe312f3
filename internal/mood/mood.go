// Package mood classifies free text into a small mood vocabulary by keyword
// containment.
package mood

import "strings"

type Mood string

const (
	Happy    Mood = "happy"
	Tired    Mood = "tired"
	Sad      Mood = "sad"
	Excited  Mood = "excited"
	Stressed Mood = "stressed"
	Normal   Mood = "normal"
)

// All lists every mood, Normal last.
var All = []Mood{Happy, Tired, Sad, Excited, Stressed, Normal}

type rule struct {
	mood     Mood
	keywords []string
}

// Checked in order; the first mood with a matching keyword wins.
var rules = []rule{
	{Tired, []string{"tired", "exhausted", "sleepy", "worn out", "no energy", "疲れ", "眠い", "しんどい", "だるい"}},
	{Sad, []string{"sad", "lonely", "cry", "crying", "depressed", "heartbroken", "悲しい", "寂しい", "泣", "つらい"}},
	{Stressed, []string{"stress", "anxious", "overwhelmed", "deadline", "pressure", "frustrated", "ストレス", "イライラ", "忙しい", "不安"}},
	{Happy, []string{"happy", "glad", "fun", "great", "love", "yay", "嬉しい", "楽しい", "幸せ", "よかった"}},
	{Excited, []string{"excited", "can't wait", "amazing", "awesome", "hyped", "!!", "ワクワク", "最高", "すごい"}},
}

// Classify returns the first mood, in priority order tired, sad, stressed,
// happy, excited, whose keywords appear in text. Otherwise Normal.
func Classify(text string) Mood {
	lower := strings.ToLower(text)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.mood
			}
		}
	}
	return Normal
}

// Classifier adapts Classify to an interface value.
type Classifier struct{}

func (Classifier) Classify(text string) Mood { return Classify(text) }
