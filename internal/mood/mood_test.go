package mood

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		text string
		want Mood
	}{
		{name: "tired", text: "So tired after work", want: Tired},
		{name: "upper case", text: "I AM EXHAUSTED", want: Tired},
		{name: "sad", text: "feeling lonely tonight", want: Sad},
		{name: "stressed", text: "deadline tomorrow", want: Stressed},
		{name: "happy", text: "Had a great day", want: Happy},
		{name: "excited", text: "concert next week, can't wait", want: Excited},
		{name: "ideographic", text: "今日は本当に疲れた", want: Tired},
		{name: "ideographic happy", text: "ケーキ食べて幸せ", want: Happy},
		{name: "normal", text: "went to the store", want: Normal},
		{name: "empty", text: "", want: Normal},
		{name: "tired beats happy", text: "happy but so tired", want: Tired},
		{name: "sad beats stressed", text: "stress makes me sad", want: Sad},
		{name: "happy beats excited", text: "awesome, I'm happy", want: Happy},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Classify(tc.text))
		})
	}
}

func TestClassifierMatchesClassify(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Classify("sleepy"), Classifier{}.Classify("sleepy"))
}
