package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnippet(t *testing.T) {
	matched := func(terms ...string) map[string]struct{} {
		m := make(map[string]struct{}, len(terms))
		for _, term := range terms {
			m[term] = struct{}{}
		}
		return m
	}

	tests := []struct {
		name    string
		text    string
		matched map[string]struct{}
		want    string
	}{
		{
			name:    "short text returned whole",
			text:    "בדיקה הנדסית של מערכת החשמל",
			matched: matched("חשמל"),
			want:    "בדיקה הנדסית של מערכת החשמל",
		},
		{
			name:    "window centers on the first match",
			text:    "item01 item02 item03 item04 item05 item06 item07 item08 חשמל item10 item11 item12 item13 item14 item15",
			matched: matched("חשמל"),
			want:    "... item04 item05 item06 item07 item08 חשמל item10 item11 item12 item13 item14 ...",
		},
		{
			name:    "match near the end keeps the tail",
			text:    "צוות האחזקה ביצע סיור שבועי בקומה השלישית ומצא ליקוי בצנרת המים ליד חדר המדרגות",
			matched: matched("צנרת"),
			want:    "... שבועי בקומה השלישית ומצא ליקוי בצנרת המים ליד חדר המדרגות",
		},
		{
			name:    "particle prefix and punctuation still match",
			text:    "נמצאה תקלה בארון החשמל, ליד המעלית",
			matched: matched("חשמל"),
			want:    "נמצאה תקלה בארון החשמל, ליד המעלית",
		},
		{
			name:    "no match falls back to the opening",
			text:    "item01 item02 item03 item04 item05 item06 item07 item08 item09 item10 item11 item12 item13",
			matched: matched("צנרת"),
			want:    "item01 item02 item03 item04 item05 item06 ...",
		},
		{
			name:    "nil matched set",
			text:    "בדיקה קצרה",
			matched: nil,
			want:    "בדיקה קצרה",
		},
		{
			name:    "empty text",
			text:    "",
			matched: matched("חשמל"),
			want:    "",
		},
		{
			name:    "whitespace only",
			text:    "  \t \n ",
			matched: matched("חשמל"),
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Snippet(tt.text, tt.matched))
		})
	}
}
