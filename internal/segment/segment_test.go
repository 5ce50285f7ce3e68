package segment

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSegmenter_Split(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "two plain sentences",
			input:    "He left. She stayed.",
			expected: []string{"He left.", "She stayed."},
		},
		{
			name:     "quote closed period splits",
			input:    `He said "Stop." Then left.`,
			expected: []string{`He said "Stop."`, "Then left."},
		},
		{
			name:     "terminators inside quoted speech do not split",
			input:    `He said "Stop. Now." and walked away.`,
			expected: []string{`He said "Stop. Now."`, "and walked away."},
		},
		{
			name:     "quoted span mid sentence",
			input:    `"Wait," she said. "Go!"`,
			expected: []string{`"Wait," she said.`, `"Go!"`},
		},
		{
			name:     "sentence ending in quote",
			input:    `He said, "Hi."`,
			expected: []string{`He said, "Hi."`},
		},
		{
			name:     "exclamation and question",
			input:    "Run! Why? Because.",
			expected: []string{"Run!", "Why?", "Because."},
		},
		{
			name:     "ellipsis stays attached",
			input:    "Wait... what?",
			expected: []string{"Wait...", "what?"},
		},
		{
			name:     "terminator followed by letter continues",
			input:    "Version 2.5 shipped today.",
			expected: []string{"Version 2.5 shipped today."},
		},
		{
			name:     "single quote closes sentence",
			input:    "She whispered 'enough.' Then silence.",
			expected: []string{"She whispered 'enough.'", "Then silence."},
		},
		{
			name:     "line breaks collapse",
			input:    "The rain\nfell hard. The\r\nroof held.",
			expected: []string{"The rain fell hard.", "The roof held."},
		},
		{
			name:     "trailing fragment without terminator is dropped",
			input:    "It ended. And then",
			expected: []string{"It ended."},
		},
	}

	seg := Default()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, seg.Split(tt.input))
		})
	}
}

func TestSegmenter_Split_NoTerminator(t *testing.T) {
	seg := Default()

	assert.Empty(t, seg.Split("no terminator here"))
	assert.Empty(t, seg.Split(""))
	assert.Empty(t, seg.Split("   "))
}

func TestSegmenter_Split_UnterminatedTail(t *testing.T) {
	seg := Default()
	text := "Start. " + strings.Repeat("word ", 2000)

	start := time.Now()
	result := seg.Split(text)

	assert.Equal(t, []string{"Start."}, result)
	assert.Less(t, time.Since(start), 250*time.Millisecond)
}

func TestTerminated(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"ends on terminator", "He left.", "He left."},
		{"unterminated tail", "He left. and then", "He left."},
		{"closing quote kept", `He said "Go." and then`, `He said "Go."`},
		{"single quote kept", "It was 'done.' so", "It was 'done.'"},
		{"terminator inside word", "Visit example.com now", ""},
		{"tail with a quote", `He left. She said "no`, `He left. She said "no`},
		{"no terminator", "nothing here", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, terminated(tt.input))
		})
	}
}

func TestSegmenter_SplitParagraph(t *testing.T) {
	seg := Default()

	result := seg.SplitParagraph([]string{"The door", "opened. Nobody", "came in."})
	assert.Equal(t, []string{"The door opened.", "Nobody came in."}, result)
}

func TestNew_DefaultTimeout(t *testing.T) {
	seg := New(Config{})
	assert.Equal(t, defaultMatchTimeout, seg.re.MatchTimeout)

	seg = New(Config{MatchTimeout: defaultMatchTimeout * 2})
	assert.Equal(t, defaultMatchTimeout*2, seg.re.MatchTimeout)
}
