package rag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		text string
		cfg  SplitConfig
		want []string
	}{
		{
			name: "empty input",
			text: "",
			cfg:  IngestSplitConfig(),
			want: nil,
		},
		{
			name: "whitespace only",
			text: "   \n\t   ",
			cfg:  IngestSplitConfig(),
			want: nil,
		},
		{
			name: "single sentence fits",
			text: "Insulin lowers blood sugar.",
			cfg:  SplitConfig{ChunkTokens: 10},
			want: []string{"Insulin lowers blood sugar."},
		},
		{
			name: "split by sentence",
			text: "First sentence. Second sentence.",
			cfg:  SplitConfig{ChunkTokens: 3},
			want: []string{"First sentence.", "Second sentence."},
		},
		{
			name: "split with overlap",
			text: "Sentence one. Sentence two. Sentence three.",
			cfg:  SplitConfig{ChunkTokens: 6, OverlapTokens: 3},
			want: []string{"Sentence one. Sentence two.", "Sentence two. Sentence three."},
		},
		{
			name: "long sentence sliced by tokens",
			text: "One two three four five six.",
			cfg:  SplitConfig{ChunkTokens: 3},
			want: []string{"One two three", "four five six", "."},
		},
		{
			name: "paragraphs joined",
			text: "Para one.\n\nPara two.",
			cfg:  SplitConfig{ChunkTokens: 10},
			want: []string{"Para one. Para two."},
		},
		{
			name: "cjk sentences",
			text: "你好世界。这是一个测试。",
			cfg:  SplitConfig{ChunkTokens: 20},
			want: []string{"你好世界。 这是一个测试。"},
		},
		{
			name: "zero chunk size",
			text: "Anything.",
			cfg:  SplitConfig{},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, TokenizerErr())

			segments := Split(tt.text, tt.cfg)

			var got []string
			for i, s := range segments {
				got = append(got, s.Text)
				assert.Equal(t, i, s.Index)
				assert.Positive(t, s.Tokens)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCountTokens(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"Hello", 1},
		{"Hello world", 2},
		{"Hello, world!", 4},
		{"", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, countTokens(tt.text), tt.text)
	}
}

func TestSentencesOf(t *testing.T) {
	got := sentencesOf("Hello world. How are you? I am fine.")
	assert.Equal(t, []string{"Hello world.", "How are you?", "I am fine."}, got)

	assert.Equal(t, []string{"Take 2.5 mg daily."}, sentencesOf("Take 2.5 mg daily."))
}

func TestSplit_OverlapStaysWithinBudget(t *testing.T) {
	require.NoError(t, TokenizerErr())

	first := strings.TrimSpace(strings.Repeat("alpha ", 600)) + "."
	second := strings.TrimSpace(strings.Repeat("beta ", 600)) + "."
	cfg := SplitConfig{ChunkTokens: 1000, OverlapTokens: 50}

	segments := Split(first+" "+second, cfg)

	require.Len(t, segments, 2)
	for _, s := range segments {
		assert.LessOrEqual(t, s.Tokens, cfg.ChunkTokens)
	}
	assert.LessOrEqual(t, segments[1].Tokens, countTokens(second)+cfg.OverlapTokens)
	assert.True(t, strings.HasSuffix(segments[1].Text, second))
	assert.True(t, strings.HasPrefix(segments[1].Text, "alpha"))
}

func TestSplit_OverlapDroppedWhenSentenceFillsChunk(t *testing.T) {
	require.NoError(t, TokenizerErr())

	segments := Split("Sentence one. Sentence two three.", SplitConfig{ChunkTokens: 4, OverlapTokens: 3})

	var got []string
	for _, s := range segments {
		got = append(got, s.Text)
		assert.LessOrEqual(t, s.Tokens, 4)
	}
	assert.Equal(t, []string{"Sentence one.", "Sentence two three."}, got)
}

func TestTailTokens(t *testing.T) {
	require.NoError(t, TokenizerErr())

	tail, n := tailTokens("Sentence one. Sentence two.", 3)
	assert.Equal(t, "Sentence two.", tail)
	assert.Equal(t, 3, n)

	tail, n = tailTokens("Sentence one.", 0)
	assert.Empty(t, tail)
	assert.Zero(t, n)
}
