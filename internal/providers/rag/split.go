package rag

import (
	"strings"
	"sync"
	"unicode"

	"github.com/pkoukk/tiktoken-go"
)

const encodingName = "cl100k_base"

var (
	encoding     *tiktoken.Tiktoken
	encodingErr  error
	encodingOnce sync.Once
)

// Segment is a token-bounded slice of a document prepared for embedding.
type Segment struct {
	Text   string
	Tokens int
	Index  int
}

type SplitConfig struct {
	ChunkTokens   int
	OverlapTokens int
}

// IngestSplitConfig mirrors the offline indexing job: 1000 token chunks, 50 token overlap.
func IngestSplitConfig() SplitConfig {
	return SplitConfig{
		ChunkTokens:   1000,
		OverlapTokens: 50,
	}
}

type splitter struct {
	cfg      SplitConfig
	segments []Segment
	buf      strings.Builder
	tokens   int
}

// Split cuts text into segments along sentence boundaries. Sentences longer than
// ChunkTokens are sliced on raw token boundaries. Consecutive segments share
// at most OverlapTokens tokens, and no segment exceeds ChunkTokens.
func Split(text string, cfg SplitConfig) []Segment {
	text = strings.TrimSpace(text)
	if text == "" || cfg.ChunkTokens < 1 {
		return nil
	}

	s := &splitter{cfg: cfg}
	sentences := sentencesOf(text)

	for _, sentence := range sentences {
		n := countTokens(sentence)

		if n > cfg.ChunkTokens {
			s.flush()
			for _, part := range sliceTokens(sentence, cfg.ChunkTokens) {
				s.emit(part.Text, part.Tokens)
			}
			continue
		}

		if s.tokens+n > cfg.ChunkTokens && s.buf.Len() > 0 {
			prev := s.buf.String()
			s.flush()
			overlap, tokens := tailTokens(prev, min(cfg.OverlapTokens, cfg.ChunkTokens-n))
			s.buf.WriteString(overlap)
			s.tokens = tokens
		}

		if s.buf.Len() > 0 {
			s.buf.WriteString(" ")
		}
		s.buf.WriteString(sentence)
		s.tokens += n
	}
	s.flush()

	return s.segments
}

func (s *splitter) emit(text string, tokens int) {
	s.segments = append(s.segments, Segment{
		Text:   strings.TrimSpace(text),
		Tokens: tokens,
		Index:  len(s.segments),
	})
}

func (s *splitter) flush() {
	if s.buf.Len() == 0 {
		return
	}
	s.emit(s.buf.String(), s.tokens)
	s.buf.Reset()
	s.tokens = 0
}

func sliceTokens(text string, size int) []Segment {
	enc := tokenizer()
	if enc == nil {
		return []Segment{{Text: text, Tokens: countTokens(text)}}
	}
	ids := enc.Encode(text, nil, nil)

	var parts []Segment
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		parts = append(parts, Segment{
			Text:   enc.Decode(ids[start:end]),
			Tokens: end - start,
		})
	}
	return parts
}

var sentenceEnders = map[rune]bool{
	'.': true, '!': true, '?': true,
	'。': true, '！': true, '？': true, '．': true, '…': true,
}

func sentencesOf(text string) []string {
	var out []string

	for _, para := range paragraphsOf(text) {
		var cur strings.Builder
		runes := []rune(para)

		for i, r := range runes {
			cur.WriteRune(r)
			if !sentenceEnders[r] {
				continue
			}
			if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) && !isCJK(runes[i+1]) {
				continue
			}
			if s := strings.TrimSpace(cur.String()); s != "" {
				out = append(out, s)
			}
			cur.Reset()
		}

		if s := strings.TrimSpace(cur.String()); s != "" {
			out = append(out, s)
		}
	}

	if len(out) == 0 {
		return []string{text}
	}
	return out
}

// paragraphsOf splits on blank lines and unwraps soft line breaks.
func paragraphsOf(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(strings.ReplaceAll(p, "\n", " "))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func tokenizer() *tiktoken.Tiktoken {
	encodingOnce.Do(func() {
		encoding, encodingErr = tiktoken.GetEncoding(encodingName)
	})
	return encoding
}

// TokenizerErr reports why the BPE encoding could not be loaded, if it could not.
// Token counts fall back to whitespace-separated words in that case.
func TokenizerErr() error {
	tokenizer()
	return encodingErr
}

func countTokens(text string) int {
	if text == "" {
		return 0
	}
	enc := tokenizer()
	if enc == nil {
		return len(strings.Fields(text))
	}
	return len(enc.Encode(text, nil, nil))
}

// tailTokens returns the last n tokens of text.
func tailTokens(text string, n int) (string, int) {
	if n < 1 {
		return "", 0
	}

	enc := tokenizer()
	if enc == nil {
		words := strings.Fields(text)
		if len(words) > n {
			words = words[len(words)-n:]
		}
		return strings.Join(words, " "), len(words)
	}

	ids := enc.Encode(text, nil, nil)
	if len(ids) > n {
		ids = ids[len(ids)-n:]
	}
	tail := strings.TrimSpace(enc.Decode(ids))
	if tail == "" {
		return "", 0
	}
	return tail, len(ids)
}

func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r) ||
		unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) ||
		unicode.Is(unicode.Hangul, r)
}
