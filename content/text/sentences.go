// Package text has helpers working with natural language text.
package text

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
	"go.uber.org/zap"
)

type Splitter struct {
	*sentences.DefaultSentenceTokenizer
}

// NewSplitter returns english sentence splitter. When tokenizer cannot be
// initialized nil is returned, nil splitter treats its input as a single
// sentence.
func NewSplitter(log *zap.Logger) *Splitter {
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		log.Warn("Unable to load sentences tokenizer data, turning off sentence splitting", zap.Error(err))
		return nil
	}
	return &Splitter{tokenizer}
}

// Split returns slice of sentences. Concatenation of the result is always
// equal to the input.
func (s *Splitter) Split(in string) []string {

	var sentences []string
	if s == nil {
		return append(sentences, in)
	}

	for _, sentence := range s.Tokenize(in) {
		sentences = append(sentences, sentence.Text)
	}

	// Sentences tokenizer has a funny way of working - sentence trailing
	// spaces belong to the next sentence. Move them back.
	for i := range len(sentences) - 1 {
		for idx, sym := range sentences[i+1] {
			if !unicode.IsSpace(sym) {
				sentences[i] = sentences[i] + sentences[i+1][0:idx]
				sentences[i+1] = sentences[i+1][idx:]
				break
			}
		}
	}
	return sentences
}

// Budget shortens text to at most limit characters. The cut is made after
// the last complete sentence that fits, when even the first sentence is too
// long - after the last complete word. Second value reports whether text was
// shortened. Non-positive limit means no limit.
func (s *Splitter) Budget(in string, limit int) (string, bool) {
	if limit <= 0 || utf8.RuneCountInString(in) <= limit {
		return in, false
	}

	var (
		cut, used int
	)
	for _, sentence := range s.Split(in) {
		n := utf8.RuneCountInString(sentence)
		if used+n > limit {
			break
		}
		used += n
		cut += len(sentence)
	}
	if cut > 0 {
		return strings.TrimRightFunc(in[:cut], unicode.IsSpace), true
	}

	// first sentence alone does not fit, fall back to words
	head, n := in, 0
	for i := range in {
		if n == limit {
			head = in[:i]
			break
		}
		n++
	}
	if next, _ := utf8.DecodeRuneInString(in[len(head):]); !unicode.IsSpace(next) {
		if idx := strings.LastIndexFunc(head, unicode.IsSpace); idx > 0 {
			head = head[:idx]
		}
	}
	return strings.TrimRightFunc(head, unicode.IsSpace), true
}
