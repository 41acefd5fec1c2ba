package pipeline

import (
	"strings"
	"text2phenotype.com/hmmtag/pos"
)

type Request struct {
	Tid       string     `json:"tid"`
	Sentences [][]string `json:"sentences"`
}

type Response struct {
	Tid       string          `json:"tid"`
	Sentences [][]pos.Decoded `json:"sentences"`
}

// SentencesFromText makes one sentence per non-blank line, splitting words
// on whitespace.
func SentencesFromText(text string) [][]string {
	var sentences [][]string
	for _, line := range strings.Split(text, "\n") {
		words := strings.Fields(line)
		if len(words) == 0 {
			continue
		}
		sentences = append(sentences, words)
	}
	return sentences
}
