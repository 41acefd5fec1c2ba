package types

// TaggedWord is a single (word, tag) observation of a corpus.
type TaggedWord struct {
	Word string `json:"word"`
	Tag  string `json:"tag"`
}

// TaggedSentence keeps words in their linear sentence order.
type TaggedSentence []TaggedWord

// Mismatch is a position where the predicted tag differs from the gold tag.
// Predicted is nil when the decoder could not select any tag.
type Mismatch struct {
	Word      string  `json:"word"`
	Predicted *string `json:"predicted"`
	Gold      string  `json:"gold"`
}

func (m Mismatch) PredictedTag() string {
	if m.Predicted == nil {
		return ""
	}
	return *m.Predicted
}

func Flatten(sentences []TaggedSentence) []TaggedWord {
	total := 0
	for _, sent := range sentences {
		total += len(sent)
	}
	pairs := make([]TaggedWord, 0, total)
	for _, sent := range sentences {
		pairs = append(pairs, sent...)
	}
	return pairs
}

func Words(pairs []TaggedWord) []string {
	words := make([]string, len(pairs))
	for i, p := range pairs {
		words[i] = p.Word
	}
	return words
}

func (sent TaggedSentence) Words() []string {
	return Words(sent)
}
