package pos

type Tagger func(words []string) []Decoded

func NewTagger(model Model) Tagger {
	return func(words []string) []Decoded {
		if len(words) == 0 {
			return []Decoded{}
		}
		return model.Decode(words)
	}
}
