package pos

import "text2phenotype.com/hmmtag/types"

// Counts holds the raw frequencies collected from a tagged corpus.
type Counts struct {
	Initial     map[string]int            `json:"initial"`
	Tags        map[string]int            `json:"tags"`
	Emissions   map[string]map[string]int `json:"emissions"`
	Transitions map[string]map[string]int `json:"transitions"`
}

func NewCounts() Counts {
	return Counts{
		Initial:     make(map[string]int),
		Tags:        make(map[string]int),
		Emissions:   make(map[string]map[string]int),
		Transitions: make(map[string]map[string]int),
	}
}

// Count scans the corpus once. Empty sentences are ignored.
func Count(sentences []types.TaggedSentence) Counts {
	c := NewCounts()
	for _, sent := range sentences {
		c.Add(sent)
	}
	return c
}

func (c Counts) Add(sent types.TaggedSentence) {
	if len(sent) == 0 {
		return
	}

	first := sent[0]
	c.Initial[first.Tag]++
	c.Tags[first.Tag]++
	increment(c.Emissions, first.Tag, first.Word)

	prev := first.Tag
	for _, pair := range sent[1:] {
		c.Tags[pair.Tag]++
		increment(c.Emissions, pair.Tag, pair.Word)
		increment(c.Transitions, prev, pair.Tag)
		prev = pair.Tag
	}
}

// Sentences is the number of non-empty sentences counted.
func (c Counts) Sentences() int {
	total := 0
	for _, n := range c.Initial {
		total += n
	}
	return total
}

// EmissionTotal sums the emission counts of tag; it always equals Tags[tag].
func (c Counts) EmissionTotal(tag string) int {
	total := 0
	for _, n := range c.Emissions[tag] {
		total += n
	}
	return total
}

func increment(table map[string]map[string]int, outer, inner string) {
	row, ok := table[outer]
	if !ok {
		row = make(map[string]int)
		table[outer] = row
	}
	row[inner]++
}
