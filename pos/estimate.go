package pos

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrEmptyCorpus        = errors.New("empty training corpus")
	ErrInconsistentCounts = errors.New("inconsistent counts")
)

// Tables are the maximum-likelihood parameters of the model. They are never
// mutated after Estimate returns, so one instance may serve concurrent decoders.
type Tables struct {
	Pi map[string]float64            `json:"pi"`
	A  map[string]map[string]float64 `json:"transitions"`
	B  map[string]map[string]float64 `json:"emissions"`
}

func Estimate(c Counts) (Tables, error) {
	totalInit := c.Sentences()
	if totalInit == 0 {
		return Tables{}, ErrEmptyCorpus
	}

	t := Tables{
		Pi: make(map[string]float64, len(c.Initial)),
		A:  make(map[string]map[string]float64, len(c.Transitions)),
		B:  make(map[string]map[string]float64, len(c.Emissions)),
	}

	for tag, n := range c.Initial {
		t.Pi[tag] = float64(n) / float64(totalInit)
	}

	for prev, next := range c.Transitions {
		total := 0
		for _, n := range next {
			total += n
		}
		if total == 0 {
			continue
		}
		row := make(map[string]float64, len(next))
		for tag, n := range next {
			row[tag] = float64(n) / float64(total)
		}
		t.A[prev] = row
	}

	for tag, words := range c.Emissions {
		total := c.Tags[tag]
		if total <= 0 {
			return Tables{}, fmt.Errorf("%w: tag %q has emissions but no occurrences", ErrInconsistentCounts, tag)
		}
		row := make(map[string]float64, len(words))
		for word, n := range words {
			row[word] = float64(n) / float64(total)
		}
		t.B[tag] = row
	}

	return t, nil
}

// TagSet returns every tag seen in training, sorted. The order decides which
// tag wins a tie while decoding.
func TagSet(c Counts) []string {
	tags := make([]string, 0, len(c.Tags))
	for tag := range c.Tags {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
