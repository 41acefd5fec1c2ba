package pipeline

import (
	"sync"
	"text2phenotype.com/hmmtag/pos"
)

type sentence struct {
	index  int
	words  []string
	tagged []pos.Decoded
}

// NewPOSTagger tags every incoming sentence in its own goroutine. The model
// tables are read-only, so the goroutines share them without locking.
func NewPOSTagger(tagger pos.Tagger) func(in <-chan sentence) <-chan sentence {
	return func(in <-chan sentence) <-chan sentence {
		out := make(chan sentence)
		go func() {
			defer close(out)
			var wg sync.WaitGroup
			for sent := range in {
				wg.Add(1)
				go func(sent sentence) {
					defer wg.Done()
					sent.tagged = tagger(sent.words)
					out <- sent
				}(sent)
			}
			wg.Wait()
		}()
		return out
	}
}
