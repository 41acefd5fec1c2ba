package pos

// SmallProb stands in for every transition or emission never seen in training.
const SmallProb = 1e-8

// Decoded pairs an input word with its predicted tag. Tag is nil when no tag
// scored above zero, which only happens with an empty tag set.
type Decoded struct {
	Word string  `json:"word"`
	Tag  *string `json:"tag"`
}

func (d Decoded) TagOrEmpty() string {
	if d.Tag == nil {
		return ""
	}
	return *d.Tag
}

// Decode picks a tag for every word from left to right. Each position only
// looks at the tag chosen for the previous word; there is no lattice and no
// backtracking, so the result is locally but not globally optimal.
//
// Scores are raw products of probabilities. Ties keep the tag that comes
// first in tags.
func Decode(words []string, tags []string, t Tables, floor float64) []Decoded {
	res := make([]Decoded, len(words))
	var prev *string

	for i, w := range words {
		var best *string
		bestScore := 0.0

		for _, tag := range tags {
			var transP float64
			if i == 0 {
				transP = lookup(t.Pi, tag, floor)
			} else if prev != nil {
				transP = lookup(t.A[*prev], tag, floor)
			} else {
				transP = floor
			}
			emisP := lookup(t.B[tag], w, floor)

			score := transP * emisP
			if score > bestScore {
				bestScore = score
				chosen := tag
				best = &chosen
			}
		}

		res[i] = Decoded{Word: w, Tag: best}
		prev = best
	}

	return res
}

func lookup(row map[string]float64, key string, floor float64) float64 {
	if p, ok := row[key]; ok {
		return p
	}
	return floor
}
