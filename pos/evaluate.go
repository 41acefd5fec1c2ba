package pos

import (
	"errors"
	"fmt"
	"text2phenotype.com/hmmtag/types"
)

var ErrLengthMismatch = errors.New("predicted and gold sequences differ in length")

type Evaluation struct {
	Accuracy   float64          `json:"accuracy"`
	Correct    int              `json:"correct"`
	Total      int              `json:"total"`
	Mismatches []types.Mismatch `json:"mismatches"`
}

// Evaluate pairs predictions with gold tags by position.
func Evaluate(predicted []Decoded, gold []types.TaggedWord) (Evaluation, error) {
	if len(predicted) != len(gold) {
		return Evaluation{}, fmt.Errorf("%w: %d predicted, %d gold", ErrLengthMismatch, len(predicted), len(gold))
	}

	ev := Evaluation{
		Total:      len(gold),
		Mismatches: []types.Mismatch{},
	}
	for i, p := range predicted {
		g := gold[i]
		if p.Tag != nil && *p.Tag == g.Tag {
			ev.Correct++
			continue
		}
		ev.Mismatches = append(ev.Mismatches, types.Mismatch{
			Word:      p.Word,
			Predicted: p.Tag,
			Gold:      g.Tag,
		})
	}

	if ev.Total > 0 {
		ev.Accuracy = float64(ev.Correct) / float64(ev.Total)
	}
	return ev, nil
}
