package pos

import (
	"encoding/json"
	"os"
	"text2phenotype.com/hmmtag/types"
)

type Model struct {
	Tables
	Tags  []string `json:"tags"`
	Floor float64  `json:"floor"`
}

// Train runs the counter and the estimator over sentences.
func Train(sentences []types.TaggedSentence, floor float64) (Model, error) {
	counts := Count(sentences)
	tables, err := Estimate(counts)
	if err != nil {
		return Model{}, err
	}
	return Model{
		Tables: tables,
		Tags:   TagSet(counts),
		Floor:  floor,
	}, nil
}

func (m Model) Decode(words []string) []Decoded {
	floor := m.Floor
	if !(floor > 0) {
		floor = SmallProb
	}
	return Decode(words, m.Tags, m.Tables, floor)
}

func LoadModelFromFile(modelFilePath string) (Model, error) {
	var m Model
	buf, err := os.ReadFile(modelFilePath)
	if err != nil {
		return m, err
	}

	err = json.Unmarshal(buf, &m)
	return m, err
}

func SaveModelToFile(modelFilePath string, m Model) error {
	buf, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(modelFilePath, buf, 0o644)
}
