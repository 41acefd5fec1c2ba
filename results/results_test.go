package results

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
	"text2phenotype.com/hmmtag/pos"
	"text2phenotype.com/hmmtag/types"
)

type uploaderMock struct {
	keys []string
}

func (u *uploaderMock) Upload(data string, key string) error {
	u.keys = append(u.keys, key)
	return nil
}

func testReport(t *testing.T) Report {
	model, err := pos.Train([]types.TaggedSentence{
		{{Word: "the", Tag: "DET"}, {Word: "dog", Tag: "NOUN"}, {Word: "runs", Tag: "VERB"}},
		{{Word: "the", Tag: "DET"}, {Word: "runs", Tag: "NOUN"}},
	}, pos.SmallProb)
	require.NoError(t, err)

	gold := []types.TaggedWord{{Word: "the", Tag: "DET"}, {Word: "cat", Tag: "VERB"}}
	tagged := model.Decode(types.Words(gold))
	ev, err := pos.Evaluate(tagged, gold)
	require.NoError(t, err)
	return Report{Tables: model.Tables, Evaluation: ev, Tagged: tagged}
}

func TestRender(t *testing.T) {
	files, err := Render(testReport(t))
	require.NoError(t, err)

	assert.Equal(t, ",DET,NOUN\nNOUN,1.0,0.0\nVERB,0.0,1.0\n", string(files[TransitionsFile]))
	assert.Equal(t,
		",DET,NOUN,VERB\ndog,0.0,0.5,0.0\nruns,0.0,0.5,1.0\nthe,1.0,0.0,0.0\n",
		string(files[EmissionsFile]))
	assert.Equal(t, "accuracy\n0.5\n", string(files[AccuracyFile]))
	assert.Equal(t, "word,predicted,gold\ncat,NOUN,VERB\n", string(files[MismatchesFile]))
	assert.Equal(t, "the\tDET\ncat\tNOUN\n", string(files[PredictedFile]))
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "1.0", formatFloat(1))
	assert.Equal(t, "0.0", formatFloat(0))
	assert.Equal(t, "0.25", formatFloat(0.25))
	assert.Equal(t, "1e-08", formatFloat(1e-8))
}

func TestSaveToDirAndUpload(t *testing.T) {
	files, err := Render(testReport(t))
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "output")
	require.NoError(t, SaveToDir(dir, files))
	b, err := os.ReadFile(filepath.Join(dir, AccuracyFile))
	require.NoError(t, err)
	assert.Equal(t, files[AccuracyFile], b)

	up := &uploaderMock{}
	require.NoError(t, Upload(up, "runs/gsd", files))
	assert.Equal(t, []string{
		"runs/gsd/accuracy.csv",
		"runs/gsd/emission_probs.csv",
		"runs/gsd/mismatches.csv",
		"runs/gsd/predicted_tags.txt",
		"runs/gsd/transition_probs.csv",
	}, up.keys)
}
