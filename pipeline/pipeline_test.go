package pipeline

import (
	"fmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"text2phenotype.com/hmmtag/pos"
	"text2phenotype.com/hmmtag/types"
)

func testModel(t *testing.T) pos.Model {
	model, err := pos.Train([]types.TaggedSentence{
		{{Word: "the", Tag: "DET"}, {Word: "dog", Tag: "NOUN"}, {Word: "runs", Tag: "VERB"}},
		{{Word: "a", Tag: "DET"}, {Word: "cat", Tag: "NOUN"}, {Word: "sleeps", Tag: "VERB"}},
	}, pos.SmallProb)
	require.NoError(t, err)
	return model
}

func tags(decoded []pos.Decoded) []string {
	res := make([]string, len(decoded))
	for i, d := range decoded {
		res[i] = d.TagOrEmpty()
	}
	return res
}

func TestPipelineKeepsOrder(t *testing.T) {
	ppln := New(testModel(t))

	var request Request
	request.Tid = "order"
	for i := 0; i < 50; i++ {
		if i%2 == 0 {
			request.Sentences = append(request.Sentences, []string{"the", "dog", "runs"})
		} else {
			request.Sentences = append(request.Sentences, []string{fmt.Sprintf("cat%d", i)})
		}
	}

	resp, ok := <-ppln(request)
	require.True(t, ok)
	assert.Equal(t, "order", resp.Tid)
	require.Len(t, resp.Sentences, 50)
	for i, sent := range resp.Sentences {
		if i%2 == 0 {
			assert.Equal(t, []string{"DET", "NOUN", "VERB"}, tags(sent))
		} else {
			require.Len(t, sent, 1)
			assert.Equal(t, fmt.Sprintf("cat%d", i), sent[0].Word)
		}
	}
}

func TestPipelineEmptyRequest(t *testing.T) {
	resp, ok := <-New(testModel(t))(Request{Tid: "empty"})
	require.True(t, ok)
	assert.Empty(t, resp.Sentences)
}

func TestSentencesFromText(t *testing.T) {
	got := SentencesFromText("the dog  runs\n\n  a cat sleeps \n")
	assert.Equal(t, [][]string{{"the", "dog", "runs"}, {"a", "cat", "sleeps"}}, got)
}
