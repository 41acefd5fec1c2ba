package corpus

import (
	"fmt"
	"math/rand"
	"strconv"
	"text2phenotype.com/hmmtag/types"
	"text2phenotype.com/hmmtag/utils"
)

// Split shuffles sentences with a fixed seed and cuts them into train and
// test parts. The train part gets floor(trainSize*n) sentences.
func Split(sentences []types.TaggedSentence, trainSize float64, seed int64) ([]types.TaggedSentence, []types.TaggedSentence, error) {
	if !(trainSize > 0 && trainSize < 1) {
		return nil, nil, fmt.Errorf("train size must be in (0, 1), got %v", trainSize)
	}

	n := len(sentences)
	nTrain := int(trainSize * float64(n))
	nTest := n - nTrain

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	test := make([]types.TaggedSentence, 0, nTest)
	for _, idx := range perm[:nTest] {
		test = append(test, sentences[idx])
	}
	train := make([]types.TaggedSentence, 0, nTrain)
	for _, idx := range perm[nTest:] {
		train = append(train, sentences[idx])
	}
	return train, test, nil
}

// Fingerprint identifies a corpus by content and order.
func Fingerprint(sentences []types.TaggedSentence) string {
	fields := make([]string, 0, 1+len(sentences)*2)
	fields = append(fields, strconv.Itoa(len(sentences)))
	for _, sent := range sentences {
		for _, p := range sent {
			fields = append(fields, p.Word, p.Tag)
		}
		fields = append(fields, "")
	}
	return utils.HashHex(utils.HashFields(fields...))
}
