package pipeline

import (
	"text2phenotype.com/hmmtag/logger"
	"text2phenotype.com/hmmtag/pos"
)

type Pipeline func(request Request) <-chan Response

func New(model pos.Model) Pipeline {
	hmmLogger := logger.NewLogger("Tagging pipeline")
	tagger := NewPOSTagger(pos.NewTagger(model))

	return func(request Request) <-chan Response {
		responseChan := make(chan Response, 1)
		pplnLog := hmmLogger.With().Str("tid", request.Tid).Logger()
		pplnLog.Info().Int("sentences", len(request.Sentences)).Msg("Started tagging pipeline")

		go func() {
			defer close(responseChan)
			in := make(chan sentence)
			tagged := tagger(in)

			go func() {
				defer close(in)
				for i, words := range request.Sentences {
					in <- sentence{index: i, words: words}
				}
			}()

			// results arrive in completion order
			sentences := make([][]pos.Decoded, len(request.Sentences))
			for sent := range tagged {
				sentences[sent.index] = sent.tagged
			}

			pplnLog.Info().Msg("Finished tagging pipeline")
			responseChan <- Response{Tid: request.Tid, Sentences: sentences}
		}()

		return responseChan
	}
}
