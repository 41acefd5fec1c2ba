package api

import (
	"encoding/json"
	"github.com/google/uuid"
	"io"
	"net/http"
	"text2phenotype.com/hmmtag/pipeline"
)

const maxBodySize = 10 << 20

type Request struct {
	Pipeline pipeline.Pipeline
}

type tagRequestBody struct {
	Sentences [][]string `json:"sentences"`
	Text      string     `json:"text"`
}

func (req *Request) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/tag", req.Tag)
	return mux
}

// Tag decodes the posted sentences and answers with the tagged words.
func (req *Request) Tag(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	logger := newRequestLogger(r)

	if r.Method != http.MethodPost {
		logger.Err(nil).Int("status", http.StatusMethodNotAllowed).Msg("Only 'POST' method is allowed here")
		http.Error(w, "", http.StatusMethodNotAllowed)
		return
	}

	msg, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		logger.Err(err).Int("status", http.StatusBadRequest).Msg("Could not read request body")
		http.Error(w, "", http.StatusBadRequest)
		return
	}

	var body tagRequestBody
	if err := json.Unmarshal(msg, &body); err != nil {
		logger.Err(err).Int("status", http.StatusBadRequest).Msg("Request body is not valid JSON")
		http.Error(w, "", http.StatusBadRequest)
		return
	}

	sentences := body.Sentences
	if len(sentences) == 0 {
		sentences = pipeline.SentencesFromText(body.Text)
	}
	if len(sentences) == 0 {
		logger.Err(nil).Int("status", http.StatusBadRequest).Msg("Nothing to tag")
		http.Error(w, "", http.StatusBadRequest)
		return
	}

	request := pipeline.Request{
		Tid:       uuid.NewString(),
		Sentences: sentences,
	}
	logger.Info().Str("tid", request.Tid).Msg("Starting pipeline for request from API")
	resp, ok := <-req.Pipeline(request)
	if !ok {
		logger.Error().Str("tid", request.Tid).Int("status", http.StatusInternalServerError).Msg("Pipeline closed without response")
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	buf, err := json.Marshal(resp)
	if err != nil {
		logger.Err(err).Int("status", http.StatusInternalServerError).Msg("Failed to marshal response")
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
	_, _ = w.Write(buf)
	logger.Info().Str("tid", request.Tid).Int("status", http.StatusOK).Msg("Finished processing request")
}
