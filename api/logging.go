package api

import (
	"github.com/rs/zerolog"
	"net/http"
	"text2phenotype.com/hmmtag/logger"
)

var apiLogger = logger.NewLogger("API")

const requestFieldsKey = "request"

type requestFields struct {
	Method        string `json:"method"`
	Path          string `json:"path"`
	RemoteAddr    string `json:"remote_addr"`
	ContentLength int64  `json:"content_length"`
}

func newRequestLogger(r *http.Request) zerolog.Logger {
	return apiLogger.With().
		Interface(requestFieldsKey, requestFields{
			Method:        r.Method,
			Path:          r.URL.Path,
			RemoteAddr:    r.RemoteAddr,
			ContentLength: r.ContentLength,
		}).
		Logger()
}
