package middleware

import (
	"net/http"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/rs/zerolog/log"
)

// ErrorResponse is the JSON error payload returned by every handler.
type ErrorResponse struct {
	Error   string `json:"error" description:"Error message"`
	Code    int    `json:"code" description:"HTTP status code"`
	Details string `json:"details,omitempty" description:"Additional error details"`
}

// HandleError writes the error as a JSON ErrorResponse with the given
// status code.
func HandleError(resp *restful.Response, err error, statusCode int) {
	errorResponse := ErrorResponse{
		Error: err.Error(),
		Code:  statusCode,
	}

	if writeErr := resp.WriteHeaderAndEntity(statusCode, errorResponse); writeErr != nil {
		log.Error().Err(writeErr).Msg("Failed to write error response")
	}
}

// Logger is a go-restful filter that logs every request with its
// duration and status code.
func Logger(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	start := time.Now()

	chain.ProcessFilter(req, resp)

	log.Info().
		Str("method", req.Request.Method).
		Str("path", req.Request.URL.Path).
		Int("status", resp.StatusCode()).
		Dur("duration", time.Since(start)).
		Msg("Request handled")
}

// RecoverPanic is a go-restful filter that converts handler panics into
// a 500 response instead of killing the server.
func RecoverPanic(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Str("method", req.Request.Method).
				Str("path", req.Request.URL.Path).
				Msg("Recovered from panic in handler")

			errorResponse := ErrorResponse{
				Error: "internal server error",
				Code:  http.StatusInternalServerError,
			}
			_ = resp.WriteHeaderAndEntity(http.StatusInternalServerError, errorResponse)
		}
	}()

	chain.ProcessFilter(req, resp)
}
