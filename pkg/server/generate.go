package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/crewforge/crewforge/pkg/llms"
	"github.com/crewforge/crewforge/pkg/parser"
	"github.com/crewforge/crewforge/pkg/pipeline"
	"github.com/crewforge/crewforge/pkg/workflow"
)

// generateRequest is the POST /v1/generate body.
type generateRequest struct {
	Request   string `json:"request"`
	Framework string `json:"framework,omitempty"`
	Process   string `json:"process,omitempty"`
	Format    string `json:"format,omitempty"`
	Model     string `json:"model,omitempty"`
}

// generateResponse carries the artifact fields present for the requested
// format: code omits the configuration, json omits the code, both carries
// both.
type generateResponse struct {
	ID            string          `json:"id"`
	Framework     string          `json:"framework"`
	Process       string          `json:"process,omitempty"`
	Configuration json.RawMessage `json:"configuration,omitempty"`
	Code          string          `json:"code,omitempty"`
}

type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Stage    string             `json:"stage"`
	Message  string             `json:"message"`
	Problems []workflow.Problem `json:"problems,omitempty"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var body generateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "request", "invalid JSON body: "+err.Error(), nil)
		return
	}

	if strings.TrimSpace(body.Request) == "" {
		writeError(w, http.StatusBadRequest, "request", "request text is required", nil)
		return
	}
	if body.Process != "" {
		if _, err := workflow.ParseProcessType(body.Process); err != nil {
			writeError(w, http.StatusBadRequest, "request", err.Error(), nil)
			return
		}
	}
	if body.Format != "" {
		if _, err := pipeline.ParseOutputFormat(body.Format); err != nil {
			writeError(w, http.StatusBadRequest, "request", err.Error(), nil)
			return
		}
	}

	generator, err := s.generatorFor(body.Model)
	if err != nil {
		writeError(w, http.StatusBadRequest, "request", err.Error(), nil)
		return
	}

	result, err := generator.Generate(r.Context(), pipeline.Request{
		Text:      body.Request,
		Framework: body.Framework,
		Process:   body.Process,
		Format:    body.Format,
	})
	if err != nil {
		writePipelineError(w, err)
		return
	}

	resp := generateResponse{
		ID:        result.ID,
		Framework: string(result.Framework),
		Process:   string(result.Process),
	}
	if result.Format != pipeline.FormatJSON {
		resp.Code = result.Code
	}
	if result.Format != pipeline.FormatCode {
		doc, err := result.Configuration.JSON()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "pipeline", err.Error(), nil)
			return
		}
		resp.Configuration = doc
	}

	writeJSON(w, http.StatusOK, resp)
}

// writePipelineError maps the error taxonomy onto HTTP statuses: framework
// problems are the caller's (400), throttling propagates as 429 with a
// Retry-After hint, provider failures are an upstream 502, and exhausted
// parse or validation retries are 422 with the full problem list.
func writePipelineError(w http.ResponseWriter, err error) {
	var (
		unsupported *workflow.UnsupportedFrameworkError
		throttled   *llms.RateLimitedError
		provider    *llms.ProviderError
		invalid     *workflow.ValidationError
		malformed   *parser.MalformedJSONError
		noJSON      *parser.NoJSONFoundError
	)

	switch {
	case errors.As(err, &unsupported):
		writeError(w, http.StatusBadRequest, "request", err.Error(), nil)
	case errors.As(err, &throttled):
		if throttled.RetryAfter > 0 {
			seconds := (throttled.RetryAfter + time.Second - 1) / time.Second
			w.Header().Set("Retry-After", strconv.FormatInt(int64(seconds), 10))
		}
		writeError(w, http.StatusTooManyRequests, "completion", err.Error(), nil)
	case errors.As(err, &provider):
		writeError(w, http.StatusBadGateway, "completion", err.Error(), nil)
	case errors.As(err, &invalid):
		writeError(w, http.StatusUnprocessableEntity, "validation",
			"the completion did not produce a valid configuration", invalid.Problems)
	case errors.As(err, &malformed), errors.As(err, &noJSON):
		writeError(w, http.StatusUnprocessableEntity, "parsing", err.Error(), nil)
	default:
		writeError(w, http.StatusInternalServerError, "pipeline", err.Error(), nil)
	}
}

func writeError(w http.ResponseWriter, status int, stage, message string, problems []workflow.Problem) {
	writeJSON(w, status, errorResponse{Error: errorDetail{
		Stage:    stage,
		Message:  message,
		Problems: problems,
	}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode HTTP response", "error", err)
	}
}
