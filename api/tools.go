package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dailymcp/daily/internal/log"
	"github.com/dailymcp/daily/internal/tools"
)

// maxRequestBody bounds tool invocation bodies. Tool inputs are small
// structured objects; anything near this limit is abuse.
const maxRequestBody = 1 << 20

// ToolsHandler handles the tool catalog and invocation endpoints.
type ToolsHandler struct {
	registry   *tools.Registry
	dispatcher *tools.Dispatcher
	logger     log.Logger
}

// NewToolsHandler creates a new tools handler.
func NewToolsHandler(registry *tools.Registry, dispatcher *tools.Dispatcher, logger log.Logger) *ToolsHandler {
	return &ToolsHandler{registry: registry, dispatcher: dispatcher, logger: logger}
}

// RegisterRoutes registers tool routes on the given mux.
func (h *ToolsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/tools", h.list)
	mux.HandleFunc("POST /api/tools/{name}", h.invoke)
}

// toolListResponse is the GET /api/tools payload.
type toolListResponse struct {
	Tools []tools.Info `json:"tools"`
}

// list returns the tool catalog with declared input and output schemas.
func (h *ToolsHandler) list(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toolListResponse{Tools: h.registry.List()})
}

// invokeResponse is the POST /api/tools/{name} success payload.
type invokeResponse struct {
	Tool     string         `json:"tool"`
	Output   map[string]any `json:"output"`
	Cached   bool           `json:"cached"`
	Attempts int            `json:"attempts,omitempty"`
}

// invoke dispatches one tool call. The request body is the tool input
// object; an empty body means an empty input, which is valid for tools
// whose fields are all defaulted.
func (h *ToolsHandler) invoke(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	input, err := readInput(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	res := h.dispatcher.Dispatch(r.Context(), name, input)
	if !res.OK() {
		writeToolError(w, res.Err)
		return
	}

	writeJSON(w, http.StatusOK, invokeResponse{
		Tool:     name,
		Output:   res.Output,
		Cached:   res.Cached,
		Attempts: res.Attempts,
	})
}

// readInput decodes the request body into a tool input map.
func readInput(r *http.Request) (map[string]any, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		return nil, errors.New("reading request body failed")
	}
	if len(body) == 0 {
		return map[string]any{}, nil
	}
	var input map[string]any
	if err := json.Unmarshal(body, &input); err != nil {
		return nil, errors.New("request body must be a JSON object")
	}
	if input == nil {
		input = map[string]any{}
	}
	return input, nil
}
