package web

import (
	"net/http"

	"github.com/go-chi/render"
)

// ErrResponse is the JSON error body returned for failed requests.
type ErrResponse struct {
	HTTPStatusCode int    `json:"-"`
	StatusText     string `json:"status"`
	ErrorText      string `json:"error,omitempty"`
}

// Render sets the response status before the body is written.
func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

var (
	ErrNotFound         = &ErrResponse{HTTPStatusCode: http.StatusNotFound, StatusText: "Resource not found."}
	ErrMethodNotAllowed = &ErrResponse{HTTPStatusCode: http.StatusMethodNotAllowed, StatusText: "Method not allowed."}
)

// ErrNotWebsocket is returned when /ws is fetched without an upgrade handshake.
var ErrNotWebsocket = &ErrResponse{
	HTTPStatusCode: http.StatusBadRequest,
	StatusText:     "Websocket upgrade required.",
	ErrorText:      "connect with a websocket client",
}
