package geolib

import (
	"encoding/json"
	"net/http"
	"strings"
)

type httpHandler struct {
	locator *Locator
}

func (h httpHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	switch strings.TrimSuffix(req.URL.Path, "/") {
	case "":
		switch req.Method {
		case http.MethodGet, http.MethodHead:
			h.handleGetLocate(w, req)
		case http.MethodPost:
			h.handlePost(w, req)
		default:
			h.sendError(w, nil, "This HTTP method is not allowed", http.StatusMethodNotAllowed)
		}
	case "/stats":
		switch req.Method {
		case http.MethodGet, http.MethodHead:
			h.handleGetStats(w, req)
		default:
			h.sendError(w, nil, "This HTTP method is not allowed", http.StatusMethodNotAllowed)
		}
	default:
		h.sendError(w, nil, "Not found", http.StatusNotFound)
	}
}

func (h httpHandler) encodeJSON(w http.ResponseWriter, data interface{}) {
	encoder := json.NewEncoder(w)

	w.Header().Set("Content-Type", "application/json")
	encoder.SetEscapeHTML(false)
	encoder.Encode(data) // nolint: errcheck
}

func (h httpHandler) sendError(w http.ResponseWriter, err error, message string, statusCode int) {
	e := &httpError{
		message:    message,
		statusCode: statusCode,
		err:        err,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode())
	h.encodeJSON(w, e)
}

// NewHTTPHandler returns a handler which serves locator over HTTP:
//
//   GET /?domain=example.com
//   POST / {"domains": ["example.com", ...]}
//   GET /stats/
func NewHTTPHandler(locator *Locator) http.Handler {
	return httpHandler{
		locator: locator,
	}
}
