package geolib

import "net/http"

func (h httpHandler) handleGetLocate(w http.ResponseWriter, req *http.Request) {
	result := h.locator.Locate(req.Context(), req.URL.Query().Get("domain"))

	h.encodeJSON(w, result)
}

func (h httpHandler) handleGetStats(w http.ResponseWriter, req *http.Request) {
	response := struct {
		Results []*UsageStats `json:"results"`
	}{
		Results: h.locator.UsageStats(),
	}

	h.encodeJSON(w, response)
}
