// Package httputil provides shared HTTP response helpers.
package httputil

import (
	"encoding/json"
	"io"
	"net/http"
)

// Content types written by the helpers.
const (
	ContentTypeJSON = "application/json"
	ContentTypeHTML = "text/html; charset=utf-8"
)

// WriteJSON writes data as a JSON response with the given status code.
// A nil data writes only the status line and headers.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", ContentTypeJSON)
	if data == nil {
		w.WriteHeader(status)
		return nil
	}

	body, err := json.Marshal(data)
	if err != nil {
		return err
	}
	w.WriteHeader(status)
	_, err = w.Write(body)
	return err
}

// WriteError writes a JSON error body with an error code and a message.
func WriteError(w http.ResponseWriter, status int, errCode, message string) {
	_ = WriteJSON(w, status, map[string]string{
		"error":   errCode,
		"message": message,
	})
}

// WriteEmpty writes status with no body and no content type.
func WriteEmpty(w http.ResponseWriter, status int) {
	w.Header().Del("Content-Type")
	w.Header().Set("Content-Length", "0")
	w.WriteHeader(status)
}

// WriteHTML writes an HTML document with the given status code.
func WriteHTML(w http.ResponseWriter, status int, body string) error {
	w.Header().Set("Content-Type", ContentTypeHTML)
	w.WriteHeader(status)
	_, err := io.WriteString(w, body)
	return err
}
