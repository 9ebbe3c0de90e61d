package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
)

var ErrInvalidIndex = errors.New("index must be a non-negative integer")

func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

func WriteJSONError(w http.ResponseWriter, message string, code int) {
	WriteJSON(w, code, map[string]string{"error": message})
}

// ParseIndex parses a zero-based position taken from a URL.
func ParseIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, ErrInvalidIndex
	}
	return n, nil
}

// ParsePage parses a 1-based page number, defaulting to 1.
func ParsePage(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
