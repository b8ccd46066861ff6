package rest

import (
	"encoding/json"
	"net/http"
)

// errorBody is the error envelope; code is machine readable and drives
// the client-side taxonomy mapping.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondWithJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, status int, code, message string) {
	respondWithJSON(w, status, errorBody{Code: code, Message: message})
}
