package api

import (
	"encoding/json"
	"net/http"

	"github.com/harrylevesque/schoolportal/internal/models"
	"github.com/harrylevesque/schoolportal/internal/utils"
)

// Envelope is the body of every /api JSON response except /api/config.
type Envelope struct {
	Success  bool         `json:"success"`
	Data     any          `json:"data,omitempty"`
	Message  string       `json:"message,omitempty"`
	Error    string       `json:"error,omitempty"`
	Usuario  *models.User `json:"usuario,omitempty"`
	TipoErro string       `json:"tipo_erro,omitempty"`
	Token    string       `json:"token,omitempty"`
}

// writeJSON writes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Envelope{Success: status < 400, Message: message})
}

// writeError maps err to its status and user-facing message.
func writeError(w http.ResponseWriter, err error, fallback string) {
	writeMessage(w, utils.StatusOf(err), utils.MessageOf(err, fallback))
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
