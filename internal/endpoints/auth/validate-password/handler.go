package validatepassword

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"partner-dashboard/internal/common/errors"
	"partner-dashboard/internal/common/logger"
	"partner-dashboard/internal/common/validation"
)

const inputSchemaJSON = `{
  "type": "object",
  "properties": {
    "password": {"type": "string", "maxLength": 1024}
  },
  "required": ["password"]
}`

var inputSchema = validation.MustCompileSchema(inputSchemaJSON)

type Input struct {
	Password string `json:"password"`
}

type Handler struct {
	errors *errors.ErrorHandler
}

func NewHandler(log logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Handler{errors: errors.NewErrorHandler(log)}
}

// ServeHTTP never logs the password itself.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 8<<10))
	if err != nil {
		h.errors.WriteError(w, r, errors.NewInvalidInputError("failed to read request body"))
		return
	}

	result, err := inputSchema.ValidateBytes(body)
	if err != nil {
		h.errors.WriteError(w, r, errors.NewInvalidInputError("request body is not valid JSON"))
		return
	}
	if !result.Valid {
		h.errors.WriteError(w, r, errors.NewInvalidInputError(strings.Join(result.GetErrorMessages(), "; ")))
		return
	}

	var in Input
	if err := json.Unmarshal(body, &in); err != nil {
		h.errors.WriteError(w, r, errors.NewInvalidInputError("request body is not valid JSON"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(Validate(in.Password))
}
