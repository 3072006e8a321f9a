package api

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
)

// ErrorField describes why one request field was rejected.
type ErrorField struct {
	FieldName    string `json:"field"`
	ErrorMessage string `json:"message"`
}

type ErrorResponse struct {
	Error  string       `json:"error"`
	Fields []ErrorField `json:"fields,omitempty"`
}

func NewErrorResponse(err error, fields ...ErrorField) ErrorResponse {
	return ErrorResponse{Error: err.Error(), Fields: fields}
}

// ExtractErrorFields turns binding errors into per-field messages. Field
// names are the json tag names once the validator is configured for it.
func ExtractErrorFields(err error) []ErrorField {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []ErrorField{{FieldName: "body", ErrorMessage: err.Error()}}
	}

	fields := make([]ErrorField, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, ErrorField{
			FieldName:    fe.Field(),
			ErrorMessage: getBindingErrorMessage(fe.Tag()),
		})
	}
	return fields
}

func getBindingErrorMessage(tag string) string {
	switch tag {
	case "required":
		return "this field is required"
	case "min":
		return "value is too small"
	case "max":
		return "value is too large"
	default:
		return "invalid value"
	}
}

func extractErrorFromBuffer(buf *bytes.Buffer) (*ErrorResponse, error) {
	var resp ErrorResponse
	if err := json.NewDecoder(buf).Decode(&resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
