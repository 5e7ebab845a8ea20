package ocrapi

import "net/http"

// ErrorReason is the closed set of machine-readable failure reasons.
type ErrorReason string

const (
	ReasonEmptyFile         ErrorReason = "empty_file"
	ReasonFileTooLarge      ErrorReason = "file_too_large"
	ReasonUnsupportedType   ErrorReason = "unsupported_type"
	ReasonCorruptedImage    ErrorReason = "corrupted_image"
	ReasonBatchSizeExceeded ErrorReason = "batch_size_exceeded"
	ReasonExtractionFailed  ErrorReason = "extraction_failed"
	ReasonInternalFault     ErrorReason = "internal_fault"
)

// RequestError is a terminal, user-visible failure. The Reason is stable and
// machine-readable; the Message is safe to return to clients verbatim.
type RequestError struct {
	Reason  ErrorReason
	Message string
}

// NewRequestError creates a request error with the given reason and message.
func NewRequestError(reason ErrorReason, message string) *RequestError {
	return &RequestError{Reason: reason, Message: message}
}

func (e *RequestError) Error() string {
	return e.Message
}

// HTTPStatus maps the failure reason to the response status code.
func (e *RequestError) HTTPStatus() int {
	switch e.Reason {
	case ReasonEmptyFile, ReasonCorruptedImage, ReasonBatchSizeExceeded:
		return http.StatusBadRequest
	case ReasonFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case ReasonUnsupportedType:
		return http.StatusUnsupportedMediaType
	case ReasonExtractionFailed, ReasonInternalFault:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
