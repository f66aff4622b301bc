package service

import (
	"net/http"
	"time"
)

// Response is the envelope every API call answers with.
type Response struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	ResponseObject any    `json:"responseObject"`
	StatusCode     int    `json:"statusCode"`
}

// Success builds a successful envelope.
func Success(message string, obj any, statusCode int) Response {
	return Response{
		Success:        true,
		Message:        message,
		ResponseObject: obj,
		StatusCode:     statusCode,
	}
}

// Failure builds a failed envelope without payload.
func Failure(message string, statusCode int) Response {
	return Response{
		Success:    false,
		Message:    message,
		StatusCode: statusCode,
	}
}

func BadRequest(message string) Response   { return Failure(message, http.StatusBadRequest) }
func Unauthorized(message string) Response { return Failure(message, http.StatusUnauthorized) }
func NotFound(message string) Response     { return Failure(message, http.StatusNotFound) }
func Conflict(message string) Response     { return Failure(message, http.StatusConflict) }
func Internal(message string) Response     { return Failure(message, http.StatusInternalServerError) }

// OK is the payload of operations that only report success.
type OK struct {
	Success bool `json:"success"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
