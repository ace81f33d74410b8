// Package apperrors - коды ошибок домена, общие для сервисов и транспорта.
package apperrors

import (
	"errors"
	"net/http"
)

// Code - машиночитаемый код ошибки
type Code string

const (
	CodeUnknown Code = "UNKNOWN"

	CodeInvalidRequest Code = "INVALID_REQUEST"
	CodeUnauthorized   Code = "UNAUTHORIZED"

	// Матчи
	CodeMatchRequesterEmpty    Code = "MATCH_REQUESTER_EMPTY"
	CodeMatchCandidatesEmpty   Code = "MATCH_CANDIDATES_EMPTY"
	CodeMatchInvalidStatus     Code = "MATCH_INVALID_STATUS"
	CodeMatchNotFound          Code = "MATCH_NOT_FOUND"
	CodeMatchStatusTerminal    Code = "MATCH_STATUS_TERMINAL"
	CodeRecommendationEmpty    Code = "RECOMMENDATION_EMPTY"
	CodeRecommenderUnavailable Code = "RECOMMENDER_UNAVAILABLE"

	// Чат
	CodeChatRoomEmpty Code = "CHAT_ROOM_EMPTY"

	// Хранилище
	CodeStorageFailure Code = "STORAGE_FAILURE"
)

// HTTPStatus возвращает HTTP статус для кода
func (c Code) HTTPStatus() int {
	switch c {
	case CodeInvalidRequest,
		CodeMatchRequesterEmpty,
		CodeMatchCandidatesEmpty,
		CodeMatchInvalidStatus,
		CodeRecommendationEmpty,
		CodeChatRoomEmpty:
		return http.StatusBadRequest

	case CodeUnauthorized:
		return http.StatusUnauthorized

	case CodeMatchNotFound:
		return http.StatusNotFound

	case CodeMatchStatusTerminal:
		return http.StatusConflict

	case CodeRecommenderUnavailable:
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// Error - ошибка домена
type Error struct {
	Code    Code
	Message string // уходит клиенту
	Cause   error  // только в лог
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is сравнивает ошибки по коду
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// As достает ошибку домена из err. Остальные ошибки становятся CodeUnknown
// с общим сообщением.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Code: CodeUnknown, Message: "internal server error", Cause: err}
}

// CodeOf возвращает код ошибки, для nil пустую строку
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	return As(err).Code
}
