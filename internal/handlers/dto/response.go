package dto

import "net/http"

// Result - общий конверт ответа {code, message, data}
type Result struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func Success(data interface{}) Result {
	return Result{Code: http.StatusOK, Message: "success", Data: data}
}

func Fail(status int, message string) Result {
	return Result{Code: status, Message: message, Data: nil}
}
