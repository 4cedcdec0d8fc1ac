package statecode

import "net/http"

// 业务状态码，随响应体 code 字段返回
const (
	CommonSuccess      = 0
	CommonErrServerErr = 1

	ParameterEmptyErr = 1001
	AddressErr        = 1002
	TxHashErr         = 1003
	LimitErr          = 1004
	ParameterErr      = 1005

	NameOrPasswordErr = 1101
	TokenErr          = 1102
	LoginDisabled     = 1103

	ChainErr       = 2001
	NotImplemented = 2002
	FeedDisabled   = 2003

	RateLimited = 4290
)

var msg = map[int]string{
	CommonSuccess:      "success",
	CommonErrServerErr: "server error",

	ParameterEmptyErr: "request parameters are empty",
	AddressErr:        "invalid address",
	TxHashErr:         "invalid transaction hash",
	LimitErr:          "limit must be between 1 and 50",
	ParameterErr:      "invalid request parameters",

	NameOrPasswordErr: "wrong username or password",
	TokenErr:          "invalid or expired token",
	LoginDisabled:     "login is not enabled",

	ChainErr:       "chain call failed",
	NotImplemented: "Method not implemented.",
	FeedDisabled:   "mint feed is not enabled",

	RateLimited: "too many requests",
}

// GetMsg returns the default message of a state code.
func GetMsg(code int) string {
	if m, ok := msg[code]; ok {
		return m
	}
	return msg[CommonErrServerErr]
}

// HttpStatus 状态码对应的 http status
func HttpStatus(code int) int {
	switch code {
	case CommonSuccess:
		return http.StatusOK
	case ParameterEmptyErr, AddressErr, TxHashErr, LimitErr, ParameterErr:
		return http.StatusBadRequest
	case NameOrPasswordErr, TokenErr:
		return http.StatusUnauthorized
	case LoginDisabled, FeedDisabled:
		return http.StatusNotFound
	case NotImplemented:
		return http.StatusNotImplemented
	case RateLimited:
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}
