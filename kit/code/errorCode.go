package code

import (
	"encoding/json"
	"fmt"
	httpPKG "net/http"

	"github.com/pkg/errors"
)

type errorCode struct {
	HTTPCode    int    `json:"http_code"`
	Code        int    `json:"code"`
	Message     string `json:"message"`
	OriginError error  `json:"-"`
	CallStack   string `json:"-"`
}

func (e errorCode) Error() string {
	errorStr, err := json.Marshal(e)
	if err != nil {
		panic(err)
	}
	return string(errorStr)
}

func (e *errorCode) AddErrorMetaData(err error) *errorCode {
	e.OriginError = err
	e.CallStack = fmt.Sprintf("%+v", err)
	return e
}

func (e *errorCode) AddCode(code int, args ...any) *errorCode {
	if httpErrorCodes, ok := errorCodes[e.HTTPCode]; ok {
		if message, ok := httpErrorCodes[code]; ok {
			e.Code = code
			e.Message = fmt.Sprintf(message, args...)
		}
	}
	return e
}

const (
	Default = iota
	InvalidBody
	Expired
	Revoked
	PasswordInvalid
	InvalidRefreshToken
	TokenMalformed
	EmailAlreadyExists
	HandleAlreadyExists
	EmailAndHandleAlreadyExist
	WeakPassword
	CommonPassword
	PendingApproval
	Suspended
	Banned
	Withdrawn
	StoreUnavailable
)

var errorCodes = map[int]map[int]string{
	httpPKG.StatusNotFound: {
		Default: "not found",
	},
	httpPKG.StatusInternalServerError: {
		Default:          "internal error",
		StoreUnavailable: "store unavailable",
	},
	httpPKG.StatusBadRequest: {
		Default:        "bad request",
		InvalidBody:    "invalid body",
		WeakPassword:   "password too weak: %s",
		CommonPassword: "password is too common",
	},
	httpPKG.StatusUnauthorized: {
		Default:             "unauthorized",
		Expired:             "token expired",
		Revoked:             "token revoked",
		PasswordInvalid:     "invalid email or password",
		InvalidRefreshToken: "invalid refresh token",
		TokenMalformed:      "token malformed",
	},
	httpPKG.StatusForbidden: {
		Default:         "forbidden",
		PendingApproval: "account pending approval",
		Suspended:       "account suspended",
		Banned:          "account banned",
		Withdrawn:       "account withdrawn",
	},
	httpPKG.StatusConflict: {
		Default:                    "conflict",
		EmailAlreadyExists:         "email already registered",
		HandleAlreadyExists:        "handle already registered",
		EmailAndHandleAlreadyExist: "email and handle already registered",
	},
}

type errorCodeOption func(*errorCode)

func CreateErrorCode(code int, options ...errorCodeOption) *errorCode {
	resCode := httpPKG.StatusInternalServerError
	resMessage := errorCodes[httpPKG.StatusInternalServerError][Default]
	if codes, ok := errorCodes[code]; ok {
		resCode = code

		if message, ok := codes[Default]; ok {
			resMessage = message
		}
	}

	errorCode := errorCode{
		HTTPCode: resCode,
		Code:     Default,
		Message:  resMessage,
	}

	for _, option := range options {
		option(&errorCode)
	}

	return &errorCode
}

func ParseErrorCode(err error) *errorCode {
	causeErr := errors.Cause(err)
	switch errorCode := causeErr.(type) {
	case *errorCode:
		return errorCode
	}

	return CreateErrorCode(httpPKG.StatusInternalServerError).AddErrorMetaData(err)
}
