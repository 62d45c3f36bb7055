package types

import (
	"errors"
	"fmt"

	"github.com/banky/go-edgex/constants"
)

// ErrRequestRejected matches any response whose code is not SUCCESS
var ErrRequestRejected = errors.New("request rejected")

// Response is the envelope every gateway endpoint answers with
type Response[T any] struct {
	Code       string         `json:"code"`
	Msg        string         `json:"msg,omitempty"`
	Data       T              `json:"data"`
	ErrorParam map[string]any `json:"errorParam,omitempty"`
	// Request and response timestamps in epoch milliseconds, as strings
	RequestTime  string `json:"requestTime,omitempty"`
	ResponseTime string `json:"responseTime,omitempty"`
	TraceID      string `json:"traceId,omitempty"`
}

// Check returns a *RejectedError when the envelope does not carry the
// success code. path names the endpoint in the error.
func (r Response[T]) Check(path string) error {
	if r.Code == constants.SUCCESS_CODE {
		return nil
	}
	return &RejectedError{
		Code:       r.Code,
		Msg:        r.Msg,
		Path:       path,
		ErrorParam: r.ErrorParam,
	}
}

// RejectedError is an application level rejection. For signed requests the
// message has already been sent once; retrying means rebuilding it.
type RejectedError struct {
	Code       string
	Msg        string
	Path       string
	ErrorParam map[string]any
}

func (e *RejectedError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("request to %s failed with code: %s", e.Path, e.Code)
	}
	return fmt.Sprintf("request to %s failed with code: %s: %s", e.Path, e.Code, e.Msg)
}

func (e *RejectedError) Is(target error) bool {
	return target == ErrRequestRejected
}
