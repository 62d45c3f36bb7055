package rest

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/banky/go-edgex/types"
	"github.com/go-resty/resty/v2"
)

// ClientError is a 4xx answer. Code, Msg and ErrorParam come from the
// gateway envelope when the body is one; otherwise Msg is the raw body.
type ClientError struct {
	StatusCode int64
	Code       string
	Msg        string
	ErrorParam map[string]any
}

func (e *ClientError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("client error (status %d): %s", e.StatusCode, e.Msg)
	}
	return fmt.Sprintf("client error (status %d, code %s): %s", e.StatusCode, e.Code, e.Msg)
}

// ServerError is a 5xx answer with the raw body
type ServerError struct {
	StatusCode int64
	Text       string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error (status %d): %s", e.StatusCode, e.Text)
}

// statusError maps 4xx and 5xx responses to ClientError and ServerError
func statusError(resp *resty.Response) error {
	status := int64(resp.StatusCode())

	switch {
	case status >= http.StatusInternalServerError:
		return &ServerError{StatusCode: status, Text: string(resp.Body())}
	case status >= http.StatusBadRequest:
		return decodeClientError(status, resp.Body())
	default:
		return nil
	}
}

func decodeClientError(status int64, body []byte) *ClientError {
	var envelope types.Response[json.RawMessage]
	if err := json.Unmarshal(body, &envelope); err != nil || (envelope.Code == "" && envelope.Msg == "") {
		return &ClientError{StatusCode: status, Msg: string(body)}
	}

	return &ClientError{
		StatusCode: status,
		Code:       envelope.Code,
		Msg:        envelope.Msg,
		ErrorParam: envelope.ErrorParam,
	}
}
