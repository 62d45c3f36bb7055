package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/maxatome/go-testdeep/td"
)

type testRequest struct {
	Name string `json:"name"`
}

type testResponse struct {
	Code string `json:"code"`
	Data struct {
		Value int `json:"value"`
	} `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestPostSuccess(t *testing.T) {
	var gotBody testRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		td.Cmp(t, r.Method, http.MethodPost)
		td.Cmp(t, r.URL.Path, "/api/v1/private/order/createOrder")
		td.Cmp(t, r.Header.Get("Content-Type"), "application/json")

		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &gotBody)

		writeJSON(w, http.StatusOK, map[string]any{
			"code": "SUCCESS",
			"data": map[string]any{"value": 42},
		})
	}))
	defer server.Close()

	client := New(Config{BaseUrl: server.URL})

	var result testResponse
	err := client.Post(context.Background(), "/api/v1/private/order/createOrder", testRequest{Name: "test"}, &result)

	td.CmpNoError(t, err)
	td.Cmp(t, gotBody.Name, "test")
	td.Cmp(t, result.Code, "SUCCESS")
	td.Cmp(t, result.Data.Value, 42)
}

func TestGetWithQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		td.Cmp(t, r.Method, http.MethodGet)
		td.Cmp(t, r.URL.Path, "/api/v1/public/quote/getTicker")
		td.Cmp(t, r.URL.Query().Get("contractId"), "10000001")

		writeJSON(w, http.StatusOK, map[string]any{
			"code": "SUCCESS",
			"data": map[string]any{"value": 7},
		})
	}))
	defer server.Close()

	client := New(Config{BaseUrl: server.URL})

	var result testResponse
	err := client.Get(
		context.Background(),
		"/api/v1/public/quote/getTicker",
		map[string]string{"contractId": "10000001"},
		&result,
	)

	td.CmpNoError(t, err)
	td.Cmp(t, result.Data.Value, 7)
}

func TestAuthenticatorHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		td.Cmp(t, r.Header.Get("X-edgeX-Api-Timestamp"), "1700000000000")
		td.Cmp(t, r.Header.Get("X-edgeX-Api-Signature"), "POST /path")
		writeJSON(w, http.StatusOK, map[string]any{"code": "SUCCESS"})
	}))
	defer server.Close()

	var gotPayload string
	client := New(Config{
		BaseUrl: server.URL,
		Auth: func(method, path string, payload []byte) (map[string]string, error) {
			gotPayload = string(payload)
			return map[string]string{
				"X-edgeX-Api-Timestamp": "1700000000000",
				"X-edgeX-Api-Signature": method + " " + path,
			}, nil
		},
	})

	var result testResponse
	err := client.Post(context.Background(), "/path", testRequest{Name: "auth"}, &result)

	td.CmpNoError(t, err)
	td.Cmp(t, gotPayload, `{"name":"auth"}`)
}

func TestAuthenticatorError(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	boom := errors.New("no key")
	client := New(Config{
		BaseUrl: server.URL,
		Auth: func(string, string, []byte) (map[string]string, error) {
			return nil, boom
		},
	})

	err := client.Get(context.Background(), "/path", nil, nil)

	td.CmpErrorIs(t, err, boom)
	td.CmpFalse(t, called)
}

func TestPostClientErrorWithJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"code":       "INVALID_REQUEST",
			"msg":        "Request validation failed",
			"data":       map[string]string{"field": "name"},
			"errorParam": map[string]string{"field": "size"},
		})
	}))
	defer server.Close()

	client := New(Config{BaseUrl: server.URL})
	err := client.Post(context.Background(), "/test", testRequest{Name: ""}, &testResponse{})

	var clientErr *ClientError
	td.CmpTrue(t, errors.As(err, &clientErr))
	td.Cmp(t, clientErr.StatusCode, int64(http.StatusBadRequest))
	td.Cmp(t, clientErr.Code, "INVALID_REQUEST")
	td.Cmp(t, clientErr.Msg, "Request validation failed")
	td.Cmp(t, clientErr.ErrorParam, map[string]any{"field": "size"})
}

func TestPostClientErrorWithoutJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("Unauthorized"))
	}))
	defer server.Close()

	client := New(Config{BaseUrl: server.URL})
	err := client.Post(context.Background(), "/test", testRequest{Name: "test"}, &testResponse{})

	var clientErr *ClientError
	td.CmpTrue(t, errors.As(err, &clientErr))
	td.Cmp(t, clientErr.StatusCode, int64(http.StatusUnauthorized))
	td.Cmp(t, clientErr.Msg, "Unauthorized")
	td.Cmp(t, clientErr.Code, "")
}

func TestPostServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
	}))
	defer server.Close()

	client := New(Config{BaseUrl: server.URL})
	err := client.Post(context.Background(), "/test", testRequest{Name: "test"}, &testResponse{})

	var serverErr *ServerError
	td.CmpTrue(t, errors.As(err, &serverErr))
	td.Cmp(t, serverErr.StatusCode, int64(http.StatusInternalServerError))
	td.Cmp(t, serverErr.Text, "Internal Server Error")
}

func TestPostWithTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"code": "SUCCESS",
			"data": map[string]any{"value": 42},
		})
	}))
	defer server.Close()

	client := New(Config{BaseUrl: server.URL, Timeout: 5})

	var result testResponse
	err := client.Post(context.Background(), "/test", testRequest{Name: "test"}, &result)

	td.CmpNoError(t, err)
	td.Cmp(t, result.Data.Value, 42)
}

func TestNewDefaultsToMainnet(t *testing.T) {
	client := New(Config{})
	td.Cmp(t, client.baseUrl, "https://pro.edgex.exchange")
	td.CmpTrue(t, client.timeout.IsAbsent())
	td.CmpTrue(t, client.auth.IsAbsent())
}
