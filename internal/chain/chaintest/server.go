package chaintest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

type rpcErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcErrorBody   `json:"error,omitempty"`
}

// Handler serves p as a JSON-RPC 2.0 endpoint over HTTP. Batches are not
// supported.
func Handler(p *Provider) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		params := make([]any, len(req.Params))
		for i, raw := range req.Params {
			params[i] = raw
		}

		resp := rpcResponse{JSONRPC: "2.0", ID: req.ID}
		result, err := p.Request(context.Background(), req.Method, params...)
		if err != nil {
			resp.Error = &rpcErrorBody{Code: -32000, Message: err.Error()}
			var rpcErr *RPCError
			if errors.As(err, &rpcErr) {
				resp.Error.Code = rpcErr.Code
			}
		} else {
			resp.Result = result
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp) //nolint:errcheck
	})
}

// Serve starts an HTTP endpoint for p that is closed with the test.
func Serve(t testing.TB, p *Provider) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(Handler(p))
	t.Cleanup(srv.Close)
	return srv
}
