package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJsonRpcRequest(t *testing.T) {
	req, err := ParseJsonRpcRequest([]byte(`{"jsonrpc":"2.0","id":7,"method":"tools/list"}`))
	require.NoError(t, err)
	assert.Equal(t, "tools/list", req.Method)
	assert.False(t, req.IsNotification())

	req, err = ParseJsonRpcRequest([]byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`))
	require.NoError(t, err)
	assert.True(t, req.IsNotification())

	for _, bad := range []string{
		`{"jsonrpc":"1.0","id":1,"method":"ping"}`,
		`{"jsonrpc":"2.0","id":1}`,
		`[{"jsonrpc":"2.0","id":1,"method":"ping"}]`,
	} {
		_, err := ParseJsonRpcRequest([]byte(bad))
		assert.Error(t, err, bad)
	}
}

func TestResponses(t *testing.T) {
	resp, err := NewJsonRpcResponse(TextResult("hi"), 3)
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":[{"type":"text","text":"hi"}]}`, string(resp.Result))

	b, err := json.Marshal(NewJsonRpcErrorResponse(ErrInvalidRequest, "bad", nil, nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","error":{"code":-32600,"message":"bad"},"id":null}`, string(b))

	assert.True(t, ErrorResult("boom").IsError)
	assert.Contains(t, (&JsonRpcError{Code: ErrParse, Message: "x"}).Error(), "-32700")
}
