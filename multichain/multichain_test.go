package multichain

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vertis-systems/orderchain/config"
	"github.com/vertis-systems/orderchain/internal/apierror"
)

const nodeURL = "http://chain:6466"

func newTestClient() *Client {
	return NewClient(config.ChainConfig{Url: nodeURL, User: "rpc", Password: "secret", TimeoutSec: 5})
}

type rpcCall struct {
	Method string        `json:"method"`
	Params []interface{} `json:"params"`
}

// rpcResponder dispatches on the JSON-RPC method field and records calls.
func rpcResponder(t *testing.T, handlers map[string]func(params []interface{}) (interface{}, *RPCError)) {
	httpmock.RegisterResponder(http.MethodPost, nodeURL, func(req *http.Request) (*http.Response, error) {
		auth := req.Header.Get("Authorization")
		assert.Equal(t, "Basic "+base64.StdEncoding.EncodeToString([]byte("rpc:secret")), auth)

		var call rpcCall
		require.NoError(t, json.NewDecoder(req.Body).Decode(&call))
		handler, ok := handlers[call.Method]
		require.True(t, ok, "unexpected rpc method %s", call.Method)

		result, rpcErr := handler(call.Params)
		body := map[string]interface{}{"result": result, "error": rpcErr, "id": 0}
		return httpmock.NewJsonResponse(http.StatusOK, body)
	})
}

func TestAppendPublishesHexEncodedJSON(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	var published string
	rpcResponder(t, map[string]func(params []interface{}) (interface{}, *RPCError){
		"liststreams": func(params []interface{}) (interface{}, *RPCError) {
			return []map[string]interface{}{{"name": "orders_stream"}}, nil
		},
		"publish": func(params []interface{}) (interface{}, *RPCError) {
			require.Len(t, params, 3)
			assert.Equal(t, "orders_stream", params[0])
			assert.Equal(t, "order_1", params[1])
			published = params[2].(string)
			return "txid-123", nil
		},
	})

	txid, err := newTestClient().Append(context.Background(), "orders_stream", "order_1", map[string]interface{}{"status": "ok"})
	require.NoError(t, err)
	assert.Equal(t, "txid-123", txid)

	raw, err := hex.DecodeString(published)
	require.NoError(t, err)
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.Equal(t, "ok", payload["status"])
}

func TestEnsureStreamCreatesAndSubscribes(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	created, subscribed := false, false
	rpcResponder(t, map[string]func(params []interface{}) (interface{}, *RPCError){
		"liststreams": func(params []interface{}) (interface{}, *RPCError) {
			return nil, &RPCError{Code: -708, Message: "stream with this name not found: notes_stream"}
		},
		"create": func(params []interface{}) (interface{}, *RPCError) {
			created = true
			return "create-txid", nil
		},
		"subscribe": func(params []interface{}) (interface{}, *RPCError) {
			subscribed = true
			return nil, nil
		},
	})

	require.NoError(t, newTestClient().EnsureStream(context.Background(), "notes_stream"))
	assert.True(t, created)
	assert.True(t, subscribed)
}

func TestEnsureStreamCreationRaceTolerated(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	rpcResponder(t, map[string]func(params []interface{}) (interface{}, *RPCError){
		"liststreams": func(params []interface{}) (interface{}, *RPCError) {
			return nil, &RPCError{Code: -708, Message: "stream with this name not found"}
		},
		"create": func(params []interface{}) (interface{}, *RPCError) {
			// A concurrent caller created it first.
			return nil, &RPCError{Code: -705, Message: "entity with this name already exists: notes_stream"}
		},
		"subscribe": func(params []interface{}) (interface{}, *RPCError) {
			return nil, nil
		},
	})

	assert.NoError(t, newTestClient().EnsureStream(context.Background(), "notes_stream"))
}

func TestGetLatestDecodesNewestRecord(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	record := map[string]interface{}{"product_code": "PA 00950", "consumed_stock": float64(8)}
	raw, _ := json.Marshal(record)

	rpcResponder(t, map[string]func(params []interface{}) (interface{}, *RPCError){
		"liststreamkeyitems": func(params []interface{}) (interface{}, *RPCError) {
			assert.Equal(t, "inventory_stream", params[0])
			assert.Equal(t, "PA 00950", params[1])
			return []map[string]interface{}{{"data": hex.EncodeToString(raw)}}, nil
		},
	})

	payload, err := newTestClient().GetLatest(context.Background(), "inventory_stream", "PA 00950")
	require.NoError(t, err)
	assert.Equal(t, record, payload)
}

func TestGetLatestAbsentKey(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	rpcResponder(t, map[string]func(params []interface{}) (interface{}, *RPCError){
		"liststreamkeyitems": func(params []interface{}) (interface{}, *RPCError) {
			return []map[string]interface{}{}, nil
		},
	})

	payload, err := newTestClient().GetLatest(context.Background(), "inventory_stream", "missing")
	require.NoError(t, err)
	assert.Nil(t, payload)
}

func TestGetStreamStateFansOutPerKey(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	records := map[string]map[string]interface{}{
		"a": {"status": "first"},
		"b": {"status": "second"},
	}
	rpcResponder(t, map[string]func(params []interface{}) (interface{}, *RPCError){
		"liststreamkeys": func(params []interface{}) (interface{}, *RPCError) {
			return []map[string]interface{}{{"key": "a"}, {"key": "b"}}, nil
		},
		"liststreamkeyitems": func(params []interface{}) (interface{}, *RPCError) {
			key := params[1].(string)
			raw, _ := json.Marshal(records[key])
			return []map[string]interface{}{{"data": hex.EncodeToString(raw)}}, nil
		},
	})

	state, err := newTestClient().GetStreamState(context.Background(), "orders_stream")
	require.NoError(t, err)
	require.Len(t, state, 2)
	for _, item := range state {
		// Key merged into the payload for provenance.
		assert.Equal(t, item.Key, item.Payload["key"])
		assert.Equal(t, records[item.Key]["status"], item.Payload["status"])
	}
}

func TestListKeysMissingStreamReadsEmpty(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	rpcResponder(t, map[string]func(params []interface{}) (interface{}, *RPCError){
		"liststreamkeys": func(params []interface{}) (interface{}, *RPCError) {
			return nil, &RPCError{Code: -708, Message: "stream with this name not found"}
		},
	})

	keys, err := newTestClient().ListKeys(context.Background(), "deliveries_stream")
	assert.NoError(t, err)
	assert.Empty(t, keys)
}

func TestTransportFailureIsTyped(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodPost, nodeURL,
		httpmock.NewErrorResponder(fmt.Errorf("connection refused")))

	_, err := newTestClient().ListKeys(context.Background(), "orders_stream")
	require.Error(t, err)
	// Node-down must never read as "stream has zero keys".
	assert.True(t, apierror.Is(err, apierror.ErrLogUnavailable))
}
