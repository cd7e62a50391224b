/*
Copyright 2025 Orderchain Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package multichain is a typed client for the chain node's JSON-RPC API.
// The node is an append-only keyed log: records are immutable once published
// and the node's serialization order is the only ordering authority. Payloads
// travel hex-encoded JSON, the format the node stores natively.
package multichain

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/vertis-systems/orderchain/config"
	"github.com/vertis-systems/orderchain/internal/apierror"
	"github.com/vertis-systems/orderchain/internal/request"
	"github.com/vertis-systems/orderchain/model"
)

// Client talks to a single chain node. Calls block up to the configured
// timeout and are never retried; a transport failure surfaces immediately as
// a LOG_UNAVAILABLE error so callers can tell "no data" from "node down".
type Client struct {
	endpoint string
	user     string
	password string
	hc       *http.Client
}

func NewClient(conf config.ChainConfig) *Client {
	return &Client{
		endpoint: conf.Url,
		user:     conf.User,
		password: conf.Password,
		hc:       &http.Client{Timeout: time.Duration(conf.TimeoutSec) * time.Second},
	}
}

type rpcRequest struct {
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
}

// RPCError is an error reported by the node itself, as opposed to a
// transport failure reaching it.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("chain rpc error %d: %s", e.Code, e.Message)
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// call performs one JSON-RPC round trip. Transport failures come back as
// LOG_UNAVAILABLE; node-reported errors come back as *RPCError so callers
// can inspect the code before deciding.
func (c *Client) call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	payload, err := request.ToJsonReq(rpcRequest{Method: method, Params: params, JSONRPC: "2.0", ID: 0})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, payload)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Basic "+request.BasicAuth(c.user, c.password))

	logrus.Debugf("chain rpc %s %v", method, params)

	var res rpcResponse
	if _, err := request.Call(c.hc, req, &res); err != nil {
		return errors.Wrap(apierror.NewAPIError(apierror.ErrLogUnavailable, "chain node unreachable", err.Error()), method)
	}
	if res.Error != nil {
		return res.Error
	}
	if result != nil && len(res.Result) > 0 {
		if err := json.Unmarshal(res.Result, result); err != nil {
			return errors.Wrap(apierror.NewAPIError(apierror.ErrLogUnavailable, "chain node returned malformed result", err.Error()), method)
		}
	}
	return nil
}

// streamMissing reports a node error that means the stream has never been
// created. The node signals this with code -708 ("stream not found").
func streamMissing(err error) bool {
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) {
		return rpcErr.Code == -708 || strings.Contains(rpcErr.Message, "not found")
	}
	return false
}

func alreadyExists(err error) bool {
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) {
		return strings.Contains(rpcErr.Message, "already exists")
	}
	return false
}

// asLogFailure converts a leftover node error into the typed taxonomy before
// it crosses the package boundary.
func asLogFailure(err error, op string) error {
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) {
		return errors.Wrap(apierror.NewAPIError(apierror.ErrLogUnavailable, rpcErr.Message, rpcErr), op)
	}
	return err
}

// EnsureStream makes sure a stream exists and this node is subscribed to it.
// Creation races with concurrent callers are tolerated: a competing create
// that wins first is treated as success.
func (c *Client) EnsureStream(ctx context.Context, stream string) error {
	var streams []struct {
		Name string `json:"name"`
	}
	err := c.call(ctx, "liststreams", []interface{}{stream, true}, &streams)
	if err == nil {
		for _, s := range streams {
			if s.Name == stream {
				return nil
			}
		}
	} else if !streamMissing(err) {
		return asLogFailure(err, "liststreams")
	}

	var createTxID string
	if err := c.call(ctx, "create", []interface{}{"stream", stream, true}, &createTxID); err != nil && !alreadyExists(err) {
		return asLogFailure(err, "create stream")
	}
	if err := c.call(ctx, "subscribe", []interface{}{stream}, nil); err != nil {
		return asLogFailure(err, "subscribe")
	}
	logrus.Debugf("chain stream %q created and subscribed", stream)
	return nil
}

// Append publishes a record under a key and returns the commit txid. The
// record is immutable once published; updating an entity means appending
// another record under the same key.
func (c *Client) Append(ctx context.Context, stream, key string, payload interface{}) (string, error) {
	if err := c.EnsureStream(ctx, stream); err != nil {
		return "", err
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	var txid string
	if err := c.call(ctx, "publish", []interface{}{stream, key, hex.EncodeToString(raw)}, &txid); err != nil {
		return "", asLogFailure(err, "publish")
	}
	if txid == "" {
		return "", apierror.NewAPIError(apierror.ErrLogUnavailable, "publish returned no txid", nil)
	}
	return txid, nil
}

// GetLatest returns the most recently appended payload for a key, or nil if
// the key (or the whole stream) has never been written. "Latest" is the
// node's own append order, never a timestamp embedded in the payload.
func (c *Client) GetLatest(ctx context.Context, stream, key string) (map[string]interface{}, error) {
	var items []struct {
		Data string `json:"data"`
	}
	if err := c.call(ctx, "liststreamkeyitems", []interface{}{stream, key, false, 1}, &items); err != nil {
		if streamMissing(err) {
			return nil, nil
		}
		return nil, asLogFailure(err, "liststreamkeyitems")
	}
	if len(items) == 0 {
		return nil, nil
	}

	raw, err := hex.DecodeString(items[len(items)-1].Data)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding record for key %q", key)
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, errors.Wrapf(err, "unmarshalling record for key %q", key)
	}
	return payload, nil
}

// ListKeys enumerates every distinct key ever used in a stream. A stream
// that does not exist yet reads as empty, not as a failure.
func (c *Client) ListKeys(ctx context.Context, stream string) ([]string, error) {
	var entries []struct {
		Key string `json:"key"`
	}
	if err := c.call(ctx, "liststreamkeys", []interface{}{stream}, &entries); err != nil {
		if streamMissing(err) {
			return nil, nil
		}
		return nil, asLogFailure(err, "liststreamkeys")
	}

	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Key == "" {
			continue
		}
		keys = append(keys, e.Key)
	}
	return keys, nil
}

// GetStreamState returns the latest record per key for a whole stream, with
// the key merged into each payload for provenance. Cost scales with key
// cardinality, not history depth: one liststreamkeys plus one fetch per key.
func (c *Client) GetStreamState(ctx context.Context, stream string) ([]model.StreamItem, error) {
	keys, err := c.ListKeys(ctx, stream)
	if err != nil {
		return nil, err
	}

	state := make([]model.StreamItem, 0, len(keys))
	for _, key := range keys {
		payload, err := c.GetLatest(ctx, stream, key)
		if err != nil {
			return nil, err
		}
		if payload == nil {
			continue
		}
		payload["key"] = key
		state = append(state, model.StreamItem{Key: key, Payload: payload})
	}
	logrus.Debugf("chain stream %q projected with %d distinct keys", stream, len(state))
	return state, nil
}
