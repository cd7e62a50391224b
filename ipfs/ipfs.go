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

// Package ipfs is a minimal client for the content-addressed blob store
// behind the IPFS HTTP API. Documents are always encrypted before they are
// handed to Put; the returned content hash is the only handle kept on-chain.
package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/vertis-systems/orderchain/config"
)

type Client struct {
	apiURL string
	hc     *http.Client
}

func NewClient(conf config.IPFSConfig) *Client {
	return &Client{
		apiURL: strings.TrimRight(conf.Url, "/"),
		hc:     &http.Client{Timeout: time.Duration(conf.TimeoutSec) * time.Second},
	}
}

type addResponse struct {
	Hash string `json:"Hash"`
}

// Put stores a blob and returns its content hash.
func (c *Client) Put(ctx context.Context, data []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "blob")
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/api/v0/add", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "storing blob")
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("blob store returned status %d", resp.StatusCode)
	}

	var added addResponse
	if err := json.NewDecoder(resp.Body).Decode(&added); err != nil {
		return "", errors.Wrap(err, "decoding blob store response")
	}
	if added.Hash == "" {
		return "", errors.New("blob store returned no content hash")
	}
	logrus.Debugf("blob stored with hash %s (%d bytes)", added.Hash, len(data))
	return added.Hash, nil
}

// Get retrieves a blob by its content hash.
func (c *Client) Get(ctx context.Context, hash string) ([]byte, error) {
	if hash == "" {
		return nil, errors.New("content hash is required")
	}

	endpoint := c.apiURL + "/api/v0/cat?arg=" + url.QueryEscape(hash)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching blob %s", hash)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("blob store returned status %d for %s", resp.StatusCode, hash)
	}

	return io.ReadAll(resp.Body)
}
