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

// Package erp is the client for the external source of record. The ERP is
// authoritative for the existence and identity of business entities; it is
// never authoritative for workflow status once a chain record exists.
package erp

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/vertis-systems/orderchain/config"
	"github.com/vertis-systems/orderchain/internal/apierror"
	"github.com/vertis-systems/orderchain/internal/request"
)

// Person is an ERP person record (client, representative).
type Person struct {
	ID   int64  `json:"id"`
	Name string `json:"nome"`
	CNPJ string `json:"cnpj"`
}

// StockDocumentItem is one line of an outbound stock document.
type StockDocumentItem struct {
	Quantity int64 `json:"qtde"`
}

// StockDocument is an outbound delivery document attached to a sales order.
// The ERP reports the id as a JSON number; it stays untyped here and is
// normalized to the canonical string key at the reconciliation boundary.
type StockDocument struct {
	ID       interface{}         `json:"id"`
	IssuedAt string              `json:"dataEmissao"`
	Items    []StockDocumentItem `json:"itensDocumentoEstoque"`
}

// TotalItems sums the document's line quantities.
func (d StockDocument) TotalItems() int64 {
	var total int64
	for _, item := range d.Items {
		total += item.Quantity
	}
	return total
}

// Receivable is the payment status of one account receivable. DueDate uses
// the ERP's DD/MM/YYYY format.
type Receivable struct {
	Paid    bool   `json:"status"`
	DueDate string `json:"dataVencimento"`
}

// Client calls the ERP REST API with Basic auth. Failures surface as typed
// EXTERNAL_SOURCE_UNAVAILABLE errors, never as empty data.
type Client struct {
	baseURL string
	apiKey  string
	hc      *http.Client
}

func NewClient(conf config.ERPConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(conf.Url, "/"),
		apiKey:  conf.APIKey,
		hc:      &http.Client{Timeout: time.Duration(conf.TimeoutSec) * time.Second},
	}
}

func (c *Client) get(ctx context.Context, endpoint string, result interface{}) error {
	url := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Basic "+c.apiKey)

	logrus.Debugf("erp request GET %s", url)

	resp, err := request.Call(c.hc, req, result)
	if err != nil {
		return errors.Wrap(apierror.NewAPIError(apierror.ErrExternalSource, "external source unreachable", err.Error()), endpoint)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Wrap(apierror.NewAPIError(apierror.ErrExternalSource,
			fmt.Sprintf("external source returned status %d", resp.StatusCode), nil), endpoint)
	}
	return nil
}

// Person fetches a person record by id. A zero id is rejected before any
// request is made.
func (c *Client) Person(ctx context.Context, id int64) (*Person, error) {
	if id == 0 {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "person id is required", nil)
	}
	var person Person
	if err := c.get(ctx, fmt.Sprintf("rest/pessoas/%d", id), &person); err != nil {
		return nil, err
	}
	return &person, nil
}

// Deliveries fetches every outbound stock document attached to a sales
// order reference.
func (c *Client) Deliveries(ctx context.Context, salesOrderRef int64) ([]StockDocument, error) {
	if salesOrderRef == 0 {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "sales order reference is required", nil)
	}
	var docs []StockDocument
	if err := c.get(ctx, fmt.Sprintf("rest/documentosEstoque/pedido/%d", salesOrderRef), &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// Receivable fetches the current payment status of one account receivable.
func (c *Client) Receivable(ctx context.Context, id int64) (*Receivable, error) {
	if id == 0 {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "receivable id is required", nil)
	}
	var receivable Receivable
	if err := c.get(ctx, fmt.Sprintf("rest/contasReceber/%d", id), &receivable); err != nil {
		return nil, err
	}
	return &receivable, nil
}
