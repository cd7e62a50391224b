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

// Package orderchain coordinates a B2B ordering workflow whose record of
// truth is an append-only, per-key chain stream log. Current state is never
// stored: it is recomputed on every call as the last-written record per key,
// merged with the external source of record, and driven through small
// finite-state approval workflows with append-only writes.
package orderchain

import (
	"context"

	"github.com/vertis-systems/orderchain/config"
	"github.com/vertis-systems/orderchain/erp"
	"github.com/vertis-systems/orderchain/internal/secure"
	"github.com/vertis-systems/orderchain/model"
)

// Streams used by the workflow. Keys within a stream carry independent
// record histories; the latest record per key is authoritative.
const (
	StreamConfig     = "config_stream"
	StreamInventory  = "inventory_stream"
	StreamFinancial  = "financial_stream"
	StreamOrders     = "orders_stream"
	StreamDeliveries = "deliveries_stream"
	StreamNotes      = "notes_stream"

	ContractConfigKey = "contract_v1"
)

// LedgerStore is the append-only keyed log the workflow writes to. There is
// no conditional append: two concurrent writers to the same key both
// succeed and the log's serialization order decides which record readers
// see. Implementations must surface transport failures as typed errors,
// never as empty data.
type LedgerStore interface {
	EnsureStream(ctx context.Context, stream string) error
	Append(ctx context.Context, stream, key string, payload interface{}) (string, error)
	GetLatest(ctx context.Context, stream, key string) (map[string]interface{}, error)
	ListKeys(ctx context.Context, stream string) ([]string, error)
	GetStreamState(ctx context.Context, stream string) ([]model.StreamItem, error)
}

// ExternalSource is the ERP: authoritative for entity existence and
// identity, but not for workflow status once a chain record exists.
type ExternalSource interface {
	Person(ctx context.Context, id int64) (*erp.Person, error)
	Deliveries(ctx context.Context, salesOrderRef int64) ([]erp.StockDocument, error)
	Receivable(ctx context.Context, id int64) (*erp.Receivable, error)
}

// BlobStore is the content-addressed document store. Only encrypted bytes
// ever reach Put.
type BlobStore interface {
	Put(ctx context.Context, data []byte) (string, error)
	Get(ctx context.Context, hash string) ([]byte, error)
}

// Crypter seals and opens document bytes.
type Crypter interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(sealed []byte) ([]byte, error)
}

// Orderchain is the core service: projector, reconciler, workflow engine
// and alert aggregator over injected collaborators. It holds no long-lived
// entity state; every operation recomputes from the log and the external
// source.
type Orderchain struct {
	ledger          LedgerStore
	source          ExternalSource
	blobs           BlobStore
	contractCrypter Crypter
	deliveryCrypter Crypter
	catalog         model.Catalog
	salesOrderRef   int64
}

// New wires an Orderchain from the loaded configuration and the provided
// collaborators.
func New(ledger LedgerStore, source ExternalSource, blobs BlobStore) (*Orderchain, error) {
	conf, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	contractKey, err := conf.Security.ContractKeyBytes()
	if err != nil {
		return nil, err
	}
	contractCrypter, err := secure.NewCrypter(contractKey)
	if err != nil {
		return nil, err
	}

	deliveriesKey, err := conf.Security.DeliveriesKeyBytes()
	if err != nil {
		return nil, err
	}
	deliveryCrypter, err := secure.NewCrypter(deliveriesKey)
	if err != nil {
		return nil, err
	}

	var catalog model.Catalog
	if conf.CatalogPath != "" {
		catalog, err = model.LoadCatalog(conf.CatalogPath)
		if err != nil {
			return nil, err
		}
	}

	return &Orderchain{
		ledger:          ledger,
		source:          source,
		blobs:           blobs,
		contractCrypter: contractCrypter,
		deliveryCrypter: deliveryCrypter,
		catalog:         catalog,
		salesOrderRef:   conf.ERP.SalesOrderRef,
	}, nil
}

// PersonDetails resolves client and representative identity from the
// external source. Lookups degrade to "N/A" on failure; identity display is
// best-effort, unlike workflow reads.
type PersonDetails struct {
	ClientName string `json:"client_name"`
	ClientCNPJ string `json:"client_cnpj"`
	RepName    string `json:"rep_name"`
}

func (o *Orderchain) PersonDetails(ctx context.Context, clientID, repID int64) PersonDetails {
	details := PersonDetails{ClientName: "N/A", ClientCNPJ: "N/A", RepName: "N/A"}
	if client, err := o.source.Person(ctx, clientID); err == nil {
		details.ClientName = client.Name
		details.ClientCNPJ = client.CNPJ
	}
	if rep, err := o.source.Person(ctx, repID); err == nil {
		details.RepName = rep.Name
	}
	return details
}
