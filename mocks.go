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

package orderchain

import (
	"context"
	"fmt"
	"sync"

	"github.com/vertis-systems/orderchain/erp"
	"github.com/vertis-systems/orderchain/model"
)

// MockLedger is an in-memory LedgerStore that keeps the full append history
// per stream and key and serves the last record on reads, matching the
// chain's read semantics.
type MockLedger struct {
	mu      sync.Mutex
	streams map[string]map[string][]map[string]interface{}
	keySeq  map[string][]string
	txSeq   int
	// AppendErr, when set, fails every Append with the given error.
	AppendErr error
}

func NewMockLedger() *MockLedger {
	return &MockLedger{
		streams: make(map[string]map[string][]map[string]interface{}),
		keySeq:  make(map[string][]string),
	}
}

func (m *MockLedger) EnsureStream(ctx context.Context, stream string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.streams[stream]; !ok {
		m.streams[stream] = make(map[string][]map[string]interface{})
	}
	return nil
}

func (m *MockLedger) Append(ctx context.Context, stream, key string, payload interface{}) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AppendErr != nil {
		return "", m.AppendErr
	}
	doc, err := model.ToPayload(payload)
	if err != nil {
		return "", err
	}
	if _, ok := m.streams[stream]; !ok {
		m.streams[stream] = make(map[string][]map[string]interface{})
	}
	if _, ok := m.streams[stream][key]; !ok {
		m.keySeq[stream] = append(m.keySeq[stream], key)
	}
	m.streams[stream][key] = append(m.streams[stream][key], doc)
	m.txSeq++
	return fmt.Sprintf("tx%04d", m.txSeq), nil
}

func (m *MockLedger) GetLatest(ctx context.Context, stream, key string) (map[string]interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	history := m.streams[stream][key]
	if len(history) == 0 {
		return nil, nil
	}
	return history[len(history)-1], nil
}

func (m *MockLedger) ListKeys(ctx context.Context, stream string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.keySeq[stream]...), nil
}

func (m *MockLedger) GetStreamState(ctx context.Context, stream string) ([]model.StreamItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := make([]model.StreamItem, 0, len(m.keySeq[stream]))
	for _, key := range m.keySeq[stream] {
		history := m.streams[stream][key]
		if len(history) == 0 {
			continue
		}
		payload := make(map[string]interface{}, len(history[len(history)-1])+1)
		for k, v := range history[len(history)-1] {
			payload[k] = v
		}
		payload["key"] = key
		items = append(items, model.StreamItem{Key: key, Payload: payload})
	}
	return items, nil
}

// History returns every record ever appended under a key, oldest first.
func (m *MockLedger) History(stream, key string) []map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]map[string]interface{}(nil), m.streams[stream][key]...)
}

// MockSource is an ExternalSource backed by function fields. Unset fields
// report the source as unreachable.
type MockSource struct {
	PersonFn     func(id int64) (*erp.Person, error)
	DeliveriesFn func(salesOrderRef int64) ([]erp.StockDocument, error)
	ReceivableFn func(id int64) (*erp.Receivable, error)
}

func (m *MockSource) Person(ctx context.Context, id int64) (*erp.Person, error) {
	if m.PersonFn != nil {
		return m.PersonFn(id)
	}
	return nil, fmt.Errorf("person source not configured")
}

func (m *MockSource) Deliveries(ctx context.Context, salesOrderRef int64) ([]erp.StockDocument, error) {
	if m.DeliveriesFn != nil {
		return m.DeliveriesFn(salesOrderRef)
	}
	return nil, fmt.Errorf("deliveries source not configured")
}

func (m *MockSource) Receivable(ctx context.Context, id int64) (*erp.Receivable, error) {
	if m.ReceivableFn != nil {
		return m.ReceivableFn(id)
	}
	return nil, fmt.Errorf("receivable source not configured")
}

// MockBlobs is an in-memory content-addressed BlobStore.
type MockBlobs struct {
	mu    sync.Mutex
	seq   int
	blobs map[string][]byte
}

func NewMockBlobs() *MockBlobs {
	return &MockBlobs{blobs: make(map[string][]byte)}
}

func (m *MockBlobs) Put(ctx context.Context, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	hash := fmt.Sprintf("Qm%06d", m.seq)
	m.blobs[hash] = append([]byte(nil), data...)
	return hash, nil
}

func (m *MockBlobs) Get(ctx context.Context, hash string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[hash]
	if !ok {
		return nil, fmt.Errorf("blob %s not found", hash)
	}
	return append([]byte(nil), data...), nil
}
