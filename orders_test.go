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
	"encoding/json"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vertis-systems/orderchain/internal/apierror"
	"github.com/vertis-systems/orderchain/model"
)

func seedInventory(t *testing.T, svc *Orderchain) {
	t.Helper()
	require.NoError(t, svc.SeedInventory(context.Background()))
}

func submitTestOrder(t *testing.T, svc *Orderchain, items []model.OrderItem) *model.Order {
	t.Helper()
	order, err := svc.SubmitOrder(context.Background(), SubmitOrderInput{
		ClientID:       42,
		ClientName:     "Confeccoes Aurora LTDA",
		CNPJ:           "12.345.678/0001-90",
		Representative: gofakeit.Name(),
		OriginIP:       "10.0.0.7",
		Items:          items,
		Signature:      []byte("assinatura"),
	})
	require.NoError(t, err)
	return order
}

func TestSubmitOrderAggregatesInventoryDebit(t *testing.T) {
	ctx := context.Background()
	ledger := NewMockLedger()
	svc := newTestService(t, ledger, nil)
	seedInventory(t, svc)

	// Two variants of the same group share one counter: one debit of 8,
	// never two partial debits.
	submitTestOrder(t, svc, []model.OrderItem{
		{Code: "CAM-01", Model: "Polo", Size: "P", Quantity: 5},
		{Code: "CAM-02", Model: "Polo", Size: "M", Quantity: 3},
	})

	inventory, err := svc.ProjectInventory(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(8), inventory["CAM-01"].ConsumedStock)

	// Seed plus exactly one debit append.
	assert.Len(t, ledger.History(StreamInventory, "CAM-01"), 2)
}

func TestSubmitOrderSequentialDebitsAccumulate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, NewMockLedger(), nil)
	seedInventory(t, svc)

	submitTestOrder(t, svc, []model.OrderItem{{Code: "CAL-01", Quantity: 30}})
	submitTestOrder(t, svc, []model.OrderItem{{Code: "CAL-01", Quantity: 40}})

	inventory, err := svc.ProjectInventory(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(70), inventory["CAL-01"].ConsumedStock)
	assert.Equal(t, int64(200), inventory["CAL-01"].AvailableStock)
}

func TestSubmitOrderAppendsTwiceWithTxid(t *testing.T) {
	ledger := NewMockLedger()
	svc := newTestService(t, ledger, nil)
	seedInventory(t, svc)

	order := submitTestOrder(t, svc, []model.OrderItem{{Code: "CAM-01", Quantity: 1}})
	require.NotEmpty(t, order.TxID)

	history := ledger.History(StreamOrders, order.Key)
	require.Len(t, history, 2)
	_, hasTxid := history[0]["order_txid"]
	assert.False(t, hasTxid)
	assert.Equal(t, order.TxID, history[1]["order_txid"])
	assert.Equal(t, model.OrderStatusAwaitingReview, history[1]["status"])
}

func TestSubmitOrderStoresEncryptedDocument(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, NewMockLedger(), nil)
	seedInventory(t, svc)

	order := submitTestOrder(t, svc, []model.OrderItem{{Code: "CAM-01", Quantity: 1}})
	require.NotEmpty(t, order.DocumentHash)

	// Stored bytes must not be readable without the key.
	sealed, err := svc.blobs.Get(ctx, order.DocumentHash)
	require.NoError(t, err)
	assert.False(t, json.Valid(sealed))

	plain, err := svc.OrderDocument(ctx, order.DocumentHash)
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(plain, &doc))
	assert.Equal(t, "Confeccoes Aurora LTDA", doc["cliente"])
}

func TestSubmitOrderRejectsEmptyItems(t *testing.T) {
	svc := newTestService(t, NewMockLedger(), nil)
	_, err := svc.SubmitOrder(context.Background(), SubmitOrderInput{ClientID: 1})
	require.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.ErrInvalidInput))
}

func TestReviewOrderApproved(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, NewMockLedger(), nil)
	seedInventory(t, svc)
	order := submitTestOrder(t, svc, []model.OrderItem{{Code: "CAM-01", Quantity: 2}})

	require.NoError(t, svc.ReviewOrder(ctx, order.TxID, DecisionApproved, "gestor", ""))

	orders, err := svc.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, model.OrderStatusApproved, orders[0].Status)
	assert.Equal(t, "gestor", orders[0].ReviewedBy)
	// The merged record keeps every original field.
	assert.Equal(t, "12.345.678/0001-90", orders[0].CNPJ)
	assert.Len(t, orders[0].Items, 1)

	notes, err := svc.ListNotes(ctx, model.NoteTargetRoleClient)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, model.AlertOrderApproved, notes[0].Kind)
	assert.Contains(t, notes[0].Message, "foi aprovado")
}

func TestReviewOrderRejectedKeepsReason(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, NewMockLedger(), nil)
	seedInventory(t, svc)
	order := submitTestOrder(t, svc, []model.OrderItem{{Code: "CAM-01", Quantity: 2}})

	require.NoError(t, svc.ReviewOrder(ctx, order.TxID, DecisionRejected, "gestor", "quantidade acima do contratado"))

	orders, err := svc.ListOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusRejected, orders[0].Status)
	assert.Equal(t, "quantidade acima do contratado", orders[0].RejectionReason)

	notes, err := svc.ListNotes(ctx, model.NoteTargetRoleClient)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, model.AlertOrderRejected, notes[0].Kind)
}

func TestReviewOrderIdempotentReplay(t *testing.T) {
	ctx := context.Background()
	ledger := NewMockLedger()
	svc := newTestService(t, ledger, nil)
	seedInventory(t, svc)
	order := submitTestOrder(t, svc, []model.OrderItem{{Code: "CAM-01", Quantity: 2}})

	require.NoError(t, svc.ReviewOrder(ctx, order.TxID, DecisionApproved, "gestor", ""))
	require.NoError(t, svc.ReviewOrder(ctx, order.TxID, DecisionApproved, "gestor", ""))

	orders, err := svc.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, model.OrderStatusApproved, orders[0].Status)
}

func TestReviewOrderInvalidDecision(t *testing.T) {
	svc := newTestService(t, NewMockLedger(), nil)
	err := svc.ReviewOrder(context.Background(), "tx0001", "maybe", "gestor", "")
	require.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.ErrInvalidInput))
}

func TestReviewOrderUnknownTxid(t *testing.T) {
	svc := newTestService(t, NewMockLedger(), nil)
	err := svc.ReviewOrder(context.Background(), "txdeadbeef", DecisionApproved, "gestor", "")
	require.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.ErrNotFound))
}

func TestListOrdersNewestFirst(t *testing.T) {
	ctx := context.Background()
	ledger := NewMockLedger()
	svc := newTestService(t, ledger, nil)

	older := model.Order{Client: "A", TimestampUTC: "2026-08-01T10:00:00Z", Status: model.OrderStatusAwaitingReview}
	newer := model.Order{Client: "B", TimestampUTC: "2026-08-15T10:00:00Z", Status: model.OrderStatusAwaitingReview}
	_, err := ledger.Append(ctx, StreamOrders, "order_1_a", older)
	require.NoError(t, err)
	_, err = ledger.Append(ctx, StreamOrders, "order_1_b", newer)
	require.NoError(t, err)

	orders, err := svc.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "B", orders[0].Client)
}
