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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vertis-systems/orderchain/erp"
	"github.com/vertis-systems/orderchain/model"
)

func TestListAlertsMergesSources(t *testing.T) {
	ctx := context.Background()
	ledger := NewMockLedger()
	source := &MockSource{
		DeliveriesFn: func(int64) ([]erp.StockDocument, error) {
			return []erp.StockDocument{{ID: float64(77), IssuedAt: "2026-08-20"}}, nil
		},
		ReceivableFn: func(int64) (*erp.Receivable, error) {
			return &erp.Receivable{Paid: false, DueDate: "10/08/2026"}, nil
		},
	}
	svc := newTestService(t, ledger, source)

	note := model.Note{
		Kind:      model.AlertOrderApproved,
		Timestamp: "2026-08-25T09:00:00Z",
		Message:   "O seu pedido (ID: ...deadbeef) foi aprovado.",
	}
	_, err := ledger.Append(ctx, StreamNotes, "note_review_tx1", note)
	require.NoError(t, err)
	require.NoError(t, svc.SeedInstallments(ctx, []model.Installment{
		{ExternalID: 900, DueDate: "2026-08-10"},
	}))

	alerts, err := svc.ListAlerts(ctx)
	require.NoError(t, err)

	kinds := map[string]int{}
	for _, alert := range alerts {
		kinds[alert.Kind]++
	}
	assert.Equal(t, 1, kinds[model.AlertOrderApproved])
	assert.Equal(t, 1, kinds[model.AlertNewDelivery])
	assert.Equal(t, 1, kinds[model.AlertOverdueAccount])
}

func TestListAlertsNewestFirstMissingTimestampsLast(t *testing.T) {
	ctx := context.Background()
	ledger := NewMockLedger()
	source := &MockSource{
		DeliveriesFn: func(int64) ([]erp.StockDocument, error) {
			// Unparseable issue date: the synthesized alert has no timestamp.
			return []erp.StockDocument{{ID: float64(5), IssuedAt: "sem data"}}, nil
		},
	}
	svc := newTestService(t, ledger, source)

	older := model.Note{Kind: model.AlertOrderRejected, Timestamp: "2026-08-01T08:00:00Z", Message: "a"}
	newer := model.Note{Kind: model.AlertOrderApproved, Timestamp: "2026-08-20T08:00:00Z", Message: "b"}
	_, err := ledger.Append(ctx, StreamNotes, "note_review_tx1", older)
	require.NoError(t, err)
	_, err = ledger.Append(ctx, StreamNotes, "note_review_tx2", newer)
	require.NoError(t, err)

	alerts, err := svc.ListAlerts(ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 3)
	assert.Equal(t, model.AlertOrderApproved, alerts[0].Kind)
	assert.Equal(t, model.AlertOrderRejected, alerts[1].Kind)
	assert.Equal(t, model.AlertNewDelivery, alerts[2].Kind)
	assert.Empty(t, alerts[2].Timestamp)
}

func TestListAlertsDegradesWhenSourceDown(t *testing.T) {
	ctx := context.Background()
	ledger := NewMockLedger()
	source := &MockSource{
		DeliveriesFn: func(int64) ([]erp.StockDocument, error) {
			return nil, fmt.Errorf("erp offline")
		},
	}
	svc := newTestService(t, ledger, source)

	note := model.Note{Kind: model.AlertOrderApproved, Timestamp: "2026-08-25T09:00:00Z", Message: "x"}
	_, err := ledger.Append(ctx, StreamNotes, "note_review_tx1", note)
	require.NoError(t, err)

	// Persisted notes still flow when the external contributions fail.
	alerts, err := svc.ListAlerts(ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, model.AlertOrderApproved, alerts[0].Kind)
}

func TestConfirmedDeliveryProducesNoAlert(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, NewMockLedger(), stockDocSource(
		erp.StockDocument{ID: float64(31), IssuedAt: "2026-08-01"},
	))

	_, err := svc.SubmitDeliveryProof(ctx, 31, []byte("prova"))
	require.NoError(t, err)
	require.NoError(t, svc.ApproveDelivery(ctx, 31, "fiscal"))

	alerts, err := svc.ListAlerts(ctx)
	require.NoError(t, err)
	for _, alert := range alerts {
		assert.NotEqual(t, model.AlertNewDelivery, alert.Kind)
	}
}
