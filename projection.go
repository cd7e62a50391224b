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

	"github.com/sirupsen/logrus"

	"github.com/vertis-systems/orderchain/internal/apierror"
	"github.com/vertis-systems/orderchain/model"
)

// Projections are computed fresh on every call, never cached: the staleness
// window is the log's own propagation delay, not an application cache. The
// log's append order decides "latest"; embedded timestamps are never used to
// re-order records.

// ProjectInventory returns the latest stock counter per inventory key,
// keyed by product code.
func (o *Orderchain) ProjectInventory(ctx context.Context) (map[string]model.InventoryItem, error) {
	state, err := o.ledger.GetStreamState(ctx, StreamInventory)
	if err != nil {
		return nil, err
	}

	inventory := make(map[string]model.InventoryItem, len(state))
	for _, item := range state {
		var record model.InventoryItem
		if err := model.FromPayload(item.Payload, &record); err != nil {
			logrus.Warnf("skipping malformed inventory record under key %q: %v", item.Key, err)
			continue
		}
		if record.ProductCode == "" {
			continue
		}
		inventory[record.ProductCode] = record
	}
	return inventory, nil
}

// ProjectOrders returns the latest record per order key plus a secondary
// index from content txid to chain key. Review decisions reference orders by
// the content-derived txid, not the key, so the index is rebuilt on each
// projection instead of re-scanning at every call site.
func (o *Orderchain) ProjectOrders(ctx context.Context) ([]model.Order, map[string]string, error) {
	state, err := o.ledger.GetStreamState(ctx, StreamOrders)
	if err != nil {
		return nil, nil, err
	}

	orders := make([]model.Order, 0, len(state))
	byTxID := make(map[string]string, len(state))
	for _, item := range state {
		var order model.Order
		if err := model.FromPayload(item.Payload, &order); err != nil {
			logrus.Warnf("skipping malformed order record under key %q: %v", item.Key, err)
			continue
		}
		order.Key = item.Key
		orders = append(orders, order)
		if order.TxID != "" {
			byTxID[order.TxID] = item.Key
		}
	}
	return orders, byTxID, nil
}

// ProjectDeliveries returns the latest chain record per delivery, keyed by
// the normalized delivery identifier.
func (o *Orderchain) ProjectDeliveries(ctx context.Context) (map[string]model.DeliveryRecord, error) {
	state, err := o.ledger.GetStreamState(ctx, StreamDeliveries)
	if err != nil {
		return nil, err
	}

	deliveries := make(map[string]model.DeliveryRecord, len(state))
	for _, item := range state {
		var record model.DeliveryRecord
		if err := model.FromPayload(item.Payload, &record); err != nil {
			logrus.Warnf("skipping malformed delivery record under key %q: %v", item.Key, err)
			continue
		}
		record.Key = item.Key
		id := model.DeliveryKey(record.DeliveryID)
		if id == "" {
			id = item.Key
		}
		deliveries[id] = record
	}
	return deliveries, nil
}

// ProjectInstallments returns the latest record per installment key.
func (o *Orderchain) ProjectInstallments(ctx context.Context) ([]model.Installment, error) {
	state, err := o.ledger.GetStreamState(ctx, StreamFinancial)
	if err != nil {
		return nil, err
	}

	installments := make([]model.Installment, 0, len(state))
	for _, item := range state {
		var installment model.Installment
		if err := model.FromPayload(item.Payload, &installment); err != nil {
			logrus.Warnf("skipping malformed installment record under key %q: %v", item.Key, err)
			continue
		}
		installment.Key = item.Key
		installments = append(installments, installment)
	}
	return installments, nil
}

// ProjectNotes returns the latest persisted note per key.
func (o *Orderchain) ProjectNotes(ctx context.Context) ([]model.Note, error) {
	state, err := o.ledger.GetStreamState(ctx, StreamNotes)
	if err != nil {
		return nil, err
	}

	notes := make([]model.Note, 0, len(state))
	for _, item := range state {
		var note model.Note
		if err := model.FromPayload(item.Payload, &note); err != nil {
			logrus.Warnf("skipping malformed note record under key %q: %v", item.Key, err)
			continue
		}
		note.Key = item.Key
		notes = append(notes, note)
	}
	return notes, nil
}

// ContractMetadata returns the config-stream record describing the master
// contract, or NOT_FOUND when it has never been seeded.
func (o *Orderchain) ContractMetadata(ctx context.Context) (*model.ContractMetadata, error) {
	payload, err := o.ledger.GetLatest(ctx, StreamConfig, ContractConfigKey)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, apierror.NewAPIError(apierror.ErrNotFound, "contract metadata not found", nil)
	}
	var contract model.ContractMetadata
	if err := model.FromPayload(payload, &contract); err != nil {
		return nil, err
	}
	return &contract, nil
}
