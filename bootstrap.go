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

	"github.com/sirupsen/logrus"

	"github.com/vertis-systems/orderchain/model"
)

// Streams lists every stream the workflow reads or writes.
func Streams() []string {
	return []string{
		StreamConfig,
		StreamInventory,
		StreamFinancial,
		StreamOrders,
		StreamDeliveries,
		StreamNotes,
	}
}

// EnsureStreams creates and subscribes to every workflow stream. Safe to run
// on every boot; existing streams are left alone.
func (o *Orderchain) EnsureStreams(ctx context.Context) error {
	for _, stream := range Streams() {
		if err := o.ledger.EnsureStream(ctx, stream); err != nil {
			return fmt.Errorf("ensuring stream %s: %w", stream, err)
		}
	}
	return nil
}

// SeedContract encrypts and stores the master contract document and appends
// its metadata to the config stream. Re-seeding appends a new metadata
// record; the old document stays in the blob store but is no longer
// referenced.
func (o *Orderchain) SeedContract(ctx context.Context, document []byte, validFrom, validUntil string) error {
	if len(document) == 0 {
		return fmt.Errorf("contract document is empty")
	}
	sealed, err := o.contractCrypter.Encrypt(document)
	if err != nil {
		return err
	}
	hash, err := o.blobs.Put(ctx, sealed)
	if err != nil {
		return err
	}

	contract := model.ContractMetadata{
		DocumentType: "contrato_master",
		DocumentHash: hash,
		ValidFrom:    validFrom,
		ValidUntil:   validUntil,
	}
	payload, err := model.ToPayload(contract)
	if err != nil {
		return err
	}
	if _, err := o.ledger.Append(ctx, StreamConfig, ContractConfigKey, payload); err != nil {
		return err
	}
	logrus.Infof("contract metadata seeded, document stored as %s", hash)
	return nil
}

// SeedInventory writes one initial stock counter per catalog group, keyed by
// the group's first variant. Keys that already carry a counter are skipped,
// so re-running the seed never resets consumption.
func (o *Orderchain) SeedInventory(ctx context.Context) error {
	for _, group := range o.catalog {
		if len(group.Variants) == 0 {
			logrus.Warnf("catalog group %q has no variants, skipping", group.ProductGroup)
			continue
		}
		key := group.Variants[0].Code

		existing, err := o.ledger.GetLatest(ctx, StreamInventory, key)
		if err != nil {
			return err
		}
		if existing != nil {
			logrus.Debugf("inventory key %q already seeded", key)
			continue
		}

		item := model.InventoryItem{
			ProductCode:    key,
			ProductGroup:   group.ProductGroup,
			AvailableStock: group.InitialStock,
			ConsumedStock:  0,
		}
		payload, err := model.ToPayload(item)
		if err != nil {
			return err
		}
		if _, err := o.ledger.Append(ctx, StreamInventory, key, payload); err != nil {
			return err
		}
		logrus.Infof("inventory key %q seeded with %d units", key, group.InitialStock)
	}
	return nil
}

// SeedInstallments records the contract's payment schedule on the financial
// stream. Existing keys are skipped so a settled installment is never
// flipped back to unpaid by a re-run.
func (o *Orderchain) SeedInstallments(ctx context.Context, installments []model.Installment) error {
	for _, installment := range installments {
		key := fmt.Sprintf("installment_%d", installment.ExternalID)

		existing, err := o.ledger.GetLatest(ctx, StreamFinancial, key)
		if err != nil {
			return err
		}
		if existing != nil {
			logrus.Debugf("installment key %q already seeded", key)
			continue
		}

		installment.Key = ""
		payload, err := model.ToPayload(installment)
		if err != nil {
			return err
		}
		if _, err := o.ledger.Append(ctx, StreamFinancial, key, payload); err != nil {
			return err
		}
		logrus.Infof("installment %d seeded under key %q", installment.ExternalID, key)
	}
	return nil
}
