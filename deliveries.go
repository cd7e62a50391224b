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
	"sort"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vertis-systems/orderchain/internal/apierror"
	"github.com/vertis-systems/orderchain/model"
)

// ListDeliveries merges the external source's stock documents with the
// chain's delivery records. The external source is authoritative for which
// deliveries exist; the chain is authoritative for workflow status. A
// delivery with no chain record is awaiting shipment.
func (o *Orderchain) ListDeliveries(ctx context.Context) ([]model.Delivery, error) {
	docs, err := o.source.Deliveries(ctx, o.salesOrderRef)
	if err != nil {
		return nil, err
	}
	records, err := o.ProjectDeliveries(ctx)
	if err != nil {
		return nil, err
	}

	deliveries := make([]model.Delivery, 0, len(docs))
	for _, doc := range docs {
		key := model.DeliveryKey(doc.ID)
		delivery := model.Delivery{
			ID:        key,
			Key:       key,
			IssuedAt:  doc.IssuedAt,
			ItemCount: doc.TotalItems(),
			Status:    model.DeliveryStatusAwaitingShipment,
		}
		if record, ok := records[key]; ok {
			delivery.Status = record.Status
			delivery.HasChainRecord = true
			delivery.DocumentHash = record.DocumentHash
			delivery.ApprovedBy = record.ApprovedBy
			delivery.ApprovedAtUTC = record.ApprovedAtUTC
		}
		deliveries = append(deliveries, delivery)
	}

	sort.SliceStable(deliveries, func(i, j int) bool {
		a, errA := strconv.ParseInt(deliveries[i].ID, 10, 64)
		b, errB := strconv.ParseInt(deliveries[j].ID, 10, 64)
		if errA != nil || errB != nil {
			return deliveries[i].ID < deliveries[j].ID
		}
		return a < b
	})
	return deliveries, nil
}

// ListPendingApproval returns the deliveries whose proof has been submitted
// but not yet reviewed. Confirmed deliveries never reappear here.
func (o *Orderchain) ListPendingApproval(ctx context.Context) ([]model.Delivery, error) {
	deliveries, err := o.ListDeliveries(ctx)
	if err != nil {
		return nil, err
	}
	pending := deliveries[:0]
	for _, delivery := range deliveries {
		if delivery.Status == model.DeliveryStatusAwaitingApproval {
			pending = append(pending, delivery)
		}
	}
	return pending, nil
}

// ListToShip returns the deliveries the external source knows about that
// have no chain record yet.
func (o *Orderchain) ListToShip(ctx context.Context) ([]model.Delivery, error) {
	deliveries, err := o.ListDeliveries(ctx)
	if err != nil {
		return nil, err
	}
	toShip := deliveries[:0]
	for _, delivery := range deliveries {
		if !delivery.HasChainRecord {
			toShip = append(toShip, delivery)
		}
	}
	return toShip, nil
}

// SubmitDeliveryProof stores the encrypted shipment proof and moves the
// delivery to awaiting approval. The id is normalized before keying, so
// numeric and string forms of the same id always land on one record.
func (o *Orderchain) SubmitDeliveryProof(ctx context.Context, deliveryID interface{}, document []byte) (string, error) {
	key := model.DeliveryKey(deliveryID)
	if key == "" {
		return "", apierror.NewAPIError(apierror.ErrInvalidInput, "delivery id is required", nil)
	}
	if len(document) == 0 {
		return "", apierror.NewAPIError(apierror.ErrInvalidInput, "proof document is required", nil)
	}

	sealed, err := o.deliveryCrypter.Encrypt(document)
	if err != nil {
		return "", err
	}
	hash, err := o.blobs.Put(ctx, sealed)
	if err != nil {
		return "", err
	}

	record := model.DeliveryRecord{
		DeliveryID:   key,
		Status:       model.DeliveryStatusAwaitingApproval,
		DocumentHash: hash,
	}
	payload, err := model.ToPayload(record)
	if err != nil {
		return "", err
	}
	txid, err := o.ledger.Append(ctx, StreamDeliveries, key, payload)
	if err != nil {
		return "", err
	}
	logrus.Infof("delivery %s proof recorded as %s", key, hash)
	return txid, nil
}

// ApproveDelivery confirms a delivery whose proof is awaiting review. The
// latest record is merged and re-appended with the confirmed status, keeping
// the proof hash. Approving an already confirmed delivery appends another
// confirmed record and readers observe no change.
func (o *Orderchain) ApproveDelivery(ctx context.Context, deliveryID interface{}, reviewer string) error {
	key := model.DeliveryKey(deliveryID)
	if key == "" || reviewer == "" {
		return apierror.NewAPIError(apierror.ErrInvalidInput, "delivery id and reviewer are required", nil)
	}

	latest, err := o.ledger.GetLatest(ctx, StreamDeliveries, key)
	if err != nil {
		return err
	}
	if latest == nil {
		return apierror.NewAPIError(apierror.ErrNotFound, "no proof record for delivery", key)
	}

	var record model.DeliveryRecord
	if err := model.FromPayload(latest, &record); err != nil {
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339)
	record.DeliveryID = key
	record.Status = model.DeliveryStatusConfirmed
	record.ConfirmedAtUTC = now
	record.ApprovedBy = reviewer
	record.ApprovedAtUTC = now
	record.Key = ""

	payload, err := model.ToPayload(record)
	if err != nil {
		return err
	}
	if _, err := o.ledger.Append(ctx, StreamDeliveries, key, payload); err != nil {
		return err
	}
	logrus.Infof("delivery %s confirmed by %s", key, reviewer)
	return nil
}

// DeliveryDocument fetches and decrypts a stored shipment proof.
func (o *Orderchain) DeliveryDocument(ctx context.Context, hash string) ([]byte, error) {
	if hash == "" {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "content hash is required", nil)
	}
	sealed, err := o.blobs.Get(ctx, hash)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrNotFound, "delivery document not found", err.Error())
	}
	return o.deliveryCrypter.Decrypt(sealed)
}
