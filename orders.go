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
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vertis-systems/orderchain/internal/apierror"
	"github.com/vertis-systems/orderchain/model"
)

// Review decisions accepted by ReviewOrder.
const (
	DecisionApproved = "approved"
	DecisionRejected = "rejected"
)

// SubmitOrderInput carries everything needed to durably record an order.
type SubmitOrderInput struct {
	ClientID       int64
	ClientName     string
	CNPJ           string
	Representative string
	OriginIP       string
	Items          []model.OrderItem
	Signature      []byte
}

// orderDocument is the canonical document stored (encrypted) in the blob
// store for each order. The chain record references it by content hash.
type orderDocument struct {
	Client         string            `json:"cliente"`
	CNPJ           string            `json:"cnpj"`
	Representative string            `json:"representante"`
	TimestampUTC   string            `json:"data_hora_utc"`
	Items          []model.OrderItem `json:"produtos_solicitados"`
	SignatureB64   string            `json:"assinatura"`
}

// SubmitOrder records a new order: debits inventory, stores the encrypted
// order document, then appends the order record twice under one key. The
// first append yields the content txid; the second enriches the same record
// with that txid so review decisions can reference it.
//
// The inventory debit batch is not atomic across line items: a failure
// partway leaves some keys debited and others not. Debit failures are
// logged per item and the submission proceeds; order durability wins over
// counter accuracy.
func (o *Orderchain) SubmitOrder(ctx context.Context, in SubmitOrderInput) (*model.Order, error) {
	if len(in.Items) == 0 {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "order has no line items", nil)
	}

	if err := o.debitInventory(ctx, in.Items); err != nil {
		return nil, err
	}

	timestamp := time.Now().UTC().Format(time.RFC3339)

	doc := orderDocument{
		Client:         in.ClientName,
		CNPJ:           in.CNPJ,
		Representative: in.Representative,
		TimestampUTC:   timestamp,
		Items:          in.Items,
		SignatureB64:   base64.StdEncoding.EncodeToString(in.Signature),
	}
	docBytes, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	sealed, err := o.contractCrypter.Encrypt(docBytes)
	if err != nil {
		return nil, err
	}
	docHash, err := o.blobs.Put(ctx, sealed)
	if err != nil {
		return nil, err
	}

	order := model.Order{
		Client:         in.ClientName,
		CNPJ:           in.CNPJ,
		Representative: in.Representative,
		TimestampUTC:   timestamp,
		OriginIP:       in.OriginIP,
		Items:          in.Items,
		DocumentHash:   docHash,
		Status:         model.OrderStatusAwaitingReview,
	}

	key := fmt.Sprintf("order_%d_%s", in.ClientID, uuid.New().String())
	payload, err := model.ToPayload(order)
	if err != nil {
		return nil, err
	}
	txid, err := o.ledger.Append(ctx, StreamOrders, key, payload)
	if err != nil {
		return nil, err
	}

	// Second append under the same key, carrying the first append's txid so
	// reviewers can find the record by its content-derived id.
	order.TxID = txid
	enriched, err := model.ToPayload(order)
	if err != nil {
		return nil, err
	}
	if _, err := o.ledger.Append(ctx, StreamOrders, key, enriched); err != nil {
		return nil, err
	}

	order.Key = key
	logrus.Infof("order %s recorded under key %s with %d line items", txid, key, len(in.Items))
	return &order, nil
}

// debitInventory aggregates ordered quantities per canonical inventory key
// and appends one updated counter per key. Variants sharing a group share
// one counter, so two line items resolving to the same key become a single
// debit, never two.
//
// The read-modify-append has no compare-and-swap: concurrent orders
// touching the same key can lose updates. Accepted; the log primitive
// offers no conditional append.
func (o *Orderchain) debitInventory(ctx context.Context, items []model.OrderItem) error {
	debits := make(map[string]int64)
	keyOrder := make([]string, 0, len(items))
	for _, item := range items {
		inventoryKey, ok := o.catalog.InventoryKey(item.Code)
		if !ok {
			logrus.Warnf("inventory debit skipped: product code %q not in catalog", item.Code)
			continue
		}
		if _, seen := debits[inventoryKey]; !seen {
			keyOrder = append(keyOrder, inventoryKey)
		}
		debits[inventoryKey] += item.Quantity
	}

	for _, inventoryKey := range keyOrder {
		quantity := debits[inventoryKey]
		payload, err := o.ledger.GetLatest(ctx, StreamInventory, inventoryKey)
		if err != nil {
			return err
		}
		if payload == nil {
			logrus.Warnf("inventory debit skipped: no counter for key %q", inventoryKey)
			continue
		}

		var current model.InventoryItem
		if err := model.FromPayload(payload, &current); err != nil {
			logrus.Warnf("inventory debit skipped: malformed counter for key %q: %v", inventoryKey, err)
			continue
		}

		// consumed_stock only ever grows, and always from the latest record,
		// never from a caller-supplied absolute. available_stock is untouched.
		current.ConsumedStock += quantity
		current.Key = ""
		updated, err := model.ToPayload(current)
		if err != nil {
			return err
		}
		if _, err := o.ledger.Append(ctx, StreamInventory, inventoryKey, updated); err != nil {
			logrus.Warnf("inventory debit failed for key %q: %v", inventoryKey, err)
			continue
		}
	}
	return nil
}

// ListOrders returns the projected state of every order, newest first.
func (o *Orderchain) ListOrders(ctx context.Context) ([]model.Order, error) {
	orders, _, err := o.ProjectOrders(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].TimestampUTC > orders[j].TimestampUTC
	})
	return orders, nil
}

// OrderDocument fetches and decrypts the stored order document.
func (o *Orderchain) OrderDocument(ctx context.Context, hash string) ([]byte, error) {
	if hash == "" {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "content hash is required", nil)
	}
	sealed, err := o.blobs.Get(ctx, hash)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrNotFound, "order document not found", err.Error())
	}
	return o.contractCrypter.Decrypt(sealed)
}

// ReviewOrder applies a terminal review decision to an order found by its
// content txid. The full latest record is re-appended under the original
// key with the decision fields set, so readers keep every order field.
//
// Replaying an identical decision is safe: the second call appends another
// record with the same terminal status, and last-record-wins readers
// observe no change. Two concurrent reviewers both succeed; the log's
// serialization order picks the decision readers see.
func (o *Orderchain) ReviewOrder(ctx context.Context, orderTxID, decision, reviewer, reason string) error {
	if decision != DecisionApproved && decision != DecisionRejected {
		return apierror.NewAPIError(apierror.ErrInvalidInput,
			fmt.Sprintf("decision must be %q or %q", DecisionApproved, DecisionRejected), decision)
	}
	if orderTxID == "" || reviewer == "" {
		return apierror.NewAPIError(apierror.ErrInvalidInput, "order txid and reviewer are required", nil)
	}

	orders, byTxID, err := o.ProjectOrders(ctx)
	if err != nil {
		return err
	}
	key, ok := byTxID[orderTxID]
	if !ok {
		return apierror.NewAPIError(apierror.ErrNotFound, "order record not found for txid", orderTxID)
	}

	var order model.Order
	for _, candidate := range orders {
		if candidate.Key == key {
			order = candidate
			break
		}
	}

	reviewedAt := time.Now().UTC().Format(time.RFC3339)
	if decision == DecisionApproved {
		order.Status = model.OrderStatusApproved
		order.RejectionReason = ""
	} else {
		order.Status = model.OrderStatusRejected
		order.RejectionReason = reason
	}
	order.ReviewedBy = reviewer
	order.ReviewedAtUTC = reviewedAt
	order.Key = ""

	payload, err := model.ToPayload(order)
	if err != nil {
		return err
	}
	if _, err := o.ledger.Append(ctx, StreamOrders, key, payload); err != nil {
		return err
	}

	o.appendReviewNote(ctx, orderTxID, decision, reviewedAt)
	logrus.Infof("order %s reviewed by %s: %s", orderTxID, reviewer, decision)
	return nil
}

// appendReviewNote records the client-facing notification for a review
// decision. Note failures do not fail the review itself.
func (o *Orderchain) appendReviewNote(ctx context.Context, orderTxID, decision, reviewedAt string) {
	kind := model.AlertOrderApproved
	verb := "aprovado"
	if decision == DecisionRejected {
		kind = model.AlertOrderRejected
		verb = "recusado"
	}

	suffix := orderTxID
	if len(suffix) > 8 {
		suffix = suffix[len(suffix)-8:]
	}
	note := model.Note{
		Kind:       kind,
		Timestamp:  reviewedAt,
		Message:    fmt.Sprintf("O seu pedido (ID: ...%s) foi %s.", suffix, verb),
		TargetRole: model.NoteTargetRoleClient,
	}
	payload, err := model.ToPayload(note)
	if err != nil {
		logrus.Warnf("review note for %s dropped: %v", orderTxID, err)
		return
	}
	if _, err := o.ledger.Append(ctx, StreamNotes, "note_review_"+orderTxID, payload); err != nil {
		logrus.Warnf("review note for %s dropped: %v", orderTxID, err)
	}
}

// ListNotes returns persisted notes, optionally filtered by target role.
func (o *Orderchain) ListNotes(ctx context.Context, targetRole string) ([]model.Note, error) {
	notes, err := o.ProjectNotes(ctx)
	if err != nil {
		return nil, err
	}
	if targetRole == "" {
		return notes, nil
	}
	filtered := notes[:0]
	for _, note := range notes {
		if note.TargetRole == targetRole {
			filtered = append(filtered, note)
		}
	}
	return filtered, nil
}
