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

package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Order statuses as they are written to the chain. The wire values are the
// Portuguese strings the ordering frontend and the seeded history already use.
const (
	OrderStatusAwaitingReview = "Aguardando avaliação"
	OrderStatusApproved       = "Aprovado"
	OrderStatusRejected       = "Recusado"
)

// Delivery statuses. A delivery with no chain record is always
// DeliveryStatusAwaitingShipment; that status is never persisted.
const (
	DeliveryStatusAwaitingShipment = "Aguardando envio"
	DeliveryStatusAwaitingApproval = "Aguardando aprovacao"
	DeliveryStatusConfirmed        = "Confirmado"
)

// Alert kinds emitted by the aggregator.
const (
	AlertOrderApproved   = "Pedido Aprovado"
	AlertOrderRejected   = "Pedido Recusado"
	AlertNewDelivery     = "Novo romaneio encontrado"
	AlertOverdueAccount  = "Parcela inadimplente"
	NoteTargetRoleClient = "cliente"
)

// StreamItem is one entry of a stream projection: the latest payload written
// under Key. The key is also merged into the payload so callers downstream of
// a projection can trace which chain key produced a record.
type StreamItem struct {
	Key     string
	Payload map[string]interface{}
}

// OrderItem is a single requested line item inside an order record.
type OrderItem struct {
	Code     string `json:"codigo"`
	Model    string `json:"modelo"`
	Size     string `json:"tamanho"`
	Quantity int64  `json:"quantidade"`
}

// Order is the projected state of one order key: the latest record appended
// under that key, with the chain key and content txid merged in.
type Order struct {
	Key             string      `json:"key,omitempty"`
	TxID            string      `json:"order_txid,omitempty"`
	Client          string      `json:"cliente"`
	CNPJ            string      `json:"cnpj"`
	Representative  string      `json:"representante"`
	TimestampUTC    string      `json:"data_hora_utc"`
	OriginIP        string      `json:"ip_origem,omitempty"`
	Items           []OrderItem `json:"produtos_solicitados"`
	DocumentHash    string      `json:"hash_pedido_ipfs,omitempty"`
	Status          string      `json:"status"`
	ReviewedBy      string      `json:"reviewed_by,omitempty"`
	ReviewedAtUTC   string      `json:"reviewed_at_utc,omitempty"`
	RejectionReason string      `json:"rejection_reason,omitempty"`
}

// InventoryItem is the projected stock counter for one inventory key.
// AvailableStock is the contracted quantity and is never decremented;
// consumption only ever grows ConsumedStock.
type InventoryItem struct {
	Key            string `json:"key,omitempty"`
	ProductCode    string `json:"product_code"`
	ProductGroup   string `json:"product_group"`
	AvailableStock int64  `json:"available_stock"`
	ConsumedStock  int64  `json:"consumed_stock"`
}

// DeliveryRecord is the chain-side record of a delivery. Existence of this
// record moves a delivery past AwaitingShipment.
type DeliveryRecord struct {
	Key            string `json:"key,omitempty"`
	DeliveryID     string `json:"delivery_id"`
	Status         string `json:"status"`
	DocumentHash   string `json:"ipfs_hash_encrypted,omitempty"`
	ConfirmedAtUTC string `json:"confirmed_at_utc,omitempty"`
	ApprovedBy     string `json:"approved_by,omitempty"`
	ApprovedAtUTC  string `json:"approved_at_utc,omitempty"`
}

// Delivery is the merged view of one delivery: the ERP is authoritative for
// existence, issue date and item count, the chain for status and proof.
type Delivery struct {
	ID             string `json:"id"`
	Key            string `json:"key"`
	IssuedAt       string `json:"dataEmissao"`
	ItemCount      int64  `json:"totalPecas"`
	Status         string `json:"status"`
	HasChainRecord bool   `json:"has_chain_record"`
	DocumentHash   string `json:"ipfs_hash_encrypted,omitempty"`
	ApprovedBy     string `json:"approved_by,omitempty"`
	ApprovedAtUTC  string `json:"approved_at_utc,omitempty"`
}

// Installment is a receivable tracked on the financial stream. Paid flips to
// true exactly once, when the external source reports the account settled.
type Installment struct {
	Key        string          `json:"key,omitempty"`
	ExternalID int64           `json:"id_external"`
	DueDate    string          `json:"due_date"`
	Value      decimal.Decimal `json:"value"`
	Paid       bool            `json:"paid"`
}

// Note is a persisted notification on the notes stream.
type Note struct {
	Key        string `json:"key,omitempty"`
	Kind       string `json:"kind"`
	Timestamp  string `json:"timestamp"`
	Message    string `json:"message"`
	TargetRole string `json:"target_role,omitempty"`
}

// Alert is one entry of the consolidated feed. Some alerts are persisted
// notes, others are synthesized at read time and never stored.
type Alert struct {
	Kind      string `json:"kind"`
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
}

// ContractMetadata is the config-stream record pointing at the encrypted
// master contract in the blob store.
type ContractMetadata struct {
	DocumentType string `json:"document_type"`
	DocumentHash string `json:"ipfs_hash_encrypted"`
	ValidFrom    string `json:"valid_from"`
	ValidUntil   string `json:"valid_until"`
}

// ToPayload converts a typed record into the generic document form the chain
// client appends.
func ToPayload(v interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// FromPayload decodes a chain document into a typed record.
func FromPayload(payload map[string]interface{}, v interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

// DeliveryKey normalizes a delivery identifier to the canonical string form
// used as the chain key. The ERP reports ids as JSON numbers while the chain
// keys are strings; every lookup and append must go through this so the two
// sides always meet in the same representation.
func DeliveryKey(id interface{}) string {
	switch v := id.(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatInt(int64(v), 10)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprint(v)
	}
}
