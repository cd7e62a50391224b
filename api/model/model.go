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
	"encoding/base64"
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/vertis-systems/orderchain"
	"github.com/vertis-systems/orderchain/model"
)

// SubmitOrder is the request body of the order submission endpoint. The
// signature image arrives as a base64 data URI from the capture widget.
type SubmitOrder struct {
	ClientID       int64       `json:"client_id"`
	ClientName     string      `json:"client_name"`
	CNPJ           string      `json:"cnpj"`
	Representative string      `json:"representative"`
	Items          []OrderItem `json:"order_items"`
	SignatureImage string      `json:"signature_image"`
}

type OrderItem struct {
	Code     string `json:"codigo"`
	Model    string `json:"modelo"`
	Size     string `json:"tamanho"`
	Quantity int64  `json:"quantidade"`
}

func (o *OrderItem) ValidateOrderItem() error {
	return validation.ValidateStruct(o,
		validation.Field(&o.Code, validation.Required),
		validation.Field(&o.Quantity, validation.Required, validation.Min(1)),
	)
}

func (s *SubmitOrder) ValidateSubmitOrder() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.ClientID, validation.Required),
		validation.Field(&s.ClientName, validation.Required),
		validation.Field(&s.CNPJ, validation.Required),
		validation.Field(&s.Items, validation.Required, validation.By(func(value interface{}) error {
			items, ok := value.([]OrderItem)
			if !ok {
				return errors.New("invalid order items")
			}
			for i := range items {
				if err := items[i].ValidateOrderItem(); err != nil {
					return err
				}
			}
			return nil
		})),
		validation.Field(&s.SignatureImage, validation.Required),
	)
}

// SignatureBytes decodes the signature image, stripping a data URI prefix
// ("data:image/png;base64,...") when present.
func (s *SubmitOrder) SignatureBytes() ([]byte, error) {
	raw := s.SignatureImage
	if idx := strings.Index(raw, "base64,"); idx >= 0 {
		raw = raw[idx+len("base64,"):]
	}
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, errors.New("signature image is not valid base64")
	}
	return decoded, nil
}

// ToSubmitOrderInput maps the request body to the workflow input. The origin
// IP is filled in by the handler from the connection.
func (s *SubmitOrder) ToSubmitOrderInput(originIP string, signature []byte) orderchain.SubmitOrderInput {
	items := make([]model.OrderItem, 0, len(s.Items))
	for _, item := range s.Items {
		items = append(items, model.OrderItem{
			Code:     item.Code,
			Model:    item.Model,
			Size:     item.Size,
			Quantity: item.Quantity,
		})
	}
	return orderchain.SubmitOrderInput{
		ClientID:       s.ClientID,
		ClientName:     s.ClientName,
		CNPJ:           s.CNPJ,
		Representative: s.Representative,
		OriginIP:       originIP,
		Items:          items,
		Signature:      signature,
	}
}

// ReviewOrder is the request body of the order review endpoint.
type ReviewOrder struct {
	OrderTxID string `json:"order_txid"`
	Decision  string `json:"decision"`
	Reviewer  string `json:"reviewer"`
	Reason    string `json:"reason"`
}

func (r *ReviewOrder) ValidateReviewOrder() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.OrderTxID, validation.Required),
		validation.Field(&r.Decision, validation.Required,
			validation.In(orderchain.DecisionApproved, orderchain.DecisionRejected)),
		validation.Field(&r.Reviewer, validation.Required),
	)
}

// SubmitDeliveryProof is the request body of the proof submission endpoint.
type SubmitDeliveryProof struct {
	DeliveryID interface{} `json:"delivery_id"`
	Document   string      `json:"document"`
}

func (s *SubmitDeliveryProof) ValidateSubmitDeliveryProof() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.DeliveryID, validation.Required),
		validation.Field(&s.Document, validation.Required),
	)
}

// DocumentBytes decodes the proof document, stripping a data URI prefix
// when present.
func (s *SubmitDeliveryProof) DocumentBytes() ([]byte, error) {
	raw := s.Document
	if idx := strings.Index(raw, "base64,"); idx >= 0 {
		raw = raw[idx+len("base64,"):]
	}
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, errors.New("proof document is not valid base64")
	}
	return decoded, nil
}

// ApproveDelivery is the request body of the delivery approval endpoint.
type ApproveDelivery struct {
	DeliveryID interface{} `json:"delivery_id"`
	Reviewer   string      `json:"reviewer"`
}

func (a *ApproveDelivery) ValidateApproveDelivery() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.DeliveryID, validation.Required),
		validation.Field(&a.Reviewer, validation.Required),
	)
}

// PersonDetails is the request body of the identity lookup endpoint.
type PersonDetails struct {
	ClientID int64 `json:"client_id"`
	RepID    int64 `json:"rep_id"`
}

func (p *PersonDetails) ValidatePersonDetails() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.ClientID, validation.Required),
	)
}
