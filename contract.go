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

	"github.com/vertis-systems/orderchain/internal/apierror"
	"github.com/vertis-systems/orderchain/model"
)

// ContractStatus is the full contract picture: the metadata record, the
// current stock counters and the catalog they are keyed by.
type ContractStatus struct {
	Contract  *model.ContractMetadata        `json:"contract"`
	Inventory map[string]model.InventoryItem `json:"inventory"`
	Catalog   model.Catalog                  `json:"catalog"`
}

// ContractStatus assembles the contract metadata with the projected
// inventory and the loaded catalog.
func (o *Orderchain) ContractStatus(ctx context.Context) (*ContractStatus, error) {
	contract, err := o.ContractMetadata(ctx)
	if err != nil {
		return nil, err
	}
	inventory, err := o.ProjectInventory(ctx)
	if err != nil {
		return nil, err
	}
	return &ContractStatus{
		Contract:  contract,
		Inventory: inventory,
		Catalog:   o.catalog,
	}, nil
}

// ContractDocument fetches and decrypts the master contract referenced by
// the config stream.
func (o *Orderchain) ContractDocument(ctx context.Context) ([]byte, error) {
	contract, err := o.ContractMetadata(ctx)
	if err != nil {
		return nil, err
	}
	if contract.DocumentHash == "" {
		return nil, apierror.NewAPIError(apierror.ErrNotFound, "contract has no stored document", nil)
	}
	sealed, err := o.blobs.Get(ctx, contract.DocumentHash)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrNotFound, "contract document not found", err.Error())
	}
	return o.contractCrypter.Decrypt(sealed)
}
