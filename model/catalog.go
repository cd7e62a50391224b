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
	"os"
)

// CatalogVariant is one sellable SKU of a product group.
type CatalogVariant struct {
	Code  string `json:"codigo"`
	Model string `json:"modelo"`
	Size  string `json:"tamanho"`
}

// CatalogGroup is a product group. All of its variants share a single stock
// counter, keyed by the first variant's code.
type CatalogGroup struct {
	ProductGroup string           `json:"product_group"`
	InitialStock int64            `json:"quantidade_inicial_contrato"`
	Variants     []CatalogVariant `json:"variants"`
}

type Catalog []CatalogGroup

// LoadCatalog reads the product catalog from a JSON file.
func LoadCatalog(path string) (Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Catalog
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	return c, nil
}

// InventoryKey resolves a variant code to its group's canonical inventory
// key: the code of the group's first variant. Returns false when the code is
// not in the catalog.
func (c Catalog) InventoryKey(variantCode string) (string, bool) {
	for _, group := range c {
		for _, variant := range group.Variants {
			if variant.Code == variantCode {
				if len(group.Variants) == 0 {
					return "", false
				}
				return group.Variants[0].Code, true
			}
		}
	}
	return "", false
}

// GroupFor returns the catalog group owning a variant code.
func (c Catalog) GroupFor(variantCode string) (CatalogGroup, bool) {
	for _, group := range c {
		for _, variant := range group.Variants {
			if variant.Code == variantCode {
				return group, true
			}
		}
	}
	return CatalogGroup{}, false
}
