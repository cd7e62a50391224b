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

package main

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/vertis-systems/orderchain/model"
)

// seedCommands returns the Cobra command that loads the initial chain state:
// the encrypted master contract, one stock counter per catalog group, and
// the contract's payment schedule. Every step skips records that already
// exist, so the command is safe to re-run.
func seedCommands(app *appInstance) *cobra.Command {
	var contractFile string
	var installmentsFile string
	var validFrom string
	var validUntil string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "seed contract, inventory and installments",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			if contractFile != "" {
				document, err := os.ReadFile(contractFile)
				if err != nil {
					log.Fatalf("reading contract file: %v", err)
				}
				if err := app.chain.SeedContract(ctx, document, validFrom, validUntil); err != nil {
					log.Fatalf("seeding contract: %v", err)
				}
			}

			if err := app.chain.SeedInventory(ctx); err != nil {
				log.Fatalf("seeding inventory: %v", err)
			}

			if installmentsFile != "" {
				raw, err := os.ReadFile(installmentsFile)
				if err != nil {
					log.Fatalf("reading installments file: %v", err)
				}
				var installments []model.Installment
				if err := json.Unmarshal(raw, &installments); err != nil {
					log.Fatalf("parsing installments file: %v", err)
				}
				if err := app.chain.SeedInstallments(ctx, installments); err != nil {
					log.Fatalf("seeding installments: %v", err)
				}
			}

			log.Println("seed complete")
		},
	}

	cmd.Flags().StringVar(&contractFile, "contract", "", "path to the master contract PDF")
	cmd.Flags().StringVar(&installmentsFile, "installments", "", "path to a JSON file with the payment schedule")
	cmd.Flags().StringVar(&validFrom, "valid-from", "", "contract validity start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&validUntil, "valid-until", "", "contract validity end (YYYY-MM-DD)")

	return cmd
}
