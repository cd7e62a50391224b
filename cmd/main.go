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
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vertis-systems/orderchain"
	"github.com/vertis-systems/orderchain/config"
	"github.com/vertis-systems/orderchain/erp"
	"github.com/vertis-systems/orderchain/internal/notification"
	"github.com/vertis-systems/orderchain/ipfs"
	"github.com/vertis-systems/orderchain/multichain"
)

// CLI is the command-line application, encapsulating the root Cobra command.
type CLI struct {
	cmd *cobra.Command
}

// appInstance holds the wired service and its configuration for commands.
type appInstance struct {
	chain *orderchain.Orderchain
	cnf   *config.Configuration
}

// recoverPanic logs any panic during execution and exits with an error.
func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun loads configuration and wires the service before any command runs.
func preRun(app *appInstance) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig("orderchain.json")
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		chain, err := setupOrderchain(cnf)
		if err != nil {
			notification.NotifyError(err)
			log.Fatal(err)
		}

		app.chain = chain
		app.cnf = cnf

		return nil
	}
}

// setupOrderchain wires the chain node, the ERP and the document store into
// a service instance, and makes sure every workflow stream exists.
func setupOrderchain(cfg *config.Configuration) (*orderchain.Orderchain, error) {
	ledger := multichain.NewClient(cfg.Chain)
	source := erp.NewClient(cfg.ERP)
	blobs := ipfs.NewClient(cfg.IPFS)

	chain, err := orderchain.New(ledger, source, blobs)
	if err != nil {
		return nil, err
	}
	if err := chain.EnsureStreams(context.Background()); err != nil {
		return nil, err
	}
	return chain, nil
}

// NewCLI builds the command-line interface with its subcommands.
func NewCLI() *CLI {
	var configFile string
	app := &appInstance{}

	var rootCmd = &cobra.Command{
		Use:   "orderchain",
		Short: "B2B ordering workflow over an append-only ledger",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./orderchain.json", "Configuration file for the server")
	rootCmd.PersistentPreRunE = preRun(app)

	rootCmd.AddCommand(serverCommands(app))
	rootCmd.AddCommand(seedCommands(app))

	return &CLI{cmd: rootCmd}
}

func (c CLI) executeCLI() {
	if err := c.cmd.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()
	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found")
	}
	cli := NewCLI()
	cli.executeCLI()
}
