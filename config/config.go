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

package config

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"github.com/kelseyhightower/envconfig"

	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_PORT = "5000"
)

var ConfigStore atomic.Value

type ServerConfig struct {
	SSL       bool   `json:"ssl" envconfig:"ORDERCHAIN_SERVER_SSL"`
	Secure    bool   `json:"secure" envconfig:"ORDERCHAIN_SERVER_SECURE"`
	SecretKey string `json:"secret_key" envconfig:"ORDERCHAIN_SERVER_SECRET_KEY"`
	Domain    string `json:"domain" envconfig:"ORDERCHAIN_SERVER_SSL_DOMAIN"`
	Email     string `json:"ssl_email" envconfig:"ORDERCHAIN_SERVER_SSL_EMAIL"`
	Port      string `json:"port" envconfig:"ORDERCHAIN_SERVER_PORT"`
}

// ChainConfig points at the chain node's JSON-RPC endpoint. The node is the
// append-only record of truth; every call is blocking with this timeout and
// is never retried automatically.
type ChainConfig struct {
	Url        string `json:"url" envconfig:"ORDERCHAIN_CHAIN_URL"`
	User       string `json:"user" envconfig:"ORDERCHAIN_CHAIN_USER"`
	Password   string `json:"password" envconfig:"ORDERCHAIN_CHAIN_PASSWORD"`
	TimeoutSec int    `json:"timeout_sec" envconfig:"ORDERCHAIN_CHAIN_TIMEOUT_SEC"`
}

// ERPConfig points at the external source of record. SalesOrderRef is the
// sales order whose stock documents are treated as the delivery universe.
type ERPConfig struct {
	Url           string `json:"url" envconfig:"ORDERCHAIN_ERP_URL"`
	APIKey        string `json:"api_key" envconfig:"ORDERCHAIN_ERP_API_KEY"`
	SalesOrderRef int64  `json:"sales_order_ref" envconfig:"ORDERCHAIN_ERP_SALES_ORDER_REF"`
	TimeoutSec    int    `json:"timeout_sec" envconfig:"ORDERCHAIN_ERP_TIMEOUT_SEC"`
}

type IPFSConfig struct {
	Url        string `json:"url" envconfig:"ORDERCHAIN_IPFS_URL"`
	TimeoutSec int    `json:"timeout_sec" envconfig:"ORDERCHAIN_IPFS_TIMEOUT_SEC"`
}

// SecurityConfig carries the symmetric keys used to encrypt documents before
// they leave the system. Keys are base64-encoded 32-byte AES keys.
type SecurityConfig struct {
	ContractKey   string `json:"contract_key" envconfig:"ORDERCHAIN_CONTRACT_KEY"`
	DeliveriesKey string `json:"deliveries_key" envconfig:"ORDERCHAIN_DELIVERIES_KEY"`
}

// ContractKeyBytes decodes the contract encryption key.
func (s SecurityConfig) ContractKeyBytes() ([]byte, error) {
	return decodeKey(s.ContractKey)
}

// DeliveriesKeyBytes decodes the deliveries encryption key.
func (s SecurityConfig) DeliveriesKeyBytes() ([]byte, error) {
	return decodeKey(s.DeliveriesKey)
}

func decodeKey(key string) ([]byte, error) {
	if key == "" {
		return nil, errors.New("encryption key not configured")
	}
	raw, err := base64.StdEncoding.DecodeString(key)
	if err != nil {
		return nil, errors.New("encryption key is not valid base64")
	}
	return raw, nil
}

type RateLimitConfig struct {
	RequestsPerSecond  *float64 `json:"requests_per_second" envconfig:"ORDERCHAIN_RATE_LIMIT_RPS"`
	Burst              *int     `json:"burst" envconfig:"ORDERCHAIN_RATE_LIMIT_BURST"`
	CleanupIntervalSec *int     `json:"cleanup_interval_sec" envconfig:"ORDERCHAIN_RATE_LIMIT_CLEANUP_INTERVAL_SEC"`
}

type SlackWebhook struct {
	WebhookUrl string `json:"webhook_url"`
}

type Notification struct {
	Slack   SlackWebhook `json:"slack"`
	Webhook struct {
		Url     string            `json:"url"`
		Headers map[string]string `json:"headers"`
	} `json:"webhook"`
}

type Configuration struct {
	ProjectName  string          `json:"project_name" envconfig:"ORDERCHAIN_PROJECT_NAME"`
	CatalogPath  string          `json:"catalog_path" envconfig:"ORDERCHAIN_CATALOG_PATH"`
	Server       ServerConfig    `json:"server"`
	Chain        ChainConfig     `json:"chain"`
	ERP          ERPConfig       `json:"erp"`
	IPFS         IPFSConfig      `json:"ipfs"`
	Security     SecurityConfig  `json:"security"`
	RateLimit    RateLimitConfig `json:"rate_limit"`
	Notification Notification    `json:"notification"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}

	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("orderchain", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return err
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called orderchain.json with your config ❌")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		log.Println("Warning: Project name is empty. Setting a default name.")
		cnf.ProjectName = "Orderchain Server"
	}

	if cnf.Chain.Url == "" {
		log.Println("Error: Chain RPC url is empty. It's a required field.")
		return errors.New("chain RPC url is required")
	}

	if cnf.IPFS.Url == "" {
		cnf.IPFS.Url = "http://ipfs:5001"
	}

	// Trim white spaces from fields
	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.Server.Port = strings.TrimSpace(cnf.Server.Port)
	cnf.Chain.Url = strings.TrimSpace(cnf.Chain.Url)
	cnf.ERP.Url = strings.TrimSpace(cnf.ERP.Url)
	cnf.IPFS.Url = strings.TrimSpace(cnf.IPFS.Url)

	// Set default value for Port if it's empty
	if cnf.Server.Port == "" {
		cnf.Server.Port = DEFAULT_PORT
		log.Printf("Warning: Port not specified in config. Setting default port: %s", DEFAULT_PORT)
	}

	if cnf.Chain.TimeoutSec == 0 {
		cnf.Chain.TimeoutSec = 20
	}
	if cnf.ERP.TimeoutSec == 0 {
		cnf.ERP.TimeoutSec = 15
	}
	if cnf.IPFS.TimeoutSec == 0 {
		cnf.IPFS.TimeoutSec = 30
	}

	// Rate limiting is disabled by default (when both RPS and Burst are nil)
	if cnf.RateLimit.RequestsPerSecond != nil && cnf.RateLimit.Burst == nil {
		defaultBurst := 2 * int(*cnf.RateLimit.RequestsPerSecond)
		cnf.RateLimit.Burst = &defaultBurst
		log.Printf("Warning: Rate limit burst not specified. Setting default value: %d", defaultBurst)
	}
	if cnf.RateLimit.RequestsPerSecond == nil && cnf.RateLimit.Burst != nil {
		defaultRPS := float64(*cnf.RateLimit.Burst) / 2
		cnf.RateLimit.RequestsPerSecond = &defaultRPS
		log.Printf("Warning: Rate limit RPS not specified. Setting default value: %.2f", defaultRPS)
	}

	// Set default cleanup interval if not specified
	if cnf.RateLimit.CleanupIntervalSec == nil {
		defaultCleanup := 10800 // 3 hours in seconds
		cnf.RateLimit.CleanupIntervalSec = &defaultCleanup
		log.Printf("Warning: Rate limit cleanup interval not specified. Setting default value: %d seconds", defaultCleanup)
	}

	return nil
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}
