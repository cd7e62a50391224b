package config

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"testing"
)

func TestValidateAndAddDefaults(t *testing.T) {
	// Test case with empty chain url, which is required
	cnf := Configuration{
		ProjectName: "",
		Chain:       ChainConfig{Url: ""},
	}

	err := cnf.validateAndAddDefaults()
	if err == nil || err.Error() != "chain RPC url is required" {
		t.Errorf("Expected chain RPC url required error, got %v", err)
	}

	// Test case with all required fields filled, expect no error
	cnf = Configuration{
		ProjectName: "Test Project",
		Chain:       ChainConfig{Url: "http://chain:6466"},
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	// Test default port setting
	cnf.Server.Port = ""
	err = cnf.validateAndAddDefaults()
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if cnf.Server.Port != DEFAULT_PORT {
		t.Errorf("Expected default port %s, got %s", DEFAULT_PORT, cnf.Server.Port)
	}

	// Timeouts get defaults
	if cnf.Chain.TimeoutSec != 20 {
		t.Errorf("Expected default chain timeout 20, got %d", cnf.Chain.TimeoutSec)
	}
	if cnf.ERP.TimeoutSec != 15 {
		t.Errorf("Expected default ERP timeout 15, got %d", cnf.ERP.TimeoutSec)
	}
	if cnf.IPFS.Url != "http://ipfs:5001" {
		t.Errorf("Expected default IPFS url, got %s", cnf.IPFS.Url)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	// Create a temporary file
	tmpFile, err := os.CreateTemp("", "orderchain.json")
	if err != nil {
		t.Fatalf("Unable to create temporary file: %v", err)
	}
	defer os.Remove(tmpFile.Name()) // Clean up after the test

	// Sample configuration to write to the temp file
	sampleConfig := Configuration{
		ProjectName: "Temp Project",
		Chain:       ChainConfig{Url: "http://chain:6466", User: "rpc", Password: "secret"},
	}
	if err := json.NewEncoder(tmpFile).Encode(sampleConfig); err != nil {
		t.Fatalf("Unable to write to temporary file: %v", err)
	}
	tmpFile.Close() // Close the file so loadConfigFromFile can open it

	// Set an environment variable to override the project name
	os.Setenv("ORDERCHAIN_PROJECT_NAME", "Env Project")
	defer os.Unsetenv("ORDERCHAIN_PROJECT_NAME")

	if err := loadConfigFromFile(tmpFile.Name()); err != nil {
		t.Fatalf("loadConfigFromFile returned error: %v", err)
	}

	loaded, err := Fetch()
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if loaded.ProjectName != "Env Project" {
		t.Errorf("Expected env override 'Env Project', got %s", loaded.ProjectName)
	}
	if loaded.Chain.Url != "http://chain:6466" {
		t.Errorf("Expected chain url from file, got %s", loaded.Chain.Url)
	}
}

func TestSecurityKeyDecoding(t *testing.T) {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	sec := SecurityConfig{ContractKey: base64.StdEncoding.EncodeToString(key)}

	decoded, err := sec.ContractKeyBytes()
	if err != nil {
		t.Fatalf("ContractKeyBytes returned error: %v", err)
	}
	if len(decoded) != 32 {
		t.Errorf("Expected 32-byte key, got %d", len(decoded))
	}

	if _, err := (SecurityConfig{}).DeliveriesKeyBytes(); err == nil {
		t.Error("Expected error for missing deliveries key")
	}

	if _, err := (SecurityConfig{ContractKey: "not-base64!!"}).ContractKeyBytes(); err == nil {
		t.Error("Expected error for invalid base64 key")
	}
}
