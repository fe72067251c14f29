package shared

import (
	"bufio"
	"crypto/ecdsa"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

type OperatorConfig struct {
	Network         string
	RPCURL          string
	ContractAddress string
	PrivateKey      string
}

var dotenvLoadOnce sync.Once

// OperatorConfigFromEnv reads the operator settings from the environment,
// loading the nearest .env file first. Network scoped variables such as
// SEPOLIA_PRIVATE_KEY take precedence over the generic ones.
func OperatorConfigFromEnv() (OperatorConfig, error) {
	loadDotEnvIfPresent()

	network, err := NormalizeNetwork(firstNonEmptyEnv("COLORCITY_NETWORK", "NETWORK"))
	if err != nil {
		return OperatorConfig{}, err
	}

	config := OperatorConfig{
		Network:         network,
		RPCURL:          firstNonEmptyEnv("COLORCITY_RPC_URL", "RPC_URL"),
		ContractAddress: firstNonEmptyEnv("COLORCITY_CONTRACT_ADDRESS", "CONTRACT_ADDRESS"),
		PrivateKey:      firstNonEmptyEnv("COLORCITY_PRIVATE_KEY", "DEPLOYER_PRIVATE_KEY", "PRIVATE_KEY"),
	}

	scope := strings.ToUpper(strings.ReplaceAll(network, "-", "_"))
	if scoped := firstNonEmptyEnv(scope + "_RPC_URL"); scoped != "" {
		config.RPCURL = scoped
	}
	if scoped := firstNonEmptyEnv(scope+"_CONTRACT_ADDRESS", scope+"_COLORCITY_CONTRACT_ADDRESS"); scoped != "" {
		config.ContractAddress = scoped
	}
	if scoped := firstNonEmptyEnv(scope+"_PRIVATE_KEY", scope+"_DEPLOYER_PRIVATE_KEY"); scoped != "" {
		config.PrivateKey = scoped
	}

	return config, nil
}

// RequireContract validates that a contract address is configured.
func (c OperatorConfig) RequireContract() (common.Address, error) {
	if strings.TrimSpace(c.ContractAddress) == "" {
		return common.Address{}, fmt.Errorf("COLORCITY_CONTRACT_ADDRESS is required")
	}
	return ParseAddress(c.Network, c.ContractAddress)
}

// RequireSigner validates and parses the configured private key.
func (c OperatorConfig) RequireSigner() (*ecdsa.PrivateKey, error) {
	if strings.TrimSpace(c.PrivateKey) == "" {
		return nil, fmt.Errorf("COLORCITY_PRIVATE_KEY is required")
	}
	return ParsePrivateKey(c.PrivateKey)
}

func loadDotEnvIfPresent() {
	dotenvLoadOnce.Do(func() {
		for _, start := range dotEnvSearchRoots() {
			if candidate, ok := findDotEnv(start); ok {
				loadDotEnvFile(candidate)
				return
			}
		}
	})
}

func dotEnvSearchRoots() []string {
	roots := make([]string, 0, 2)
	if cwd, err := os.Getwd(); err == nil {
		roots = append(roots, cwd)
	}
	if _, currentFile, _, ok := runtime.Caller(0); ok {
		roots = append(roots, filepath.Dir(currentFile))
	}
	return roots
}

func findDotEnv(start string) (string, bool) {
	current := start
	for {
		candidate := filepath.Join(current, ".env")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", false
		}
		current = parent
	}
}

func loadDotEnvFile(path string) bool {
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()

	loadedAny := false
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		key, value, ok := parseDotEnvLine(scanner.Text())
		if !ok {
			continue
		}
		// the process environment always wins over the file
		if _, alreadySet := os.LookupEnv(key); alreadySet {
			continue
		}
		if setErr := os.Setenv(key, value); setErr == nil {
			loadedAny = true
		}
	}

	return loadedAny
}

func parseDotEnvLine(raw string) (string, string, bool) {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	line = strings.TrimSpace(strings.TrimPrefix(line, "export "))

	key, value, found := strings.Cut(line, "=")
	if !found {
		return "", "", false
	}
	key = strings.TrimSpace(key)
	if !isValidEnvKey(key) {
		return "", "", false
	}

	value = strings.TrimSpace(value)
	if len(value) >= 2 {
		quote := value[0]
		if (quote == '"' || quote == '\'') && value[len(value)-1] == quote {
			value = value[1 : len(value)-1]
		}
	}
	return key, value, true
}

func isValidEnvKey(key string) bool {
	if key == "" {
		return false
	}
	for index, character := range key {
		switch {
		case character >= 'A' && character <= 'Z',
			character >= 'a' && character <= 'z',
			character == '_':
		case index > 0 && character >= '0' && character <= '9':
		default:
			return false
		}
	}
	return true
}

func firstNonEmptyEnv(keys ...string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			return value
		}
	}
	return ""
}

// ParsePrivateKey parses a hex encoded secp256k1 private key, with or without 0x prefix.
func ParsePrivateKey(raw string) (*ecdsa.PrivateKey, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return nil, fmt.Errorf("private key cannot be empty")
	}
	candidate = strings.TrimPrefix(strings.TrimPrefix(candidate, "0x"), "0X")

	key, err := crypto.HexToECDSA(candidate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return key, nil
}

// SignerAddress returns the account address controlled by key.
func SignerAddress(key *ecdsa.PrivateKey) common.Address {
	return crypto.PubkeyToAddress(key.PublicKey)
}
