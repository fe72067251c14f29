package shared

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

var hederaEntityPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// ParseAddress parses an account or contract address. Hex addresses are
// accepted on every network; on Hedera networks a shard.realm.num entity ID
// is converted to its long-zero EVM address.
func ParseAddress(network string, raw string) (common.Address, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return common.Address{}, fmt.Errorf("address is required")
	}

	if hederaEntityPattern.MatchString(candidate) {
		descriptor, err := LookupNetwork(network)
		if err != nil {
			return common.Address{}, err
		}
		if !descriptor.Hedera {
			return common.Address{}, fmt.Errorf("entity ID %s is only valid on Hedera networks", candidate)
		}
		accountID, err := hedera.AccountIDFromString(candidate)
		if err != nil {
			return common.Address{}, fmt.Errorf("invalid Hedera account ID: %w", err)
		}
		return common.HexToAddress(accountID.ToSolidityAddress()), nil
	}

	if !common.IsHexAddress(candidate) {
		return common.Address{}, fmt.Errorf("invalid address %q", raw)
	}
	return common.HexToAddress(candidate), nil
}
