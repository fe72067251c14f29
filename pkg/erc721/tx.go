package erc721

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/colorcity-labs/colorcity-sdk-go/pkg/ledger"
	"github.com/colorcity-labs/colorcity-sdk-go/pkg/shared"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// BuildMintTx assembles an unsigned EIP-1559 mintItem transaction.
func BuildMintTx(
	chainID *big.Int,
	contract common.Address,
	nonce uint64,
	gasTipCap *big.Int,
	gasFeeCap *big.Int,
	gas uint64,
	value *big.Int,
) (*types.Transaction, error) {
	if chainID == nil || chainID.Sign() <= 0 {
		return nil, fmt.Errorf("chain ID is required")
	}
	if contract == (common.Address{}) {
		return nil, fmt.Errorf("contract address is required")
	}
	data, err := colorCityABI.Pack(methodMintItem)
	if err != nil {
		return nil, fmt.Errorf("failed to encode mintItem call: %w", err)
	}

	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: gasTipCap,
		GasFeeCap: gasFeeCap,
		Gas:       gas,
		To:        &contract,
		Value:     value,
		Data:      data,
	}), nil
}

// MintItem pays the mint price, waits for the transaction to be mined and
// returns the ID of the minted token.
func (c *Client) MintItem(ctx context.Context, options ledger.MintOptions) (ledger.MintResponse, error) {
	if c.signer == nil || c.transactor == nil {
		return ledger.MintResponse{}, ledger.ErrSignerRequired
	}
	from := shared.SignerAddress(c.signer)
	if options.Caller != (common.Address{}) && options.Caller != from {
		return ledger.MintResponse{}, fmt.Errorf("%w: caller %s, signer %s", ledger.ErrCallerMismatch, options.Caller.Hex(), from.Hex())
	}
	value := options.Value
	if value == nil {
		value = c.mintPrice
	}

	chainID, err := c.transactor.ChainID(ctx)
	if err != nil {
		return ledger.MintResponse{}, fmt.Errorf("failed to read chain ID: %w", err)
	}
	nonce, err := c.transactor.PendingNonceAt(ctx, from)
	if err != nil {
		return ledger.MintResponse{}, fmt.Errorf("failed to read nonce: %w", err)
	}
	gasTipCap, gasFeeCap, err := c.suggestFees(ctx)
	if err != nil {
		return ledger.MintResponse{}, err
	}

	data, err := colorCityABI.Pack(methodMintItem)
	if err != nil {
		return ledger.MintResponse{}, fmt.Errorf("failed to encode mintItem call: %w", err)
	}
	gas, err := c.transactor.EstimateGas(ctx, ethereum.CallMsg{
		From:  from,
		To:    &c.address,
		Value: value,
		Data:  data,
	})
	if err != nil {
		return ledger.MintResponse{}, fmt.Errorf("failed to estimate mint gas: %w", err)
	}
	gas += gas * c.gasMarginPercent / 100

	transaction, err := BuildMintTx(chainID, c.address, nonce, gasTipCap, gasFeeCap, gas, value)
	if err != nil {
		return ledger.MintResponse{}, err
	}
	signed, err := types.SignTx(transaction, types.LatestSignerForChainID(chainID), c.signer)
	if err != nil {
		return ledger.MintResponse{}, fmt.Errorf("failed to sign mint transaction: %w", err)
	}
	if err := c.transactor.SendTransaction(ctx, signed); err != nil {
		return ledger.MintResponse{}, fmt.Errorf("failed to send mint transaction: %w", err)
	}

	c.logger.Info("mint transaction sent",
		zap.String("tx", signed.Hash().Hex()),
		zap.String("from", from.Hex()),
		zap.String("value_eth", shared.FormatEther(value)),
	)

	receipt, err := c.waitMined(ctx, signed.Hash())
	if err != nil {
		return ledger.MintResponse{}, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return ledger.MintResponse{}, fmt.Errorf("mint transaction %s reverted", signed.Hash().Hex())
	}

	tokenID, err := c.mintedTokenID(receipt, from)
	if err != nil {
		return ledger.MintResponse{}, err
	}

	response := ledger.MintResponse{
		TokenID:         tokenID,
		Owner:           from,
		TransactionHash: receipt.TxHash,
		BlockHash:       receipt.BlockHash,
	}
	if receipt.BlockNumber != nil {
		response.BlockNumber = receipt.BlockNumber.Uint64()
	}

	c.logger.Info("mint transaction confirmed",
		zap.String("block_hash", response.BlockHash.Hex()),
		zap.String("token_id", tokenID.String()),
	)
	return response, nil
}

func (c *Client) suggestFees(ctx context.Context) (*big.Int, *big.Int, error) {
	gasTipCap, err := c.transactor.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to suggest gas tip: %w", err)
	}
	head, err := c.transactor.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read latest header: %w", err)
	}

	gasFeeCap := new(big.Int).Set(gasTipCap)
	if head != nil && head.BaseFee != nil {
		gasFeeCap.Add(gasFeeCap, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))
	}
	return gasTipCap, gasFeeCap, nil
}

func (c *Client) waitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.transactor.TransactionReceipt(ctx, hash)
		if err == nil && receipt != nil {
			return receipt, nil
		}
		if err != nil && !errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("failed to fetch receipt for %s: %w", hash.Hex(), err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) mintedTokenID(receipt *types.Receipt, owner common.Address) (*big.Int, error) {
	transfer := colorCityABI.Events[eventTransfer]
	for _, entry := range receipt.Logs {
		if entry == nil || entry.Address != c.address || len(entry.Topics) != 4 {
			continue
		}
		if entry.Topics[0] != transfer.ID {
			continue
		}
		from := common.BytesToAddress(entry.Topics[1].Bytes())
		to := common.BytesToAddress(entry.Topics[2].Bytes())
		if from != (common.Address{}) || to != owner {
			continue
		}
		return new(big.Int).SetBytes(entry.Topics[3].Bytes()), nil
	}
	return nil, fmt.Errorf("mint receipt %s has no Transfer event for %s", receipt.TxHash.Hex(), owner.Hex())
}
