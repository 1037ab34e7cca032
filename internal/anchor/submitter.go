package anchor

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// anchorABI describes the single method the external contract exposes:
// anchor(bytes32).
const anchorABI = `[{"constant":false,"inputs":[{"name":"root","type":"bytes32"}],"name":"anchor","outputs":[],"payable":false,"stateMutability":"nonpayable","type":"function"}]`

// Submitter submits the anchoring transaction to the configured external
// chain, grounded on the example corpus's ethclient +
// accounts/abi/bind + crypto idiom for building and signing a raw
// contract-call transaction (ethclient.DialContext ->
// bind.NewKeyedTransactorWithChainID with the configured chain ID).
type Submitter struct {
	client   *ethclient.Client
	contract common.Address
	key      *ecdsa.PrivateKey
	chainID  *big.Int
	gasLimit uint64
	parsed   abi.ABI
}

// NewSubmitter dials rpcURL and prepares a keyed transactor for contract
// calls against contractAddr.
func NewSubmitter(ctx context.Context, rpcURL, privateKeyHex, contractAddr string, chainID int64, gasLimit uint64) (*Submitter, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("anchor: dial chain rpc: %w", err)
	}

	key, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("anchor: parse private key: %w", err)
	}

	parsed, err := abi.JSON(strings.NewReader(anchorABI))
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("anchor: parse contract abi: %w", err)
	}

	return &Submitter{
		client:   client,
		contract: common.HexToAddress(contractAddr),
		key:      key,
		chainID:  big.NewInt(chainID),
		gasLimit: gasLimit,
		parsed:   parsed,
	}, nil
}

// Close disconnects the chain RPC client.
func (s *Submitter) Close() {
	s.client.Close()
}

// Submit sends anchor(root) and waits for inclusion, returning the
// accepted transaction hash once the receipt confirms success.
func (s *Submitter) Submit(ctx context.Context, root [rootSize]byte) (string, error) {
	auth, err := bind.NewKeyedTransactorWithChainID(s.key, s.chainID)
	if err != nil {
		return "", fmt.Errorf("anchor: build transactor: %w", err)
	}
	auth.Context = ctx
	auth.GasLimit = s.gasLimit

	input, err := s.parsed.Pack("anchor", root)
	if err != nil {
		return "", fmt.Errorf("anchor: encode call data: %w", err)
	}

	nonce, err := s.client.PendingNonceAt(ctx, auth.From)
	if err != nil {
		return "", fmt.Errorf("anchor: fetch nonce: %w", err)
	}
	gasPrice, err := s.client.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("anchor: suggest gas price: %w", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &s.contract,
		Value:    big.NewInt(0),
		Gas:      s.gasLimit,
		GasPrice: gasPrice,
		Data:     input,
	})

	signed, err := auth.Signer(auth.From, tx)
	if err != nil {
		return "", fmt.Errorf("anchor: sign transaction: %w", err)
	}

	if err := s.client.SendTransaction(ctx, signed); err != nil {
		return "", fmt.Errorf("anchor: send transaction: %w", err)
	}

	receipt, err := bind.WaitMined(ctx, s.client, signed)
	if err != nil {
		return "", fmt.Errorf("anchor: await inclusion: %w", err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return "", fmt.Errorf("anchor: transaction %s reverted", signed.Hash().Hex())
	}

	return signed.Hash().Hex(), nil
}
