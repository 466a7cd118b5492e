package solana

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
)

var AssociatedTokenProgramID = solana.MustPublicKeyFromBase58("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")

// DevnetUsdcMint is the fixed mint the swap demo trades against.
var DevnetUsdcMint = solana.MustPublicKeyFromBase58("4zMMC9srt5Ri5X14GAgXhaHii3GnPAEERYPJgZJDncDU")

// Client is a read-oriented RPC client for the swap demo.
type Client struct {
	RpcClient *rpc.Client
	Signer    solana.PrivateKey
}

func newRPCClient(rpcEndpoint string) *rpc.Client {
	opts := &jsonrpc.RPCClientOpts{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
	return rpc.NewWithCustomRPCClient(jsonrpc.NewClientWithOpts(rpcEndpoint, opts))
}

// NewClient creates a Client that can sign and send transactions.
func NewClient(rpcEndpoint string, signer solana.PrivateKey) (*Client, error) {
	return &Client{
		RpcClient: newRPCClient(rpcEndpoint),
		Signer:    signer,
	}, nil
}

// NewReadOnlyClient creates a Client with a throwaway signer for read calls.
func NewReadOnlyClient(rpcEndpoint string) (*Client, error) {
	return &Client{
		RpcClient: newRPCClient(rpcEndpoint),
		Signer:    solana.NewWallet().PrivateKey,
	}, nil
}

// FindTokenAccount derives the associated token account holding owner's
// balance of the demo mint. The derivation is deterministic and needs no
// network call.
func FindTokenAccount(owner solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindAssociatedTokenAddress(owner, DevnetUsdcMint)
}

func (c *Client) GetBalance(ctx context.Context, pk solana.PublicKey) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	balance, err := c.RpcClient.GetBalance(ctx, pk, rpc.CommitmentFinalized)
	if err != nil {
		return 0, err
	}
	return balance.Value, nil
}

// GetTokenAccountBalance returns the UI amount string of an SPL token account.
func (c *Client) GetTokenAccountBalance(ctx context.Context, account solana.PublicKey) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	resp, err := c.RpcClient.GetTokenAccountBalance(ctx, account, rpc.CommitmentConfirmed)
	if err != nil {
		return "", err
	}
	if resp.Value == nil {
		return "", fmt.Errorf("token account %s not found", account)
	}
	return resp.Value.UiAmountString, nil
}

// TransferSOL sends lamports from the signer to recipient.
func (c *Client) TransferSOL(ctx context.Context, recipient solana.PublicKey, lamports uint64) (*solana.Signature, error) {
	ix := system.NewTransferInstruction(
		lamports,
		c.Signer.PublicKey(),
		recipient,
	).Build()

	return c.sendTx(ctx, []solana.Instruction{ix})
}

func (c *Client) sendTx(ctx context.Context, instructions []solana.Instruction) (*solana.Signature, error) {
	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	latest, err := c.RpcClient.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return nil, err
	}

	tx, err := solana.NewTransaction(instructions, latest.Value.Blockhash, solana.TransactionPayer(c.Signer.PublicKey()))
	if err != nil {
		return nil, err
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if c.Signer.PublicKey().Equals(key) {
			return &c.Signer
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	sig, err := c.RpcClient.SendTransaction(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to send transaction: %w", err)
	}

	return &sig, nil
}

func (c *Client) WaitForConfirmation(ctx context.Context, sig solana.Signature) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(1 * time.Second):
			out, err := c.RpcClient.GetSignatureStatuses(ctx, true, sig)
			if err != nil {
				continue
			}
			if len(out.Value) > 0 && out.Value[0] != nil {
				if out.Value[0].Err != nil {
					return fmt.Errorf("transaction failed: %v", out.Value[0].Err)
				}
				if out.Value[0].ConfirmationStatus == rpc.ConfirmationStatusConfirmed || out.Value[0].ConfirmationStatus == rpc.ConfirmationStatusFinalized {
					return nil
				}
			}
		}
	}
}
