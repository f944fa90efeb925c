package rpc

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/go-serum-market/internal/types"
	"github.com/mr-tron/base58"
)

// ErrAccountNotFound is returned when the ledger has no account at the
// requested address.
var ErrAccountNotFound = errors.New("rpc: account not found")

type RequestBody struct {
	Jsonrpc string      `json:"jsonrpc"`
	ID      int         `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

type ResponseBody struct {
	Jsonrpc string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type AccountInfo struct {
	Value *AccountInfoValue `json:"value"`
}

type AccountInfoValue struct {
	Data       []string `json:"data"`
	Owner      string   `json:"owner"`
	Lamports   uint64   `json:"lamports"`
	Executable bool     `json:"executable"`
}

type BlockhashResult struct {
	Value BlockhashValue `json:"value"`
}

type BlockhashValue struct {
	Blockhash string `json:"blockhash"`
}

type signatureStatusesResult struct {
	Value []*signatureStatus `json:"value"`
}

type signatureStatus struct {
	Slot               uint64          `json:"slot"`
	Confirmations      *uint64         `json:"confirmations"`
	ConfirmationStatus string          `json:"confirmationStatus"`
	Err                json.RawMessage `json:"err"`
}

// ConfirmationResult is the outcome of a confirmation wait. Err carries
// the on-chain execution error payload verbatim when present.
type ConfirmationResult struct {
	Err json.RawMessage
}

type Client struct {
	url        string
	httpClient *http.Client
	pollDelay  time.Duration
}

func NewClient(url string) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		pollDelay:  500 * time.Millisecond,
	}
}

func (c *Client) CallRPC(ctx context.Context, method string, params interface{}) (*ResponseBody, error) {
	requestBody := RequestBody{
		Jsonrpc: "2.0",
		ID:      1,
		Method:  method,
		Params:  params,
	}

	reqBody, err := json.Marshal(requestBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var reader io.ReadCloser
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		reader, err = gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer reader.Close()
	default:
		reader = resp.Body
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	var responseBody ResponseBody
	if err := json.Unmarshal(body, &responseBody); err != nil {
		return nil, err
	}

	if responseBody.Error != nil {
		return nil, responseBody.Error
	}

	return &responseBody, nil
}

// FetchAccount returns the raw bytes of the account at the given
// address, or ErrAccountNotFound when the ledger holds nothing there.
func (c *Client) FetchAccount(ctx context.Context, address solana.PublicKey) ([]byte, error) {
	params := []interface{}{
		address,
		map[string]interface{}{
			"encoding":   "base64",
			"commitment": string(types.CommitmentConfirmed),
		},
	}

	response, err := c.CallRPC(ctx, "getAccountInfo", params)
	if err != nil {
		return nil, err
	}

	var accountInfo AccountInfo
	if err := json.Unmarshal(response.Result, &accountInfo); err != nil {
		return nil, err
	}

	if accountInfo.Value == nil || len(accountInfo.Value.Data) == 0 {
		return nil, ErrAccountNotFound
	}

	data, err := base64.StdEncoding.DecodeString(accountInfo.Value.Data[0])
	if err != nil {
		return nil, fmt.Errorf("failed to decode account data: %w", err)
	}

	return data, nil
}

func (c *Client) GetLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	params := []interface{}{
		map[string]interface{}{
			"commitment": string(types.CommitmentConfirmed),
		},
	}

	response, err := c.CallRPC(ctx, "getLatestBlockhash", params)
	if err != nil {
		return solana.Hash{}, err
	}

	var result BlockhashResult
	if err := json.Unmarshal(response.Result, &result); err != nil {
		return solana.Hash{}, err
	}

	return solana.HashFromBase58(result.Value.Blockhash)
}

// Broadcast signs the transaction with the provided signers and sends
// it to the ledger. Exactly one sendTransaction call; no retries.
func (c *Client) Broadcast(ctx context.Context, transaction *solana.Transaction, signers []solana.PrivateKey, skipPreflight bool) (solana.Signature, error) {
	if len(signers) > 0 {
		_, err := transaction.Sign(func(key solana.PublicKey) *solana.PrivateKey {
			for i := range signers {
				if signers[i].PublicKey().Equals(key) {
					return &signers[i]
				}
			}
			return nil
		})
		if err != nil {
			return solana.Signature{}, fmt.Errorf("failed to sign transaction: %w", err)
		}
	}

	msg, err := transaction.MarshalBinary()
	if err != nil {
		return solana.Signature{}, err
	}

	params := []interface{}{
		base58.Encode(msg),
		map[string]interface{}{
			"encoding":            "base58",
			"skipPreflight":       skipPreflight,
			"maxRetries":          0,
			"preflightCommitment": string(types.CommitmentConfirmed),
		},
	}

	response, err := c.CallRPC(ctx, "sendTransaction", params)
	if err != nil {
		return solana.Signature{}, err
	}

	var sig string
	if err := json.Unmarshal(response.Result, &sig); err != nil {
		return solana.Signature{}, err
	}

	return solana.SignatureFromBase58(sig)
}

// AwaitConfirmation polls signature statuses until the transaction
// reaches the requested commitment or reports an execution error.
// Cancelling the context leaves the broadcast outcome ambiguous: the
// transaction may still land on the ledger.
func (c *Client) AwaitConfirmation(ctx context.Context, signature solana.Signature, commitment types.Commitment) (*ConfirmationResult, error) {
	params := []interface{}{
		[]string{signature.String()},
		map[string]interface{}{
			"searchTransactionHistory": false,
		},
	}

	for {
		response, err := c.CallRPC(ctx, "getSignatureStatuses", params)
		if err != nil {
			return nil, err
		}

		var result signatureStatusesResult
		if err := json.Unmarshal(response.Result, &result); err != nil {
			return nil, err
		}

		if len(result.Value) > 0 && result.Value[0] != nil {
			status := result.Value[0]
			if len(status.Err) > 0 && string(status.Err) != "null" {
				return &ConfirmationResult{Err: status.Err}, nil
			}
			if types.Commitment(status.ConfirmationStatus).Rank() >= commitment.Rank() {
				return &ConfirmationResult{}, nil
			}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollDelay):
		}
	}
}
