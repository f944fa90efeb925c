package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gorilla/websocket"
	"github.com/iqbalbaharum/go-serum-market/internal/types"
)

// WsClient waits for transaction confirmations over the ledger's
// websocket endpoint instead of polling. One subscription per wait;
// the ledger tears the subscription down after the first notification.
type WsClient struct {
	conn  *websocket.Conn
	url   string
	mutex sync.Mutex
}

func DialWs(url string) (*WsClient, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}

	return &WsClient{
		conn: conn,
		url:  url,
	}, nil
}

func (w *WsClient) reconnect() error {
	conn, _, err := websocket.DefaultDialer.Dial(w.url, nil)
	if err != nil {
		return err
	}

	w.conn = conn
	return nil
}

func (w *WsClient) send(request interface{}) error {
	data, err := json.Marshal(request)
	if err != nil {
		return err
	}

	w.mutex.Lock()
	defer w.mutex.Unlock()

	if err := w.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		if err := w.reconnect(); err != nil {
			return err
		}
		return w.conn.WriteMessage(websocket.TextMessage, data)
	}

	return nil
}

type wsNotification struct {
	Method string `json:"method"`
	Params struct {
		Result struct {
			Value struct {
				Err json.RawMessage `json:"err"`
			} `json:"value"`
		} `json:"result"`
	} `json:"params"`
}

// AwaitConfirmation subscribes to the signature and blocks until the
// ledger pushes its confirmation notification at the requested
// commitment. Same contract as the HTTP poller.
func (w *WsClient) AwaitConfirmation(ctx context.Context, signature solana.Signature, commitment types.Commitment) (*ConfirmationResult, error) {
	request := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "signatureSubscribe",
		"params": []interface{}{
			signature.String(),
			map[string]interface{}{
				"commitment": string(commitment),
			},
		},
	}

	if err := w.send(request); err != nil {
		return nil, fmt.Errorf("failed to subscribe to signature: %w", err)
	}

	for {
		if deadline, ok := ctx.Deadline(); ok {
			w.conn.SetReadDeadline(deadline)
		} else {
			w.conn.SetReadDeadline(time.Time{})
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		_, message, err := w.conn.ReadMessage()
		if err != nil {
			return nil, err
		}

		var notification wsNotification
		if err := json.Unmarshal(message, &notification); err != nil {
			continue
		}

		if notification.Method != "signatureNotification" {
			continue
		}

		result := &ConfirmationResult{}
		if payload := notification.Params.Result.Value.Err; len(payload) > 0 && string(payload) != "null" {
			result.Err = payload
		}

		return result, nil
	}
}

// WsConfirmedClient broadcasts over HTTP but waits for confirmations
// on the websocket stream, avoiding the status polling loop.
type WsConfirmedClient struct {
	*Client
	ws *WsClient
}

func NewWsConfirmedClient(client *Client, ws *WsClient) *WsConfirmedClient {
	return &WsConfirmedClient{Client: client, ws: ws}
}

func (c *WsConfirmedClient) AwaitConfirmation(ctx context.Context, signature solana.Signature, commitment types.Commitment) (*ConfirmationResult, error) {
	return c.ws.AwaitConfirmation(ctx, signature, commitment)
}

func (w *WsClient) Close() error {
	w.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return w.conn.Close()
}
