package storage

import (
	"context"
	"encoding/json"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/go-serum-market/internal/types"
	"github.com/redis/go-redis/v9"
)

// SetMarket caches a market identity snapshot. Only load-time-immutable
// identity data goes in here; orderbook contents are never cached.
func SetMarket(client *redis.Client, market *types.Market) error {
	ctx := context.Background()

	data, err := json.Marshal(market)
	if err != nil {
		return err
	}

	if err := client.HSet(ctx, market.Address.String(), KEY_MARKET, data).Err(); err != nil {
		return err
	}

	return nil
}

func GetMarket(client *redis.Client, address solana.PublicKey) (*types.Market, error) {
	ctx := context.Background()

	data, err := client.HGet(ctx, address.String(), KEY_MARKET).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrMarketNotCached
		}
		return nil, err
	}

	var market types.Market
	if err := json.Unmarshal([]byte(data), &market); err != nil {
		return nil, err
	}

	return &market, nil
}
