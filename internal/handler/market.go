package handler

import (
	"log"
	"net/http"

	"github.com/gagliardetto/solana-go"
	"github.com/go-chi/chi/v5"
	"github.com/iqbalbaharum/go-serum-market/internal/adapter"
	"github.com/iqbalbaharum/go-serum-market/internal/coder"
	"github.com/iqbalbaharum/go-serum-market/internal/config"
	"github.com/iqbalbaharum/go-serum-market/internal/market"
	"github.com/iqbalbaharum/go-serum-market/internal/rpc"
	"github.com/iqbalbaharum/go-serum-market/internal/storage"
	"github.com/iqbalbaharum/go-serum-market/internal/utils"
)

type marketHandler struct {
	ledger *rpc.Client
}

func NewMarketHandler(ledger *rpc.Client) *marketHandler {
	return &marketHandler{ledger: ledger}
}

func programKeys() market.ProgramKeys {
	return market.ProgramKeys{
		TokenProgram:           config.TOKEN_PROGRAM_ID,
		AssociatedTokenProgram: config.ASSOCIATED_TOKEN_PROGRAM_ID,
		PrimaryDiscountMint:    config.SRM_MINT,
		MegaDiscountMint:       config.MSRM_MINT,
	}
}

// loadView builds a fresh view for the requested market. The identity
// snapshot goes through the redis cache; book loaders always hit the
// ledger.
func (h *marketHandler) loadView(r *http.Request) (*market.MarketView, error) {
	address, err := solana.PublicKeyFromBase58(chi.URLParam(r, "address"))
	if err != nil {
		return nil, err
	}

	return market.Load(r.Context(), h.ledger, address, config.DEX_PROGRAM_ID, programKeys(), config.TxOptions)
}

func (h *marketHandler) Get(w http.ResponseWriter, r *http.Request) {
	address, err := solana.PublicKeyFromBase58(chi.URLParam(r, "address"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if redisClient, err := adapter.GetRedisClient(); err == nil {
		if cached, err := storage.GetMarket(redisClient, address); err == nil {
			utils.Encode(w, r, http.StatusOK, cached)
			return
		}
	}

	view, err := market.Load(r.Context(), h.ledger, address, config.DEX_PROGRAM_ID, programKeys(), config.TxOptions)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	snapshot := view.Snapshot()

	if redisClient, err := adapter.GetRedisClient(); err == nil {
		if err := storage.SetMarket(redisClient, &snapshot); err != nil {
			log.Printf("Failed to cache market %s: %v", address, err)
		}
	}

	utils.Encode(w, r, http.StatusOK, snapshot)
}

type bookResponse struct {
	Bids coder.Orderbook `json:"bids"`
	Asks coder.Orderbook `json:"asks"`
}

func (h *marketHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	view, err := h.loadView(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	bids, err := view.LoadBids(r.Context(), h.ledger)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	asks, err := view.LoadAsks(r.Context(), h.ledger)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	utils.Encode(w, r, http.StatusOK, bookResponse{Bids: bids, Asks: asks})
}

func (h *marketHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	view, err := h.loadView(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	queue, err := view.LoadEventQueue(r.Context(), h.ledger)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	utils.Encode(w, r, http.StatusOK, queue)
}

func (h *marketHandler) GetFeeDiscountKeys(w http.ResponseWriter, r *http.Request) {
	owner, err := solana.PublicKeyFromBase58(chi.URLParam(r, "owner"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	view, err := h.loadView(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	keys, err := view.FindFeeDiscountKeys(r.Context(), h.ledger, owner)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	utils.Encode(w, r, http.StatusOK, keys)
}

func (h *marketHandler) Health(w http.ResponseWriter, r *http.Request) {
	blockhash, err := h.ledger.GetLatestBlockhash(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	utils.Encode(w, r, http.StatusOK, map[string]string{
		"blockhash": blockhash.String(),
	})
}
