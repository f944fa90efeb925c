package market

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/go-serum-market/internal/coder"
	"github.com/iqbalbaharum/go-serum-market/internal/feetier"
	"github.com/iqbalbaharum/go-serum-market/internal/pda"
	"github.com/iqbalbaharum/go-serum-market/internal/rpc"
	"github.com/iqbalbaharum/go-serum-market/internal/types"
)

// AccountFetcher is the slice of the ledger transport the view needs.
// Fetchers return rpc.ErrAccountNotFound when nothing lives at the
// address.
type AccountFetcher interface {
	FetchAccount(ctx context.Context, address solana.PublicKey) ([]byte, error)
}

// BookDecoder decodes one side of the orderbook. Owned by the state
// decoding layer; the view only forwards bytes to it.
type BookDecoder interface {
	DecodeOrderbook(data []byte) (coder.Orderbook, error)
}

// EventDecoder decodes the market's event queue.
type EventDecoder interface {
	DecodeEventQueue(data []byte) (coder.EventQueue, error)
}

// StateLoadError reports an account that is missing or failed to
// decode while building or reading a view. Never retried: a stale or
// missing market handle is unusable.
type StateLoadError struct {
	Account string
	Err     error
}

func (e *StateLoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Account, e.Err)
}

func (e *StateLoadError) Unwrap() error {
	return e.Err
}

// ProgramKeys carries the well-known program and mint identifiers the
// view needs. Passed in rather than read from globals so the view can
// run against stub ledgers.
type ProgramKeys struct {
	TokenProgram           solana.PublicKey
	AssociatedTokenProgram solana.PublicKey
	PrimaryDiscountMint    solana.PublicKey
	MegaDiscountMint       solana.PublicKey
}

// MarketView is a read-only handle over one market. Identity fields
// are frozen at load time; the book loaders hit the ledger fresh on
// every call, trading efficiency for always-current state.
type MarketView struct {
	market  types.Market
	keys    ProgramKeys
	options types.TransactionOptions
	fees    feetier.Table
	books   BookDecoder
	events  EventDecoder
}

// Load fetches and decodes the market account, then both mints'
// decimals concurrently, and freezes the result into an immutable view.
func Load(ctx context.Context, fetcher AccountFetcher, marketAddress, programID solana.PublicKey, keys ProgramKeys, options types.TransactionOptions) (*MarketView, error) {
	data, err := fetcher.FetchAccount(ctx, marketAddress)
	if err != nil {
		return nil, &StateLoadError{Account: "market account", Err: err}
	}

	state, err := coder.NewMarketCoder().DecodeMarket(data)
	if err != nil {
		return nil, &StateLoadError{Account: "market account", Err: err}
	}

	if !state.OwnAddress.Equals(marketAddress) {
		return nil, &StateLoadError{
			Account: "market account",
			Err:     fmt.Errorf("account reports address %s, expected %s", state.OwnAddress, marketAddress),
		}
	}

	var (
		wg            sync.WaitGroup
		baseDecimals  uint8
		quoteDecimals uint8
		baseErr       error
		quoteErr      error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		baseDecimals, baseErr = fetchMintDecimals(ctx, fetcher, state.BaseMint)
	}()
	go func() {
		defer wg.Done()
		quoteDecimals, quoteErr = fetchMintDecimals(ctx, fetcher, state.QuoteMint)
	}()
	wg.Wait()

	if baseErr != nil {
		return nil, &StateLoadError{Account: "base mint", Err: baseErr}
	}
	if quoteErr != nil {
		return nil, &StateLoadError{Account: "quote mint", Err: quoteErr}
	}

	return &MarketView{
		market: types.Market{
			Address:       marketAddress,
			ProgramID:     programID,
			BaseMint:      state.BaseMint,
			QuoteMint:     state.QuoteMint,
			BaseDecimals:  baseDecimals,
			QuoteDecimals: quoteDecimals,
			Orderbook: types.OrderbookIdentity{
				Bids:       state.Bids,
				Asks:       state.Asks,
				EventQueue: state.EventQueue,
			},
		},
		keys:    keys,
		options: options,
		fees:    feetier.DefaultTable(),
		books:   coder.NewSlabCoder(),
		events:  coder.NewEventQueueCoder(),
	}, nil
}

func fetchMintDecimals(ctx context.Context, fetcher AccountFetcher, mintAddress solana.PublicKey) (uint8, error) {
	data, err := fetcher.FetchAccount(ctx, mintAddress)
	if err != nil {
		return 0, err
	}

	mint, err := coder.DecodeMint(data)
	if err != nil {
		return 0, err
	}

	return mint.Decimals, nil
}

func (v *MarketView) Address() solana.PublicKey           { return v.market.Address }
func (v *MarketView) ProgramID() solana.PublicKey         { return v.market.ProgramID }
func (v *MarketView) BaseMint() solana.PublicKey          { return v.market.BaseMint }
func (v *MarketView) QuoteMint() solana.PublicKey         { return v.market.QuoteMint }
func (v *MarketView) BaseDecimals() uint8                 { return v.market.BaseDecimals }
func (v *MarketView) QuoteDecimals() uint8                { return v.market.QuoteDecimals }
func (v *MarketView) BidsAddress() solana.PublicKey       { return v.market.Orderbook.Bids }
func (v *MarketView) AsksAddress() solana.PublicKey       { return v.market.Orderbook.Asks }
func (v *MarketView) EventQueueAddress() solana.PublicKey { return v.market.Orderbook.EventQueue }
func (v *MarketView) Options() types.TransactionOptions   { return v.options }

// Snapshot returns the frozen market identity.
func (v *MarketView) Snapshot() types.Market {
	return v.market
}

// LoadBids fetches and decodes the bid side. No caching: every call is
// a fresh fetch.
func (v *MarketView) LoadBids(ctx context.Context, fetcher AccountFetcher) (coder.Orderbook, error) {
	return v.loadSide(ctx, fetcher, v.market.Orderbook.Bids, "bids account")
}

// LoadAsks fetches and decodes the ask side.
func (v *MarketView) LoadAsks(ctx context.Context, fetcher AccountFetcher) (coder.Orderbook, error) {
	return v.loadSide(ctx, fetcher, v.market.Orderbook.Asks, "asks account")
}

func (v *MarketView) loadSide(ctx context.Context, fetcher AccountFetcher, address solana.PublicKey, name string) (coder.Orderbook, error) {
	data, err := fetcher.FetchAccount(ctx, address)
	if err != nil {
		return coder.Orderbook{}, &StateLoadError{Account: name, Err: err}
	}

	book, err := v.books.DecodeOrderbook(data)
	if err != nil {
		return coder.Orderbook{}, &StateLoadError{Account: name, Err: err}
	}

	return book, nil
}

// LoadEventQueue fetches and decodes the event queue.
func (v *MarketView) LoadEventQueue(ctx context.Context, fetcher AccountFetcher) (coder.EventQueue, error) {
	data, err := fetcher.FetchAccount(ctx, v.market.Orderbook.EventQueue)
	if err != nil {
		return coder.EventQueue{}, &StateLoadError{Account: "event queue", Err: err}
	}

	queue, err := v.events.DecodeEventQueue(data)
	if err != nil {
		return coder.EventQueue{}, &StateLoadError{Account: "event queue", Err: err}
	}

	return queue, nil
}

// FindOpenOrdersAddress derives the owner's order-tracking account for
// this market.
func (v *MarketView) FindOpenOrdersAddress(owner solana.PublicKey) (solana.PublicKey, uint8, error) {
	return pda.OpenOrdersAddress(v.market.Address, owner, v.market.ProgramID)
}

// FindBaseTokenAddress derives the owner's associated token account
// for the base mint.
func (v *MarketView) FindBaseTokenAddress(owner solana.PublicKey) (solana.PublicKey, uint8, error) {
	return pda.AssociatedTokenAddress(owner, v.market.BaseMint, v.keys.TokenProgram, v.keys.AssociatedTokenProgram)
}

// FindQuoteTokenAddress derives the owner's associated token account
// for the quote mint.
func (v *MarketView) FindQuoteTokenAddress(owner solana.PublicKey) (solana.PublicKey, uint8, error) {
	return pda.AssociatedTokenAddress(owner, v.market.QuoteMint, v.keys.TokenProgram, v.keys.AssociatedTokenProgram)
}

// FindFeeDiscountKeys resolves the owner's discount token accounts and
// the fee tier each balance entitles them to. Both snapshots come back
// even when a balance is zero, primary token first. The resolver runs
// once per token with the counterpart balance zeroed; the caller takes
// the higher tier.
func (v *MarketView) FindFeeDiscountKeys(ctx context.Context, fetcher AccountFetcher, owner solana.PublicKey) ([]types.FeeDiscountKey, error) {
	primaryAccount, _, err := pda.AssociatedTokenAddress(owner, v.keys.PrimaryDiscountMint, v.keys.TokenProgram, v.keys.AssociatedTokenProgram)
	if err != nil {
		return nil, err
	}

	megaAccount, _, err := pda.AssociatedTokenAddress(owner, v.keys.MegaDiscountMint, v.keys.TokenProgram, v.keys.AssociatedTokenProgram)
	if err != nil {
		return nil, err
	}

	var (
		wg             sync.WaitGroup
		primaryBalance uint64
		megaBalance    uint64
		primaryErr     error
		megaErr        error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		primaryBalance, primaryErr = fetchTokenBalance(ctx, fetcher, primaryAccount)
	}()
	go func() {
		defer wg.Done()
		megaBalance, megaErr = fetchTokenBalance(ctx, fetcher, megaAccount)
	}()
	wg.Wait()

	if primaryErr != nil {
		return nil, &StateLoadError{Account: "primary discount token account", Err: primaryErr}
	}
	if megaErr != nil {
		return nil, &StateLoadError{Account: "mega discount token account", Err: megaErr}
	}

	return []types.FeeDiscountKey{
		{
			TokenAccount: primaryAccount,
			Mint:         v.keys.PrimaryDiscountMint,
			Balance:      primaryBalance,
			FeeTier:      v.fees.Resolve(primaryBalance, 0),
		},
		{
			TokenAccount: megaAccount,
			Mint:         v.keys.MegaDiscountMint,
			Balance:      megaBalance,
			FeeTier:      v.fees.Resolve(0, megaBalance),
		},
	}, nil
}

// fetchTokenBalance treats a missing account as a zero balance: owners
// without a discount token account simply hold none of the token.
func fetchTokenBalance(ctx context.Context, fetcher AccountFetcher, address solana.PublicKey) (uint64, error) {
	data, err := fetcher.FetchAccount(ctx, address)
	if err != nil {
		if errors.Is(err, rpc.ErrAccountNotFound) {
			return 0, nil
		}
		return 0, err
	}

	account, err := coder.DecodeTokenAccount(data)
	if err != nil {
		return 0, err
	}

	return account.Amount, nil
}
