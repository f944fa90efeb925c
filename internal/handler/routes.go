package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/iqbalbaharum/go-serum-market/internal/rpc"
	"github.com/iqbalbaharum/go-serum-market/internal/submitter"
)

const ErrTimeout = "request timed out"

func CreateRoutes(ledger *rpc.Client, submitLedger submitter.Ledger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)

	var MarketHandler = NewMarketHandler(ledger)
	var SubmissionHandler = NewSubmissionHandler(submitLedger)

	r.Route("/market/{address}", func(r chi.Router) {
		r.Get("/", MarketHandler.Get)
		r.Get("/book", MarketHandler.GetBook)
		r.Get("/events", MarketHandler.GetEvents)
		r.Get("/fees/{owner}", MarketHandler.GetFeeDiscountKeys)
	})

	r.Route("/submissions", func(r chi.Router) {
		r.Get("/", SubmissionHandler.Get)
		r.Post("/", SubmissionHandler.Post)
		r.Delete("/", SubmissionHandler.DeleteAll)
	})

	r.Get("/health", MarketHandler.Health)

	return r
}
