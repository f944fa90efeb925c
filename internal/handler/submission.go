package handler

import (
	"encoding/base64"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/go-serum-market/internal/config"
	"github.com/iqbalbaharum/go-serum-market/internal/storage"
	"github.com/iqbalbaharum/go-serum-market/internal/submitter"
	"github.com/iqbalbaharum/go-serum-market/internal/types"
	"github.com/iqbalbaharum/go-serum-market/internal/utils"
)

type submissionHandler struct {
	ledger submitter.Ledger
}

func NewSubmissionHandler(ledger submitter.Ledger) *submissionHandler {
	return &submissionHandler{ledger: ledger}
}

func (h *submissionHandler) Get(w http.ResponseWriter, r *http.Request) {
	market := r.URL.Query().Get("market")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	ctx := r.Context()
	submissions, err := storage.Submission.Search(market, limit)

	if err != nil {
		select {
		case <-ctx.Done():
			http.Error(w, ErrTimeout, http.StatusGatewayTimeout)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	utils.Encode(w, r, http.StatusOK, submissions)
}

type submitRequest struct {
	// Base64-encoded, fully signed transaction. Wallet management is
	// the caller's job; nothing here touches keys.
	Transaction string `json:"transaction"`
	Market      string `json:"market"`
}

type submitResponse struct {
	Signature string `json:"signature"`
}

// Post submits a pre-signed transaction and logs the outcome. One
// broadcast, one confirmation wait; resubmission means calling again.
func (h *submissionHandler) Post(w http.ResponseWriter, r *http.Request) {
	request, err := utils.Decode[submitRequest](r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	raw, err := base64.StdEncoding.DecodeString(request.Transaction)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	transaction, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	signature, err := submitter.Submit(r.Context(), h.ledger, transaction, nil, config.TxOptions)

	record := types.Submission{
		Signature:  signature.String(),
		Market:     request.Market,
		Commitment: string(config.TxOptions.Commitment),
		Status:     types.SubmissionConfirmed,
		Timestamp:  time.Now().Unix(),
	}

	var execErr *submitter.ExecutionError
	var broadcastErr *submitter.BroadcastError

	switch {
	case errors.As(err, &execErr):
		record.Status = types.SubmissionFailed
		record.ErrPayload = string(execErr.Payload)
	case errors.As(err, &broadcastErr):
		record.Status = types.SubmissionRejected
		record.ErrPayload = broadcastErr.Error()
	case err != nil:
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	if storeErr := storage.Submission.SetSubmission(&record); storeErr != nil {
		log.Printf("Failed to record submission %s: %v", record.Signature, storeErr)
	}

	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	utils.Encode(w, r, http.StatusOK, submitResponse{Signature: signature.String()})
}

func (h *submissionHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	err := storage.Submission.DeleteAll()

	if err != nil {
		select {
		case <-ctx.Done():
			http.Error(w, ErrTimeout, http.StatusGatewayTimeout)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
