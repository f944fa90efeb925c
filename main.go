package main

import (
	"fmt"
	"log"
	"net/http"

	_ "go.uber.org/automaxprocs"

	"github.com/go-chi/chi/v5"
	"github.com/iqbalbaharum/go-serum-market/internal/adapter"
	"github.com/iqbalbaharum/go-serum-market/internal/config"
	"github.com/iqbalbaharum/go-serum-market/internal/handler"
	"github.com/iqbalbaharum/go-serum-market/internal/rpc"
	"github.com/iqbalbaharum/go-serum-market/internal/storage"
	"github.com/iqbalbaharum/go-serum-market/internal/submitter"
)

type Server struct {
	Router *chi.Mux
}

func CreateServer(ledger *rpc.Client, submitLedger submitter.Ledger) *Server {
	server := &Server{
		Router: handler.CreateRoutes(ledger, submitLedger),
	}

	return server
}

const (
	PORT = 5000
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	err := config.InitEnv()
	if err != nil {
		log.Print(err)
		return
	}

	err = adapter.InitRedisClient(config.RedisAddr, config.RedisPassword)
	if err != nil {
		log.Fatalf("Failed to initialize Redis client: %v", err)
		return
	}

	err = adapter.InitMySQLClient(config.MySqlDsn, config.MySqlDbName)
	if err != nil {
		log.Fatalf("Failed to initialize SQL client: %v", err)
		return
	}

	log.Print("Initialized ENVIRONMENT successfully")

	mySqlClient, err := adapter.GetMySQLClient()
	if err != nil {
		panic(err)
	}

	storage.Init(mySqlClient)

	ledger := rpc.NewClient(config.RpcHttpUrl)

	// Confirmations ride the websocket stream when one is configured,
	// otherwise the HTTP client polls.
	var submitLedger submitter.Ledger = ledger
	if config.RpcWsUrl != "" {
		ws, err := rpc.DialWs(config.RpcWsUrl)
		if err != nil {
			log.Printf("Websocket endpoint unavailable, falling back to polling: %v", err)
		} else {
			submitLedger = rpc.NewWsConfirmedClient(ledger, ws)
			defer ws.Close()
		}
	}

	server := CreateServer(ledger, submitLedger)
	port := fmt.Sprintf(":%d", PORT)
	fmt.Printf("server running on port%s \n", port)

	if err := http.ListenAndServe(port, server.Router); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
