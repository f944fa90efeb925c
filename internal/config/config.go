package config

import (
	"log"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/go-serum-market/internal/types"
	"github.com/joho/godotenv"
)

var (
	DEX_PROGRAM_ID              = solana.MustPublicKeyFromBase58("srmqPvymJeFKQ4zGQed1GFppgkRHL9kaELCbyksJtPX")
	SRM_MINT                    = solana.MustPublicKeyFromBase58("SRMuApVNdxXokk5GT7XD5cUUgXMBCoAz2LHeuAoKWRt")
	MSRM_MINT                   = solana.MustPublicKeyFromBase58("MSRMcoVyrFxnSgo5uXwone5SKcGhT1KEJMFEkMEWf9L")
	TOKEN_PROGRAM_ID            = solana.MustPublicKeyFromBase58("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	ASSOCIATED_TOKEN_PROGRAM_ID = solana.MustPublicKeyFromBase58("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")
)

var (
	RpcHttpUrl    string
	RpcWsUrl      string
	RedisAddr     string
	RedisPassword string
	MySqlDsn      string
	MySqlDbName   string
	TxOptions     types.TransactionOptions
)

func InitEnv() error {
	if err := godotenv.Load(); err != nil {
		log.Print("No .env file found, using process environment")
	}

	RpcHttpUrl = os.Getenv("RPC_HTTP_URL")
	RpcWsUrl = os.Getenv("RPC_WS_URL")
	RedisAddr = os.Getenv("REDIS_ADDR")
	RedisPassword = os.Getenv("REDIS_PASSWORD")
	MySqlDsn = os.Getenv("MYSQL_DSN")
	MySqlDbName = os.Getenv("MYSQL_DB_NAME")

	if MySqlDbName == "" {
		MySqlDbName = "serum_market"
	}

	if id := os.Getenv("DEX_PROGRAM_ID"); id != "" {
		DEX_PROGRAM_ID = solana.MustPublicKeyFromBase58(id)
	}

	if mint := os.Getenv("SRM_MINT"); mint != "" {
		SRM_MINT = solana.MustPublicKeyFromBase58(mint)
	}

	if mint := os.Getenv("MSRM_MINT"); mint != "" {
		MSRM_MINT = solana.MustPublicKeyFromBase58(mint)
	}

	TxOptions = types.DefaultTransactionOptions()
	TxOptions.SkipPreflight = os.Getenv("SKIP_PREFLIGHT") == "true"

	if c := os.Getenv("COMMITMENT"); c != "" {
		TxOptions.Commitment = types.Commitment(c)
	}

	return nil
}
