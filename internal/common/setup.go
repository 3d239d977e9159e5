package common

import (
	"context"
	"log"
	"os"
	"strings"

	"vault-ledger-go/internal/database"
	"vault-ledger-go/internal/formance"
	"vault-ledger-go/internal/models"
	"vault-ledger-go/internal/oracle"
	"vault-ledger-go/internal/settlement"

	"github.com/coinbase-samples/prime-sdk-go/credentials"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// Environment variables can also be set via shell export, docker, etc.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment variables from .env file")
	}
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

// InitializeServices wires the full vault: the SQLite ledger plus whichever
// optional collaborators the environment configures (Prime settlement, tier
// oracle, Formance audit mirror).
func InitializeServices(ctx context.Context, cfg *models.Config) (*database.Service, error) {
	seed, err := LoadVaultSeed(cfg.Vault.ParamsFile)
	if err != nil {
		return nil, err
	}
	params, err := seed.Params()
	if err != nil {
		return nil, err
	}

	opts := []database.Option{
		database.WithAdminKey(cfg.AdminKey),
	}

	if hasPrimeCredentials() {
		primeSvc, err := settlement.NewService(ctx, loadPrimeCredentials(), cfg.Settlement, cfg.Asset)
		if err != nil {
			return nil, err
		}
		opts = append(opts, database.WithTransferer(primeSvc))
	} else {
		zap.L().Warn("Prime credentials not set, external payouts disabled")
	}

	if cfg.Oracle.URL != "" {
		oracleClient, err := oracle.NewClient(cfg.Oracle)
		if err != nil {
			return nil, err
		}
		opts = append(opts, database.WithTierOracle(oracle.NewAdapter(oracleClient)))
	}

	if cfg.Formance.StackURL != "" {
		mirror, err := formance.NewMirror(ctx, cfg.Formance, cfg.Asset)
		if err != nil {
			return nil, err
		}
		opts = append(opts, database.WithMirror(mirror))
	}

	return database.NewService(ctx, cfg.Database, params, opts...)
}

// InitializeDatabaseOnly opens just the ledger, without settlement, oracle or
// mirror. Useful for read-only operations like querying balances.
func InitializeDatabaseOnly(ctx context.Context, cfg *models.Config) (*database.Service, error) {
	seed, err := LoadVaultSeed(cfg.Vault.ParamsFile)
	if err != nil {
		return nil, err
	}
	params, err := seed.Params()
	if err != nil {
		return nil, err
	}
	return database.NewService(ctx, cfg.Database, params, database.WithAdminKey(cfg.AdminKey))
}

func hasPrimeCredentials() bool {
	return os.Getenv("PRIME_ACCESS_KEY") != "" &&
		os.Getenv("PRIME_PASSPHRASE") != "" &&
		os.Getenv("PRIME_SIGNING_KEY") != ""
}

func loadPrimeCredentials() *credentials.Credentials {
	return &credentials.Credentials{
		AccessKey:  os.Getenv("PRIME_ACCESS_KEY"),
		Passphrase: os.Getenv("PRIME_PASSPHRASE"),
		SigningKey: os.Getenv("PRIME_SIGNING_KEY"),
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
