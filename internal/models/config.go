package models

import "time"

// Config represents the application configuration
type Config struct {
	Database   DatabaseConfig
	Vault      VaultConfig
	Oracle     OracleConfig
	Settlement SettlementConfig
	Formance   FormanceConfig
	Asset      AssetConfig
	AdminKey   string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

// VaultConfig points at the initial vault parameters seed file.
type VaultConfig struct {
	ParamsFile string
}

// OracleConfig holds loyalty tier oracle settings. An empty URL means no
// oracle is configured and the adapter runs in absent mode.
type OracleConfig struct {
	URL     string
	Timeout time.Duration
}

// SettlementConfig holds the Coinbase Prime settlement backend settings.
type SettlementConfig struct {
	WalletID string
	Symbol   string
	Network  string
}

// FormanceConfig holds the optional audit mirror settings. Mirroring is
// enabled only when StackURL is set.
type FormanceConfig struct {
	StackURL     string
	ClientID     string
	ClientSecret string
	LedgerName   string
}

// AssetConfig describes the single vault asset: its display symbol and the
// number of decimal places between the human amount and the base unit.
type AssetConfig struct {
	Symbol   string
	Decimals int32
}
