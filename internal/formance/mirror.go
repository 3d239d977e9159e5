package formance

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"vault-ledger-go/internal/models"
	"vault-ledger-go/internal/store"

	v3 "github.com/formancehq/formance-sdk-go/v3"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/operations"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/sdkerrors"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/shared"
	"go.uber.org/zap"
)

// Compile-time check: *Mirror must satisfy store.EventMirror.
var _ store.EventMirror = (*Mirror)(nil)

// ---------------------------------------------------------------------------
// Numscript templates. The SQLite store is authoritative; this ledger is a
// best-effort audit mirror of committed vault events, so every source allows
// unbounded overdraft to keep mirror drift from failing new entries.
// ---------------------------------------------------------------------------

const numscriptDeposit = `vars {
  asset $asset
  number $amount
  account $account_id
  string $reference
}

send [$asset $amount] (
  source = @world
  destination = @vault:accounts:$account_id
)

set_tx_meta("event_type", "deposit")
set_tx_meta("reference", $reference)
`

const numscriptWithdrawal = `vars {
  asset $asset
  number $net
  number $fee
  account $account_id
  string $destination
  string $reference
}

send [$asset $net] (
  source = @vault:accounts:$account_id allowing unbounded overdraft
  destination = @world
)
send [$asset $fee] (
  source = @vault:accounts:$account_id allowing unbounded overdraft
  destination = @vault:fees
)

set_tx_meta("event_type", "withdrawal")
set_tx_meta("destination", $destination)
set_tx_meta("reference", $reference)
`

const numscriptInterestClaim = `vars {
  asset $asset
  number $amount
  account $account_id
  string $reference
}

send [$asset $amount] (
  source = @vault:interest allowing unbounded overdraft
  destination = @vault:accounts:$account_id
)

set_tx_meta("event_type", "interest_claim")
set_tx_meta("reference", $reference)
`

const numscriptInternalTransfer = `vars {
  asset $asset
  number $amount
  account $from_id
  account $to_id
  string $reference
}

send [$asset $amount] (
  source = @vault:accounts:$from_id allowing unbounded overdraft
  destination = @vault:accounts:$to_id
)

set_tx_meta("event_type", "internal_transfer")
set_tx_meta("reference", $reference)
`

const numscriptFeeSweep = `vars {
  asset $asset
  number $amount
  string $destination
}

send [$asset $amount] (
  source = @vault:fees allowing unbounded overdraft
  destination = @world
)

set_tx_meta("event_type", "fee_sweep")
set_tx_meta("destination", $destination)
`

// Mirror posts committed vault events into a Formance Stack ledger.
type Mirror struct {
	client *v3.Formance
	ledger string
	asset  string // UMN notation, e.g. "ETH/18"
}

// NewMirror connects to the stack and creates the ledger if it does not
// already exist.
func NewMirror(ctx context.Context, cfg models.FormanceConfig, asset models.AssetConfig) (*Mirror, error) {
	if cfg.StackURL == "" || cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("formance config requires StackURL, ClientID, and ClientSecret")
	}
	if cfg.LedgerName == "" {
		cfg.LedgerName = "vault-ledger"
	}

	zap.L().Info("Connecting to Formance Stack",
		zap.String("stack_url", cfg.StackURL),
		zap.String("ledger", cfg.LedgerName))

	client := v3.New(
		v3.WithServerURL(cfg.StackURL),
		v3.WithSecurity(shared.Security{
			ClientID:     v3.Pointer(cfg.ClientID),
			ClientSecret: v3.Pointer(cfg.ClientSecret),
		}),
	)

	m := &Mirror{
		client: client,
		ledger: cfg.LedgerName,
		asset:  fmt.Sprintf("%s/%d", asset.Symbol, asset.Decimals),
	}
	if err := m.ensureLedger(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure ledger exists: %w", err)
	}

	zap.L().Info("Formance mirror initialized", zap.String("ledger", cfg.LedgerName))
	return m, nil
}

// ensureLedger creates the ledger if it does not already exist.
func (m *Mirror) ensureLedger(ctx context.Context) error {
	_, err := m.client.Ledger.V2.CreateLedger(ctx, operations.V2CreateLedgerRequest{
		Ledger: m.ledger,
		V2CreateLedgerRequest: shared.V2CreateLedgerRequest{
			Metadata: map[string]string{
				"application": "vault-ledger-go",
			},
		},
	})
	if err != nil {
		var apiErr *sdkerrors.V2ErrorResponse
		if errors.As(err, &apiErr) && apiErr.ErrorCode == shared.V2ErrorsEnumLedgerAlreadyExists {
			zap.L().Info("Ledger already exists", zap.String("ledger", m.ledger))
			return nil
		}
		return err
	}
	zap.L().Info("Ledger created", zap.String("ledger", m.ledger))
	return nil
}

// Record posts one committed vault event. A duplicate reference is treated
// as already mirrored and is not an error.
func (m *Mirror) Record(ctx context.Context, ev models.VaultEvent) error {
	script, vars, err := m.buildScript(ev)
	if err != nil {
		return err
	}

	postTx := shared.V2PostTransaction{
		Script: &shared.V2PostTransactionScript{
			Plain: script,
			Vars:  vars,
		},
	}
	if ev.Reference != "" {
		postTx.Reference = v3.Pointer(ev.Reference)
	}

	_, err = m.client.Ledger.V2.CreateTransaction(ctx, operations.V2CreateTransactionRequest{
		Ledger:            m.ledger,
		V2PostTransaction: postTx,
	})
	if err != nil {
		if isConflictError(err) {
			return nil // idempotent
		}
		return fmt.Errorf("error mirroring %s event: %w", ev.Type, err)
	}
	return nil
}

func (m *Mirror) buildScript(ev models.VaultEvent) (string, map[string]string, error) {
	amount := bigString(ev.Amount)
	fee := bigString(ev.Fee)

	switch ev.Type {
	case models.EventDeposit:
		return numscriptDeposit, map[string]string{
			"asset":      m.asset,
			"amount":     amount,
			"account_id": ev.AccountID,
			"reference":  ev.Reference,
		}, nil
	case models.EventWithdrawal:
		net := new(big.Int).Sub(ev.Amount, ev.Fee)
		return numscriptWithdrawal, map[string]string{
			"asset":       m.asset,
			"net":         net.String(),
			"fee":         fee,
			"account_id":  ev.AccountID,
			"destination": ev.Destination,
			"reference":   ev.Reference,
		}, nil
	case models.EventInterestClaim:
		return numscriptInterestClaim, map[string]string{
			"asset":      m.asset,
			"amount":     amount,
			"account_id": ev.AccountID,
			"reference":  ev.Reference,
		}, nil
	case models.EventInternalTransfer:
		return numscriptInternalTransfer, map[string]string{
			"asset":     m.asset,
			"amount":    amount,
			"from_id":   ev.AccountID,
			"to_id":     ev.CounterpartyID,
			"reference": ev.Reference,
		}, nil
	case models.EventFeeSweep:
		return numscriptFeeSweep, map[string]string{
			"asset":       m.asset,
			"amount":      amount,
			"destination": ev.Destination,
		}, nil
	}
	return "", nil, fmt.Errorf("unknown vault event type %q", ev.Type)
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// isConflictError checks whether a Formance SDK error is a CONFLICT (duplicate reference).
func isConflictError(err error) bool {
	var apiErr *sdkerrors.V2ErrorResponse
	return errors.As(err, &apiErr) && apiErr.ErrorCode == shared.V2ErrorsEnumConflict
}
