package database

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"vault-ledger-go/internal/store"
	"vault-ledger-go/internal/vault"
)

func TestAdmin_RejectsWrongPrincipal(t *testing.T) {
	service, _ := setupVaultTestDB(t)
	ctx := context.Background()

	if err := service.SetPaused(ctx, "wrong-key", true); !errors.Is(err, vault.ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized for wrong key, got %v", err)
	}
	if err := service.SetPaused(ctx, "", true); !errors.Is(err, vault.ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized for empty key, got %v", err)
	}

	params, err := service.GetParams(ctx)
	if err != nil {
		t.Fatalf("GetParams failed: %v", err)
	}
	if params.Paused {
		t.Error("Unauthorized call must not change state")
	}
}

func TestAdmin_EmptyKeyClosesSurface(t *testing.T) {
	service, _ := setupVaultTestDB(t)
	service.adminKey = ""

	// With no key configured, even an empty principal is rejected.
	if err := service.SetPaused(context.Background(), "", true); !errors.Is(err, vault.ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized with unset admin key, got %v", err)
	}
}

func TestSetBaseFee_Bounds(t *testing.T) {
	service, _ := setupVaultTestDB(t)
	ctx := context.Background()

	if err := service.SetBaseFee(ctx, testAdminKey, 1001); !errors.Is(err, vault.ErrInvalidPercentage) {
		t.Errorf("Expected ErrInvalidPercentage above 1000 bps, got %v", err)
	}
	if err := service.SetBaseFee(ctx, testAdminKey, 1000); err != nil {
		t.Errorf("Expected 1000 bps to be accepted, got %v", err)
	}
	if err := service.SetBaseFee(ctx, testAdminKey, 0); err != nil {
		t.Errorf("Expected 0 bps to be accepted, got %v", err)
	}

	params, err := service.GetParams(ctx)
	if err != nil {
		t.Fatalf("GetParams failed: %v", err)
	}
	if params.BaseFeeBps != 0 {
		t.Errorf("Expected base fee 0, got %d", params.BaseFeeBps)
	}
}

func TestSetMaxBalance_RejectsZero(t *testing.T) {
	service, _ := setupVaultTestDB(t)
	ctx := context.Background()

	if err := service.SetMaxBalance(ctx, testAdminKey, new(big.Int)); !errors.Is(err, vault.ErrZeroAmount) {
		t.Errorf("Expected ErrZeroAmount for zero cap, got %v", err)
	}
	if err := service.SetMaxBalance(ctx, testAdminKey, unit(500)); err != nil {
		t.Errorf("Expected positive cap to be accepted, got %v", err)
	}
}

func TestBlacklist_BlocksOperations(t *testing.T) {
	service, _ := setupVaultTestDB(t)
	ctx := context.Background()

	if _, err := service.DepositFlexible(ctx, "mallory", unit(5), t0, ""); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	if err := service.AddToBlacklist(ctx, testAdminKey, "mallory"); err != nil {
		t.Fatalf("AddToBlacklist failed: %v", err)
	}

	var blockedErr *vault.BlacklistedError
	if _, err := service.DepositFlexible(ctx, "mallory", unit(1), t0+10, ""); !errors.As(err, &blockedErr) {
		t.Errorf("Expected BlacklistedError on deposit, got %v", err)
	}
	if _, err := service.Withdraw(ctx, store.WithdrawParams{
		AccountID: "mallory", Amount: unit(1), Destination: "0xdest", Now: t0 + 10,
	}); !errors.As(err, &blockedErr) {
		t.Errorf("Expected BlacklistedError on withdrawal, got %v", err)
	}
	if _, err := service.InternalTransfer(ctx, store.TransferParams{
		FromID: "alice", ToID: "mallory", Amount: unit(1), Now: t0 + 10,
	}); !errors.As(err, &blockedErr) {
		t.Errorf("Expected BlacklistedError on transfer-in, got %v", err)
	}

	blocked, err := service.IsBlacklisted(ctx, "mallory")
	if err != nil {
		t.Fatalf("IsBlacklisted failed: %v", err)
	}
	if !blocked {
		t.Error("Expected mallory to be reported blacklisted")
	}

	if err := service.RemoveFromBlacklist(ctx, testAdminKey, "mallory"); err != nil {
		t.Fatalf("RemoveFromBlacklist failed: %v", err)
	}
	if _, err := service.DepositFlexible(ctx, "mallory", unit(1), t0+20, ""); err != nil {
		t.Errorf("Expected deposit after removal to pass, got %v", err)
	}
}

func TestFreezeAccount(t *testing.T) {
	service, _ := setupVaultTestDB(t)
	ctx := context.Background()

	if _, err := service.DepositFlexible(ctx, "alice", unit(5), t0, ""); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	if err := service.SetAccountFrozen(ctx, testAdminKey, "alice", true); err != nil {
		t.Fatalf("Freeze failed: %v", err)
	}

	var notActive *vault.AccountNotActiveError
	if _, err := service.Withdraw(ctx, store.WithdrawParams{
		AccountID: "alice", Amount: unit(1), Destination: "0xdest", Now: t0 + 10,
	}); !errors.As(err, &notActive) {
		t.Errorf("Expected AccountNotActiveError while frozen, got %v", err)
	}

	// The balance survives the freeze.
	acct, err := service.GetAccount(ctx, "alice")
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if acct.Balance.Cmp(unit(5)) != 0 {
		t.Errorf("Expected balance intact while frozen, got %s", acct.Balance)
	}

	if err := service.SetAccountFrozen(ctx, testAdminKey, "alice", false); err != nil {
		t.Fatalf("Unfreeze failed: %v", err)
	}
	if _, err := service.Withdraw(ctx, store.WithdrawParams{
		AccountID: "alice", Amount: unit(1), Destination: "0xdest", Now: t0 + 20,
	}); err != nil {
		t.Errorf("Expected withdrawal after unfreeze to pass, got %v", err)
	}
}

func TestSweepFees(t *testing.T) {
	service, transferer := setupVaultTestDB(t)
	ctx := context.Background()

	// Empty pool has nothing to sweep.
	if _, err := service.SweepFees(ctx, testAdminKey, "0xtreasury", t0); !errors.Is(err, vault.ErrZeroAmount) {
		t.Fatalf("Expected ErrZeroAmount on empty pool, got %v", err)
	}

	if _, err := service.DepositFlexible(ctx, "alice", unit(10), t0, ""); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	if _, err := service.Withdraw(ctx, store.WithdrawParams{
		AccountID: "alice", Amount: unit(4), Destination: "0xdest", Now: t0 + 10,
	}); err != nil {
		t.Fatalf("Withdraw failed: %v", err)
	}

	// 4 units at 50 bps = 0.02 units in the pool.
	wantPool := new(big.Int).Div(unit(2), big.NewInt(100))
	swept, err := service.SweepFees(ctx, testAdminKey, "0xtreasury", t0+20)
	if err != nil {
		t.Fatalf("SweepFees failed: %v", err)
	}
	if swept.Cmp(wantPool) != 0 {
		t.Errorf("Expected swept %s, got %s", wantPool, swept)
	}

	last := transferer.calls[len(transferer.calls)-1]
	if last.destination != "0xtreasury" || last.amount.Cmp(wantPool) != 0 {
		t.Errorf("Expected sweep transfer of %s to 0xtreasury, got %+v", wantPool, last)
	}

	params, err := service.GetParams(ctx)
	if err != nil {
		t.Fatalf("GetParams failed: %v", err)
	}
	if params.FeePool.Sign() != 0 {
		t.Errorf("Expected pool zeroed after sweep, got %s", params.FeePool)
	}
	// Lifetime counter is not reset by a sweep.
	if params.TotalFeesCollected.Cmp(wantPool) != 0 {
		t.Errorf("Expected lifetime fees %s, got %s", wantPool, params.TotalFeesCollected)
	}
}

func TestSweepFees_TransferFailureKeepsPool(t *testing.T) {
	service, transferer := setupVaultTestDB(t)
	ctx := context.Background()

	if _, err := service.DepositFlexible(ctx, "alice", unit(10), t0, ""); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	if _, err := service.Withdraw(ctx, store.WithdrawParams{
		AccountID: "alice", Amount: unit(4), Destination: "0xdest", Now: t0 + 10,
	}); err != nil {
		t.Fatalf("Withdraw failed: %v", err)
	}

	transferer.err = errors.New("settlement backend down")
	if _, err := service.SweepFees(ctx, testAdminKey, "0xtreasury", t0+20); !errors.Is(err, vault.ErrTransferFailed) {
		t.Fatalf("Expected ErrTransferFailed, got %v", err)
	}

	params, err := service.GetParams(ctx)
	if err != nil {
		t.Fatalf("GetParams failed: %v", err)
	}
	if params.FeePool.Sign() == 0 {
		t.Error("Expected pool retained after failed sweep")
	}
}

func TestSetAccountFrozen_UnknownAccount(t *testing.T) {
	service, _ := setupVaultTestDB(t)

	err := service.SetAccountFrozen(context.Background(), testAdminKey, "ghost", true)
	if !errors.Is(err, store.ErrAccountNotFound) {
		t.Fatalf("Expected ErrAccountNotFound, got %v", err)
	}
}

func TestSwapOracle_RequiresAuthorization(t *testing.T) {
	service, _ := setupVaultTestDB(t)

	if err := service.SwapOracle("wrong-key", nil); !errors.Is(err, vault.ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized, got %v", err)
	}
	if err := service.SwapOracle(testAdminKey, nil); err != nil {
		t.Errorf("Expected authorized detach to pass, got %v", err)
	}
	if service.tiers.Configured() {
		t.Error("Expected oracle detached")
	}
}
