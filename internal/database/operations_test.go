package database

import (
	"context"
	"database/sql"
	"errors"
	"math/big"
	"testing"

	"vault-ledger-go/internal/models"
	"vault-ledger-go/internal/oracle"
	"vault-ledger-go/internal/store"
	"vault-ledger-go/internal/vault"

	_ "github.com/mattn/go-sqlite3"
)

const testAdminKey = "test-admin-key"

type transferCall struct {
	destination string
	amount      *big.Int
}

type fakeTransferer struct {
	calls []transferCall
	err   error
}

func (f *fakeTransferer) Transfer(_ context.Context, destination string, amount *big.Int) error {
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, transferCall{destination, new(big.Int).Set(amount)})
	return nil
}

func unit(n int64) *big.Int {
	one := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	return new(big.Int).Mul(big.NewInt(n), one)
}

func testSeed() *models.VaultParams {
	return &models.VaultParams{
		MaxBalance:                unit(100),
		DailyWithdrawLimit:        new(big.Int),
		BaseFeeBps:                50,
		BaseInterestRateBps:       500,
		EarlyWithdrawalPenaltyBps: 1000,
		FeePool:                   new(big.Int),
		TotalDeposited:            new(big.Int),
		TotalFeesCollected:        new(big.Int),
		Version:                   1,
	}
}

func setupVaultTestDB(t *testing.T) (*Service, *fakeTransferer) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// In-memory SQLite gives every connection its own database.
	db.SetMaxOpenConns(1)

	transferer := &fakeTransferer{}
	service := &Service{
		db:         db,
		transferer: transferer,
		tiers:      oracle.NewAdapter(nil),
		adminKey:   testAdminKey,
	}
	if err := service.initSchema(testSeed()); err != nil {
		t.Fatalf("Failed to initialize schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})
	return service, transferer
}

const t0 = int64(1_000 * 86400)

func TestDeposit_CreatesAndActivatesAccount(t *testing.T) {
	service, _ := setupVaultTestDB(t)
	ctx := context.Background()

	result, err := service.Deposit(ctx, store.DepositParams{
		AccountID:  "alice",
		Amount:     unit(10),
		LockPeriod: models.LockFlexible,
		Now:        t0,
	})
	if err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	if result.NewBalance.Cmp(unit(10)) != 0 {
		t.Errorf("Expected balance 10 units, got %s", result.NewBalance)
	}

	acct, err := service.GetAccount(ctx, "alice")
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if acct.Status != models.StatusActive {
		t.Errorf("Expected account active after first deposit, got %s", acct.Status)
	}
	if acct.LockEndTime != 0 {
		t.Errorf("Expected flexible deposit unlocked, got lock end %d", acct.LockEndTime)
	}
	if acct.LastInterestCheckpoint != t0 {
		t.Errorf("Expected interest checkpoint %d, got %d", t0, acct.LastInterestCheckpoint)
	}

	params, err := service.GetParams(ctx)
	if err != nil {
		t.Fatalf("GetParams failed: %v", err)
	}
	if params.TotalDeposited.Cmp(unit(10)) != 0 {
		t.Errorf("Expected lifetime deposits 10 units, got %s", params.TotalDeposited)
	}
}

func TestDeposit_RejectsOverCapacity(t *testing.T) {
	service, _ := setupVaultTestDB(t)
	ctx := context.Background()

	if _, err := service.DepositFlexible(ctx, "alice", unit(60), t0, ""); err != nil {
		t.Fatalf("First deposit failed: %v", err)
	}

	_, err := service.DepositFlexible(ctx, "alice", unit(50), t0+1, "")
	var capErr *vault.CapacityExceededError
	if !errors.As(err, &capErr) {
		t.Fatalf("Expected CapacityExceededError, got %v", err)
	}
	if capErr.Current.Cmp(unit(60)) != 0 {
		t.Errorf("Expected current 60 units in error, got %s", capErr.Current)
	}

	// The failed deposit must not change the balance.
	acct, err := service.GetAccount(ctx, "alice")
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if acct.Balance.Cmp(unit(60)) != 0 {
		t.Errorf("Expected balance unchanged at 60 units, got %s", acct.Balance)
	}
}

func TestDeposit_DuplicateReference(t *testing.T) {
	service, _ := setupVaultTestDB(t)
	ctx := context.Background()

	if _, err := service.DepositFlexible(ctx, "alice", unit(1), t0, "ext-1"); err != nil {
		t.Fatalf("First deposit failed: %v", err)
	}
	_, err := service.DepositFlexible(ctx, "alice", unit(1), t0+1, "ext-1")
	if !errors.Is(err, store.ErrDuplicateTransaction) {
		t.Fatalf("Expected ErrDuplicateTransaction, got %v", err)
	}
}

func TestDeposit_LockOverwriteShortens(t *testing.T) {
	service, _ := setupVaultTestDB(t)
	ctx := context.Background()

	if _, err := service.Deposit(ctx, store.DepositParams{
		AccountID: "alice", Amount: unit(5), LockPeriod: models.LockLong, Now: t0,
	}); err != nil {
		t.Fatalf("Long deposit failed: %v", err)
	}
	if _, err := service.Deposit(ctx, store.DepositParams{
		AccountID: "alice", Amount: unit(5), LockPeriod: models.LockShort, Now: t0 + 1,
	}); err != nil {
		t.Fatalf("Short deposit failed: %v", err)
	}

	acct, err := service.GetAccount(ctx, "alice")
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	wantEnd := t0 + 1 + vault.LockDuration(models.LockShort)
	if acct.LockEndTime != wantEnd {
		t.Errorf("Expected lock end overwritten to %d, got %d", wantEnd, acct.LockEndTime)
	}
	if acct.LockPeriod != models.LockShort {
		t.Errorf("Expected lock period short, got %s", acct.LockPeriod)
	}
}

func TestWithdraw_FeeGoesToPool(t *testing.T) {
	service, transferer := setupVaultTestDB(t)
	ctx := context.Background()

	if _, err := service.DepositFlexible(ctx, "alice", unit(10), t0, ""); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}

	result, err := service.Withdraw(ctx, store.WithdrawParams{
		AccountID:   "alice",
		Amount:      unit(2),
		Destination: "0xdest",
		Now:         t0 + 10,
	})
	if err != nil {
		t.Fatalf("Withdraw failed: %v", err)
	}

	// 2 units at 50 bps = 0.01 units fee.
	wantFee := new(big.Int).Div(unit(1), big.NewInt(100))
	if result.Fee.Cmp(wantFee) != 0 {
		t.Errorf("Expected fee %s, got %s", wantFee, result.Fee)
	}
	if result.NewBalance.Cmp(unit(8)) != 0 {
		t.Errorf("Expected balance 8 units, got %s", result.NewBalance)
	}

	wantNet := new(big.Int).Sub(unit(2), wantFee)
	if len(transferer.calls) != 1 {
		t.Fatalf("Expected one external transfer, got %d", len(transferer.calls))
	}
	if transferer.calls[0].destination != "0xdest" {
		t.Errorf("Expected destination 0xdest, got %s", transferer.calls[0].destination)
	}
	if transferer.calls[0].amount.Cmp(wantNet) != 0 {
		t.Errorf("Expected net payout %s, got %s", wantNet, transferer.calls[0].amount)
	}

	params, err := service.GetParams(ctx)
	if err != nil {
		t.Fatalf("GetParams failed: %v", err)
	}
	if params.FeePool.Cmp(wantFee) != 0 {
		t.Errorf("Expected fee pool %s, got %s", wantFee, params.FeePool)
	}
	if params.TotalFeesCollected.Cmp(wantFee) != 0 {
		t.Errorf("Expected lifetime fees %s, got %s", wantFee, params.TotalFeesCollected)
	}
}

func TestWithdraw_LockedUntilUnlockTime(t *testing.T) {
	service, _ := setupVaultTestDB(t)
	ctx := context.Background()

	if _, err := service.Deposit(ctx, store.DepositParams{
		AccountID: "alice", Amount: unit(10), LockPeriod: models.LockShort, Now: t0,
	}); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}

	// Day 6: still locked.
	_, err := service.Withdraw(ctx, store.WithdrawParams{
		AccountID: "alice", Amount: unit(1), Destination: "0xdest", Now: t0 + 6*86400,
	})
	var lockErr *vault.FundsLockedError
	if !errors.As(err, &lockErr) {
		t.Fatalf("Expected FundsLockedError on day 6, got %v", err)
	}

	// Exactly at the unlock time the withdrawal passes.
	if _, err := service.Withdraw(ctx, store.WithdrawParams{
		AccountID: "alice", Amount: unit(1), Destination: "0xdest", Now: t0 + 7*86400,
	}); err != nil {
		t.Fatalf("Expected withdrawal at unlock time to pass, got %v", err)
	}
}

func TestWithdraw_DailyLimit(t *testing.T) {
	service, _ := setupVaultTestDB(t)
	ctx := context.Background()

	if err := service.SetDailyWithdrawLimit(ctx, testAdminKey, unit(3)); err != nil {
		t.Fatalf("SetDailyWithdrawLimit failed: %v", err)
	}
	if _, err := service.DepositFlexible(ctx, "alice", unit(10), t0, ""); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}

	if _, err := service.Withdraw(ctx, store.WithdrawParams{
		AccountID: "alice", Amount: unit(2), Destination: "0xdest", Now: t0 + 10,
	}); err != nil {
		t.Fatalf("First withdrawal failed: %v", err)
	}

	// Second withdrawal in the same day window exceeds the cap.
	_, err := service.Withdraw(ctx, store.WithdrawParams{
		AccountID: "alice", Amount: unit(2), Destination: "0xdest", Now: t0 + 20,
	})
	var limitErr *vault.DailyLimitExceededError
	if !errors.As(err, &limitErr) {
		t.Fatalf("Expected DailyLimitExceededError, got %v", err)
	}

	// The next day window resets the counter.
	if _, err := service.Withdraw(ctx, store.WithdrawParams{
		AccountID: "alice", Amount: unit(2), Destination: "0xdest", Now: t0 + 86400,
	}); err != nil {
		t.Fatalf("Expected next-day withdrawal to pass, got %v", err)
	}
}

func TestWithdraw_TransferFailureRollsBack(t *testing.T) {
	service, transferer := setupVaultTestDB(t)
	ctx := context.Background()

	if _, err := service.DepositFlexible(ctx, "alice", unit(10), t0, ""); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}

	transferer.err = errors.New("settlement backend down")
	_, err := service.Withdraw(ctx, store.WithdrawParams{
		AccountID: "alice", Amount: unit(2), Destination: "0xdest", Now: t0 + 10, Reference: "wd-1",
	})
	if !errors.Is(err, vault.ErrTransferFailed) {
		t.Fatalf("Expected ErrTransferFailed, got %v", err)
	}

	// Nothing committed: balance, fee pool and history are untouched.
	acct, err := service.GetAccount(ctx, "alice")
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if acct.Balance.Cmp(unit(10)) != 0 {
		t.Errorf("Expected balance unchanged at 10 units, got %s", acct.Balance)
	}
	params, err := service.GetParams(ctx)
	if err != nil {
		t.Fatalf("GetParams failed: %v", err)
	}
	if params.FeePool.Sign() != 0 {
		t.Errorf("Expected empty fee pool after rollback, got %s", params.FeePool)
	}
	count, err := service.GetTransactionCount(ctx, "alice")
	if err != nil {
		t.Fatalf("GetTransactionCount failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected only the deposit record, got %d records", count)
	}

	// The reference is free for a retry once the backend recovers.
	transferer.err = nil
	if _, err := service.Withdraw(ctx, store.WithdrawParams{
		AccountID: "alice", Amount: unit(2), Destination: "0xdest", Now: t0 + 20, Reference: "wd-1",
	}); err != nil {
		t.Fatalf("Expected retry with same reference to pass, got %v", err)
	}
}

func TestWithdraw_InsufficientBalance(t *testing.T) {
	service, _ := setupVaultTestDB(t)
	ctx := context.Background()

	if _, err := service.DepositFlexible(ctx, "alice", unit(1), t0, ""); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	_, err := service.Withdraw(ctx, store.WithdrawParams{
		AccountID: "alice", Amount: unit(2), Destination: "0xdest", Now: t0 + 10,
	})
	var balErr *vault.InsufficientBalanceError
	if !errors.As(err, &balErr) {
		t.Fatalf("Expected InsufficientBalanceError, got %v", err)
	}
}

func TestWithdraw_UnknownAccount(t *testing.T) {
	service, _ := setupVaultTestDB(t)

	_, err := service.Withdraw(context.Background(), store.WithdrawParams{
		AccountID: "ghost", Amount: unit(1), Destination: "0xdest", Now: t0,
	})
	if !errors.Is(err, store.ErrAccountNotFound) {
		t.Fatalf("Expected ErrAccountNotFound, got %v", err)
	}
}

func TestPause_BlocksDepositsAndWithdrawals(t *testing.T) {
	service, _ := setupVaultTestDB(t)
	ctx := context.Background()

	if _, err := service.DepositFlexible(ctx, "alice", unit(10), t0, ""); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	if err := service.SetPaused(ctx, testAdminKey, true); err != nil {
		t.Fatalf("SetPaused failed: %v", err)
	}

	if _, err := service.DepositFlexible(ctx, "alice", unit(1), t0+10, ""); !errors.Is(err, vault.ErrPaused) {
		t.Errorf("Expected ErrPaused on deposit, got %v", err)
	}
	if _, err := service.Withdraw(ctx, store.WithdrawParams{
		AccountID: "alice", Amount: unit(1), Destination: "0xdest", Now: t0 + 10,
	}); !errors.Is(err, vault.ErrPaused) {
		t.Errorf("Expected ErrPaused on withdrawal, got %v", err)
	}

	if err := service.SetPaused(ctx, testAdminKey, false); err != nil {
		t.Fatalf("Unpause failed: %v", err)
	}
	if _, err := service.DepositFlexible(ctx, "alice", unit(1), t0+20, ""); err != nil {
		t.Errorf("Expected deposit after unpause to pass, got %v", err)
	}
}

func TestEmergencyWithdraw_LockedPaysPenalty(t *testing.T) {
	service, transferer := setupVaultTestDB(t)
	ctx := context.Background()

	if _, err := service.Deposit(ctx, store.DepositParams{
		AccountID: "alice", Amount: unit(10), LockPeriod: models.LockMedium, Now: t0,
	}); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}

	result, err := service.EmergencyWithdraw(ctx, store.EmergencyWithdrawParams{
		AccountID: "alice", Destination: "0xdest", Now: t0 + 86400,
	})
	if err != nil {
		t.Fatalf("EmergencyWithdraw failed: %v", err)
	}

	// Fee 50 bps (0.05) plus penalty 1000 bps (1.0) on 10 units.
	fee := new(big.Int).Div(unit(5), big.NewInt(100))
	penalty := unit(1)
	wantDeduction := new(big.Int).Add(fee, penalty)
	if result.Fee.Cmp(wantDeduction) != 0 {
		t.Errorf("Expected deduction %s, got %s", wantDeduction, result.Fee)
	}
	if result.NewBalance.Sign() != 0 {
		t.Errorf("Expected empty balance after emergency exit, got %s", result.NewBalance)
	}

	wantNet := new(big.Int).Sub(unit(10), wantDeduction)
	if len(transferer.calls) != 1 || transferer.calls[0].amount.Cmp(wantNet) != 0 {
		t.Errorf("Expected net payout %s, got %+v", wantNet, transferer.calls)
	}

	acct, err := service.GetAccount(ctx, "alice")
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if acct.LockEndTime != 0 || acct.LockPeriod != models.LockFlexible {
		t.Errorf("Expected lock cleared after exit, got end=%d period=%s", acct.LockEndTime, acct.LockPeriod)
	}
}

func TestEmergencyWithdraw_UnlockedPaysOnlyFee(t *testing.T) {
	service, transferer := setupVaultTestDB(t)
	ctx := context.Background()

	if _, err := service.DepositFlexible(ctx, "alice", unit(10), t0, ""); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}

	result, err := service.EmergencyWithdraw(ctx, store.EmergencyWithdrawParams{
		AccountID: "alice", Destination: "0xdest", Now: t0 + 10,
	})
	if err != nil {
		t.Fatalf("EmergencyWithdraw failed: %v", err)
	}

	wantFee := new(big.Int).Div(unit(5), big.NewInt(100))
	if result.Fee.Cmp(wantFee) != 0 {
		t.Errorf("Expected only the base fee %s, got %s", wantFee, result.Fee)
	}
	if len(transferer.calls) != 1 {
		t.Fatalf("Expected one external transfer, got %d", len(transferer.calls))
	}
}

func TestEmergencyWithdraw_EmptyBalance(t *testing.T) {
	service, _ := setupVaultTestDB(t)
	ctx := context.Background()

	if _, err := service.DepositFlexible(ctx, "alice", unit(1), t0, ""); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	if _, err := service.EmergencyWithdraw(ctx, store.EmergencyWithdrawParams{
		AccountID: "alice", Destination: "0xdest", Now: t0 + 10,
	}); err != nil {
		t.Fatalf("First exit failed: %v", err)
	}

	_, err := service.EmergencyWithdraw(ctx, store.EmergencyWithdrawParams{
		AccountID: "alice", Destination: "0xdest", Now: t0 + 20,
	})
	if !errors.Is(err, vault.ErrZeroAmount) {
		t.Fatalf("Expected ErrZeroAmount on empty balance, got %v", err)
	}
}

func TestInternalTransfer_ConservesTotal(t *testing.T) {
	service, transferer := setupVaultTestDB(t)
	ctx := context.Background()

	if _, err := service.DepositFlexible(ctx, "alice", unit(10), t0, ""); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}

	result, err := service.InternalTransfer(ctx, store.TransferParams{
		FromID: "alice", ToID: "bob", Amount: unit(3), Now: t0 + 10, Reference: "tr-1",
	})
	if err != nil {
		t.Fatalf("InternalTransfer failed: %v", err)
	}
	if result.NewBalance.Cmp(unit(7)) != 0 {
		t.Errorf("Expected sender balance 7 units, got %s", result.NewBalance)
	}
	if result.Fee.Sign() != 0 {
		t.Errorf("Expected no fee on internal transfer, got %s", result.Fee)
	}
	if len(transferer.calls) != 0 {
		t.Errorf("Internal transfer must not touch the settlement backend, got %d calls", len(transferer.calls))
	}

	bob, err := service.GetAccount(ctx, "bob")
	if err != nil {
		t.Fatalf("GetAccount(bob) failed: %v", err)
	}
	if bob.Balance.Cmp(unit(3)) != 0 {
		t.Errorf("Expected receiver balance 3 units, got %s", bob.Balance)
	}
	if bob.Status != models.StatusActive {
		t.Errorf("Expected receiver activated, got %s", bob.Status)
	}

	alice, err := service.GetAccount(ctx, "alice")
	if err != nil {
		t.Fatalf("GetAccount(alice) failed: %v", err)
	}
	total := new(big.Int).Add(alice.Balance, bob.Balance)
	if total.Cmp(unit(10)) != 0 {
		t.Errorf("Expected transfer to conserve 10 units, got %s", total)
	}

	// Both sides got a history record.
	if err := service.ReconcileAccount(ctx, "alice"); err != nil {
		t.Errorf("Sender reconcile failed: %v", err)
	}
	if err := service.ReconcileAccount(ctx, "bob"); err != nil {
		t.Errorf("Receiver reconcile failed: %v", err)
	}
}

func TestInternalTransfer_Validation(t *testing.T) {
	service, _ := setupVaultTestDB(t)
	ctx := context.Background()

	if _, err := service.DepositFlexible(ctx, "alice", unit(10), t0, ""); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}

	if _, err := service.InternalTransfer(ctx, store.TransferParams{
		FromID: "alice", ToID: "alice", Amount: unit(1), Now: t0 + 10,
	}); !errors.Is(err, vault.ErrSelfTransfer) {
		t.Errorf("Expected ErrSelfTransfer, got %v", err)
	}
	if _, err := service.InternalTransfer(ctx, store.TransferParams{
		FromID: "alice", ToID: "", Amount: unit(1), Now: t0 + 10,
	}); !errors.Is(err, vault.ErrZeroAddress) {
		t.Errorf("Expected ErrZeroAddress, got %v", err)
	}
	if _, err := service.InternalTransfer(ctx, store.TransferParams{
		FromID: "alice", ToID: "bob", Amount: new(big.Int), Now: t0 + 10,
	}); !errors.Is(err, vault.ErrZeroAmount) {
		t.Errorf("Expected ErrZeroAmount, got %v", err)
	}
}

func TestClaimInterest_AfterOneYear(t *testing.T) {
	service, _ := setupVaultTestDB(t)
	ctx := context.Background()

	if _, err := service.DepositFlexible(ctx, "alice", unit(10), t0, ""); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}

	year := t0 + vault.SecondsPerYear
	pending, err := service.PendingInterestAt(ctx, "alice", year)
	if err != nil {
		t.Fatalf("PendingInterestAt failed: %v", err)
	}
	// 10 units at 5% for one year = 0.5 units.
	wantInterest := new(big.Int).Div(unit(5), big.NewInt(10))
	if pending.Cmp(wantInterest) != 0 {
		t.Errorf("Expected pending %s, got %s", wantInterest, pending)
	}

	result, err := service.ClaimInterest(ctx, store.ClaimParams{AccountID: "alice", Now: year})
	if err != nil {
		t.Fatalf("ClaimInterest failed: %v", err)
	}
	if result.Interest.Cmp(wantInterest) != 0 {
		t.Errorf("Expected interest %s, got %s", wantInterest, result.Interest)
	}
	if result.Bonus.Sign() != 0 {
		t.Errorf("Expected no bonus at tier 0, got %s", result.Bonus)
	}
	wantBalance := new(big.Int).Add(unit(10), wantInterest)
	if result.NewBalance.Cmp(wantBalance) != 0 {
		t.Errorf("Expected balance %s, got %s", wantBalance, result.NewBalance)
	}

	// Claiming again immediately finds nothing pending.
	if _, err := service.ClaimInterest(ctx, store.ClaimParams{AccountID: "alice", Now: year + 1}); !errors.Is(err, vault.ErrZeroAmount) {
		t.Errorf("Expected ErrZeroAmount on immediate re-claim, got %v", err)
	}

	if err := service.ReconcileAccount(ctx, "alice"); err != nil {
		t.Errorf("Reconcile after claim failed: %v", err)
	}
}

func TestTransactionHistory_Pagination(t *testing.T) {
	service, _ := setupVaultTestDB(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := service.DepositFlexible(ctx, "alice", unit(1), t0+int64(i), ""); err != nil {
			t.Fatalf("Deposit %d failed: %v", i, err)
		}
	}

	count, err := service.GetTransactionCount(ctx, "alice")
	if err != nil {
		t.Fatalf("GetTransactionCount failed: %v", err)
	}
	if count != 5 {
		t.Fatalf("Expected 5 records, got %d", count)
	}

	// Newest first.
	page, err := service.GetTransactionHistory(ctx, "alice", 2, 0)
	if err != nil {
		t.Fatalf("GetTransactionHistory failed: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("Expected page of 2, got %d", len(page))
	}
	if page[0].Timestamp != t0+4 {
		t.Errorf("Expected newest record first (ts %d), got %d", t0+4, page[0].Timestamp)
	}

	// Index access walks in append order.
	first, err := service.GetTransactionByIndex(ctx, "alice", 0)
	if err != nil {
		t.Fatalf("GetTransactionByIndex failed: %v", err)
	}
	if first.Timestamp != t0 {
		t.Errorf("Expected first record at ts %d, got %d", t0, first.Timestamp)
	}
	if _, err := service.GetTransactionByIndex(ctx, "alice", 5); err == nil {
		t.Error("Expected out-of-range index to fail")
	}
}
