package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"ledger-api/internal/core/domain"
	"ledger-api/internal/core/ports"
	"ledger-api/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const (
	idempotencyTTL      = 24 * time.Hour
	idempotencyClaimTTL = 30 * time.Second
)

// LedgerOptions tunes the ledger engine.
type LedgerOptions struct {
	// RequireActor rejects calls without an authenticated actor.
	// When false a nil actor skips ownership checks.
	RequireActor bool
	// Now stamps committed transfers. Defaults to time.Now.
	Now func() time.Time
}

// LedgerServiceImpl implements ports.LedgerService.
type LedgerServiceImpl struct {
	accountRepo ports.AccountRepository
	txRepo      ports.TransactionRepository
	userRepo    ports.UserRepository
	transactor  ports.DBTransactor
	idempCache  ports.IdempotencyCache // optional
	opts        LedgerOptions
	log         zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl. idempCache may be nil.
func NewLedgerService(
	accountRepo ports.AccountRepository,
	txRepo ports.TransactionRepository,
	userRepo ports.UserRepository,
	transactor ports.DBTransactor,
	idempCache ports.IdempotencyCache,
	opts LedgerOptions,
	log zerolog.Logger,
) *LedgerServiceImpl {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &LedgerServiceImpl{
		accountRepo: accountRepo,
		txRepo:      txRepo,
		userRepo:    userRepo,
		transactor:  transactor,
		idempCache:  idempCache,
		opts:        opts,
		log:         log,
	}
}

// Transfer moves Amount from the sender to the receiver and appends one log entry,
// all inside a single database transaction.
func (s *LedgerServiceImpl) Transfer(ctx context.Context, req ports.TransferRequest) (*domain.TransferResult, error) {
	if err := s.checkActor(req.Actor); err != nil {
		return nil, err
	}
	if req.FromAccountID == "" || req.ToAccountID == "" {
		return nil, apperror.InvalidRequest("sender and receiver account ids are required")
	}
	if req.Amount <= 0 {
		return nil, apperror.InvalidRequest("amount must be a positive integer")
	}

	idempKey := ""
	if req.IdempotencyKey != "" && s.idempCache != nil {
		idempKey = domain.BuildIdempotencyKey(actorID(req.Actor), req.IdempotencyKey)

		cached, err := s.idempCache.Get(ctx, idempKey)
		if err != nil {
			s.log.Warn().Err(err).Str("key", idempKey).Msg("idempotency cache read failed, executing transfer")
		}
		if cached != nil {
			return s.replayCachedResult(cached, req)
		}

		acquired, err := s.idempCache.Acquire(ctx, idempKey, idempotencyClaimTTL)
		switch {
		case err != nil:
			s.log.Warn().Err(err).Str("key", idempKey).Msg("idempotency claim failed, executing transfer")
		case !acquired:
			return nil, apperror.ErrConflict("a transfer with this idempotency key is already in progress")
		default:
			defer func() {
				if err := s.idempCache.Release(context.WithoutCancel(ctx), idempKey); err != nil {
					s.log.Warn().Err(err).Str("key", idempKey).Msg("failed to release idempotency claim")
				}
			}()
			// The previous holder may have finished between Get and Acquire.
			if cached, err := s.idempCache.Get(ctx, idempKey); err == nil && cached != nil {
				return s.replayCachedResult(cached, req)
			}
		}
	}

	result, err := s.executeTransfer(ctx, req)
	if err != nil {
		return nil, err
	}

	if idempKey != "" {
		respJSON, err := json.Marshal(result)
		if err != nil {
			s.log.Warn().Err(err).Str("key", idempKey).Msg("failed to marshal transfer result for cache")
		} else if err := s.idempCache.Set(ctx, idempKey, respJSON, idempotencyTTL); err != nil {
			s.log.Warn().Err(err).Str("key", idempKey).Msg("failed to cache idempotency result")
		}
	}

	s.log.Info().
		Int64("tx_id", result.Transaction.ID).
		Str("from", req.FromAccountID).
		Str("to", req.ToAccountID).
		Int64("amount", req.Amount).
		Str("actor", actorID(req.Actor)).
		Msg("transfer committed")

	return result, nil
}

func (s *LedgerServiceImpl) executeTransfer(ctx context.Context, req ports.TransferRequest) (*domain.TransferResult, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	locked, err := s.lockAccounts(ctx, dbTx, req.FromAccountID, req.ToAccountID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock accounts: %w", err))
	}

	sender := locked[req.FromAccountID]
	if sender == nil {
		return nil, apperror.ErrNotFound("sender account")
	}
	receiver := locked[req.ToAccountID]
	if receiver == nil {
		return nil, apperror.ErrNotFound("receiver account")
	}
	if req.Actor != nil && !req.Actor.CanAccess(sender) {
		return nil, apperror.ErrForbidden()
	}
	if sender.ID == receiver.ID {
		return nil, apperror.InvalidRequest("cannot transfer to the same account")
	}
	if !sender.CanCover(req.Amount) {
		return nil, apperror.ErrInsufficientFunds()
	}

	senderBalance, err := s.accountRepo.AdjustBalance(ctx, dbTx, sender.ID, -req.Amount)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientBalance) {
			return nil, apperror.ErrInsufficientFunds()
		}
		return nil, apperror.InternalError(fmt.Errorf("debit sender: %w", err))
	}
	receiverBalance, err := s.accountRepo.AdjustBalance(ctx, dbTx, receiver.ID, req.Amount)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("credit receiver: %w", err))
	}

	txn := &domain.Transaction{
		SenderAccountID:   sender.ID,
		ReceiverAccountID: receiver.ID,
		Amount:            req.Amount,
		CreatedAt:         s.opts.Now().UTC().Truncate(time.Microsecond),
	}
	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create transaction: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	return &domain.TransferResult{
		Transaction:     *txn,
		SenderBalance:   senderBalance,
		ReceiverBalance: receiverBalance,
	}, nil
}

// lockAccounts takes row locks in ascending id order so that two transfers
// over the same pair can never deadlock.
func (s *LedgerServiceImpl) lockAccounts(ctx context.Context, tx pgx.Tx, ids ...string) (map[string]*domain.Account, error) {
	ordered := append([]string(nil), ids...)
	sort.Strings(ordered)

	locked := make(map[string]*domain.Account, len(ordered))
	for _, id := range ordered {
		if _, ok := locked[id]; ok {
			continue
		}
		account, err := s.accountRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		locked[id] = account
	}
	return locked, nil
}

// GetBalance returns the committed balance of one account.
func (s *LedgerServiceImpl) GetBalance(ctx context.Context, actor *domain.Actor, accountID string) (int64, error) {
	if err := s.checkActor(actor); err != nil {
		return 0, err
	}
	if accountID == "" {
		return 0, apperror.InvalidRequest("account id is required")
	}

	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("get account: %w", err))
	}
	if account == nil {
		return 0, apperror.ErrNotFound("account")
	}
	if actor != nil && !actor.CanAccess(account) {
		return 0, apperror.ErrForbidden()
	}
	return account.Balance, nil
}

// ListAccounts returns every account for admins, or the actor's own accounts.
func (s *LedgerServiceImpl) ListAccounts(ctx context.Context, actor *domain.Actor) ([]domain.Account, error) {
	if err := s.checkActor(actor); err != nil {
		return nil, err
	}
	if actor == nil || actor.IsAdmin() {
		accounts, err := s.accountRepo.List(ctx, nil)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("list accounts: %w", err))
		}
		return accounts, nil
	}

	accounts, err := s.accountRepo.List(ctx, &actor.ID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list accounts: %w", err))
	}
	return accounts, nil
}

// ListTransactions returns log entries newest first.
func (s *LedgerServiceImpl) ListTransactions(ctx context.Context, actor *domain.Actor, filter ports.TransactionFilter) ([]domain.Transaction, error) {
	if err := s.checkActor(actor); err != nil {
		return nil, err
	}
	if filter.Limit < 0 {
		return nil, apperror.InvalidRequest("limit must not be negative")
	}

	if actor != nil && !actor.IsAdmin() {
		if filter.AccountID == "" {
			return nil, apperror.InvalidRequest("account_id is required")
		}
		account, err := s.accountRepo.GetByID(ctx, filter.AccountID)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("get account: %w", err))
		}
		if account == nil {
			return nil, apperror.ErrNotFound("account")
		}
		if !actor.CanAccess(account) {
			return nil, apperror.ErrForbidden()
		}
	}

	txns, err := s.txRepo.List(ctx, ports.TransactionListParams{
		AccountID: filter.AccountID,
		Limit:     filter.Limit,
	})
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list transactions: %w", err))
	}
	return txns, nil
}

// CreateAccount opens a new account. Only admins may set an owner other than
// themselves or a non-zero opening balance.
func (s *LedgerServiceImpl) CreateAccount(ctx context.Context, actor *domain.Actor, req ports.CreateAccountRequest) (*domain.Account, error) {
	if err := s.checkActor(actor); err != nil {
		return nil, err
	}
	if !domain.ValidAccountID(req.ID) {
		return nil, apperror.InvalidRequest("account id must be 1-64 letters, digits, '.', '_' or '-'")
	}
	if req.InitialBalance < 0 {
		return nil, apperror.InvalidRequest("initial balance must not be negative")
	}

	owner := req.OwnerID
	if owner != nil && *owner == "" {
		owner = nil
	}
	if actor != nil && !actor.IsAdmin() {
		if req.InitialBalance != 0 {
			return nil, apperror.ErrForbidden()
		}
		if owner != nil && *owner != actor.ID {
			return nil, apperror.ErrForbidden()
		}
		owner = &actor.ID
	}

	if owner != nil {
		user, err := s.userRepo.GetByUsername(ctx, *owner)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("get owner: %w", err))
		}
		if user == nil {
			return nil, apperror.ErrNotFound("owner")
		}
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	existing, err := s.accountRepo.GetByIDForUpdate(ctx, dbTx, req.ID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check account: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrConflict("account already exists")
	}

	now := s.opts.Now().UTC().Truncate(time.Microsecond)
	account := &domain.Account{
		ID:        req.ID,
		OwnerID:   owner,
		Balance:   req.InitialBalance,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.accountRepo.Create(ctx, dbTx, account); err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicate):
			return nil, apperror.ErrConflict("account already exists")
		case errors.Is(err, domain.ErrForeignKey):
			return nil, apperror.ErrNotFound("owner")
		}
		return nil, apperror.InternalError(fmt.Errorf("create account: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("account_id", account.ID).
		Int64("balance", account.Balance).
		Str("actor", actorID(actor)).
		Msg("account created")

	return account, nil
}

// DeleteAccount removes an account whose balance is zero. Log entries that
// reference it are kept.
func (s *LedgerServiceImpl) DeleteAccount(ctx context.Context, actor *domain.Actor, accountID string) error {
	if err := s.checkActor(actor); err != nil {
		return err
	}
	if accountID == "" {
		return apperror.InvalidRequest("account id is required")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	account, err := s.accountRepo.GetByIDForUpdate(ctx, dbTx, accountID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("lock account: %w", err))
	}
	if account == nil {
		return apperror.ErrNotFound("account")
	}
	if actor != nil && !actor.CanAccess(account) {
		return apperror.ErrForbidden()
	}
	if account.Balance != 0 {
		return apperror.ErrPreconditionFailed("account balance must be zero to delete")
	}

	if err := s.accountRepo.Delete(ctx, dbTx, accountID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperror.ErrNotFound("account")
		}
		return apperror.InternalError(fmt.Errorf("delete account: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().Str("account_id", accountID).Str("actor", actorID(actor)).Msg("account deleted")
	return nil
}

// GetStats returns ledger-wide aggregates. Admin only.
func (s *LedgerServiceImpl) GetStats(ctx context.Context, actor *domain.Actor) (*ports.LedgerStats, error) {
	if err := s.checkActor(actor); err != nil {
		return nil, err
	}
	if actor != nil && !actor.IsAdmin() {
		return nil, apperror.ErrForbidden()
	}

	stats, err := s.txRepo.GetStats(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get stats: %w", err))
	}
	return stats, nil
}

func (s *LedgerServiceImpl) checkActor(actor *domain.Actor) error {
	if actor == nil && s.opts.RequireActor {
		return apperror.ErrUnauthorized()
	}
	return nil
}

// replayCachedResult returns the stored result of an earlier transfer under the
// same key. A key reused for a different sender, receiver or amount is a conflict.
func (s *LedgerServiceImpl) replayCachedResult(data []byte, req ports.TransferRequest) (*domain.TransferResult, error) {
	var result domain.TransferResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("unmarshal cached result: %w", err))
	}
	if !result.Transaction.Matches(req.FromAccountID, req.ToAccountID, req.Amount) {
		s.log.Warn().
			Str("key", req.IdempotencyKey).
			Int64("tx_id", result.Transaction.ID).
			Msg("idempotency key reused for a different transfer")
		return nil, apperror.ErrConflict("idempotency key was already used for a different transfer")
	}
	return &result, nil
}

func actorID(actor *domain.Actor) string {
	if actor == nil {
		return "anonymous"
	}
	return actor.ID
}
