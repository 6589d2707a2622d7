package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"agora/contexts/governance/poll-program/domain/address"
	domainerrors "agora/contexts/governance/poll-program/domain/errors"
	"agora/contexts/governance/poll-program/domain/records"
	"agora/contexts/governance/poll-program/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository keeps poll program records in one table keyed by the base58
// record address. Each atomic unit is one database transaction.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Migrate creates or updates the accounts table.
func (r *Repository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&accountModel{}); err != nil {
		return r.logError("poll_program_repo_migrate_failed", err)
	}
	return nil
}

// Execute runs fn inside a transaction. Creates are inserted immediately so
// that a concurrent unit claiming the same address blocks on the row and then
// sees it occupied. Loads take a row lock. Handle contents are written back
// before commit.
func (r *Repository) Execute(ctx context.Context, fn func(ctx context.Context, tx ports.AccountTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u := &unit{
			db:      tx,
			handles: make(map[address.Address]*ports.Account),
		}
		if err := fn(ctx, u); err != nil {
			return err
		}
		return u.flush(time.Now().UTC())
	})
	if err != nil {
		if isDomainError(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return r.logError("poll_program_repo_execute_failed", err)
	}
	return nil
}

func (r *Repository) Read(ctx context.Context, addr address.Address) ([]byte, error) {
	var row accountModel
	err := r.db.WithContext(ctx).
		Where("address = ?", addr.String()).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrAccountNotFound
		}
		return nil, r.logError("poll_program_repo_read_failed", err, "address", addr.String())
	}
	return row.data(), nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "governance/poll-program",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("poll program repository operation failed", fields...)
	return err
}

type unit struct {
	db      *gorm.DB
	handles map[address.Address]*ports.Account
	order   []address.Address
}

func (u *unit) CreateIfAbsent(_ context.Context, addr address.Address, initial []byte) (*ports.Account, error) {
	if _, ok := u.handles[addr]; ok {
		return nil, domainerrors.ErrAddressInUse
	}
	row := newAccountModel(addr, initial, time.Now().UTC())
	create := u.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "address"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return nil, domainerrors.ErrAddressInUse
		}
		return nil, create.Error
	}
	if create.RowsAffected == 0 {
		return nil, domainerrors.ErrAddressInUse
	}
	return u.track(addr, row.data()), nil
}

func (u *unit) LoadMutable(_ context.Context, addr address.Address) (*ports.Account, error) {
	if handle, ok := u.handles[addr]; ok {
		return handle, nil
	}
	var row accountModel
	err := u.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("address = ?", addr.String()).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrAccountNotFound
		}
		return nil, err
	}
	return u.track(addr, row.data()), nil
}

func (u *unit) track(addr address.Address, data []byte) *ports.Account {
	handle := &ports.Account{Address: addr, Data: data}
	u.handles[addr] = handle
	u.order = append(u.order, addr)
	return handle
}

func (u *unit) flush(now time.Time) error {
	for _, addr := range u.order {
		handle := u.handles[addr]
		row := newAccountModel(addr, handle.Data, now)
		if err := u.db.Model(&accountModel{}).
			Where("address = ?", row.Address).
			Updates(map[string]any{
				"data":       row.Data,
				"kind":       row.Kind,
				"updated_at": row.UpdatedAt,
			}).Error; err != nil {
			return err
		}
	}
	return nil
}

type accountModel struct {
	Address   string    `gorm:"column:address;primaryKey"`
	Data      []byte    `gorm:"column:data;type:bytea;not null"`
	Kind      string    `gorm:"column:kind;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (accountModel) TableName() string {
	return "poll_program_accounts"
}

func newAccountModel(addr address.Address, data []byte, now time.Time) accountModel {
	row := accountModel{
		Address:   addr.String(),
		Data:      append([]byte{}, data...),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if kind, ok := records.KindOf(data); ok {
		row.Kind = string(kind)
	}
	return row
}

func (m accountModel) data() []byte {
	return append([]byte{}, m.Data...)
}

func isDomainError(err error) bool {
	for _, target := range []error{
		domainerrors.ErrPollMismatch,
		domainerrors.ErrPollNotActive,
		domainerrors.ErrUnauthorized,
		domainerrors.ErrAlreadyVoted,
		domainerrors.ErrAddressInUse,
		domainerrors.ErrAccountNotFound,
		domainerrors.ErrAccountDiscriminatorMismatch,
		domainerrors.ErrAccountDidNotDeserialize,
		domainerrors.ErrConstraintSeeds,
		domainerrors.ErrDescriptionTooLong,
		domainerrors.ErrCandidateNameTooLong,
		domainerrors.ErrArithmeticOverflow,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.Ledger = (*Repository)(nil)
