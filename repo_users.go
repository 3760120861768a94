package identity

import (
	"context"
	"strings"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Users is the directory repository. Create surfaces unique-index conflicts
// as ErrDuplicateEmail / ErrDuplicatePhone so the write path stays the source
// of truth when concurrent activations race past the pre-checks.
type Users interface {
	Directory

	FindByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error)
	FindByPhoneTx(ctx context.Context, tx bun.IDB, phone string) (*User, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *User) (*User, error)
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users     = (*users)(nil)
	_ Directory = (*users)(nil)
)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) FindByEmail(ctx context.Context, email string) (*User, error) {
	return a.FindByEmailTx(ctx, a.db, email)
}

func (a *users) FindByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	return a.findByColumn(ctx, tx, "email", email)
}

func (a *users) FindByPhone(ctx context.Context, phone string) (*User, error) {
	return a.FindByPhoneTx(ctx, a.db, phone)
}

func (a *users) FindByPhoneTx(ctx context.Context, tx bun.IDB, phone string) (*User, error) {
	return a.findByColumn(ctx, tx, "phone_number", phone)
}

func (a *users) findByColumn(ctx context.Context, tx bun.IDB, column, value string) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias."+column+" = ?", value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					column: value,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) Create(ctx context.Context, record *User) (*User, error) {
	return a.CreateTx(ctx, a.db, record)
}

func (a *users) CreateTx(ctx context.Context, tx bun.IDB, record *User) (*User, error) {
	prepareUserDefaults(record)

	created, err := a.Repository.CreateTx(ctx, tx, record)
	if err != nil {
		if dup := mapConstraintViolation(err); dup != nil {
			return nil, dup
		}
		return nil, err
	}

	return created, nil
}

func (a *users) List(ctx context.Context) ([]*User, error) {
	records := []*User{}
	if err := a.db.NewSelect().Model(&records).Scan(ctx); err != nil {
		return nil, err
	}
	return records, nil
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}

// mapConstraintViolation translates driver unique-index errors into the
// duplicate errors callers check for. Covers sqlite and postgres phrasing.
func mapConstraintViolation(err error) error {
	if err == nil {
		return nil
	}

	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "unique constraint") &&
		!strings.Contains(msg, "unique violation") &&
		!strings.Contains(msg, "duplicate key") {
		return nil
	}

	if strings.Contains(msg, "phone") {
		return ErrDuplicatePhone
	}

	return ErrDuplicateEmail
}
