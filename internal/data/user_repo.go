package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/smartbin/portal/internal/data/pgxutil"
	domainauth "github.com/smartbin/portal/internal/domain/auth"
	apperrors "github.com/smartbin/portal/internal/errors"
	"github.com/smartbin/portal/internal/ports"
)

const defaultAvatar = "/avatars/default.png"

var _ ports.UserDirectory = (*UserRepo)(nil)

// UserRepo is the Postgres account directory. Passwords are stored as bcrypt
// hashes; records returned to callers carry the hash, never the plaintext.
type UserRepo struct {
	DB       *sql.DB
	Time     TimeProvider
	HashCost int
}

// NewUserRepo creates a new UserRepo with the default bcrypt cost.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db, Time: &RealTimeProvider{}, HashCost: bcrypt.DefaultCost}
}

type userRow struct {
	ID           string    `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Avatar       string    `db:"avatar"`
	Nickname     string    `db:"nickname"`
	Phone        string    `db:"phone"`
	Company      string    `db:"company"`
	Role         string    `db:"role"`
	Status       string    `db:"status"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r userRow) record() domainauth.UserRecord {
	return domainauth.UserRecord{
		ID:        r.ID,
		Username:  r.Username,
		Email:     r.Email,
		Password:  r.PasswordHash,
		Avatar:    r.Avatar,
		Nickname:  r.Nickname,
		Phone:     r.Phone,
		Company:   r.Company,
		Role:      domainauth.Role(r.Role),
		Status:    domainauth.UserStatus(r.Status),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

const userColumns = `id::text AS id, username, email, password_hash, avatar, nickname,
		phone, company, role, status, created_at, updated_at`

func queryUser(ctx context.Context, q interface {
	Query(context.Context, string, ...any) (pgx.Rows, error)
}, query string, args ...any) (userRow, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return userRow{}, err
	}
	defer rows.Close()
	return pgx.CollectOneRow(rows, pgx.RowToStructByName[userRow])
}

// FindByCredential matches login against username or email, then compares
// the bcrypt hash. Any mismatch is domainauth.ErrRecordNotFound.
func (r *UserRepo) FindByCredential(ctx context.Context, login, password string) (domainauth.UserRecord, error) {
	var row userRow
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		var qerr error
		row, qerr = queryUser(ctx, conn,
			`SELECT `+userColumns+` FROM users WHERE username = $1 OR email = $1
			 ORDER BY (username = $1) DESC LIMIT 1`, login)
		return qerr
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return domainauth.UserRecord{}, domainauth.ErrRecordNotFound
	}
	if err != nil {
		return domainauth.UserRecord{}, fmt.Errorf("find user by credential: %w", apperrors.MapDBError(err))
	}
	if bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(password)) != nil {
		return domainauth.UserRecord{}, domainauth.ErrRecordNotFound
	}
	return row.record(), nil
}

// FindByID returns the record with the given id.
func (r *UserRepo) FindByID(ctx context.Context, id string) (domainauth.UserRecord, error) {
	var row userRow
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		var qerr error
		row, qerr = queryUser(ctx, conn, `SELECT `+userColumns+` FROM users WHERE id::text = $1`, id)
		return qerr
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return domainauth.UserRecord{}, domainauth.ErrRecordNotFound
	}
	if err != nil {
		return domainauth.UserRecord{}, fmt.Errorf("find user %s: %w", id, apperrors.MapDBError(err))
	}
	return row.record(), nil
}

// Create inserts a user with role user and status active. The username is
// checked before the email inside the insert transaction; the unique
// constraints settle races between concurrent registrations.
func (r *UserRepo) Create(ctx context.Context, in domainauth.NewUser) (domainauth.UserRecord, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), r.cost())
	if err != nil {
		return domainauth.UserRecord{}, fmt.Errorf("hash password: %w", err)
	}
	now := r.now()

	var row userRow
	err = pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{Fn: func(tx pgx.Tx) error {
		if err := ensureFree(ctx, tx, "username", in.Username, domainauth.ErrDuplicateUsername); err != nil {
			return err
		}
		if err := ensureFree(ctx, tx, "email", in.Email, domainauth.ErrDuplicateEmail); err != nil {
			return err
		}
		var qerr error
		row, qerr = queryUser(ctx, tx, `
			INSERT INTO users (username, email, password_hash, avatar, nickname, phone, company,
			                   role, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $1, $5, $6, $7, $8, $9, $9)
			RETURNING `+userColumns,
			in.Username, in.Email, string(hash), defaultAvatar, in.Phone, in.Company,
			string(domainauth.RoleUser), string(domainauth.StatusActive), now)
		return qerr
	}})
	if err != nil {
		return domainauth.UserRecord{}, mapCreateErr(in, err)
	}
	return row.record(), nil
}

func ensureFree(ctx context.Context, tx pgx.Tx, column, value string, taken error) error {
	var exists bool
	// column is one of two fixed identifiers, never caller input.
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE `+column+` = $1)`, value).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return taken
	}
	return nil
}

func mapCreateErr(in domainauth.NewUser, err error) error {
	if errors.Is(err, domainauth.ErrDuplicateUsername) || errors.Is(err, domainauth.ErrDuplicateEmail) {
		return fmt.Errorf("create %q: %w", in.Username, err)
	}
	mapped := apperrors.MapDBError(err)
	if apperrors.IsConflict(mapped) {
		switch apperrors.GetField(mapped) {
		case "username":
			return fmt.Errorf("create %q: %w", in.Username, domainauth.ErrDuplicateUsername)
		case "email":
			return fmt.Errorf("create %q: %w", in.Email, domainauth.ErrDuplicateEmail)
		}
	}
	return fmt.Errorf("create user: %w", mapped)
}

// UsernameExists reports an exact username match.
func (r *UserRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username)
}

// EmailExists reports an exact email match.
func (r *UserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
}

func (r *UserRepo) exists(ctx context.Context, query, arg string) (bool, error) {
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, arg).Scan(&exists); err != nil {
		return false, fmt.Errorf("check user exists: %w", apperrors.MapDBError(err))
	}
	return exists, nil
}

// UpdatePassword replaces the stored hash for the user.
func (r *UserRepo) UpdatePassword(ctx context.Context, id, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), r.cost())
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET password_hash = $2, updated_at = $3 WHERE id::text = $1`, id, string(hash), r.now())
	if err != nil {
		return fmt.Errorf("update password: %w", apperrors.MapDBError(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domainauth.ErrRecordNotFound
	}
	return nil
}

// Seed inserts records that do not exist yet, keyed by username. Passwords
// in the input are plaintext and are hashed here. It returns how many
// records were inserted.
func (r *UserRepo) Seed(ctx context.Context, records []domainauth.UserRecord) (int, error) {
	inserted := 0
	for _, rec := range records {
		hash, err := bcrypt.GenerateFromPassword([]byte(rec.Password), r.cost())
		if err != nil {
			return inserted, fmt.Errorf("hash password for %s: %w", rec.Username, err)
		}
		created := rec.CreatedAt
		if created.IsZero() {
			created = r.now()
		}
		res, err := r.DB.ExecContext(ctx, `
			INSERT INTO users (username, email, password_hash, avatar, nickname, phone, company,
			                   role, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
			ON CONFLICT DO NOTHING`,
			rec.Username, rec.Email, string(hash), rec.Avatar, rec.Nickname, rec.Phone, rec.Company,
			string(rec.Role), string(rec.Status), created)
		if err != nil {
			return inserted, fmt.Errorf("seed user %s: %w", rec.Username, apperrors.MapDBError(err))
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}
	return inserted, nil
}

func (r *UserRepo) cost() int {
	if r.HashCost < bcrypt.MinCost {
		return bcrypt.DefaultCost
	}
	return r.HashCost
}

func (r *UserRepo) now() time.Time {
	if r.Time == nil {
		return time.Now().UTC()
	}
	return r.Time.Now().UTC()
}
