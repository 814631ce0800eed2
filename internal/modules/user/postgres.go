package user

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

type postgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgreSQL user repository.
func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

// EnsureSchema creates the users table when it does not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS users (
		  id            SERIAL PRIMARY KEY,
		  email         TEXT NOT NULL UNIQUE,
		  password_hash TEXT NOT NULL,
		  first_name    TEXT NOT NULL DEFAULT '',
		  last_name     TEXT NOT NULL DEFAULT '',
		  phone         TEXT NOT NULL DEFAULT '',
		  address       TEXT NOT NULL DEFAULT '',
		  role          TEXT NOT NULL DEFAULT 'customer',
		  active        BOOLEAN NOT NULL DEFAULT TRUE,
		  registered_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	return err
}

const selectUser = `
	SELECT id, email, password_hash, first_name, last_name, phone, address, role, active, registered_at
	FROM users`

func (r *postgresRepository) Create(ctx context.Context, u *User) error {
	u.Email = normalizeEmail(u.Email)
	query := `
		INSERT INTO users (email, password_hash, first_name, last_name, phone, address, role, active, registered_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Phone, u.Address,
		string(u.Role), u.Active, u.RegisteredAt,
	).Scan(&u.ID)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrEmailTaken
	}
	return err
}

func scanUser(scan func(...interface{}) error) (*User, error) {
	u := &User{}
	var role string
	err := scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.Phone,
		&u.Address,
		&role,
		&u.Active,
		&u.RegisteredAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.Role = Role(role)
	return u, nil
}

func (r *postgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	row := r.db.QueryRowContext(ctx, selectUser+` WHERE email = $1`, normalizeEmail(email))
	return scanUser(row.Scan)
}

func (r *postgresRepository) GetByID(ctx context.Context, id int) (*User, error) {
	row := r.db.QueryRowContext(ctx, selectUser+` WHERE id = $1`, id)
	return scanUser(row.Scan)
}

func (r *postgresRepository) List(ctx context.Context) ([]*User, error) {
	rows, err := r.db.QueryContext(ctx, selectUser+` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := scanUser(rows.Scan)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *postgresRepository) SetActive(ctx context.Context, id int, active bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
