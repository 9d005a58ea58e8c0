package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jupiterclapton/murmur/internal/core/domain"
	"github.com/jupiterclapton/murmur/internal/core/ports"
)

// sqlUser est le DTO interne : tampon entre la base et le domaine pour
// les colonnes NULLables (username, name, image).
type sqlUser struct {
	ID        string
	Username  *string
	Name      *string
	Image     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type UserRepo struct {
	db *pgxpool.Pool
}

func NewUserRepo(db *pgxpool.Pool) ports.UserRepository {
	return &UserRepo{db: db}
}

// Save insère le miroir d'un compte. La PK attrape les doublons
// (23505 → domain.ErrUserAlreadyExists).
func (r *UserRepo) Save(ctx context.Context, user *domain.User) error {
	q := `
		INSERT INTO users (id, username, name, image, created_at, updated_at)
		VALUES (@id, @username, @name, @image, @created_at, @updated_at)
	`

	args := pgx.NamedArgs{
		"id":         user.ID,
		"username":   user.Username,
		"name":       user.Name,
		"image":      user.Image,
		"created_at": user.CreatedAt,
		"updated_at": user.UpdatedAt,
	}

	if _, err := r.db.Exec(ctx, q, args); err != nil {
		return r.handleError(err)
	}
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	q := `SELECT id, username, name, image, created_at, updated_at FROM users WHERE id = $1`

	var u sqlUser
	err := r.db.QueryRow(ctx, q, id).Scan(
		&u.ID, &u.Username, &u.Name, &u.Image, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound // Traduction technique → Domaine
		}
		return nil, fmt.Errorf("db: get user by id: %w", err)
	}

	return r.toDomain(&u), nil
}

// Update ne touche que name, image et updated_at : l'ID et le username
// d'origine sont immuables côté miroir.
func (r *UserRepo) Update(ctx context.Context, user *domain.User) error {
	q := `
		UPDATE users
		SET name = @name, image = @image, updated_at = @updated_at
		WHERE id = @id
	`
	args := pgx.NamedArgs{
		"id":         user.ID,
		"name":       user.Name,
		"image":      user.Image,
		"updated_at": user.UpdatedAt,
	}

	tag, err := r.db.Exec(ctx, q, args)
	if err != nil {
		return r.handleError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// --- HELPERS ---

func (r *UserRepo) toDomain(u *sqlUser) *domain.User {
	return &domain.User{
		ID:        u.ID,
		Username:  u.Username,
		Name:      u.Name,
		Image:     u.Image,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// handleError traduit les codes d'erreur PostgreSQL en erreurs du Domaine
func (r *UserRepo) handleError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Code 23505 = Unique Violation (PK id ou index username)
		if pgErr.Code == "23505" {
			return domain.ErrUserAlreadyExists
		}
	}
	return err
}
