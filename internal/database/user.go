package database

import (
	"database/sql"
	"fmt"
	"time"

	"main/internal/apperrors"
	"main/internal/model"
)

// UserStore is the persistence surface for usuarios.
type UserStore interface {
	ListUsers() ([]model.User, error)
	CreateUser(user *model.User) (*model.User, error)
	FindUserByEmail(email string) (*model.User, error)
	FindUserByID(id int64) (*model.User, error)
}

type PostgresUserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

func (s *PostgresUserStore) ListUsers() ([]model.User, error) {
	rows, err := s.db.Query("SELECT id, nombre, correo, COALESCE(zona_horaria, ''), creado_en FROM usuarios ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("%w: list users: %v", apperrors.ErrStorage, err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Timezone, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan user: %v", apperrors.ErrStorage, err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list users: %v", apperrors.ErrStorage, err)
	}
	return users, nil
}

func (s *PostgresUserStore) CreateUser(user *model.User) (*model.User, error) {
	user.CreatedAt = time.Now().UTC()
	err := s.db.QueryRow(
		"INSERT INTO usuarios (nombre, correo, zona_horaria, creado_en) VALUES ($1, $2, $3, $4) RETURNING id",
		user.Name, user.Email, user.Timezone, user.CreatedAt,
	).Scan(&user.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: create user: %v", apperrors.ErrStorage, err)
	}
	return user, nil
}

func (s *PostgresUserStore) FindUserByEmail(email string) (*model.User, error) {
	return s.findUser("SELECT id, nombre, correo, COALESCE(zona_horaria, ''), creado_en FROM usuarios WHERE correo = $1", email)
}

func (s *PostgresUserStore) FindUserByID(id int64) (*model.User, error) {
	return s.findUser("SELECT id, nombre, correo, COALESCE(zona_horaria, ''), creado_en FROM usuarios WHERE id = $1", id)
}

func (s *PostgresUserStore) findUser(query string, arg any) (*model.User, error) {
	u := &model.User{}
	err := s.db.QueryRow(query, arg).Scan(&u.ID, &u.Name, &u.Email, &u.Timezone, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // No user found is not an error
		}
		return nil, fmt.Errorf("%w: find user: %v", apperrors.ErrStorage, err)
	}
	return u, nil
}
