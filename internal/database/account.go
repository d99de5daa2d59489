package database

import (
	"database/sql"
	"fmt"
	"time"

	"main/internal/apperrors"
	"main/internal/model"
)

// AccountStore is the persistence surface for cuentas_conectadas.
type AccountStore interface {
	FindAccountByUser(userID int64, provider string) (*model.ConnectedAccount, error)
	FindAccountByEmail(email, provider string) (*model.ConnectedAccount, error)
	UpsertAccount(account *model.ConnectedAccount) (*model.ConnectedAccount, error)
	UpdateAccountTokens(accountID int64, accessToken, refreshToken string, expiry *time.Time) error
}

type PostgresAccountStore struct {
	db *sql.DB
}

func NewAccountStore(db *sql.DB) *PostgresAccountStore {
	return &PostgresAccountStore{db: db}
}

const accountColumns = "c.id, c.id_usuario, c.proveedor, COALESCE(c.correo_vinculado, ''), COALESCE(c.access_token, ''), COALESCE(c.refresh_token, ''), c.token_expira_en, c.sincronizado_en"

func (s *PostgresAccountStore) FindAccountByUser(userID int64, provider string) (*model.ConnectedAccount, error) {
	return s.findAccount(
		"SELECT "+accountColumns+" FROM cuentas_conectadas c WHERE c.id_usuario = $1 AND c.proveedor = $2",
		userID, provider,
	)
}

func (s *PostgresAccountStore) FindAccountByEmail(email, provider string) (*model.ConnectedAccount, error) {
	return s.findAccount(
		"SELECT "+accountColumns+" FROM cuentas_conectadas c JOIN usuarios u ON u.id = c.id_usuario WHERE u.correo = $1 AND c.proveedor = $2",
		email, provider,
	)
}

func (s *PostgresAccountStore) findAccount(query string, args ...any) (*model.ConnectedAccount, error) {
	a := &model.ConnectedAccount{}
	var expiry, syncedAt sql.NullTime
	err := s.db.QueryRow(query, args...).Scan(
		&a.ID, &a.UserID, &a.Provider, &a.LinkedEmail, &a.AccessToken, &a.RefreshToken, &expiry, &syncedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // No linked account is not an error
		}
		return nil, fmt.Errorf("%w: find account: %v", apperrors.ErrStorage, err)
	}
	if expiry.Valid {
		a.TokenExpiry = &expiry.Time
	}
	if syncedAt.Valid {
		a.LastSyncedAt = &syncedAt.Time
	}
	return a, nil
}

// UpsertAccount writes the (user, provider) record, inserting it on first
// link. The caller decides the final token values; this method stores them
// verbatim.
func (s *PostgresAccountStore) UpsertAccount(account *model.ConnectedAccount) (*model.ConnectedAccount, error) {
	err := s.db.QueryRow(
		`INSERT INTO cuentas_conectadas (id_usuario, proveedor, correo_vinculado, access_token, refresh_token, token_expira_en, sincronizado_en)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id_usuario, proveedor) DO UPDATE SET
			correo_vinculado = EXCLUDED.correo_vinculado,
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			token_expira_en = EXCLUDED.token_expira_en,
			sincronizado_en = EXCLUDED.sincronizado_en
		 RETURNING id`,
		account.UserID, account.Provider, account.LinkedEmail, account.AccessToken,
		account.RefreshToken, account.TokenExpiry, account.LastSyncedAt,
	).Scan(&account.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: upsert account: %v", apperrors.ErrStorage, err)
	}
	return account, nil
}

func (s *PostgresAccountStore) UpdateAccountTokens(accountID int64, accessToken, refreshToken string, expiry *time.Time) error {
	_, err := s.db.Exec(
		"UPDATE cuentas_conectadas SET access_token = $1, refresh_token = $2, token_expira_en = $3, sincronizado_en = $4 WHERE id = $5",
		accessToken, refreshToken, expiry, time.Now().UTC(), accountID,
	)
	if err != nil {
		return fmt.Errorf("%w: update account tokens: %v", apperrors.ErrStorage, err)
	}
	return nil
}
