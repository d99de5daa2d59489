package model

import "time"

// User is a row of the usuarios table. Created either through the CRUD
// endpoint or by the identity resolver on first OAuth login.
type User struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"nombre" json:"nombre"`
	Email     string    `db:"correo" json:"correo"`
	Timezone  string    `db:"zona_horaria" json:"zona_horaria"`
	CreatedAt time.Time `db:"creado_en" json:"creado_en"`
}

// ConnectedAccount links a user to one external calendar provider. There is
// at most one row per (user, provider). A nil TokenExpiry means the provider
// never reported one; the token is then assumed valid until a call fails.
type ConnectedAccount struct {
	ID           int64      `db:"id"`
	UserID       int64      `db:"id_usuario"`
	Provider     string     `db:"proveedor"`
	LinkedEmail  string     `db:"correo_vinculado"`
	AccessToken  string     `db:"access_token"`
	RefreshToken string     `db:"refresh_token"`
	TokenExpiry  *time.Time `db:"token_expira_en"`
	LastSyncedAt *time.Time `db:"sincronizado_en"`
}

// ExternalEvent mirrors one provider event for a connected account. The set
// of rows per account always reflects the latest page of upcoming events,
// never an append log.
type ExternalEvent struct {
	ID           int64      `db:"id"`
	AccountID    int64      `db:"id_cuenta"`
	ExternalID   string     `db:"id_evento_externo"`
	Title        string     `db:"titulo"`
	Description  string     `db:"descripcion"`
	Start        *time.Time `db:"inicio"`
	End          *time.Time `db:"fin"`
	Status       string     `db:"estado"`
	Origin       string     `db:"origen"`
	LastSyncedAt *time.Time `db:"sincronizado_en"`
}

// Event statuses stored for external events. Anything the provider reports
// outside this set normalizes to StatusConfirmed.
const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusTentative = "tentative"
)

// ProviderGoogle is the only provider wired today; the schema reserves
// outlook and icloud as well.
const ProviderGoogle = "google"
