// Package identity maps provider-verified emails onto local users.
package identity

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"main/internal/apperrors"
	"main/internal/database"
	"main/internal/model"
)

type Resolver struct {
	users database.UserStore
	log   *zap.Logger
}

func NewResolver(users database.UserStore, log *zap.Logger) *Resolver {
	return &Resolver{users: users, log: log}
}

// ResolveOrCreate finds the user owning this email, creating one on first
// login. The email is the identity key, so repeated calls return the same
// user. An empty email means the provider did not grant the email scope.
func (r *Resolver) ResolveOrCreate(email, displayName string) (*model.User, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: provider did not return an email", apperrors.ErrValidation)
	}

	user, err := r.users.FindUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	name := displayName
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	user, err = r.users.CreateUser(&model.User{
		Name:     name,
		Email:    email,
		Timezone: "UTC",
	})
	if err != nil {
		return nil, err
	}

	r.log.Info("created user from oauth login", zap.Int64("user_id", user.ID))
	return user, nil
}
