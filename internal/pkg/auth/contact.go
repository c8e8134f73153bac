package auth

import (
	"context"
	"errors"

	domainErrors "github.com/polkiloo/prisonmarket/internal/domain/errors"
	"github.com/polkiloo/prisonmarket/internal/domain/model"
)

// ContactLookup loads the contact a token names.
type ContactLookup interface {
	GetByID(ctx context.Context, id int64) (*model.Contact, error)
}

// ContactAuthenticator turns a bearer token into an approved contact ID.
type ContactAuthenticator struct {
	tokens   *TokenVerifier
	contacts ContactLookup
}

func NewContactAuthenticator(tokens *TokenVerifier, contacts ContactLookup) *ContactAuthenticator {
	return &ContactAuthenticator{tokens: tokens, contacts: contacts}
}

// Authenticate returns ErrInvalidToken for bad tokens and deleted contacts,
// and ErrContactNotApproved for contacts staff have not approved yet.
func (a *ContactAuthenticator) Authenticate(ctx context.Context, token string) (int64, error) {
	claims, err := a.tokens.Verify(token)
	if err != nil {
		return 0, err
	}
	contact, err := a.contacts.GetByID(ctx, claims.ContactID)
	if errors.Is(err, domainErrors.ErrNotFound) {
		return 0, ErrInvalidToken
	}
	if err != nil {
		return 0, err
	}
	if !contact.Approved {
		return 0, domainErrors.ErrContactNotApproved
	}
	return contact.ID, nil
}
