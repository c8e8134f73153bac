package test

import "context"

// AuthenticatorStub resolves contact tokens via overrides.
type AuthenticatorStub struct {
	ID             int64
	Err            error
	AuthenticateFn func(context.Context, string) (int64, error)
}

// Authenticate either delegates to the override or returns the predefined result.
func (s AuthenticatorStub) Authenticate(ctx context.Context, token string) (int64, error) {
	if s.AuthenticateFn != nil {
		return s.AuthenticateFn(ctx, token)
	}
	if s.Err != nil {
		return 0, s.Err
	}
	return s.ID, nil
}

// SecretStub accepts exactly Secret.
type SecretStub struct {
	Secret string
}

func (s SecretStub) Verify(secret string) bool {
	return s.Secret != "" && secret == s.Secret
}
