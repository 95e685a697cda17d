package recordstore

import "context"

// Identity is the authenticated user a call acts for.
type Identity struct {
	UserID string
	Token  string
}

type identityKey struct{}

// WithIdentity attaches id to ctx. Every Client and Collection call needs one.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity attached to ctx, if any.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok && id.UserID != "" && id.Token != ""
}

func requireIdentity(ctx context.Context) error {
	if _, ok := IdentityFrom(ctx); !ok {
		return ErrUnauthenticated
	}
	return nil
}
