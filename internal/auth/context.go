// internal/auth/context.go
//
// Context helpers.  The session middleware binds the session's Store and
// User to each request; Transport reads the store from the outgoing
// request's context, and acl reads the user.

package auth

import "context"

type storeKey struct{}
type userKey struct{}

// WithStore returns ctx carrying st.
func WithStore(ctx context.Context, st Store) context.Context {
	return context.WithValue(ctx, storeKey{}, st)
}

// StoreFrom returns the bound store, or nil.
func StoreFrom(ctx context.Context) Store {
	st, _ := ctx.Value(storeKey{}).(Store)
	return st
}

// WithUser returns ctx carrying u.
func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFrom returns the bound user.  ok is false when nobody is logged in.
func UserFrom(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(userKey{}).(User)
	return u, ok
}
