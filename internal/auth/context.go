package auth

import (
	"context"

	"github.com/sessionlite/sessionlite/internal/person"
)

type ctxKey int

const principalKey ctxKey = 0

// WithPrincipal stores the resolved person on the context. Set once per
// request by the middleware after a successful token check and DB load.
func WithPrincipal(ctx context.Context, p *person.Person) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the resolved person, or nil for
// unauthenticated requests.
func PrincipalFromContext(ctx context.Context) *person.Person {
	p, _ := ctx.Value(principalKey).(*person.Person)
	return p
}
