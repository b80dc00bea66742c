package web

import (
	"context"

	"github.com/Walehamdi1/QNA/internal/domain"
)

// ContextKey prevents collisions with other packages' context keys.
type ContextKey string

// PrincipalContextKey holds the authenticated domain.Principal.
const PrincipalContextKey = ContextKey("principal")

func withPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, PrincipalContextKey, p)
}

// PrincipalFromContext returns the caller set by Auth / Retourne l'appelant défini par Auth
func PrincipalFromContext(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(PrincipalContextKey).(domain.Principal)
	return p, ok
}
