package auth

import (
	"context"
	"strings"

	"toeic-web/internal/apierr"
	"toeic-web/internal/models"
)

// Principal is the caller as established by the bearer token. The zero value is anonymous.
type Principal struct {
	UserID string
	Role   string
}

func (p Principal) Authenticated() bool {
	return strings.TrimSpace(p.UserID) != ""
}

func (p Principal) IsAdmin() bool {
	return p.Authenticated() && strings.EqualFold(strings.TrimSpace(p.Role), models.RoleAdmin)
}

// Capability names what an endpoint needs from its caller.
type Capability int

const (
	CapPublic Capability = iota
	CapLearner
	CapAdmin
)

// Authorize decides whether p may use c. It returns an unauthorized error when
// an identity is required but missing and a forbidden error when the role is wrong.
func Authorize(p Principal, c Capability) error {
	switch c {
	case CapPublic:
		return nil
	case CapLearner:
		if !p.Authenticated() {
			return apierr.Unauthorized("user identity not found")
		}
		return nil
	case CapAdmin:
		if !p.Authenticated() {
			return apierr.Unauthorized("user identity not found")
		}
		if !p.IsAdmin() {
			return apierr.Forbidden("admin role required")
		}
		return nil
	default:
		return apierr.Forbidden("unknown capability")
	}
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal stored by the auth middleware, or an anonymous one.
func FromContext(ctx context.Context) Principal {
	p, _ := ctx.Value(principalKey{}).(Principal)
	return p
}
