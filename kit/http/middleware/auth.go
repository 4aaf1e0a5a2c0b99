package middleware

import (
	"context"
	"net/http"

	"github.com/go-kit/kit/endpoint"

	"github.com/agora-community/agora/domain"
	"github.com/agora-community/agora/kit/code"
	httpKit "github.com/agora-community/agora/kit/http"
)

type VerifyFunc func(ctx context.Context, accessToken string) (*domain.TokenClaims, error)

// CreateAuthMiddleware is the request gate: extract bearer token, verify
// it, attach the typed claims to the context. Anything short of a fully
// verified token short-circuits the endpoint.
func CreateAuthMiddleware(verifyFunc VerifyFunc) endpoint.Middleware {
	return func(e endpoint.Endpoint) endpoint.Endpoint {
		return func(ctx context.Context, request interface{}) (response interface{}, err error) {
			token := httpKit.GetToken(ctx)
			if token == "" {
				return nil, code.CreateErrorCode(http.StatusUnauthorized)
			}
			claims, err := verifyFunc(ctx, token)
			if err != nil {
				return nil, err
			}
			ctx = httpKit.AddClaims(ctx, claims)
			return e(ctx, request)
		}
	}
}

// CreateOptionalAuthMiddleware attaches claims when the token verifies
// and passes the request through unauthenticated otherwise. For
// endpoints that personalize output but do not require login.
func CreateOptionalAuthMiddleware(verifyFunc VerifyFunc) endpoint.Middleware {
	return func(e endpoint.Endpoint) endpoint.Endpoint {
		return func(ctx context.Context, request interface{}) (response interface{}, err error) {
			token := httpKit.GetToken(ctx)
			if token == "" {
				return e(ctx, request)
			}
			claims, err := verifyFunc(ctx, token)
			if err != nil {
				return e(ctx, request)
			}
			ctx = httpKit.AddClaims(ctx, claims)
			return e(ctx, request)
		}
	}
}

// CreateRoleGuardMiddleware composes on top of the auth middleware and
// requires an exact role match.
func CreateRoleGuardMiddleware(role domain.AccountRole) endpoint.Middleware {
	return func(e endpoint.Endpoint) endpoint.Endpoint {
		return func(ctx context.Context, request interface{}) (response interface{}, err error) {
			claims := httpKit.GetClaims(ctx)
			if claims == nil {
				return nil, code.CreateErrorCode(http.StatusUnauthorized)
			}
			if claims.Role != role {
				return nil, code.CreateErrorCode(http.StatusForbidden)
			}
			return e(ctx, request)
		}
	}
}

// CreateSelfOrAdminGuardMiddleware allows the owner of the target
// account and admins through. ownerIDFunc extracts the target account id
// from the decoded request.
func CreateSelfOrAdminGuardMiddleware(ownerIDFunc func(request interface{}) int64) endpoint.Middleware {
	return func(e endpoint.Endpoint) endpoint.Endpoint {
		return func(ctx context.Context, request interface{}) (response interface{}, err error) {
			claims := httpKit.GetClaims(ctx)
			if claims == nil {
				return nil, code.CreateErrorCode(http.StatusUnauthorized)
			}
			if claims.Role != domain.ACCOUNT_ROLE_ADMIN && claims.AccountID != ownerIDFunc(request) {
				return nil, code.CreateErrorCode(http.StatusForbidden)
			}
			return e(ctx, request)
		}
	}
}

// CreateStatusGuardMiddleware requires the claims status to be one of
// the allowed lifecycle states.
func CreateStatusGuardMiddleware(statuses ...domain.AccountStatus) endpoint.Middleware {
	allowed := make(map[domain.AccountStatus]struct{}, len(statuses))
	for _, status := range statuses {
		allowed[status] = struct{}{}
	}
	return func(e endpoint.Endpoint) endpoint.Endpoint {
		return func(ctx context.Context, request interface{}) (response interface{}, err error) {
			claims := httpKit.GetClaims(ctx)
			if claims == nil {
				return nil, code.CreateErrorCode(http.StatusUnauthorized)
			}
			if _, ok := allowed[claims.Status]; !ok {
				return nil, code.CreateErrorCode(http.StatusForbidden)
			}
			return e(ctx, request)
		}
	}
}
