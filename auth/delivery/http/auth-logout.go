package http

import (
	"context"
	"net/http"

	"github.com/go-kit/kit/endpoint"

	"github.com/agora-community/agora/domain"
	"github.com/agora-community/agora/kit/code"
	httpKit "github.com/agora-community/agora/kit/http"
)

func MakeAuthLogoutEndpoint(svc domain.AuthUseCase) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		accessToken := httpKit.GetToken(ctx)
		if accessToken == "" {
			return nil, code.CreateErrorCode(http.StatusUnauthorized)
		}
		if err := svc.Logout(ctx, accessToken); err != nil {
			return nil, err
		}
		return nil, nil
	}
}
