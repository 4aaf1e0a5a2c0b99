package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-kit/kit/endpoint"

	"github.com/agora-community/agora/domain"
	"github.com/agora-community/agora/kit/code"
	httpKit "github.com/agora-community/agora/kit/http"
)

type accountChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func MakeAccountChangePasswordEndpoint(svc domain.AccountUseCase) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(accountChangePasswordRequest)
		claims := httpKit.GetClaims(ctx)
		if claims == nil {
			return nil, code.CreateErrorCode(http.StatusUnauthorized)
		}
		if err := svc.ChangePassword(claims.AccountID, req.CurrentPassword, req.NewPassword); err != nil {
			return nil, err
		}
		return nil, nil
	}
}

func DecodeAccountChangePasswordRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	var req accountChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, code.CreateErrorCode(http.StatusBadRequest).AddCode(code.InvalidBody).AddErrorMetaData(err)
	}
	return req, nil
}
