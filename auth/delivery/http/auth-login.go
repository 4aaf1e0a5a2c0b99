package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-kit/kit/endpoint"

	"github.com/agora-community/agora/domain"
	"github.com/agora-community/agora/kit/code"
)

type authLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authLoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ID           int64  `json:"id"`
	DisplayID    string `json:"display_id"`
	Email        string `json:"email"`
	Handle       string `json:"handle"`
	Role         string `json:"role"`
}

func MakeAuthLoginEndpoint(svc domain.AuthUseCase) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(authLoginRequest)
		account, err := svc.Login(ctx, req.Email, req.Password)
		if err != nil {
			return nil, err
		}
		return &authLoginResponse{
			AccessToken:  account.AccessToken,
			RefreshToken: account.RefreshToken,
			ID:           account.ID,
			DisplayID:    account.DisplayID,
			Email:        account.Email,
			Handle:       account.Handle,
			Role:         account.Role.String(),
		}, nil
	}
}

func DecodeAuthLoginRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	var req authLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, code.CreateErrorCode(http.StatusBadRequest).AddCode(code.InvalidBody).AddErrorMetaData(err)
	}
	return req, nil
}

func EncodeAuthLoginResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	return json.NewEncoder(w).Encode(response)
}
