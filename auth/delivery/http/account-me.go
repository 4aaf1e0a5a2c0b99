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

type accountMeResponse struct {
	ID             int64                  `json:"id"`
	DisplayID      string                 `json:"display_id"`
	Email          string                 `json:"email"`
	Handle         string                 `json:"handle"`
	Role           string                 `json:"role"`
	Status         string                 `json:"status"`
	PoliticianInfo *domain.PoliticianInfo `json:"politician_info,omitempty"`
}

func MakeAccountMeEndpoint(svc domain.AccountUseCase) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		claims := httpKit.GetClaims(ctx)
		if claims == nil {
			return nil, code.CreateErrorCode(http.StatusUnauthorized)
		}
		account, err := svc.Get(claims.AccountID)
		if err != nil {
			return nil, err
		}
		return &accountMeResponse{
			ID:             account.ID,
			DisplayID:      account.DisplayID,
			Email:          account.Email,
			Handle:         account.Handle,
			Role:           account.Role.String(),
			Status:         account.Status.String(),
			PoliticianInfo: account.PoliticianInfo,
		}, nil
	}
}

func EncodeAccountMeResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	return json.NewEncoder(w).Encode(response)
}
