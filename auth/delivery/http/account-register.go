package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-kit/kit/endpoint"

	"github.com/agora-community/agora/domain"
	"github.com/agora-community/agora/kit/code"
)

type accountRegisterRequest struct {
	Email          string `json:"email"`
	Handle         string `json:"handle"`
	Password       string `json:"password"`
	Role           string `json:"role"`
	PoliticianInfo *struct {
		Party    string `json:"party"`
		District string `json:"district"`
	} `json:"politician_info,omitempty"`
}

type accountRegisterResponse struct {
	ID        int64  `json:"id"`
	DisplayID string `json:"display_id"`
	Email     string `json:"email"`
	Handle    string `json:"handle"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

func MakeAccountRegisterEndpoint(svc domain.AccountUseCase) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(accountRegisterRequest)

		role, err := domain.ParseAccountRole(req.Role)
		if err != nil {
			return nil, code.CreateErrorCode(http.StatusBadRequest).AddCode(code.InvalidBody)
		}
		if req.Email == "" || req.Handle == "" {
			return nil, code.CreateErrorCode(http.StatusBadRequest).AddCode(code.InvalidBody)
		}

		profile := domain.SignupProfile{
			Email:    req.Email,
			Handle:   req.Handle,
			Password: req.Password,
			Role:     role,
		}
		if req.PoliticianInfo != nil {
			profile.PoliticianInfo = &domain.PoliticianInfo{
				Party:    req.PoliticianInfo.Party,
				District: req.PoliticianInfo.District,
			}
		}

		account, err := svc.Register(&profile)
		if err != nil {
			return nil, err
		}

		message := "account approved"
		if account.Status == domain.ACCOUNT_STATUS_PENDING {
			message = "account pending review"
		}

		return &accountRegisterResponse{
			ID:        account.ID,
			DisplayID: account.DisplayID,
			Email:     account.Email,
			Handle:    account.Handle,
			Role:      account.Role.String(),
			Status:    account.Status.String(),
			Message:   message,
		}, nil
	}
}

func DecodeAccountRegisterRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	var req accountRegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, code.CreateErrorCode(http.StatusBadRequest).AddCode(code.InvalidBody).AddErrorMetaData(err)
	}
	return req, nil
}

func EncodeAccountRegisterResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	return json.NewEncoder(w).Encode(response)
}
