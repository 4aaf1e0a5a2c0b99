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

type postCreateRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func MakePostCreateEndpoint(svc domain.PostUseCase) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(postCreateRequest)
		claims := httpKit.GetClaims(ctx)
		if claims == nil {
			return nil, code.CreateErrorCode(http.StatusUnauthorized)
		}
		post, err := svc.Create(claims, req.Title, req.Content)
		if err != nil {
			return nil, err
		}
		return post, nil
	}
}

func DecodePostCreateRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	var req postCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, code.CreateErrorCode(http.StatusBadRequest).AddCode(code.InvalidBody).AddErrorMetaData(err)
	}
	return req, nil
}

func EncodePostCreateResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	return json.NewEncoder(w).Encode(response)
}
