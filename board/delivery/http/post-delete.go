package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-kit/kit/endpoint"
	"github.com/gorilla/mux"

	"github.com/agora-community/agora/domain"
	"github.com/agora-community/agora/kit/code"
	httpKit "github.com/agora-community/agora/kit/http"
)

type postDeleteRequest struct {
	PostID int64
}

func MakePostDeleteEndpoint(svc domain.PostUseCase) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(postDeleteRequest)
		claims := httpKit.GetClaims(ctx)
		if claims == nil {
			return nil, code.CreateErrorCode(http.StatusUnauthorized)
		}
		if err := svc.Delete(claims, req.PostID); err != nil {
			return nil, err
		}
		return nil, nil
	}
}

func DecodePostDeleteRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	postID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return nil, code.CreateErrorCode(http.StatusBadRequest).AddCode(code.InvalidBody).AddErrorMetaData(err)
	}
	return postDeleteRequest{PostID: postID}, nil
}
