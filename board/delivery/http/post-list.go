package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-kit/kit/endpoint"

	"github.com/agora-community/agora/domain"
	httpKit "github.com/agora-community/agora/kit/http"
)

type postListRequest struct {
	Page  int
	Limit int
}

type postListItem struct {
	*domain.Post
	// Editable is personalization for logged-in callers, anonymous
	// listings never set it.
	Editable bool `json:"editable,omitempty"`
}

type postListResponse struct {
	Posts []*postListItem `json:"posts"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

func MakePostListEndpoint(svc domain.PostUseCase) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(postListRequest)
		postPage, err := svc.List(req.Page, req.Limit)
		if err != nil {
			return nil, err
		}

		claims := httpKit.GetClaims(ctx)
		items := make([]*postListItem, 0, len(postPage.Posts))
		for _, post := range postPage.Posts {
			item := postListItem{Post: post}
			if claims != nil && (claims.Role == domain.ACCOUNT_ROLE_ADMIN || claims.AccountID == post.AuthorID) {
				item.Editable = true
			}
			items = append(items, &item)
		}

		return &postListResponse{
			Posts: items,
			Total: postPage.Total,
			Page:  postPage.Page,
			Limit: postPage.Limit,
		}, nil
	}
}

func DecodePostListRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return postListRequest{Page: page, Limit: limit}, nil
}

func EncodePostListResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	return json.NewEncoder(w).Encode(response)
}
