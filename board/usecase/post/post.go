package post

import (
	"net/http"

	"github.com/pkg/errors"

	"github.com/agora-community/agora/domain"
	"github.com/agora-community/agora/kit/code"
	loggerKit "github.com/agora-community/agora/kit/logger"
	ormKit "github.com/agora-community/agora/kit/orm"
	utilKit "github.com/agora-community/agora/kit/util"
)

const (
	_DEFAULT_PAGE_LIMIT = 20
	_MAX_PAGE_LIMIT     = 100
)

type postUseCase struct {
	postRepo domain.PostRepo
	logger   *loggerKit.Logger
}

func CreatePostUseCase(postRepo domain.PostRepo, logger *loggerKit.Logger) (domain.PostUseCase, error) {
	if logger == nil {
		return nil, errors.New("create use case failed")
	}
	return &postUseCase{
		postRepo: postRepo,
		logger:   logger,
	}, nil
}

func (p *postUseCase) Create(author *domain.TokenClaims, title, content string) (*domain.Post, error) {
	if title == "" || content == "" {
		return nil, code.CreateErrorCode(http.StatusBadRequest).AddCode(code.InvalidBody)
	}

	uniqueIDGenerate, err := utilKit.GetUniqueIDGenerate()
	if err != nil {
		return nil, errors.Wrap(err, "generate unique id failed")
	}

	post, err := p.postRepo.Create(&domain.Post{
		ID:              uniqueIDGenerate.Generate().GetInt64(),
		AuthorID:        author.AccountID,
		AuthorDisplayID: author.DisplayID,
		Title:           title,
		Content:         content,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create post failed")
	}
	return post, nil
}

func (p *postUseCase) List(page, limit int) (*domain.PostPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = _DEFAULT_PAGE_LIMIT
	}
	if limit > _MAX_PAGE_LIMIT {
		limit = _MAX_PAGE_LIMIT
	}

	posts, total, err := p.postRepo.List(page, limit)
	if err != nil {
		return nil, errors.Wrap(err, "list posts failed")
	}
	return &domain.PostPage{
		Posts: posts,
		Total: total,
		Page:  page,
		Limit: limit,
	}, nil
}

func (p *postUseCase) Delete(requester *domain.TokenClaims, postID int64) error {
	post, err := p.postRepo.GetByID(postID)
	if errors.Is(err, ormKit.ErrRecordNotFound) {
		return code.CreateErrorCode(http.StatusNotFound)
	} else if err != nil {
		return errors.Wrap(err, "get post failed")
	}

	if requester.Role != domain.ACCOUNT_ROLE_ADMIN && requester.AccountID != post.AuthorID {
		return code.CreateErrorCode(http.StatusForbidden)
	}

	if err := p.postRepo.Delete(postID); err != nil {
		return errors.Wrap(err, "delete post failed")
	}
	return nil
}
