package mysql

import (
	"github.com/pkg/errors"

	"github.com/agora-community/agora/domain"
	ormKit "github.com/agora-community/agora/kit/orm"
)

type postEntity struct {
	*domain.Post
}

func (postEntity) TableName() string {
	return "post"
}

type postRepo struct {
	db *ormKit.DB
}

func CreatePostRepo(db *ormKit.DB) domain.PostRepo {
	return &postRepo{db: db}
}

func (p *postRepo) Create(post *domain.Post) (*domain.Post, error) {
	postInstance := postEntity{Post: post}
	if err := p.db.Create(&postInstance).Error; err != nil {
		return nil, errors.Wrap(err, "create post failed")
	}
	return postInstance.Post, nil
}

func (p *postRepo) GetByID(postID int64) (*domain.Post, error) {
	var postInstance postEntity
	if err := p.db.First(&postInstance, "id = ?", postID); err != nil {
		return nil, errors.Wrap(err, "get post failed")
	}
	return postInstance.Post, nil
}

func (p *postRepo) List(page, limit int) ([]*domain.Post, int64, error) {
	var total int64
	if err := p.db.Model(&postEntity{}).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count posts failed")
	}

	var postInstances []*postEntity
	if err := p.db.
		Order("id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&postInstances).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list posts failed")
	}

	posts := make([]*domain.Post, 0, len(postInstances))
	for _, postInstance := range postInstances {
		posts = append(posts, postInstance.Post)
	}
	return posts, total, nil
}

func (p *postRepo) Delete(postID int64) error {
	if err := p.db.Delete(&postEntity{}, "id = ?", postID).Error; err != nil {
		return errors.Wrap(err, "delete post failed")
	}
	return nil
}
