package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/AutoMercado/AutoMercado/internal/common/domain"
	"gorm.io/gorm"
)

// ListFilter narrows account listings.
type ListFilter struct {
	Role   string
	Active *bool
	Search string // matches name, email or cpf, case-insensitive
	Page   domain.PageRequest
}

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) withCtx(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

func (r *Repo) Create(ctx context.Context, u *User) error {
	return r.withCtx(ctx).Create(u).Error
}

func (r *Repo) Update(ctx context.Context, u *User) error {
	return r.withCtx(ctx).Save(u).Error
}

func (r *Repo) FindByID(ctx context.Context, id string) (*User, error) {
	var u User
	err := r.withCtx(ctx).Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &u, nil
}

func (r *Repo) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.withCtx(ctx).Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &u, nil
}

func (r *Repo) FindByCPF(ctx context.Context, cpf string) (*User, error) {
	var u User
	err := r.withCtx(ctx).Where("cpf = ?", cpf).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user by cpf: %w", err)
	}
	return &u, nil
}

func (r *Repo) List(ctx context.Context, f ListFilter) ([]User, int64, error) {
	q := r.withCtx(ctx).Model(&User{})
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if f.Active != nil {
		q = q.Where("active = ?", *f.Active)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("name LIKE ? OR email LIKE ? OR cpf LIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	page := f.Page.Normalize()
	var users []User
	err := q.Order("created_at DESC").Offset(f.Page.Offset()).Limit(page.Limit).Find(&users).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}
