package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/AutoMercado/AutoMercado/internal/common/domain"
	"gorm.io/gorm"
)

// ListFilter narrows an order listing.
type ListFilter struct {
	Status string
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

func (r *Repo) Create(ctx context.Context, o *Order) error {
	return r.withCtx(ctx).Create(o).Error
}

func (r *Repo) Update(ctx context.Context, o *Order) error {
	return r.withCtx(ctx).Save(o).Error
}

func (r *Repo) FindByID(ctx context.Context, id string) (*Order, error) {
	var o Order
	err := r.withCtx(ctx).Where("id = ?", id).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find order by id: %w", err)
	}
	return &o, nil
}

// ListByBuyer returns a client's own purchase orders.
func (r *Repo) ListByBuyer(ctx context.Context, buyerID string, f ListFilter) ([]Order, int64, error) {
	return r.list(ctx, r.withCtx(ctx).Model(&Order{}).Where("buyer_id = ?", buyerID), f)
}

// ListBySeller returns the orders placed against a vendor's vehicles.
func (r *Repo) ListBySeller(ctx context.Context, sellerID string, f ListFilter) ([]Order, int64, error) {
	return r.list(ctx, r.withCtx(ctx).Model(&Order{}).Where("seller_id = ?", sellerID), f)
}

// ListAll is the admin view over every order.
func (r *Repo) ListAll(ctx context.Context, f ListFilter) ([]Order, int64, error) {
	return r.list(ctx, r.withCtx(ctx).Model(&Order{}), f)
}

// ListByVehicle returns every order ever placed against one vehicle,
// newest first. Used to reconcile competing orders after a sale.
func (r *Repo) ListByVehicle(ctx context.Context, vehicleID string) ([]Order, error) {
	var orders []Order
	err := r.withCtx(ctx).
		Where("vehicle_id = ?", vehicleID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("list orders by vehicle: %w", err)
	}
	return orders, nil
}

func (r *Repo) list(ctx context.Context, q *gorm.DB, f ListFilter) ([]Order, int64, error) {
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	page := f.Page.Normalize()
	var orders []Order
	err := q.Order("created_at DESC").Offset(f.Page.Offset()).Limit(page.Limit).Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return orders, total, nil
}
