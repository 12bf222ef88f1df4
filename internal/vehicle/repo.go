package vehicle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AutoMercado/AutoMercado/internal/common/domain"
	"gorm.io/gorm"
)

// ListFilter narrows the public for-sale listing.
type ListFilter struct {
	Make         string // substring match, case-insensitive
	Model        string // substring match, case-insensitive
	YearMin      int
	YearMax      int
	PriceMin     float64
	PriceMax     float64
	HasPriceMin  bool
	HasPriceMax  bool
	Fuel         string
	Transmission string
	Sort         string // price, price-desc, year, date
	Page         domain.PageRequest
}

// SoldFilter narrows the sold listing.
type SoldFilter struct {
	SellerID string // empty for admins (all sellers)
	From     *time.Time
	To       *time.Time
	Sort     string // price, price-desc, soldAt
	Page     domain.PageRequest
}

// MineFilter narrows a vendor's own listing.
type MineFilter struct {
	SellerID string
	Status   string
	Page     domain.PageRequest
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

func (r *Repo) Create(ctx context.Context, v *Vehicle) error {
	return r.withCtx(ctx).Create(v).Error
}

func (r *Repo) Update(ctx context.Context, v *Vehicle) error {
	return r.withCtx(ctx).Save(v).Error
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	return r.withCtx(ctx).Delete(&Vehicle{}, "id = ?", id).Error
}

func (r *Repo) FindByID(ctx context.Context, id string) (*Vehicle, error) {
	var v Vehicle
	err := r.withCtx(ctx).Where("id = ?", id).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrVehicleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find vehicle by id: %w", err)
	}
	return &v, nil
}

// MarkSold flips a for-sale vehicle to sold in a single conditional
// update. The status predicate makes the database the arbiter between
// concurrent sale attempts: the second one matches zero rows.
func (r *Repo) MarkSold(ctx context.Context, id, buyerID string, soldAt time.Time) error {
	res := r.withCtx(ctx).Model(&Vehicle{}).
		Where("id = ? AND status = ?", id, StatusForSale).
		Updates(map[string]interface{}{
			"status":   StatusSold,
			"buyer_id": buyerID,
			"sold_at":  soldAt,
		})
	if res.Error != nil {
		return fmt.Errorf("mark vehicle sold: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrVehicleAlreadySold
	}
	return nil
}

// ListForSale returns the public listing with filters and sort applied.
func (r *Repo) ListForSale(ctx context.Context, f ListFilter) ([]Vehicle, int64, error) {
	q := r.withCtx(ctx).Model(&Vehicle{}).Where("status = ?", StatusForSale)

	if f.Make != "" {
		q = q.Where("LOWER(make) LIKE ?", "%"+strings.ToLower(f.Make)+"%")
	}
	if f.Model != "" {
		q = q.Where("LOWER(model) LIKE ?", "%"+strings.ToLower(f.Model)+"%")
	}
	if f.YearMin > 0 {
		q = q.Where("year >= ?", f.YearMin)
	}
	if f.YearMax > 0 {
		q = q.Where("year <= ?", f.YearMax)
	}
	if f.HasPriceMin {
		q = q.Where("price >= ?", f.PriceMin)
	}
	if f.HasPriceMax {
		q = q.Where("price <= ?", f.PriceMax)
	}
	if f.Fuel != "" {
		q = q.Where("fuel = ?", f.Fuel)
	}
	if f.Transmission != "" {
		q = q.Where("transmission = ?", f.Transmission)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count vehicles: %w", err)
	}

	page := f.Page.Normalize()
	var vehicles []Vehicle
	err := q.Order(sortClause(f.Sort)).Offset(f.Page.Offset()).Limit(page.Limit).Find(&vehicles).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list vehicles: %w", err)
	}
	return vehicles, total, nil
}

// ListSold returns sold vehicles, optionally scoped to one seller and a
// sale-date range.
func (r *Repo) ListSold(ctx context.Context, f SoldFilter) ([]Vehicle, int64, error) {
	q := r.withCtx(ctx).Model(&Vehicle{}).Where("status = ?", StatusSold)

	if f.SellerID != "" {
		q = q.Where("seller_id = ?", f.SellerID)
	}
	if f.From != nil {
		q = q.Where("sold_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("sold_at <= ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count sold vehicles: %w", err)
	}

	order := "sold_at DESC"
	switch f.Sort {
	case "price":
		order = "price ASC"
	case "price-desc":
		order = "price DESC"
	}

	page := f.Page.Normalize()
	var vehicles []Vehicle
	err := q.Order(order).Offset(f.Page.Offset()).Limit(page.Limit).Find(&vehicles).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list sold vehicles: %w", err)
	}
	return vehicles, total, nil
}

// ListBySeller returns a vendor's own vehicles regardless of status.
func (r *Repo) ListBySeller(ctx context.Context, f MineFilter) ([]Vehicle, int64, error) {
	q := r.withCtx(ctx).Model(&Vehicle{}).Where("seller_id = ?", f.SellerID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count seller vehicles: %w", err)
	}

	page := f.Page.Normalize()
	var vehicles []Vehicle
	err := q.Order("created_at DESC").Offset(f.Page.Offset()).Limit(page.Limit).Find(&vehicles).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list seller vehicles: %w", err)
	}
	return vehicles, total, nil
}

func sortClause(sort string) string {
	switch sort {
	case "price-desc":
		return "price DESC"
	case "year":
		return "year DESC"
	case "date":
		return "created_at DESC"
	default:
		return "price ASC"
	}
}
