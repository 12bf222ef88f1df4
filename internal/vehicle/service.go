package vehicle

import (
	"context"
	"fmt"
	"time"

	"github.com/AutoMercado/AutoMercado/internal/common/auth"
	"github.com/AutoMercado/AutoMercado/internal/common/domain"
	"github.com/AutoMercado/AutoMercado/internal/common/logger"
	"github.com/AutoMercado/AutoMercado/internal/user"
	"github.com/google/uuid"
)

// Store is the persistence the service needs; *Repo satisfies it.
type Store interface {
	Create(ctx context.Context, v *Vehicle) error
	Update(ctx context.Context, v *Vehicle) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Vehicle, error)
	MarkSold(ctx context.Context, id, buyerID string, soldAt time.Time) error
	ListForSale(ctx context.Context, f ListFilter) ([]Vehicle, int64, error)
	ListSold(ctx context.Context, f SoldFilter) ([]Vehicle, int64, error)
	ListBySeller(ctx context.Context, f MineFilter) ([]Vehicle, int64, error)
}

// Service implements the inventory use cases.
type Service struct {
	store Store
	log   logger.Logger
	now   func() time.Time
}

func NewService(store Store, log logger.Logger) *Service {
	return &Service{store: store, log: log, now: time.Now}
}

// Create lists a new vehicle for sale, owned by the acting vendor.
func (s *Service) Create(ctx context.Context, actor *auth.Actor, in CreateInput) (*Vehicle, error) {
	if details := in.Validate(s.now()); len(details) > 0 {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, details)
	}

	v := &Vehicle{
		ID:           uuid.NewString(),
		Make:         in.Make,
		Model:        in.Model,
		Year:         in.Year,
		Color:        in.Color,
		Price:        in.Price,
		Mileage:      in.Mileage,
		Fuel:         in.Fuel,
		Transmission: in.Transmission,
		Description:  in.Description,
		ImageURLs:    in.ImageURLs,
		Status:       StatusForSale,
		SellerID:     actor.ID,
	}
	if err := s.store.Create(ctx, v); err != nil {
		return nil, err
	}

	s.log.Infof("vehicle listed: %s %s (%s) by %s", v.Make, v.Model, v.ID, actor.Email)
	return v, nil
}

// Get returns a vehicle; public.
func (s *Service) Get(ctx context.Context, id string) (*Vehicle, error) {
	return s.store.FindByID(ctx, id)
}

// Update edits a vehicle. Only the owning vendor or an admin may edit.
// Status is never writable here: sold is set solely by the sale operation
// and is final, so sold vehicles refuse all edits.
func (s *Service) Update(ctx context.Context, actor *auth.Actor, id string, in UpdateInput) (*Vehicle, error) {
	if in.Status != nil {
		return nil, fmt.Errorf("%w: status cannot be changed through update", domain.ErrValidation)
	}
	if details := in.Validate(s.now()); len(details) > 0 {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, details)
	}

	v, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != user.RoleAdmin && v.SellerID != actor.ID {
		return nil, domain.ErrForbidden
	}
	if v.Status == StatusSold {
		return nil, domain.ErrVehicleSoldLocked
	}

	if in.Make != nil {
		v.Make = *in.Make
	}
	if in.Model != nil {
		v.Model = *in.Model
	}
	if in.Year != nil {
		v.Year = *in.Year
	}
	if in.Color != nil {
		v.Color = *in.Color
	}
	if in.Price != nil {
		v.Price = *in.Price
	}
	if in.Mileage != nil {
		v.Mileage = *in.Mileage
	}
	if in.Fuel != nil {
		v.Fuel = *in.Fuel
	}
	if in.Transmission != nil {
		v.Transmission = *in.Transmission
	}
	if in.Description != nil {
		v.Description = *in.Description
	}
	if in.ImageURLs != nil {
		v.ImageURLs = *in.ImageURLs
	}

	if err := s.store.Update(ctx, v); err != nil {
		return nil, err
	}

	s.log.Infof("vehicle updated: %s %s (%s) by %s", v.Make, v.Model, v.ID, actor.Email)
	return v, nil
}

// Delete removes a vehicle from the inventory. Sold vehicles stay forever;
// they are part of completed sales.
func (s *Service) Delete(ctx context.Context, actor *auth.Actor, id string) error {
	v, err := s.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if actor.Role != user.RoleAdmin && v.SellerID != actor.ID {
		return domain.ErrForbidden
	}
	if v.Status == StatusSold {
		return domain.ErrVehicleSoldLocked
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Infof("vehicle removed: %s %s (%s) by %s", v.Make, v.Model, v.ID, actor.Email)
	return nil
}

// MarkSold is the sale arbiter consumed by the order service. It flips the
// vehicle to sold exactly once; a second attempt reports the conflict. Not
// idempotent: it stamps soldAt and the buyer, so callers must check status
// first.
func (s *Service) MarkSold(ctx context.Context, id, buyerID string) (*Vehicle, error) {
	if buyerID == "" {
		return nil, fmt.Errorf("%w: buyerId is required", domain.ErrValidation)
	}

	v, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.Status == StatusSold {
		return nil, domain.ErrVehicleAlreadySold
	}

	// The conditional update decides races between concurrent approvals.
	if err := s.store.MarkSold(ctx, id, buyerID, s.now()); err != nil {
		return nil, err
	}

	s.log.Infof("vehicle sold: %s %s (%s) to buyer %s", v.Make, v.Model, v.ID, buyerID)
	return s.store.FindByID(ctx, id)
}

// ListForSale is the public browse operation.
func (s *Service) ListForSale(ctx context.Context, f ListFilter) ([]Vehicle, int64, error) {
	return s.store.ListForSale(ctx, f)
}

// ListSold scopes non-admin callers to their own sales.
func (s *Service) ListSold(ctx context.Context, actor *auth.Actor, f SoldFilter) ([]Vehicle, int64, error) {
	if actor.Role != user.RoleAdmin {
		f.SellerID = actor.ID
	}
	return s.store.ListSold(ctx, f)
}

// ListMine returns the acting vendor's vehicles.
func (s *Service) ListMine(ctx context.Context, actor *auth.Actor, status string, page domain.PageRequest) ([]Vehicle, int64, error) {
	return s.store.ListBySeller(ctx, MineFilter{SellerID: actor.ID, Status: status, Page: page})
}
