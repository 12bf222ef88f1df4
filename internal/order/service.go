package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AutoMercado/AutoMercado/internal/common/auth"
	"github.com/AutoMercado/AutoMercado/internal/common/domain"
	"github.com/AutoMercado/AutoMercado/internal/common/logger"
	"github.com/AutoMercado/AutoMercado/internal/user"
	"github.com/google/uuid"
)

// Store is the persistence the service needs; *Repo satisfies it.
type Store interface {
	Create(ctx context.Context, o *Order) error
	Update(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
	ListByBuyer(ctx context.Context, buyerID string, f ListFilter) ([]Order, int64, error)
	ListBySeller(ctx context.Context, sellerID string, f ListFilter) ([]Order, int64, error)
	ListAll(ctx context.Context, f ListFilter) ([]Order, int64, error)
	ListByVehicle(ctx context.Context, vehicleID string) ([]Order, error)
}

// Service implements the purchase-order use cases.
type Service struct {
	store    Store
	vehicles VehicleDirectory
	log      logger.Logger
	now      func() time.Time
}

func NewService(store Store, vehicles VehicleDirectory, log logger.Logger) *Service {
	return &Service{store: store, vehicles: vehicles, log: log, now: time.Now}
}

// Create places a pending order. The vehicle is fetched fresh so the
// availability, ownership and price checks run against current inventory,
// and the seller is snapshotted onto the order.
func (s *Service) Create(ctx context.Context, actor *auth.Actor, in CreateInput) (*Order, error) {
	if details := in.Validate(); len(details) > 0 {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, details)
	}

	v, err := s.vehicles.GetVehicle(ctx, in.VehicleID)
	if err != nil {
		return nil, err
	}
	if v.Status != vehicleForSale {
		return nil, domain.ErrVehicleNotForSale
	}
	if v.SellerID == actor.ID {
		return nil, domain.ErrSelfPurchase
	}
	if in.FinalPrice < v.Price {
		return nil, domain.ErrPriceBelowListing
	}

	o := &Order{
		ID:                uuid.NewString(),
		VehicleID:         v.ID,
		BuyerID:           actor.ID,
		SellerID:          v.SellerID,
		FinalPrice:        in.FinalPrice,
		PaymentMethod:     in.PaymentMethod,
		Installments:      in.Installments,
		InstallmentAmount: InstallmentAmount(in.FinalPrice, in.Installments),
		Notes:             in.Notes,
		Status:            StatusPending,
	}
	if err := s.store.Create(ctx, o); err != nil {
		return nil, err
	}

	s.log.Infof("order placed: %s for vehicle %s by %s", o.ID, o.VehicleID, actor.Email)
	return o, nil
}

// Get returns an order visible to the actor.
func (s *Service) Get(ctx context.Context, actor *auth.Actor, id string) (*Order, error) {
	o, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canRead(actor, o) {
		return nil, domain.ErrForbidden
	}
	return o, nil
}

// List returns the actor's purchases; admins see everything.
func (s *Service) List(ctx context.Context, actor *auth.Actor, f ListFilter) ([]Order, int64, error) {
	if actor.Role == user.RoleAdmin {
		return s.store.ListAll(ctx, f)
	}
	return s.store.ListByBuyer(ctx, actor.ID, f)
}

// ListSales returns the orders placed against the actor's vehicles; admins
// see everything.
func (s *Service) ListSales(ctx context.Context, actor *auth.Actor, f ListFilter) ([]Order, int64, error) {
	if actor.Role == user.RoleAdmin {
		return s.store.ListAll(ctx, f)
	}
	return s.store.ListBySeller(ctx, actor.ID, f)
}

// ListByVehicle returns every order against one vehicle. Vendors see only
// their own vehicles' orders.
func (s *Service) ListByVehicle(ctx context.Context, actor *auth.Actor, vehicleID string) ([]Order, error) {
	orders, err := s.store.ListByVehicle(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if actor.Role == user.RoleAdmin {
		return orders, nil
	}
	visible := make([]Order, 0, len(orders))
	for _, o := range orders {
		if o.SellerID == actor.ID || o.BuyerID == actor.ID {
			visible = append(visible, o)
		}
	}
	return visible, nil
}

// Approve accepts a pending order. The vehicle is marked sold FIRST and
// the order only flips to approved once that succeeds, so a failed or
// conflicting sale leaves the order pending and untouched. token is the
// approver's bearer token, forwarded to the vehicle service.
func (s *Service) Approve(ctx context.Context, actor *auth.Actor, token, id string) (*Order, error) {
	o, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canApprove(actor, o) {
		return nil, domain.ErrForbidden
	}
	if !AllowTransition(o.Status, StatusApproved) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, o.Status, StatusApproved)
	}

	if err := s.vehicles.MarkSold(ctx, token, o.VehicleID, o.BuyerID); err != nil {
		s.log.Warnf("order %s approval aborted, vehicle not sold: %v", o.ID, err)
		return nil, err
	}

	ts := s.now()
	o.Status = StatusApproved
	o.ApprovedAt = &ts
	if err := s.store.Update(ctx, o); err != nil {
		// the vehicle is already sold; surface the error and leave the
		// order for reconciliation via ListByVehicle
		return nil, err
	}

	s.log.Infof("order approved: %s (vehicle %s) by %s", o.ID, o.VehicleID, actor.Email)
	return o, nil
}

// Reject declines a pending order, optionally recording the seller's
// reason in the notes. The vehicle stays for sale.
func (s *Service) Reject(ctx context.Context, actor *auth.Actor, id, notes string) (*Order, error) {
	return s.transition(ctx, actor, id, StatusRejected, notes, canReject)
}

// Complete marks an approved order as delivered and paid.
func (s *Service) Complete(ctx context.Context, actor *auth.Actor, id string) (*Order, error) {
	return s.transition(ctx, actor, id, StatusCompleted, "", canComplete)
}

// Cancel withdraws an order, optionally recording the buyer's reason in
// the notes. Cancelling after approval does not put the vehicle back on
// sale.
func (s *Service) Cancel(ctx context.Context, actor *auth.Actor, id, notes string) (*Order, error) {
	return s.transition(ctx, actor, id, StatusCancelled, notes, canCancel)
}

func (s *Service) transition(ctx context.Context, actor *auth.Actor, id, to, notes string, allowed func(*auth.Actor, *Order) bool) (*Order, error) {
	notes = strings.TrimSpace(notes)
	if len(notes) > maxNotesLen {
		return nil, fmt.Errorf("%w: notes cannot exceed %d characters", domain.ErrValidation, maxNotesLen)
	}

	o, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !allowed(actor, o) {
		return nil, domain.ErrForbidden
	}
	if !AllowTransition(o.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, o.Status, to)
	}

	ts := s.now()
	o.Status = to
	if notes != "" {
		o.Notes = notes
	}
	switch to {
	case StatusCompleted:
		o.CompletedAt = &ts
	case StatusCancelled:
		o.CancelledAt = &ts
	}
	if err := s.store.Update(ctx, o); err != nil {
		return nil, err
	}

	s.log.Infof("order %s: %s by %s", to, o.ID, actor.Email)
	return o, nil
}
