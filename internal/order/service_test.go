package order

import (
	"context"
	"strings"
	"testing"

	"github.com/AutoMercado/AutoMercado/internal/common/auth"
	"github.com/AutoMercado/AutoMercado/internal/common/domain"
	"github.com/AutoMercado/AutoMercado/internal/common/logger"
	"github.com/AutoMercado/AutoMercado/internal/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory Store for service tests.
type memStore struct {
	orders map[string]*Order
}

func newMemStore() *memStore {
	return &memStore{orders: make(map[string]*Order)}
}

func (m *memStore) Create(_ context.Context, o *Order) error {
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func (m *memStore) Update(_ context.Context, o *Order) error {
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func (m *memStore) FindByID(_ context.Context, id string) (*Order, error) {
	if o, ok := m.orders[id]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, domain.ErrOrderNotFound
}

func (m *memStore) ListByBuyer(_ context.Context, buyerID string, f ListFilter) ([]Order, int64, error) {
	return m.collect(func(o *Order) bool {
		return o.BuyerID == buyerID && (f.Status == "" || o.Status == f.Status)
	})
}

func (m *memStore) ListBySeller(_ context.Context, sellerID string, f ListFilter) ([]Order, int64, error) {
	return m.collect(func(o *Order) bool {
		return o.SellerID == sellerID && (f.Status == "" || o.Status == f.Status)
	})
}

func (m *memStore) ListAll(_ context.Context, f ListFilter) ([]Order, int64, error) {
	return m.collect(func(o *Order) bool {
		return f.Status == "" || o.Status == f.Status
	})
}

func (m *memStore) ListByVehicle(_ context.Context, vehicleID string) ([]Order, error) {
	orders, _, _ := m.collect(func(o *Order) bool { return o.VehicleID == vehicleID })
	return orders, nil
}

func (m *memStore) collect(keep func(*Order) bool) ([]Order, int64, error) {
	var out []Order
	for _, o := range m.orders {
		if keep(o) {
			out = append(out, *o)
		}
	}
	return out, int64(len(out)), nil
}

// fakeDirectory is an in-memory VehicleDirectory. MarkSold behaves like
// the real arbiter: it succeeds exactly once per vehicle. When down is
// set every call reports the service as unreachable.
type fakeDirectory struct {
	vehicles map[string]*VehicleInfo
	down     bool
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{vehicles: make(map[string]*VehicleInfo)}
}

func (d *fakeDirectory) add(v VehicleInfo) {
	if v.Status == "" {
		v.Status = vehicleForSale
	}
	d.vehicles[v.ID] = &v
}

func (d *fakeDirectory) GetVehicle(_ context.Context, id string) (*VehicleInfo, error) {
	if d.down {
		return nil, domain.ErrVehicleServiceDown
	}
	if v, ok := d.vehicles[id]; ok {
		cp := *v
		return &cp, nil
	}
	return nil, domain.ErrVehicleNotFound
}

func (d *fakeDirectory) MarkSold(_ context.Context, _, id, _ string) error {
	if d.down {
		return domain.ErrVehicleServiceDown
	}
	v, ok := d.vehicles[id]
	if !ok {
		return domain.ErrVehicleNotFound
	}
	if v.Status != vehicleForSale {
		return domain.ErrVehicleAlreadySold
	}
	v.Status = "sold"
	return nil
}

func testService(t *testing.T) (*Service, *memStore, *fakeDirectory) {
	t.Helper()
	log, err := logger.NewLogrusLogger("error", "text", "stdout", "")
	require.NoError(t, err)
	store := newMemStore()
	dir := newFakeDirectory()
	return NewService(store, dir, log), store, dir
}

var (
	buyer  = &auth.Actor{ID: "buyer-1", Email: "buyer@example.com", Role: user.RoleClient}
	rival  = &auth.Actor{ID: "buyer-2", Email: "rival@example.com", Role: user.RoleClient}
	seller = &auth.Actor{ID: "seller-1", Email: "seller@example.com", Role: user.RoleVendor}
	admin  = &auth.Actor{ID: "admin-1", Email: "root@example.com", Role: user.RoleAdmin}
)

func corolla() VehicleInfo {
	return VehicleInfo{ID: "veh-1", Make: "Toyota", Model: "Corolla", Year: 2022, Price: 85000, SellerID: seller.ID}
}

func place(t *testing.T, svc *Service, actor *auth.Actor, price float64) *Order {
	t.Helper()
	o, err := svc.Create(context.Background(), actor, CreateInput{VehicleID: "veh-1", FinalPrice: price})
	require.NoError(t, err)
	return o
}

func TestCreateGuards(t *testing.T) {
	svc, _, dir := testService(t)
	ctx := context.Background()
	dir.add(corolla())

	// unknown vehicle
	_, err := svc.Create(ctx, buyer, CreateInput{VehicleID: "missing", FinalPrice: 85000})
	assert.ErrorIs(t, err, domain.ErrVehicleNotFound)

	// sellers cannot buy their own vehicle
	_, err = svc.Create(ctx, seller, CreateInput{VehicleID: "veh-1", FinalPrice: 85000})
	assert.ErrorIs(t, err, domain.ErrSelfPurchase)

	// offers below the listing price are rejected
	_, err = svc.Create(ctx, buyer, CreateInput{VehicleID: "veh-1", FinalPrice: 80000})
	assert.ErrorIs(t, err, domain.ErrPriceBelowListing)

	// sold vehicles cannot be ordered
	dir.vehicles["veh-1"].Status = "sold"
	_, err = svc.Create(ctx, buyer, CreateInput{VehicleID: "veh-1", FinalPrice: 85000})
	assert.ErrorIs(t, err, domain.ErrVehicleNotForSale)
}

func TestCreateValidation(t *testing.T) {
	svc, _, dir := testService(t)
	ctx := context.Background()
	dir.add(corolla())

	tests := []struct {
		name string
		in   CreateInput
	}{
		{"missing vehicle id", CreateInput{FinalPrice: 85000}},
		{"zero price", CreateInput{VehicleID: "veh-1"}},
		{"unknown payment method", CreateInput{VehicleID: "veh-1", FinalPrice: 85000, PaymentMethod: "barter"}},
		{"too many installments", CreateInput{VehicleID: "veh-1", FinalPrice: 85000, PaymentMethod: PaymentCreditCard, Installments: 13}},
		{"installments without credit card", CreateInput{VehicleID: "veh-1", FinalPrice: 85000, PaymentMethod: PaymentPix, Installments: 3}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := svc.Create(ctx, buyer, test.in)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestCreateInstallments(t *testing.T) {
	svc, _, dir := testService(t)
	dir.add(corolla())

	o, err := svc.Create(context.Background(), buyer, CreateInput{
		VehicleID:     "veh-1",
		FinalPrice:    90000,
		PaymentMethod: PaymentCreditCard,
		Installments:  10,
	})
	require.NoError(t, err)

	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, seller.ID, o.SellerID, "seller is snapshotted from the vehicle")
	assert.InDelta(t, 9000, o.InstallmentAmount, 0.001)
}

func TestApprove(t *testing.T) {
	svc, _, dir := testService(t)
	ctx := context.Background()
	dir.add(corolla())

	o := place(t, svc, buyer, 85000)

	approved, err := svc.Approve(ctx, seller, "token", o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedAt)
	assert.Equal(t, "sold", dir.vehicles["veh-1"].Status)

	// approving twice is an invalid transition, not a second sale
	_, err = svc.Approve(ctx, seller, "token", o.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestApprovePermissions(t *testing.T) {
	svc, _, dir := testService(t)
	ctx := context.Background()
	dir.add(corolla())

	o := place(t, svc, buyer, 85000)

	// the buyer cannot approve their own order
	_, err := svc.Approve(ctx, buyer, "token", o.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// admins can approve on the seller's behalf
	_, err = svc.Approve(ctx, admin, "token", o.ID)
	assert.NoError(t, err)
}

func TestCompetingOrders(t *testing.T) {
	svc, store, dir := testService(t)
	ctx := context.Background()
	dir.add(corolla())

	first := place(t, svc, buyer, 85000)
	second := place(t, svc, rival, 86000)

	_, err := svc.Approve(ctx, seller, "token", first.ID)
	require.NoError(t, err)

	// the second approval loses the race at the vehicle service and the
	// order stays pending
	_, err = svc.Approve(ctx, seller, "token", second.ID)
	assert.ErrorIs(t, err, domain.ErrVehicleAlreadySold)

	got, err := store.FindByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)
	assert.Nil(t, got.ApprovedAt)

	// the loser can still be rejected to clean up
	_, err = svc.Reject(ctx, seller, second.ID, "vehicle sold to another buyer")
	assert.NoError(t, err)
}

func TestApproveVehicleServiceDown(t *testing.T) {
	svc, store, dir := testService(t)
	ctx := context.Background()
	dir.add(corolla())

	o := place(t, svc, buyer, 85000)

	dir.down = true
	_, err := svc.Approve(ctx, seller, "token", o.ID)
	assert.ErrorIs(t, err, domain.ErrVehicleServiceDown)

	got, err := store.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status, "a failed sale leaves the order pending")
}

func TestCancelAfterApproval(t *testing.T) {
	svc, _, dir := testService(t)
	ctx := context.Background()
	dir.add(corolla())

	o := place(t, svc, buyer, 85000)
	_, err := svc.Approve(ctx, seller, "token", o.ID)
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, buyer, o.ID, "")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)

	// the vehicle stays sold; relisting is the vendor's decision
	assert.Equal(t, "sold", dir.vehicles["veh-1"].Status)
}

func TestCompleteLifecycle(t *testing.T) {
	svc, _, dir := testService(t)
	ctx := context.Background()
	dir.add(corolla())

	o := place(t, svc, buyer, 85000)

	// pending orders cannot be completed directly
	_, err := svc.Complete(ctx, seller, o.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = svc.Approve(ctx, seller, "token", o.ID)
	require.NoError(t, err)

	done, err := svc.Complete(ctx, seller, o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)

	// completed is terminal
	_, err = svc.Cancel(ctx, buyer, o.ID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestRejectAndCancelRecordNotes(t *testing.T) {
	svc, store, dir := testService(t)
	ctx := context.Background()
	dir.add(corolla())

	o := place(t, svc, buyer, 85000)

	rejected, err := svc.Reject(ctx, seller, o.ID, "price too low")
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, rejected.Status)
	assert.Equal(t, "price too low", rejected.Notes)

	got, err := store.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "price too low", got.Notes)

	o2 := place(t, svc, rival, 85000)
	cancelled, err := svc.Cancel(ctx, rival, o2.ID, "found a better deal")
	require.NoError(t, err)
	assert.Equal(t, "found a better deal", cancelled.Notes)

	// absent notes leave the creation-time notes alone
	o3, err := svc.Create(ctx, buyer, CreateInput{VehicleID: "veh-1", FinalPrice: 85000, Notes: "deliver on saturday"})
	require.NoError(t, err)
	kept, err := svc.Cancel(ctx, buyer, o3.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "deliver on saturday", kept.Notes)

	// oversized notes are rejected before any state change
	o4 := place(t, svc, buyer, 85000)
	_, err = svc.Reject(ctx, seller, o4.ID, strings.Repeat("x", 501))
	assert.ErrorIs(t, err, domain.ErrValidation)
	got, err = store.FindByID(ctx, o4.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)
}

func TestListScoping(t *testing.T) {
	svc, _, dir := testService(t)
	ctx := context.Background()
	dir.add(corolla())
	dir.add(VehicleInfo{ID: "veh-2", Make: "Honda", Model: "Civic", Year: 2023, Price: 95000, SellerID: seller.ID})

	place(t, svc, buyer, 85000)
	_, err := svc.Create(ctx, rival, CreateInput{VehicleID: "veh-2", FinalPrice: 95000})
	require.NoError(t, err)

	mine, total, err := svc.List(ctx, buyer, ListFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, buyer.ID, mine[0].BuyerID)

	sales, total, err := svc.ListSales(ctx, seller, ListFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, sales, 2)

	_, total, err = svc.List(ctx, admin, ListFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}

func TestGetVisibility(t *testing.T) {
	svc, _, dir := testService(t)
	ctx := context.Background()
	dir.add(corolla())

	o := place(t, svc, buyer, 85000)

	_, err := svc.Get(ctx, buyer, o.ID)
	assert.NoError(t, err)
	_, err = svc.Get(ctx, seller, o.ID)
	assert.NoError(t, err)
	_, err = svc.Get(ctx, rival, o.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = svc.Get(ctx, admin, o.ID)
	assert.NoError(t, err)
}
