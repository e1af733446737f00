package bookings

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	bookingStorage "github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/booking"
	slotStorage "github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/slot"
	"github.com/m04kA/SMC-AvailabilityService/internal/integrations/profileservice"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/bookings/models"
	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

// Тестовые фейки

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeTxManager struct{}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeProfileClient struct {
	profile *profileservice.Profile
	err     error
}

func (f *fakeProfileClient) GetProfile(ctx context.Context, profileID int64) (*profileservice.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}

// fakeBookingRepo in-memory хранилище бронирований
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[int64]*domain.Booking
}

func newFakeBookingRepo(bookings ...*domain.Booking) *fakeBookingRepo {
	repo := &fakeBookingRepo{bookings: make(map[int64]*domain.Booking)}
	for _, b := range bookings {
		clone := *b
		repo.bookings[b.ID] = &clone
	}
	return repo
}

func (f *fakeBookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, ok := f.bookings[id]
	if !ok {
		return nil, bookingStorage.ErrBookingNotFound
	}
	clone := *b
	return &clone, nil
}

func (f *fakeBookingRepo) GetByRef(ctx context.Context, ref string) (*domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, b := range f.bookings {
		if b.BookingRef == ref {
			clone := *b
			return &clone, nil
		}
	}
	return nil, bookingStorage.ErrBookingNotFound
}

func (f *fakeBookingRepo) GetByUserID(ctx context.Context, userID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []*domain.Booking
	for _, b := range f.bookings {
		if b.UserID != userID {
			continue
		}
		if status != nil && b.Status != *status {
			continue
		}
		clone := *b
		result = append(result, &clone)
	}
	return result, nil
}

func (f *fakeBookingRepo) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, ok := f.bookings[id]
	if !ok {
		return bookingStorage.ErrBookingNotFound
	}
	b.Status = status
	return nil
}

func (f *fakeBookingRepo) Cancel(ctx context.Context, id int64, status domain.BookingStatus, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, ok := f.bookings[id]
	if !ok {
		return bookingStorage.ErrBookingNotFound
	}
	now := time.Now()
	b.Status = status
	b.CancellationReason = &reason
	b.CancelledAt = &now
	return nil
}

// fakeSlotCounter считает Reserve/Release и моделирует заполненный слот
type fakeSlotCounter struct {
	mu       sync.Mutex
	reserved int
	released int
	full     bool
}

func (f *fakeSlotCounter) Reserve(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.full {
		return slotStorage.ErrSlotUnavailable
	}
	f.reserved++
	return nil
}

func (f *fakeSlotCounter) Release(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.released++
	return nil
}

// Хелперы

const (
	testOwnerID   int64 = 100
	testClientID  int64 = 200
	testProfileID int64 = 1
	testSlotID    int64 = 10
)

func newTestService(repo *fakeBookingRepo, slots *fakeSlotCounter) *Service {
	return NewService(
		repo,
		slots,
		&fakeProfileClient{profile: &profileservice.Profile{ID: testProfileID, OwnerID: testOwnerID, IsActive: true}},
		fakeTxManager{},
		nopLogger{},
	)
}

func testBooking(id int64, status domain.BookingStatus) *domain.Booking {
	tr, _ := types.NewTimeRangeFromString("10:00-11:00")
	return &domain.Booking{
		ID:          id,
		BookingRef:  "A3F09B",
		UserID:      testClientID,
		ProfileID:   testProfileID,
		SlotID:      testSlotID,
		BookingDate: time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		TimeSlot:    tr,
		Status:      status,
		CreatedAt:   time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
	}
}

// Тесты

func TestGetByID_OwnBooking(t *testing.T) {
	repo := newFakeBookingRepo(testBooking(1, domain.StatusConfirmed))
	svc := newTestService(repo, &fakeSlotCounter{})

	resp, err := svc.GetByID(context.Background(), 1, testClientID)

	require.NoError(t, err)
	assert.Equal(t, "A3F09B", resp.BookingRef)
	assert.Equal(t, "confirmed", resp.Status)
	assert.Equal(t, "2026-09-15", resp.BookingDate)
}

func TestGetByID_ProfileOwnerAccess(t *testing.T) {
	repo := newFakeBookingRepo(testBooking(1, domain.StatusPending))
	svc := newTestService(repo, &fakeSlotCounter{})

	resp, err := svc.GetByID(context.Background(), 1, testOwnerID)

	require.NoError(t, err)
	assert.Equal(t, testClientID, resp.UserID)
}

func TestGetByID_AccessDenied(t *testing.T) {
	repo := newFakeBookingRepo(testBooking(1, domain.StatusPending))
	svc := newTestService(repo, &fakeSlotCounter{})

	_, err := svc.GetByID(context.Background(), 1, testClientID+1)

	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestGetByRef(t *testing.T) {
	repo := newFakeBookingRepo(testBooking(1, domain.StatusConfirmed))
	svc := newTestService(repo, &fakeSlotCounter{})

	resp, err := svc.GetByRef(context.Background(), "A3F09B", testClientID)

	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.ID)
}

func TestGetByRef_NotFound(t *testing.T) {
	svc := newTestService(newFakeBookingRepo(), &fakeSlotCounter{})

	_, err := svc.GetByRef(context.Background(), "FFFFFF", testClientID)

	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestGetUserBookings_StatusFilter(t *testing.T) {
	confirmed := testBooking(1, domain.StatusConfirmed)
	cancelled := testBooking(2, domain.StatusCancelled)
	repo := newFakeBookingRepo(confirmed, cancelled)
	svc := newTestService(repo, &fakeSlotCounter{})

	status := "confirmed"
	resp, err := svc.GetUserBookings(context.Background(), &models.GetUserBookingsRequest{
		UserID: testClientID,
		Status: &status,
	})

	require.NoError(t, err)
	require.Len(t, resp.Bookings, 1)
	assert.Equal(t, int64(1), resp.Bookings[0].ID)
}

func TestGetUserBookings_InvalidStatus(t *testing.T) {
	svc := newTestService(newFakeBookingRepo(), &fakeSlotCounter{})

	status := "archived"
	_, err := svc.GetUserBookings(context.Background(), &models.GetUserBookingsRequest{
		UserID: testClientID,
		Status: &status,
	})

	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCancel_ReleasesSlot(t *testing.T) {
	repo := newFakeBookingRepo(testBooking(1, domain.StatusConfirmed))
	slots := &fakeSlotCounter{}
	svc := newTestService(repo, slots)

	err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{
		UserID:             testClientID,
		CancellationReason: "клиент заболел",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, slots.released)

	cancelled, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancellationReason)
	assert.Equal(t, "клиент заболел", *cancelled.CancellationReason)
}

func TestCancel_AlreadyCancelled(t *testing.T) {
	repo := newFakeBookingRepo(testBooking(1, domain.StatusCancelled))
	slots := &fakeSlotCounter{}
	svc := newTestService(repo, slots)

	err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{UserID: testClientID})

	assert.ErrorIs(t, err, ErrCannotCancel)
	assert.Equal(t, 0, slots.released)
}

func TestCancel_ByProfileOwner(t *testing.T) {
	repo := newFakeBookingRepo(testBooking(1, domain.StatusPending))
	slots := &fakeSlotCounter{}
	svc := newTestService(repo, slots)

	err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{UserID: testOwnerID})

	require.NoError(t, err)
	assert.Equal(t, 1, slots.released)
}

func TestUpdateStatus_ActiveToInactiveReleasesSlot(t *testing.T) {
	repo := newFakeBookingRepo(testBooking(1, domain.StatusConfirmed))
	slots := &fakeSlotCounter{}
	svc := newTestService(repo, slots)

	resp, err := svc.UpdateStatus(context.Background(), 1, &models.UpdateStatusRequest{
		UserID: testOwnerID,
		Status: "no_show",
	})

	require.NoError(t, err)
	assert.Equal(t, "no_show", resp.Status)
	assert.Equal(t, 1, slots.released)
	assert.Equal(t, 0, slots.reserved)
}

func TestUpdateStatus_InactiveToActiveReservesSlot(t *testing.T) {
	repo := newFakeBookingRepo(testBooking(1, domain.StatusRejected))
	slots := &fakeSlotCounter{}
	svc := newTestService(repo, slots)

	resp, err := svc.UpdateStatus(context.Background(), 1, &models.UpdateStatusRequest{
		UserID: testOwnerID,
		Status: "confirmed",
	})

	require.NoError(t, err)
	assert.Equal(t, "confirmed", resp.Status)
	assert.Equal(t, 1, slots.reserved)
}

func TestUpdateStatus_SlotFull(t *testing.T) {
	repo := newFakeBookingRepo(testBooking(1, domain.StatusRejected))
	slots := &fakeSlotCounter{full: true}
	svc := newTestService(repo, slots)

	_, err := svc.UpdateStatus(context.Background(), 1, &models.UpdateStatusRequest{
		UserID: testOwnerID,
		Status: "confirmed",
	})

	assert.ErrorIs(t, err, ErrSlotFull)

	// Статус не изменился
	unchanged, getErr := repo.GetByID(context.Background(), 1)
	require.NoError(t, getErr)
	assert.Equal(t, domain.StatusRejected, unchanged.Status)
}

func TestUpdateStatus_CancelledRejected(t *testing.T) {
	repo := newFakeBookingRepo(testBooking(1, domain.StatusConfirmed))
	svc := newTestService(repo, &fakeSlotCounter{})

	_, err := svc.UpdateStatus(context.Background(), 1, &models.UpdateStatusRequest{
		UserID: testOwnerID,
		Status: "cancelled",
	})

	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUpdateStatus_NotOwner(t *testing.T) {
	repo := newFakeBookingRepo(testBooking(1, domain.StatusPending))
	svc := newTestService(repo, &fakeSlotCounter{})

	// Клиент бронирования не может менять статус, это право владельца профиля
	_, err := svc.UpdateStatus(context.Background(), 1, &models.UpdateStatusRequest{
		UserID: testClientID,
		Status: "confirmed",
	})

	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestUpdateStatus_ActiveToActiveKeepsCounters(t *testing.T) {
	repo := newFakeBookingRepo(testBooking(1, domain.StatusPending))
	slots := &fakeSlotCounter{}
	svc := newTestService(repo, slots)

	resp, err := svc.UpdateStatus(context.Background(), 1, &models.UpdateStatusRequest{
		UserID: testOwnerID,
		Status: "confirmed",
	})

	require.NoError(t, err)
	assert.Equal(t, "confirmed", resp.Status)
	assert.Equal(t, 0, slots.reserved)
	assert.Equal(t, 0, slots.released)
}
