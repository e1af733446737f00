package reschedule_booking

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
	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

// Тестовые фейки

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fixedTime struct {
	now time.Time
}

func (f *fixedTime) Now() time.Time { return f.now }

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

// fakeSlotRepo хранит слоты и их счётчики занятости
type fakeSlotRepo struct {
	mu    sync.Mutex
	slots map[int64]*domain.Slot
}

func newFakeSlotRepo(slots ...*domain.Slot) *fakeSlotRepo {
	repo := &fakeSlotRepo{slots: make(map[int64]*domain.Slot)}
	for _, s := range slots {
		clone := *s
		repo.slots[s.ID] = &clone
	}
	return repo
}

func (f *fakeSlotRepo) GetByProfileDateTime(ctx context.Context, profileID int64, date time.Time, timeSlot string) (*domain.Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, s := range f.slots {
		if s.ProfileID == profileID && s.Date.Equal(date) && s.TimeSlot.String() == timeSlot {
			clone := *s
			return &clone, nil
		}
	}
	return nil, slotStorage.ErrSlotNotFound
}

func (f *fakeSlotRepo) Reserve(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.slots[id]
	if !ok {
		return slotStorage.ErrSlotNotFound
	}
	if !s.IsAvailable || s.BookedCount >= s.MaxCapacity {
		return slotStorage.ErrSlotUnavailable
	}
	s.BookedCount++
	return nil
}

func (f *fakeSlotRepo) Release(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.slots[id]
	if !ok {
		return slotStorage.ErrSlotNotFound
	}
	if s.BookedCount > 0 {
		s.BookedCount--
	}
	return nil
}

// fakeBookingRepo одно бронирование, перенос меняет слот и денормализованные поля
type fakeBookingRepo struct {
	mu      sync.Mutex
	booking *domain.Booking
}

func (f *fakeBookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.booking == nil || f.booking.ID != id {
		return nil, bookingStorage.ErrBookingNotFound
	}
	clone := *f.booking
	return &clone, nil
}

func (f *fakeBookingRepo) Reschedule(ctx context.Context, id int64, slot *domain.Slot) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.booking == nil || f.booking.ID != id {
		return bookingStorage.ErrBookingNotFound
	}
	f.booking.SlotID = slot.ID
	f.booking.BookingDate = slot.Date
	f.booking.TimeSlot = slot.TimeSlot
	return nil
}

// Хелперы

const (
	testOwnerID   int64 = 100
	testClientID  int64 = 200
	testProfileID int64 = 1
	oldSlotID     int64 = 10
	newSlotID     int64 = 11
)

func slotAt(id int64, date string, window string, booked, capacity int) *domain.Slot {
	d, _ := time.Parse(domain.DateFormat, date)
	tr, _ := types.NewTimeRangeFromString(window)
	return &domain.Slot{
		ID:          id,
		ProfileID:   testProfileID,
		Date:        d,
		TimeSlot:    tr,
		MaxCapacity: capacity,
		BookedCount: booked,
		IsAvailable: true,
	}
}

func testBooking(status domain.BookingStatus) *domain.Booking {
	tr, _ := types.NewTimeRangeFromString("10:00-11:00")
	return &domain.Booking{
		ID:          1,
		BookingRef:  "A3F09B",
		UserID:      testClientID,
		ProfileID:   testProfileID,
		SlotID:      oldSlotID,
		BookingDate: time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		TimeSlot:    tr,
		Status:      status,
	}
}

func newTestUseCase(bookings *fakeBookingRepo, slots *fakeSlotRepo, now time.Time) *UseCase {
	uc := NewUseCase(
		bookings,
		slots,
		&fakeProfileClient{profile: &profileservice.Profile{ID: testProfileID, OwnerID: testOwnerID, IsActive: true}},
		fakeTxManager{},
		nopLogger{},
	)
	uc.timeProvider = &fixedTime{now: now}
	return uc
}

func baseRequest(t *testing.T, date, window string) *Request {
	t.Helper()
	d, err := time.Parse(domain.DateFormat, date)
	require.NoError(t, err)
	tr, err := types.NewTimeRangeFromString(window)
	require.NoError(t, err)
	return &Request{
		UserID:      testClientID,
		BookingID:   1,
		NewDate:     d,
		NewTimeSlot: tr,
	}
}

// Тесты

func TestExecute(t *testing.T) {
	slots := newFakeSlotRepo(
		slotAt(oldSlotID, "2026-09-15", "10:00-11:00", 1, 2),
		slotAt(newSlotID, "2026-09-16", "14:00-15:00", 0, 2),
	)
	bookings := &fakeBookingRepo{booking: testBooking(domain.StatusConfirmed)}
	uc := newTestUseCase(bookings, slots, time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))

	resp, err := uc.Execute(context.Background(), baseRequest(t, "2026-09-16", "14:00-15:00"))

	require.NoError(t, err)
	assert.Equal(t, newSlotID, resp.SlotID)
	assert.Equal(t, "14:00-15:00", resp.TimeSlot.String())
	// Место перенесено: старый слот освобождён, новый занят
	assert.Equal(t, 0, slots.slots[oldSlotID].BookedCount)
	assert.Equal(t, 1, slots.slots[newSlotID].BookedCount)
	assert.Equal(t, newSlotID, bookings.booking.SlotID)
}

func TestExecute_TargetSlotFull(t *testing.T) {
	slots := newFakeSlotRepo(
		slotAt(oldSlotID, "2026-09-15", "10:00-11:00", 1, 2),
		slotAt(newSlotID, "2026-09-16", "14:00-15:00", 2, 2),
	)
	bookings := &fakeBookingRepo{booking: testBooking(domain.StatusConfirmed)}
	uc := newTestUseCase(bookings, slots, time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))

	_, err := uc.Execute(context.Background(), baseRequest(t, "2026-09-16", "14:00-15:00"))

	assert.ErrorIs(t, err, ErrSlotFull)
	// Бронирование осталось на прежнем слоте
	assert.Equal(t, oldSlotID, bookings.booking.SlotID)
	assert.Equal(t, 1, slots.slots[oldSlotID].BookedCount)
}

func TestExecute_SameSlot(t *testing.T) {
	slots := newFakeSlotRepo(slotAt(oldSlotID, "2026-09-15", "10:00-11:00", 1, 2))
	bookings := &fakeBookingRepo{booking: testBooking(domain.StatusConfirmed)}
	uc := newTestUseCase(bookings, slots, time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))

	_, err := uc.Execute(context.Background(), baseRequest(t, "2026-09-15", "10:00-11:00"))

	assert.ErrorIs(t, err, ErrSameSlot)
}

func TestExecute_TargetSlotNotFound(t *testing.T) {
	slots := newFakeSlotRepo(slotAt(oldSlotID, "2026-09-15", "10:00-11:00", 1, 2))
	bookings := &fakeBookingRepo{booking: testBooking(domain.StatusPending)}
	uc := newTestUseCase(bookings, slots, time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))

	_, err := uc.Execute(context.Background(), baseRequest(t, "2026-09-16", "14:00-15:00"))

	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestExecute_TargetSlotDisabled(t *testing.T) {
	target := slotAt(newSlotID, "2026-09-16", "14:00-15:00", 0, 2)
	target.IsAvailable = false
	slots := newFakeSlotRepo(slotAt(oldSlotID, "2026-09-15", "10:00-11:00", 1, 2), target)
	bookings := &fakeBookingRepo{booking: testBooking(domain.StatusConfirmed)}
	uc := newTestUseCase(bookings, slots, time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))

	_, err := uc.Execute(context.Background(), baseRequest(t, "2026-09-16", "14:00-15:00"))

	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestExecute_PastTargetSlot(t *testing.T) {
	slots := newFakeSlotRepo(
		slotAt(oldSlotID, "2026-09-15", "10:00-11:00", 1, 2),
		slotAt(newSlotID, "2026-09-16", "14:00-15:00", 0, 2),
	)
	bookings := &fakeBookingRepo{booking: testBooking(domain.StatusConfirmed)}
	// Серверное время позже начала целевого слота
	uc := newTestUseCase(bookings, slots, time.Date(2026, 9, 16, 15, 0, 0, 0, time.UTC))

	_, err := uc.Execute(context.Background(), baseRequest(t, "2026-09-16", "14:00-15:00"))

	assert.ErrorIs(t, err, ErrPastSlot)
}

func TestExecute_CancelledBooking(t *testing.T) {
	slots := newFakeSlotRepo(slotAt(newSlotID, "2026-09-16", "14:00-15:00", 0, 2))
	bookings := &fakeBookingRepo{booking: testBooking(domain.StatusCancelled)}
	uc := newTestUseCase(bookings, slots, time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))

	_, err := uc.Execute(context.Background(), baseRequest(t, "2026-09-16", "14:00-15:00"))

	assert.ErrorIs(t, err, ErrCannotReschedule)
}

func TestExecute_BookingNotFound(t *testing.T) {
	uc := newTestUseCase(&fakeBookingRepo{}, newFakeSlotRepo(), time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))

	_, err := uc.Execute(context.Background(), baseRequest(t, "2026-09-16", "14:00-15:00"))

	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestExecute_ForeignBooking(t *testing.T) {
	slots := newFakeSlotRepo(
		slotAt(oldSlotID, "2026-09-15", "10:00-11:00", 1, 2),
		slotAt(newSlotID, "2026-09-16", "14:00-15:00", 0, 2),
	)
	bookings := &fakeBookingRepo{booking: testBooking(domain.StatusConfirmed)}
	uc := newTestUseCase(bookings, slots, time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))

	req := baseRequest(t, "2026-09-16", "14:00-15:00")
	req.UserID = testClientID + 1 // не клиент и не владелец профиля

	_, err := uc.Execute(context.Background(), req)

	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestExecute_ByProfileOwner(t *testing.T) {
	slots := newFakeSlotRepo(
		slotAt(oldSlotID, "2026-09-15", "10:00-11:00", 1, 2),
		slotAt(newSlotID, "2026-09-16", "14:00-15:00", 0, 2),
	)
	bookings := &fakeBookingRepo{booking: testBooking(domain.StatusConfirmed)}
	uc := newTestUseCase(bookings, slots, time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))

	req := baseRequest(t, "2026-09-16", "14:00-15:00")
	req.UserID = testOwnerID

	resp, err := uc.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, newSlotID, resp.SlotID)
}
