package slots

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	slotRepo "github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/slot"
	"github.com/m04kA/SMC-AvailabilityService/internal/integrations/profileservice"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/slots/models"
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

// fakeProfileClient отвечает фиксированным профилем или ошибкой
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

// fakeSlotRepo потокобезопасное in-memory хранилище слотов
type fakeSlotRepo struct {
	mu     sync.Mutex
	nextID int64
	slots  map[int64]*domain.Slot
}

func newFakeSlotRepo() *fakeSlotRepo {
	return &fakeSlotRepo{nextID: 1, slots: make(map[int64]*domain.Slot)}
}

func (f *fakeSlotRepo) Create(ctx context.Context, slot *domain.Slot) (*domain.Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.slots {
		if existing.ProfileID == slot.ProfileID &&
			existing.Date.Equal(slot.Date) &&
			existing.TimeSlot == slot.TimeSlot {
			return nil, slotRepo.ErrSlotAlreadyExists
		}
	}

	clone := *slot
	clone.ID = f.nextID
	f.nextID++
	f.slots[clone.ID] = &clone

	result := clone
	return &result, nil
}

func (f *fakeSlotRepo) GetByID(ctx context.Context, id int64) (*domain.Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	slot, ok := f.slots[id]
	if !ok {
		return nil, slotRepo.ErrSlotNotFound
	}
	clone := *slot
	return &clone, nil
}

func (f *fakeSlotRepo) GetByDate(ctx context.Context, profileID int64, date time.Time) ([]*domain.Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []*domain.Slot
	for _, slot := range f.slots {
		if slot.ProfileID == profileID && slot.Date.Equal(date) {
			clone := *slot
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (f *fakeSlotRepo) GetByDateRange(ctx context.Context, profileID int64, startDate, endDate time.Time) ([]*domain.Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []*domain.Slot
	for _, slot := range f.slots {
		if slot.ProfileID == profileID && !slot.Date.Before(startDate) && !slot.Date.After(endDate) {
			clone := *slot
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (f *fakeSlotRepo) UpdateCapacity(ctx context.Context, id int64, newCapacity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	slot, ok := f.slots[id]
	if !ok {
		return slotRepo.ErrSlotNotFound
	}
	if newCapacity < slot.BookedCount {
		return slotRepo.ErrCapacityBelowBooked
	}
	slot.MaxCapacity = newCapacity
	return nil
}

func (f *fakeSlotRepo) SetAvailability(ctx context.Context, id int64, isAvailable bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	slot, ok := f.slots[id]
	if !ok {
		return slotRepo.ErrSlotNotFound
	}
	slot.IsAvailable = isAvailable
	return nil
}

func (f *fakeSlotRepo) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	slot, ok := f.slots[id]
	if !ok {
		return slotRepo.ErrSlotNotFound
	}
	if slot.BookedCount > 0 {
		return slotRepo.ErrSlotHasBookings
	}
	delete(f.slots, id)
	return nil
}

// Хелперы

const (
	testOwnerID   int64 = 100
	testProfileID int64 = 1
)

func newTestService(repo *fakeSlotRepo, now time.Time) *Service {
	svc := NewService(
		repo,
		&fakeProfileClient{profile: &profileservice.Profile{ID: testProfileID, OwnerID: testOwnerID, IsActive: true}},
		fakeTxManager{},
		10,
		31,
		nopLogger{},
	)
	svc.timeProvider = &fixedTime{now: now}
	return svc
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(domain.DateFormat, s)
	require.NoError(t, err)
	return d
}

func slotInput(start, end string) models.SlotInput {
	return models.SlotInput{
		StartTime: types.TimeString(start),
		EndTime:   types.TimeString(end),
	}
}

// Тесты

func TestCreateSlots(t *testing.T) {
	repo := newFakeSlotRepo()
	svc := newTestService(repo, time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))

	resp, err := svc.CreateSlots(context.Background(), &models.CreateSlotsRequest{
		UserID:      testOwnerID,
		ProfileID:   testProfileID,
		Date:        mustDate(t, "2026-09-15"),
		Slots:       []models.SlotInput{slotInput("10:00", "11:00"), slotInput("11:00", "12:00")},
		MaxCapacity: 2,
	})

	require.NoError(t, err)
	require.Len(t, resp.Slots, 2)
	assert.Equal(t, "2026-09-15", resp.Date)
	assert.Equal(t, "10:00-11:00", resp.Slots[0].TimeSlot)
	assert.Equal(t, 2, resp.Slots[0].MaxCapacity)
	assert.Equal(t, 2, resp.Slots[0].FreeSpots)
	assert.True(t, resp.Slots[0].IsAvailable)
}

func TestCreateSlots_Duplicate(t *testing.T) {
	repo := newFakeSlotRepo()
	svc := newTestService(repo, time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))

	req := &models.CreateSlotsRequest{
		UserID:      testOwnerID,
		ProfileID:   testProfileID,
		Date:        mustDate(t, "2026-09-15"),
		Slots:       []models.SlotInput{slotInput("10:00", "11:00")},
		MaxCapacity: 1,
	}

	_, err := svc.CreateSlots(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.CreateSlots(context.Background(), req)
	assert.ErrorIs(t, err, ErrSlotAlreadyExists)
}

func TestCreateSlots_PastDate(t *testing.T) {
	repo := newFakeSlotRepo()
	// Серверное время 15 сентября 12:00: утренний слот того же дня уже в прошлом
	svc := newTestService(repo, time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC))

	_, err := svc.CreateSlots(context.Background(), &models.CreateSlotsRequest{
		UserID:      testOwnerID,
		ProfileID:   testProfileID,
		Date:        mustDate(t, "2026-09-15"),
		Slots:       []models.SlotInput{slotInput("10:00", "11:00")},
		MaxCapacity: 1,
	})

	assert.ErrorIs(t, err, ErrPastDate)
	assert.Empty(t, repo.slots)
}

func TestCreateSlots_CapacityOutOfRange(t *testing.T) {
	svc := newTestService(newFakeSlotRepo(), time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))

	_, err := svc.CreateSlots(context.Background(), &models.CreateSlotsRequest{
		UserID:      testOwnerID,
		ProfileID:   testProfileID,
		Date:        mustDate(t, "2026-09-15"),
		Slots:       []models.SlotInput{slotInput("10:00", "11:00")},
		MaxCapacity: 11, // выше лимита 10
	})

	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateSlots_NotOwner(t *testing.T) {
	repo := newFakeSlotRepo()
	svc := newTestService(repo, time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))

	_, err := svc.CreateSlots(context.Background(), &models.CreateSlotsRequest{
		UserID:      testOwnerID + 1,
		ProfileID:   testProfileID,
		Date:        mustDate(t, "2026-09-15"),
		Slots:       []models.SlotInput{slotInput("10:00", "11:00")},
		MaxCapacity: 1,
	})

	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestCreateSlots_ProfileNotFound(t *testing.T) {
	svc := newTestService(newFakeSlotRepo(), time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))
	svc.profileClient = &fakeProfileClient{err: profileservice.ErrProfileNotFound}

	_, err := svc.CreateSlots(context.Background(), &models.CreateSlotsRequest{
		UserID:      testOwnerID,
		ProfileID:   testProfileID,
		Date:        mustDate(t, "2026-09-15"),
		Slots:       []models.SlotInput{slotInput("10:00", "11:00")},
		MaxCapacity: 1,
	})

	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestUpdateCapacity(t *testing.T) {
	repo := newFakeSlotRepo()
	svc := newTestService(repo, time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))

	created, err := repo.Create(context.Background(), &domain.Slot{
		ProfileID:   testProfileID,
		Date:        mustDate(t, "2026-09-15"),
		TimeSlot:    types.TimeRange("10:00-11:00"),
		MaxCapacity: 2,
		BookedCount: 1,
		IsAvailable: true,
	})
	require.NoError(t, err)

	resp, err := svc.UpdateCapacity(context.Background(), created.ID, &models.UpdateCapacityRequest{
		UserID:      testOwnerID,
		MaxCapacity: 5,
	})

	require.NoError(t, err)
	assert.Equal(t, 5, resp.MaxCapacity)
	assert.Equal(t, 4, resp.FreeSpots)
}

func TestUpdateCapacity_BelowBooked(t *testing.T) {
	repo := newFakeSlotRepo()
	svc := newTestService(repo, time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))

	created, err := repo.Create(context.Background(), &domain.Slot{
		ProfileID:   testProfileID,
		Date:        mustDate(t, "2026-09-15"),
		TimeSlot:    types.TimeRange("10:00-11:00"),
		MaxCapacity: 3,
		BookedCount: 2,
		IsAvailable: true,
	})
	require.NoError(t, err)

	_, err = svc.UpdateCapacity(context.Background(), created.ID, &models.UpdateCapacityRequest{
		UserID:      testOwnerID,
		MaxCapacity: 1,
	})

	assert.ErrorIs(t, err, ErrCapacityBelowBooked)
}

func TestToggleAvailability(t *testing.T) {
	repo := newFakeSlotRepo()
	svc := newTestService(repo, time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))

	created, err := repo.Create(context.Background(), &domain.Slot{
		ProfileID:   testProfileID,
		Date:        mustDate(t, "2026-09-15"),
		TimeSlot:    types.TimeRange("10:00-11:00"),
		MaxCapacity: 1,
		BookedCount: 1,
		IsAvailable: true,
	})
	require.NoError(t, err)

	resp, err := svc.ToggleAvailability(context.Background(), created.ID, &models.ToggleAvailabilityRequest{
		UserID:      testOwnerID,
		IsAvailable: false,
	})

	require.NoError(t, err)
	assert.False(t, resp.IsAvailable)
	// Выключение слота не трогает бронирования
	assert.Equal(t, 1, resp.BookedCount)
}

func TestDelete_WithBookings(t *testing.T) {
	repo := newFakeSlotRepo()
	svc := newTestService(repo, time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))

	created, err := repo.Create(context.Background(), &domain.Slot{
		ProfileID:   testProfileID,
		Date:        mustDate(t, "2026-09-15"),
		TimeSlot:    types.TimeRange("10:00-11:00"),
		MaxCapacity: 2,
		BookedCount: 1,
		IsAvailable: true,
	})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), created.ID, testOwnerID)
	assert.ErrorIs(t, err, ErrSlotHasBookings)

	// Слот остался на месте
	_, err = repo.GetByID(context.Background(), created.ID)
	assert.NoError(t, err)
}

func TestDelete_NotFound(t *testing.T) {
	svc := newTestService(newFakeSlotRepo(), time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))

	err := svc.Delete(context.Background(), 999, testOwnerID)
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestGetSlotsForDate_Public(t *testing.T) {
	repo := newFakeSlotRepo()
	svc := newTestService(repo, time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))
	// Публичное чтение не обращается к ProfileService
	svc.profileClient = &fakeProfileClient{err: profileservice.ErrInternal}

	_, err := repo.Create(context.Background(), &domain.Slot{
		ProfileID:   testProfileID,
		Date:        mustDate(t, "2026-09-15"),
		TimeSlot:    types.TimeRange("10:00-11:00"),
		MaxCapacity: 1,
		IsAvailable: true,
	})
	require.NoError(t, err)

	resp, err := svc.GetSlotsForDate(context.Background(), testProfileID, mustDate(t, "2026-09-15"))
	require.NoError(t, err)
	assert.Len(t, resp.Slots, 1)

	empty, err := svc.GetSlotsForDate(context.Background(), testProfileID, mustDate(t, "2026-09-16"))
	require.NoError(t, err)
	assert.Empty(t, empty.Slots)
}

func TestGetAvailabilityRange(t *testing.T) {
	repo := newFakeSlotRepo()
	svc := newTestService(repo, time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))

	for _, s := range []struct {
		date     string
		timeSlot string
		capacity int
		booked   int
	}{
		{"2026-09-15", "10:00-11:00", 2, 1},
		{"2026-09-15", "11:00-12:00", 1, 0},
		{"2026-09-16", "10:00-11:00", 1, 1},
	} {
		_, err := repo.Create(context.Background(), &domain.Slot{
			ProfileID:   testProfileID,
			Date:        mustDate(t, s.date),
			TimeSlot:    types.TimeRange(s.timeSlot),
			MaxCapacity: s.capacity,
			BookedCount: s.booked,
			IsAvailable: true,
		})
		require.NoError(t, err)
	}

	resp, err := svc.GetAvailabilityRange(context.Background(), testProfileID,
		mustDate(t, "2026-09-15"), mustDate(t, "2026-09-16"))

	require.NoError(t, err)
	require.Len(t, resp.Days, 2)
	assert.Equal(t, "2026-09-15", resp.Days[0].Date)
	assert.Equal(t, 2, resp.Days[0].TotalSlots)
	assert.Equal(t, 2, resp.Days[0].AvailableSlots)
	assert.Equal(t, 1, resp.Days[0].BookedSlots)
	assert.Equal(t, "2026-09-16", resp.Days[1].Date)
	assert.Equal(t, 0, resp.Days[1].AvailableSlots)
}

func TestGetAvailabilityRange_TooLarge(t *testing.T) {
	svc := newTestService(newFakeSlotRepo(), time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))

	// Лимит 31 день
	_, err := svc.GetAvailabilityRange(context.Background(), testProfileID,
		mustDate(t, "2026-09-01"), mustDate(t, "2026-10-02"))

	assert.ErrorIs(t, err, ErrRangeTooLarge)
}

func TestGetAvailabilityRange_InvertedRange(t *testing.T) {
	svc := newTestService(newFakeSlotRepo(), time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))

	_, err := svc.GetAvailabilityRange(context.Background(), testProfileID,
		mustDate(t, "2026-09-16"), mustDate(t, "2026-09-15"))

	assert.ErrorIs(t, err, ErrInvalidInput)
}
