package bulk_delete_slots

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/internal/integrations/profileservice"
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

// fakeSlotRepo хранит количество свободных слотов по датам
type fakeSlotRepo struct {
	mu          sync.Mutex
	unbooked    map[string]int64 // date -> свободные слоты
	bookedDates map[string]bool
	failures    map[string]error
}

func newFakeSlotRepo() *fakeSlotRepo {
	return &fakeSlotRepo{
		unbooked:    make(map[string]int64),
		bookedDates: make(map[string]bool),
		failures:    make(map[string]error),
	}
}

func (f *fakeSlotRepo) HasBookedSlots(ctx context.Context, profileID int64, date time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := date.Format(domain.DateFormat)
	if err, ok := f.failures[key]; ok {
		return false, err
	}
	return f.bookedDates[key], nil
}

func (f *fakeSlotRepo) DeleteUnbookedByDate(ctx context.Context, profileID int64, date time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := date.Format(domain.DateFormat)
	deleted := f.unbooked[key]
	delete(f.unbooked, key)
	return deleted, nil
}

// Хелперы

const (
	testOwnerID   int64 = 100
	testProfileID int64 = 1
)

func newTestUseCase(repo *fakeSlotRepo) *UseCase {
	return NewUseCase(
		repo,
		&fakeProfileClient{profile: &profileservice.Profile{ID: testProfileID, OwnerID: testOwnerID, IsActive: true}},
		fakeTxManager{},
		nopLogger{},
	)
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(domain.DateFormat, s)
	require.NoError(t, err)
	return d
}

func baseRequest(t *testing.T, dates ...string) *Request {
	t.Helper()
	req := &Request{UserID: testOwnerID, ProfileID: testProfileID}
	for _, d := range dates {
		req.Dates = append(req.Dates, mustDate(t, d))
	}
	return req
}

// Тесты

func TestExecute(t *testing.T) {
	repo := newFakeSlotRepo()
	repo.unbooked["2026-09-14"] = 3
	repo.unbooked["2026-09-15"] = 5
	uc := newTestUseCase(repo)

	resp, err := uc.Execute(context.Background(), baseRequest(t, "2026-09-14", "2026-09-15"))

	require.NoError(t, err)
	assert.Equal(t, 2, resp.SuccessCount)
	assert.Equal(t, 0, resp.FailedCount)
	assert.Equal(t, int64(8), resp.DeletedSlots)
}

func TestExecute_ProtectedDate(t *testing.T) {
	repo := newFakeSlotRepo()
	repo.unbooked["2026-09-14"] = 3
	repo.unbooked["2026-09-15"] = 4
	repo.bookedDates["2026-09-15"] = true
	uc := newTestUseCase(repo)

	resp, err := uc.Execute(context.Background(), baseRequest(t, "2026-09-14", "2026-09-15"))

	require.NoError(t, err)
	assert.Equal(t, 1, resp.SuccessCount)
	assert.Equal(t, []string{"2026-09-15"}, resp.ProtectedDates)
	assert.Equal(t, int64(3), resp.DeletedSlots)
	// Свободные слоты защищённой даты остались на месте
	assert.Equal(t, int64(4), repo.unbooked["2026-09-15"])
}

func TestExecute_FailedDateDoesNotStopOthers(t *testing.T) {
	repo := newFakeSlotRepo()
	repo.unbooked["2026-09-14"] = 2
	repo.unbooked["2026-09-16"] = 2
	repo.failures["2026-09-15"] = errors.New("storage: connection reset")
	uc := newTestUseCase(repo)

	resp, err := uc.Execute(context.Background(), baseRequest(t, "2026-09-14", "2026-09-15", "2026-09-16"))

	require.NoError(t, err)
	assert.Equal(t, 2, resp.SuccessCount)
	assert.Equal(t, 1, resp.FailedCount)
	assert.Equal(t, []string{"2026-09-15"}, resp.FailedDates)
	assert.Equal(t, int64(4), resp.DeletedSlots)
}

func TestExecute_DeduplicatesDates(t *testing.T) {
	repo := newFakeSlotRepo()
	repo.unbooked["2026-09-14"] = 3
	uc := newTestUseCase(repo)

	resp, err := uc.Execute(context.Background(), baseRequest(t, "2026-09-14", "2026-09-14"))

	require.NoError(t, err)
	assert.Equal(t, 1, resp.SuccessCount)
	assert.Equal(t, int64(3), resp.DeletedSlots)
}

func TestExecute_EmptyDateIsSuccess(t *testing.T) {
	repo := newFakeSlotRepo()
	uc := newTestUseCase(repo)

	// На дате нет слотов: операция успешна, удалено ноль
	resp, err := uc.Execute(context.Background(), baseRequest(t, "2026-09-14"))

	require.NoError(t, err)
	assert.Equal(t, 1, resp.SuccessCount)
	assert.Equal(t, int64(0), resp.DeletedSlots)
}

func TestExecute_TooManyDates(t *testing.T) {
	uc := newTestUseCase(newFakeSlotRepo())

	req := baseRequest(t)
	start := mustDate(t, "2026-09-01")
	for i := 0; i < domain.MaxBulkDates+1; i++ {
		req.Dates = append(req.Dates, start.AddDate(0, 0, i))
	}

	_, err := uc.Execute(context.Background(), req)

	assert.ErrorIs(t, err, ErrTooManyDates)
}

func TestExecute_NotOwner(t *testing.T) {
	uc := newTestUseCase(newFakeSlotRepo())

	req := baseRequest(t, "2026-09-14")
	req.UserID = testOwnerID + 1

	_, err := uc.Execute(context.Background(), req)

	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestExecute_ProfileNotFound(t *testing.T) {
	uc := newTestUseCase(newFakeSlotRepo())
	uc.profileClient = &fakeProfileClient{err: profileservice.ErrProfileNotFound}

	_, err := uc.Execute(context.Background(), baseRequest(t, "2026-09-14"))

	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestExecute_EmptyDates(t *testing.T) {
	uc := newTestUseCase(newFakeSlotRepo())

	_, err := uc.Execute(context.Background(), baseRequest(t))

	assert.ErrorIs(t, err, ErrInvalidInput)
}
