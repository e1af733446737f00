package generate_slots

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

type slotKey struct {
	profileID int64
	date      string
	timeSlot  string
}

// fakeSlotRepo накапливает вставленные слоты и умеет падать на заданных датах
type fakeSlotRepo struct {
	mu       sync.Mutex
	slots    map[slotKey]*domain.Slot
	failures map[string]error // date -> ошибка вставки
}

func newFakeSlotRepo() *fakeSlotRepo {
	return &fakeSlotRepo{
		slots:    make(map[slotKey]*domain.Slot),
		failures: make(map[string]error),
	}
}

func (f *fakeSlotRepo) CreateIgnoreConflict(ctx context.Context, slot *domain.Slot) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	date := slot.Date.Format(domain.DateFormat)
	if err, ok := f.failures[date]; ok {
		return false, err
	}

	key := slotKey{profileID: slot.ProfileID, date: date, timeSlot: slot.TimeSlot.String()}
	if _, exists := f.slots[key]; exists {
		return false, nil
	}

	clone := *slot
	f.slots[key] = &clone
	return true, nil
}

func (f *fakeSlotRepo) countForDate(date string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	var n int
	for key := range f.slots {
		if key.date == date {
			n++
		}
	}
	return n
}

// Хелперы

const (
	testOwnerID   int64 = 100
	testProfileID int64 = 1
)

func newTestUseCase(repo *fakeSlotRepo, now time.Time) *UseCase {
	uc := NewUseCase(
		repo,
		&fakeProfileClient{profile: &profileservice.Profile{ID: testProfileID, OwnerID: testOwnerID, IsActive: true}},
		fakeTxManager{},
		10,
		31,
		nopLogger{},
	)
	uc.timeProvider = &fixedTime{now: now}
	return uc
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(domain.DateFormat, s)
	require.NoError(t, err)
	return d
}

func baseRequest(t *testing.T) *Request {
	t.Helper()
	return &Request{
		UserID:              testOwnerID,
		ProfileID:           testProfileID,
		StartDate:           mustDate(t, "2026-09-14"), // понедельник
		EndDate:             mustDate(t, "2026-09-18"), // пятница
		StartTime:           types.TimeString("09:00"),
		EndTime:             types.TimeString("12:00"),
		SlotDurationMinutes: 60,
		MaxCapacity:         2,
	}
}

// Тесты

func TestExecute(t *testing.T) {
	repo := newFakeSlotRepo()
	uc := newTestUseCase(repo, time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))

	resp, err := uc.Execute(context.Background(), baseRequest(t))

	require.NoError(t, err)
	assert.Equal(t, 5, resp.SuccessCount)
	assert.Equal(t, 0, resp.FailedCount)
	assert.Empty(t, resp.FailedDates)
	assert.Empty(t, resp.SkippedDates)
	// 5 дат по 3 часовых интервала
	assert.Equal(t, 15, resp.CreatedSlots)
}

func TestExecute_WeekdayFilter(t *testing.T) {
	repo := newFakeSlotRepo()
	uc := newTestUseCase(repo, time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))

	req := baseRequest(t)
	req.DaysOfWeek = []time.Weekday{time.Monday, time.Wednesday}

	resp, err := uc.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, 2, resp.SuccessCount)
	assert.Equal(t, 6, resp.CreatedSlots)
	assert.Equal(t, 3, repo.countForDate("2026-09-14"))
	assert.Equal(t, 0, repo.countForDate("2026-09-15"))
	assert.Equal(t, 3, repo.countForDate("2026-09-16"))
}

func TestExecute_SkipsPastDates(t *testing.T) {
	repo := newFakeSlotRepo()
	// Сервер живёт 16 сентября: 14-е и 15-е уже прошли
	uc := newTestUseCase(repo, time.Date(2026, 9, 16, 8, 0, 0, 0, time.UTC))

	resp, err := uc.Execute(context.Background(), baseRequest(t))

	require.NoError(t, err)
	assert.Equal(t, 3, resp.SuccessCount)
	assert.Equal(t, []string{"2026-09-14", "2026-09-15"}, resp.SkippedDates)
	assert.Equal(t, 9, resp.CreatedSlots)
}

func TestExecute_FailedDateDoesNotStopOthers(t *testing.T) {
	repo := newFakeSlotRepo()
	repo.failures["2026-09-16"] = errors.New("storage: connection reset")
	uc := newTestUseCase(repo, time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))

	resp, err := uc.Execute(context.Background(), baseRequest(t))

	require.NoError(t, err)
	assert.Equal(t, 4, resp.SuccessCount)
	assert.Equal(t, 1, resp.FailedCount)
	assert.Equal(t, []string{"2026-09-16"}, resp.FailedDates)
	assert.Equal(t, 12, resp.CreatedSlots)
	// Соседние даты созданы полностью
	assert.Equal(t, 3, repo.countForDate("2026-09-15"))
	assert.Equal(t, 3, repo.countForDate("2026-09-17"))
}

func TestExecute_ConflictingDayReportedAsFailed(t *testing.T) {
	repo := newFakeSlotRepo()
	uc := newTestUseCase(repo, time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))

	// На дате уже есть слот с первым интервалом окна
	tr, err := types.NewTimeRangeFromString("09:00-10:00")
	require.NoError(t, err)
	_, err = repo.CreateIgnoreConflict(context.Background(), &domain.Slot{
		ProfileID:   testProfileID,
		Date:        mustDate(t, "2026-09-14"),
		TimeSlot:    tr,
		MaxCapacity: 2,
		IsAvailable: true,
	})
	require.NoError(t, err)

	req := baseRequest(t)
	req.EndDate = req.StartDate // один день

	resp, err := uc.Execute(context.Background(), req)

	require.NoError(t, err)
	// Конфликтующая дата отчитывается как упавшая,
	// но её неконфликтующие интервалы созданы
	assert.Equal(t, 0, resp.SuccessCount)
	assert.Equal(t, 1, resp.FailedCount)
	assert.Equal(t, []string{"2026-09-14"}, resp.FailedDates)
	assert.Equal(t, 2, resp.CreatedSlots)
	assert.Equal(t, 3, repo.countForDate("2026-09-14"))
}

func TestExecute_RerunReportsAllDatesConflicting(t *testing.T) {
	repo := newFakeSlotRepo()
	uc := newTestUseCase(repo, time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))

	_, err := uc.Execute(context.Background(), baseRequest(t))
	require.NoError(t, err)

	// Повторный запуск не плодит дублей и отчитывает каждую дату конфликтом
	resp, err := uc.Execute(context.Background(), baseRequest(t))
	require.NoError(t, err)
	assert.Equal(t, 0, resp.SuccessCount)
	assert.Equal(t, 5, resp.FailedCount)
	assert.Len(t, resp.FailedDates, 5)
	assert.Equal(t, 0, resp.CreatedSlots)
	assert.Equal(t, 3, repo.countForDate("2026-09-14"))
}

func TestExecute_RangeTooLarge(t *testing.T) {
	uc := newTestUseCase(newFakeSlotRepo(), time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))

	req := baseRequest(t)
	req.EndDate = mustDate(t, "2026-10-16") // 33 дня при лимите 31

	_, err := uc.Execute(context.Background(), req)

	assert.ErrorIs(t, err, ErrRangeTooLarge)
}

func TestExecute_EmptyWindow(t *testing.T) {
	uc := newTestUseCase(newFakeSlotRepo(), time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))

	req := baseRequest(t)
	req.EndTime = types.TimeString("09:30") // окно меньше длительности слота

	_, err := uc.Execute(context.Background(), req)

	assert.ErrorIs(t, err, ErrEmptyWindow)
}

func TestExecute_BreakWithoutEnd(t *testing.T) {
	uc := newTestUseCase(newFakeSlotRepo(), time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))

	breakStart := types.TimeString("10:00")
	req := baseRequest(t)
	req.BreakStart = &breakStart

	_, err := uc.Execute(context.Background(), req)

	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecute_BreakExcludesSlots(t *testing.T) {
	repo := newFakeSlotRepo()
	uc := newTestUseCase(repo, time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))

	breakStart := types.TimeString("10:00")
	breakEnd := types.TimeString("11:00")
	req := baseRequest(t)
	req.BreakStart = &breakStart
	req.BreakEnd = &breakEnd

	resp, err := uc.Execute(context.Background(), req)

	require.NoError(t, err)
	// Перерыв вырезает интервал 10:00-11:00 из каждого дня
	assert.Equal(t, 10, resp.CreatedSlots)
	assert.Equal(t, 2, repo.countForDate("2026-09-14"))
}

func TestExecute_CapacityAboveLimit(t *testing.T) {
	uc := newTestUseCase(newFakeSlotRepo(), time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))

	req := baseRequest(t)
	req.MaxCapacity = 11 // лимит 10

	_, err := uc.Execute(context.Background(), req)

	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecute_NotOwner(t *testing.T) {
	uc := newTestUseCase(newFakeSlotRepo(), time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))

	req := baseRequest(t)
	req.UserID = testOwnerID + 1

	_, err := uc.Execute(context.Background(), req)

	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestExecute_ProfileNotFound(t *testing.T) {
	uc := newTestUseCase(newFakeSlotRepo(), time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))
	uc.profileClient = &fakeProfileClient{err: profileservice.ErrProfileNotFound}

	_, err := uc.Execute(context.Background(), baseRequest(t))

	assert.ErrorIs(t, err, ErrProfileNotFound)
}
