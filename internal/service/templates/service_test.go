package templates

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	templateRepo "github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/template"
	"github.com/m04kA/SMC-AvailabilityService/internal/integrations/profileservice"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/templates/models"
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

// fakeTemplateRepo in-memory хранилище шаблонов
type fakeTemplateRepo struct {
	mu        sync.Mutex
	nextID    int64
	templates map[int64]*domain.SlotTemplate
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{nextID: 1, templates: make(map[int64]*domain.SlotTemplate)}
}

func (f *fakeTemplateRepo) Create(ctx context.Context, tpl *domain.SlotTemplate) (*domain.SlotTemplate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	clone := *tpl
	clone.ID = f.nextID
	f.nextID++
	f.templates[clone.ID] = &clone

	result := clone
	return &result, nil
}

func (f *fakeTemplateRepo) GetByID(ctx context.Context, id int64) (*domain.SlotTemplate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	tpl, ok := f.templates[id]
	if !ok {
		return nil, templateRepo.ErrTemplateNotFound
	}
	clone := *tpl
	return &clone, nil
}

func (f *fakeTemplateRepo) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.SlotTemplate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []*domain.SlotTemplate
	for _, tpl := range f.templates {
		if tpl.OwnerID == ownerID {
			clone := *tpl
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (f *fakeTemplateRepo) Update(ctx context.Context, id int64, tpl *domain.SlotTemplate) (*domain.SlotTemplate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	existing, ok := f.templates[id]
	if !ok {
		return nil, templateRepo.ErrTemplateNotFound
	}

	existing.Name = tpl.Name
	existing.IsDefault = tpl.IsDefault
	existing.Slots = tpl.Slots

	clone := *existing
	return &clone, nil
}

func (f *fakeTemplateRepo) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.templates[id]; !ok {
		return templateRepo.ErrTemplateNotFound
	}
	delete(f.templates, id)
	return nil
}

func (f *fakeTemplateRepo) UnsetDefaultForOwner(ctx context.Context, ownerID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, tpl := range f.templates {
		if tpl.OwnerID == ownerID {
			tpl.IsDefault = false
		}
	}
	return nil
}

// fakeSlotWriter хранит слоты, созданные применением шаблона
type fakeSlotWriter struct {
	mu    sync.Mutex
	slots []*domain.Slot
}

func (f *fakeSlotWriter) CreateIgnoreConflict(ctx context.Context, slot *domain.Slot) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.slots {
		if existing.ProfileID == slot.ProfileID &&
			existing.Date.Equal(slot.Date) &&
			existing.TimeSlot == slot.TimeSlot {
			return false, nil
		}
	}

	clone := *slot
	clone.ID = int64(len(f.slots) + 1)
	f.slots = append(f.slots, &clone)
	return true, nil
}

func (f *fakeSlotWriter) GetByDate(ctx context.Context, profileID int64, date time.Time) ([]*domain.Slot, error) {
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

// Хелперы

const (
	testOwnerID   int64 = 100
	testProfileID int64 = 1
)

func newTestService(tplRepo *fakeTemplateRepo, slotWriter *fakeSlotWriter, now time.Time) *Service {
	svc := NewService(
		tplRepo,
		slotWriter,
		&fakeProfileClient{profile: &profileservice.Profile{ID: testProfileID, OwnerID: testOwnerID, IsActive: true}},
		fakeTxManager{},
		10,
		nopLogger{},
	)
	svc.timeProvider = &fixedTime{now: now}
	return svc
}

func slotInput(start, end string) models.TemplateSlotInput {
	return models.TemplateSlotInput{
		StartTime: types.TimeString(start),
		EndTime:   types.TimeString(end),
	}
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(domain.DateFormat, s)
	require.NoError(t, err)
	return d
}

// Тесты

func TestCreate(t *testing.T) {
	repo := newFakeTemplateRepo()
	svc := newTestService(repo, &fakeSlotWriter{}, time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))

	resp, err := svc.Create(context.Background(), &models.CreateTemplateRequest{
		UserID:    testOwnerID,
		Name:      "  Будни  ",
		IsDefault: true,
		Slots:     []models.TemplateSlotInput{slotInput("09:00", "10:00"), slotInput("10:00", "11:00")},
	})

	require.NoError(t, err)
	assert.Equal(t, "Будни", resp.Name)
	assert.True(t, resp.IsDefault)
	assert.Len(t, resp.Slots, 2)
}

func TestCreate_DefaultExclusivity(t *testing.T) {
	repo := newFakeTemplateRepo()
	svc := newTestService(repo, &fakeSlotWriter{}, time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))

	first, err := svc.Create(context.Background(), &models.CreateTemplateRequest{
		UserID:    testOwnerID,
		Name:      "Будни",
		IsDefault: true,
		Slots:     []models.TemplateSlotInput{slotInput("09:00", "10:00")},
	})
	require.NoError(t, err)

	second, err := svc.Create(context.Background(), &models.CreateTemplateRequest{
		UserID:    testOwnerID,
		Name:      "Выходные",
		IsDefault: true,
		Slots:     []models.TemplateSlotInput{slotInput("12:00", "13:00")},
	})
	require.NoError(t, err)
	assert.True(t, second.IsDefault)

	// Флаг по умолчанию снят с первого шаблона
	reloaded, err := repo.GetByID(context.Background(), first.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsDefault)
}

func TestCreate_OverlappingIntervals(t *testing.T) {
	svc := newTestService(newFakeTemplateRepo(), &fakeSlotWriter{}, time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))

	_, err := svc.Create(context.Background(), &models.CreateTemplateRequest{
		UserID: testOwnerID,
		Name:   "Пересечение",
		Slots:  []models.TemplateSlotInput{slotInput("09:00", "11:00"), slotInput("10:00", "12:00")},
	})

	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreate_EmptyName(t *testing.T) {
	svc := newTestService(newFakeTemplateRepo(), &fakeSlotWriter{}, time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))

	_, err := svc.Create(context.Background(), &models.CreateTemplateRequest{
		UserID: testOwnerID,
		Name:   "   ",
		Slots:  []models.TemplateSlotInput{slotInput("09:00", "10:00")},
	})

	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdate_KeepingDefaultDoesNotUnset(t *testing.T) {
	repo := newFakeTemplateRepo()
	svc := newTestService(repo, &fakeSlotWriter{}, time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))

	created, err := svc.Create(context.Background(), &models.CreateTemplateRequest{
		UserID:    testOwnerID,
		Name:      "Будни",
		IsDefault: true,
		Slots:     []models.TemplateSlotInput{slotInput("09:00", "10:00")},
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, &models.UpdateTemplateRequest{
		UserID:    testOwnerID,
		Name:      "Будни v2",
		IsDefault: true,
		Slots:     []models.TemplateSlotInput{slotInput("09:00", "10:00"), slotInput("10:00", "11:00")},
	})

	require.NoError(t, err)
	assert.Equal(t, "Будни v2", updated.Name)
	// Шаблон остался по умолчанию
	assert.True(t, updated.IsDefault)
}

func TestGetByID_AccessDenied(t *testing.T) {
	repo := newFakeTemplateRepo()
	svc := newTestService(repo, &fakeSlotWriter{}, time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))

	created, err := svc.Create(context.Background(), &models.CreateTemplateRequest{
		UserID: testOwnerID,
		Name:   "Будни",
		Slots:  []models.TemplateSlotInput{slotInput("09:00", "10:00")},
	})
	require.NoError(t, err)

	_, err = svc.GetByID(context.Background(), created.ID, testOwnerID+1)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestDelete_NotFound(t *testing.T) {
	svc := newTestService(newFakeTemplateRepo(), &fakeSlotWriter{}, time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))

	err := svc.Delete(context.Background(), 999, testOwnerID)
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestGeneratePreview(t *testing.T) {
	svc := newTestService(newFakeTemplateRepo(), &fakeSlotWriter{}, time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))

	breakStart := types.TimeString("13:00")
	breakEnd := types.TimeString("14:00")

	resp, err := svc.GeneratePreview(&models.PreviewRequest{
		StartTime:           types.TimeString("09:00"),
		EndTime:             types.TimeString("18:00"),
		SlotDurationMinutes: 60,
		BreakStart:          &breakStart,
		BreakEnd:            &breakEnd,
	})

	require.NoError(t, err)
	// 9 часовых интервалов минус один на перерыв
	assert.Equal(t, 8, resp.Count)
	assert.Equal(t, "09:00", resp.Slots[0].StartTime)
	assert.Equal(t, "14:00", resp.Slots[4].StartTime)
}

func TestGeneratePreview_InvalidWindow(t *testing.T) {
	svc := newTestService(newFakeTemplateRepo(), &fakeSlotWriter{}, time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))

	_, err := svc.GeneratePreview(&models.PreviewRequest{
		StartTime:           types.TimeString("18:00"),
		EndTime:             types.TimeString("09:00"),
		SlotDurationMinutes: 60,
	})

	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestApply(t *testing.T) {
	repo := newFakeTemplateRepo()
	writer := &fakeSlotWriter{}
	svc := newTestService(repo, writer, time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))

	created, err := svc.Create(context.Background(), &models.CreateTemplateRequest{
		UserID: testOwnerID,
		Name:   "Будни",
		Slots:  []models.TemplateSlotInput{slotInput("09:00", "10:00"), slotInput("10:00", "11:00")},
	})
	require.NoError(t, err)

	resp, err := svc.Apply(context.Background(), created.ID, &models.ApplyTemplateRequest{
		UserID:      testOwnerID,
		ProfileID:   testProfileID,
		Date:        mustDate(t, "2026-09-15"),
		MaxCapacity: 2,
	})

	require.NoError(t, err)
	assert.Equal(t, 2, resp.CreatedCount)
	assert.Equal(t, 0, resp.SkippedCount)
	assert.Len(t, writer.slots, 2)
	assert.Equal(t, 2, writer.slots[0].MaxCapacity)
}

func TestApply_Idempotent(t *testing.T) {
	repo := newFakeTemplateRepo()
	writer := &fakeSlotWriter{}
	svc := newTestService(repo, writer, time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))

	created, err := svc.Create(context.Background(), &models.CreateTemplateRequest{
		UserID: testOwnerID,
		Name:   "Будни",
		Slots:  []models.TemplateSlotInput{slotInput("09:00", "10:00")},
	})
	require.NoError(t, err)

	req := &models.ApplyTemplateRequest{
		UserID:      testOwnerID,
		ProfileID:   testProfileID,
		Date:        mustDate(t, "2026-09-15"),
		MaxCapacity: 1,
	}

	_, err = svc.Apply(context.Background(), created.ID, req)
	require.NoError(t, err)

	// Повторное применение не создает дублей
	resp, err := svc.Apply(context.Background(), created.ID, req)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.CreatedCount)
	assert.Equal(t, 1, resp.SkippedCount)
	assert.Len(t, writer.slots, 1)
}

func TestApply_PastDate(t *testing.T) {
	repo := newFakeTemplateRepo()
	svc := newTestService(repo, &fakeSlotWriter{}, time.Date(2026, 9, 16, 8, 0, 0, 0, time.UTC))

	created, err := svc.Create(context.Background(), &models.CreateTemplateRequest{
		UserID: testOwnerID,
		Name:   "Будни",
		Slots:  []models.TemplateSlotInput{slotInput("09:00", "10:00")},
	})
	require.NoError(t, err)

	_, err = svc.Apply(context.Background(), created.ID, &models.ApplyTemplateRequest{
		UserID:      testOwnerID,
		ProfileID:   testProfileID,
		Date:        mustDate(t, "2026-09-15"),
		MaxCapacity: 1,
	})

	assert.ErrorIs(t, err, ErrPastDate)
}

func TestApply_SkipsPastSlotsToday(t *testing.T) {
	repo := newFakeTemplateRepo()
	writer := &fakeSlotWriter{}
	// Сегодня 15 сентября, 12:00: утренние интервалы уже прошли
	svc := newTestService(repo, writer, time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC))

	created, err := svc.Create(context.Background(), &models.CreateTemplateRequest{
		UserID: testOwnerID,
		Name:   "Будни",
		Slots: []models.TemplateSlotInput{
			slotInput("09:00", "10:00"),
			slotInput("14:00", "15:00"),
		},
	})
	require.NoError(t, err)

	resp, err := svc.Apply(context.Background(), created.ID, &models.ApplyTemplateRequest{
		UserID:      testOwnerID,
		ProfileID:   testProfileID,
		Date:        mustDate(t, "2026-09-15"),
		MaxCapacity: 1,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, resp.CreatedCount)
	assert.Equal(t, 1, resp.SkippedCount)
	require.Len(t, writer.slots, 1)
	assert.Equal(t, "14:00-15:00", writer.slots[0].TimeSlot.String())
}
