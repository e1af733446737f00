package slot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AvailabilityService/pkg/psqlbuilder"
)

// pqUniqueViolation код ошибки postgres для нарушения уникального индекса
const pqUniqueViolation = "23505"

var slotColumns = []string{
	"id",
	"profile_id",
	"slot_date",
	"time_slot",
	"max_capacity",
	"booked_count",
	"is_available",
	"created_at",
	"updated_at",
}

// Repository репозиторий слотов доступности
// Единственное место, где меняются счётчики booked_count - всегда
// условными атомарными UPDATE, никогда read-then-write
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория слотов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новый слот
// Возвращает ErrSlotAlreadyExists при дубликате (profile_id, slot_date, time_slot)
func (r *Repository) Create(ctx context.Context, slot *domain.Slot) (*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("availability_slots").
		Columns(
			"profile_id",
			"slot_date",
			"time_slot",
			"max_capacity",
			"booked_count",
			"is_available",
		).
		Values(
			slot.ProfileID,
			slot.Date,
			slot.TimeSlot,
			slot.MaxCapacity,
			slot.BookedCount,
			slot.IsAvailable,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&slot.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return nil, ErrSlotAlreadyExists
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	slot.CreatedAt = createdAt.Time
	slot.UpdatedAt = updatedAt.Time

	return slot, nil
}

// CreateIgnoreConflict создает слот, молча пропуская дубликаты
// Возвращает false без ошибки, если слот для этой тройки уже существует
// Используется для идемпотентного применения шаблонов
func (r *Repository) CreateIgnoreConflict(ctx context.Context, slot *domain.Slot) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("availability_slots").
		Columns(
			"profile_id",
			"slot_date",
			"time_slot",
			"max_capacity",
			"booked_count",
			"is_available",
		).
		Values(
			slot.ProfileID,
			slot.Date,
			slot.TimeSlot,
			slot.MaxCapacity,
			slot.BookedCount,
			slot.IsAvailable,
		).
		Suffix("ON CONFLICT (profile_id, slot_date, time_slot) DO NOTHING RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: CreateIgnoreConflict - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&slot.ID,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		// Конфликт - слот уже существует, вставка пропущена
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: CreateIgnoreConflict - execute insert: %v", ErrExecQuery, err)
	}

	slot.CreatedAt = createdAt.Time
	slot.UpdatedAt = updatedAt.Time

	return true, nil
}

// GetByID получает слот по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(slotColumns...).
		From("availability_slots").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	return r.scanSlot(executor.QueryRowContext(ctx, query, args...), "GetByID")
}

// GetByProfileDateTime получает слот по уникальной тройке (profile, date, time_slot)
func (r *Repository) GetByProfileDateTime(ctx context.Context, profileID int64, date time.Time, timeSlot string) (*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(slotColumns...).
		From("availability_slots").
		Where(squirrel.Eq{
			"profile_id": profileID,
			"slot_date":  date,
			"time_slot":  timeSlot,
		}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByProfileDateTime - build select query: %v", ErrBuildQuery, err)
	}

	return r.scanSlot(executor.QueryRowContext(ctx, query, args...), "GetByProfileDateTime")
}

// GetByDate получает все слоты профиля на дату, отсортированные по времени
func (r *Repository) GetByDate(ctx context.Context, profileID int64, date time.Time) ([]*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(slotColumns...).
		From("availability_slots").
		Where(squirrel.Eq{
			"profile_id": profileID,
			"slot_date":  date,
		}).
		OrderBy("time_slot ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByDate - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanSlots(rows)
}

// GetByDateRange получает все слоты профиля в диапазоне дат включительно
func (r *Repository) GetByDateRange(ctx context.Context, profileID int64, startDate, endDate time.Time) ([]*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(slotColumns...).
		From("availability_slots").
		Where(squirrel.Eq{"profile_id": profileID}).
		Where(squirrel.GtOrEq{"slot_date": startDate}).
		Where(squirrel.LtOrEq{"slot_date": endDate}).
		OrderBy("slot_date ASC, time_slot ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByDateRange - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByDateRange - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanSlots(rows)
}

// UpdateCapacity атомарно меняет вместимость слота
// Guard booked_count <= new_capacity в WHERE гарантирует, что вместимость
// нельзя урезать ниже уже сделанных бронирований даже под конкурентной нагрузкой
func (r *Repository) UpdateCapacity(ctx context.Context, id int64, newCapacity int) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("availability_slots").
		Set("max_capacity", newCapacity).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.LtOrEq{"booked_count": newCapacity}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateCapacity - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateCapacity - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateCapacity - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		// Либо слота нет, либо guard по booked_count не пропустил
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return ErrCapacityBelowBooked
	}

	return nil
}

// SetAvailability переключает видимость слота для клиентов
// Не влияет на booked_count и существующие бронирования
func (r *Repository) SetAvailability(ctx context.Context, id int64, isAvailable bool) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("availability_slots").
		Set("is_available", isAvailable).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: SetAvailability - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SetAvailability - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SetAvailability - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrSlotNotFound
	}

	return nil
}

// Delete удаляет слот без бронирований
// Guard booked_count = 0 в WHERE защищает слоты с бронированиями
func (r *Repository) Delete(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("availability_slots").
		Where(squirrel.Eq{"id": id, "booked_count": 0}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return ErrSlotHasBookings
	}

	return nil
}

// DeleteUnbookedByDate удаляет все слоты профиля на дату без бронирований
// Возвращает количество удалённых слотов
func (r *Repository) DeleteUnbookedByDate(ctx context.Context, profileID int64, date time.Time) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("availability_slots").
		Where(squirrel.Eq{
			"profile_id":   profileID,
			"slot_date":    date,
			"booked_count": 0,
		}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: DeleteUnbookedByDate - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteUnbookedByDate - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteUnbookedByDate - get rows affected: %v", ErrExecQuery, err)
	}

	return rowsAffected, nil
}

// HasBookedSlots проверяет, есть ли на дате хотя бы один слот с бронированиями
// Используется bulk-операциями для определения защищённых дат
func (r *Repository) HasBookedSlots(ctx context.Context, profileID int64, date time.Time) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("1").
		From("availability_slots").
		Where(squirrel.Eq{
			"profile_id": profileID,
			"slot_date":  date,
		}).
		Where(squirrel.Gt{"booked_count": 0}).
		Limit(1).
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: HasBookedSlots - build select query: %v", ErrBuildQuery, err)
	}

	var one int
	err = executor.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: HasBookedSlots - scan: %v", ErrScanRow, err)
	}

	return true, nil
}

// Reserve атомарно занимает одно место в слоте
// Единственный UPDATE с guard booked_count < max_capacity: при гонке за
// последнее место ровно один запрос проходит, остальные получают
// ErrSlotUnavailable. Никаких read-then-write
func (r *Repository) Reserve(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("availability_slots").
		Set("booked_count", squirrel.Expr("booked_count + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "is_available": true}).
		Where(squirrel.Expr("booked_count < max_capacity")).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Reserve - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Reserve - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Reserve - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return ErrSlotUnavailable
	}

	return nil
}

// Release атомарно освобождает одно место в слоте
// Guard booked_count > 0 не даёт счётчику уйти в минус; повторный Release
// по пустому слоту - no-op
func (r *Repository) Release(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("availability_slots").
		Set("booked_count", squirrel.Expr("booked_count - 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Gt{"booked_count": 0}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Release - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Release - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Release - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		// Либо слот удалён, либо счётчик уже на нуле - второе не ошибка
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
	}

	return nil
}

// scanSlot сканирует одну строку в слот
func (r *Repository) scanSlot(row *sql.Row, method string) (*domain.Slot, error) {
	var slot domain.Slot
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&slot.ID,
		&slot.ProfileID,
		&slot.Date,
		&slot.TimeSlot,
		&slot.MaxCapacity,
		&slot.BookedCount,
		&slot.IsAvailable,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan slot: %v", ErrScanRow, method, err)
	}

	slot.CreatedAt = createdAt.Time
	slot.UpdatedAt = updatedAt.Time

	return &slot, nil
}

// scanSlots сканирует результаты запроса в слайс слотов
func (r *Repository) scanSlots(rows *sql.Rows) ([]*domain.Slot, error) {
	slots := make([]*domain.Slot, 0)

	for rows.Next() {
		var slot domain.Slot
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&slot.ID,
			&slot.ProfileID,
			&slot.Date,
			&slot.TimeSlot,
			&slot.MaxCapacity,
			&slot.BookedCount,
			&slot.IsAvailable,
			&createdAt,
			&updatedAt,
		)

		if err != nil {
			return nil, fmt.Errorf("%w: scanSlots - scan row: %v", ErrScanRow, err)
		}

		slot.CreatedAt = createdAt.Time
		slot.UpdatedAt = updatedAt.Time

		slots = append(slots, &slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanSlots - rows error: %v", ErrScanRow, err)
	}

	return slots, nil
}
