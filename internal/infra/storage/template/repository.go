package template

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AvailabilityService/pkg/psqlbuilder"
)

// Repository репозиторий шаблонов слотов
// Шаблон хранится в двух таблицах: slot_templates и slot_template_items
// Взаимоисключение флага is_default обеспечивается вызовом UnsetDefaultForOwner
// внутри транзакции сервисного слоя плюс частичным уникальным индексом в БД
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория шаблонов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает шаблон вместе с его интервалами
func (r *Repository) Create(ctx context.Context, tpl *domain.SlotTemplate) (*domain.SlotTemplate, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("slot_templates").
		Columns("owner_id", "name", "is_default").
		Values(tpl.OwnerID, tpl.Name, tpl.IsDefault).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&tpl.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	tpl.CreatedAt = createdAt.Time
	tpl.UpdatedAt = updatedAt.Time

	if err := r.insertItems(ctx, executor, tpl.ID, tpl.Slots); err != nil {
		return nil, err
	}

	return tpl, nil
}

// GetByID получает шаблон с интервалами
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.SlotTemplate, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"owner_id",
		"name",
		"is_default",
		"created_at",
		"updated_at",
	).
		From("slot_templates").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var tpl domain.SlotTemplate
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&tpl.ID,
		&tpl.OwnerID,
		&tpl.Name,
		&tpl.IsDefault,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan template: %v", ErrScanRow, err)
	}

	tpl.CreatedAt = createdAt.Time
	tpl.UpdatedAt = updatedAt.Time

	slots, err := r.getItems(ctx, executor, tpl.ID)
	if err != nil {
		return nil, err
	}
	tpl.Slots = slots

	return &tpl, nil
}

// ListByOwner получает все шаблоны владельца с интервалами
// Дефолтный шаблон идёт первым
func (r *Repository) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.SlotTemplate, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"owner_id",
		"name",
		"is_default",
		"created_at",
		"updated_at",
	).
		From("slot_templates").
		Where(squirrel.Eq{"owner_id": ownerID}).
		OrderBy("is_default DESC, name ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListByOwner - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByOwner - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	templates := make([]*domain.SlotTemplate, 0)

	for rows.Next() {
		var tpl domain.SlotTemplate
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&tpl.ID,
			&tpl.OwnerID,
			&tpl.Name,
			&tpl.IsDefault,
			&createdAt,
			&updatedAt,
		)

		if err != nil {
			return nil, fmt.Errorf("%w: ListByOwner - scan row: %v", ErrScanRow, err)
		}

		tpl.CreatedAt = createdAt.Time
		tpl.UpdatedAt = updatedAt.Time

		templates = append(templates, &tpl)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByOwner - rows error: %v", ErrScanRow, err)
	}

	for _, tpl := range templates {
		slots, err := r.getItems(ctx, executor, tpl.ID)
		if err != nil {
			return nil, err
		}
		tpl.Slots = slots
	}

	return templates, nil
}

// Update обновляет шаблон и полностью заменяет его интервалы
func (r *Repository) Update(ctx context.Context, id int64, tpl *domain.SlotTemplate) (*domain.SlotTemplate, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("slot_templates").
		Set("name", tpl.Name).
		Set("is_default", tpl.IsDefault).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING owner_id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&tpl.OwnerID,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	tpl.ID = id
	tpl.CreatedAt = createdAt.Time
	tpl.UpdatedAt = updatedAt.Time

	if err := r.deleteItems(ctx, executor, id); err != nil {
		return nil, err
	}
	if err := r.insertItems(ctx, executor, id, tpl.Slots); err != nil {
		return nil, err
	}

	return tpl, nil
}

// Delete удаляет шаблон вместе с интервалами (каскад в БД)
// Уже сгенерированные из шаблона слоты не трогаются
func (r *Repository) Delete(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("slot_templates").
		Where(squirrel.Eq{"id": id}).
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
		return ErrTemplateNotFound
	}

	return nil
}

// UnsetDefaultForOwner снимает флаг is_default со всех шаблонов владельца
// Вызывается перед установкой нового дефолтного шаблона внутри одной транзакции,
// чтобы не возникало окна с нулём или двумя дефолтами
func (r *Repository) UnsetDefaultForOwner(ctx context.Context, ownerID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("slot_templates").
		Set("is_default", false).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"owner_id": ownerID, "is_default": true}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UnsetDefaultForOwner - build update query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: UnsetDefaultForOwner - execute update: %v", ErrExecQuery, err)
	}

	return nil
}

// insertItems вставляет интервалы шаблона с сохранением порядка
func (r *Repository) insertItems(ctx context.Context, executor DBExecutor, templateID int64, slots []domain.TemplateSlot) error {
	if len(slots) == 0 {
		return nil
	}

	builder := psqlbuilder.Insert("slot_template_items").
		Columns("template_id", "position", "start_time", "end_time")

	for i, slot := range slots {
		builder = builder.Values(templateID, i, slot.StartTime, slot.EndTime)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: insertItems - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: insertItems - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// deleteItems удаляет все интервалы шаблона
func (r *Repository) deleteItems(ctx context.Context, executor DBExecutor, templateID int64) error {
	query, args, err := psqlbuilder.Delete("slot_template_items").
		Where(squirrel.Eq{"template_id": templateID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: deleteItems - build delete query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: deleteItems - execute delete: %v", ErrExecQuery, err)
	}

	return nil
}

// getItems получает интервалы шаблона в исходном порядке
func (r *Repository) getItems(ctx context.Context, executor DBExecutor, templateID int64) ([]domain.TemplateSlot, error) {
	query, args, err := psqlbuilder.Select("start_time", "end_time").
		From("slot_template_items").
		Where(squirrel.Eq{"template_id": templateID}).
		OrderBy("position ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: getItems - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getItems - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	slots := make([]domain.TemplateSlot, 0)

	for rows.Next() {
		var slot domain.TemplateSlot
		if err := rows.Scan(&slot.StartTime, &slot.EndTime); err != nil {
			return nil, fmt.Errorf("%w: getItems - scan row: %v", ErrScanRow, err)
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: getItems - rows error: %v", ErrScanRow, err)
	}

	return slots, nil
}
