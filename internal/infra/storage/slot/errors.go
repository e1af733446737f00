package slot

import "errors"

var (
	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("slot.repository: slot not found")

	// ErrSlotAlreadyExists возвращается при попытке создать дубликат слота
	// для той же тройки (profile_id, date, time_slot)
	ErrSlotAlreadyExists = errors.New("slot.repository: slot already exists")

	// ErrSlotHasBookings возвращается при попытке удалить слот с активными бронированиями
	ErrSlotHasBookings = errors.New("slot.repository: slot has bookings")

	// ErrCapacityBelowBooked возвращается, когда новая вместимость меньше
	// количества уже сделанных бронирований
	ErrCapacityBelowBooked = errors.New("slot.repository: capacity below booked count")

	// ErrSlotUnavailable возвращается, когда слот нельзя забронировать:
	// все места заняты или слот выключен администратором
	ErrSlotUnavailable = errors.New("slot.repository: slot not available")

	// ErrTransaction возвращается при ошибках работы с транзакцией
	ErrTransaction = errors.New("slot.repository: transaction error")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("slot.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("slot.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("slot.repository: failed to scan row")
)
