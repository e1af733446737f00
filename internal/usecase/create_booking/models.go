package create_booking

import (
	"time"

	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

// Request модель запроса на создание бронирования
type Request struct {
	UserID    int64           // ID клиента
	ProfileID int64           // ID профиля мастера
	ServiceID *int64          // ID услуги (опционально)
	Date      time.Time       // Дата бронирования (без времени)
	TimeSlot  types.TimeRange // Интервал слота, например "10:00-11:00"
	Notes     *string         // Дополнительные заметки (опционально)
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID         int64  // ID созданного бронирования
	BookingRef string // Короткий код для клиента, например "A3F09B"
	UserID     int64  // ID клиента
	ProfileID  int64  // ID профиля мастера
	SlotID     int64  // ID слота
	ServiceID  *int64 // ID услуги

	BookingDate time.Time        // Дата бронирования
	TimeSlot    types.TimeRange  // Интервал слота
	Status      string           // Статус бронирования
	Notes       *string          // Заметки

	CreatedAt time.Time // Время создания
	UpdatedAt time.Time // Время обновления
}
