package domain

// Default policy values
const (
	DefaultMaxCapacityLimit = 100
	DefaultMaxRangeDays     = 92
)

// Business validation constants
const (
	MinSlotCapacity        = 1
	MinSlotDurationMinutes = 5
	MaxSlotDurationMinutes = 480 // 8 hours
	MaxTemplateNameLength  = 100
	MaxTemplateSlots       = 50
	MaxNotesLength         = 500
	MaxCancelReasonLength  = 500
	MaxBulkDates           = 366
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// InactiveStatuses список статусов бронирований, не занимающих место в слоте
var InactiveStatuses = []BookingStatus{
	StatusRejected,
	StatusCancelled,
	StatusNoShow,
}

// ActiveStatuses список статусов бронирований, занимающих место в слоте
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
}
