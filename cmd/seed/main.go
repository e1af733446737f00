// Команда seed наполняет базу демонстрационными данными:
// шаблоны расписания, слоты на ближайшие недели и несколько бронирований.
// Используется для локальной разработки и нагрузочных прогонов
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/m04kA/SMC-AvailabilityService/internal/config"
	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/booking"
	slotRepo "github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/slot"
	templateRepo "github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/template"
	"github.com/m04kA/SMC-AvailabilityService/pkg/ptr"
	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	configPath := flag.String("config", "config.toml", "path to config file")
	profiles := flag.Int("profiles", 10, "number of master profiles to seed")
	days := flag.Int("days", 14, "number of days of schedule per profile")
	flag.Parse()

	log.Println("seed starting")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("ping database: %v", err)
	}

	gofakeit.Seed(time.Now().UnixNano())

	s := &seeder{
		slots:     slotRepo.NewRepository(db),
		templates: templateRepo.NewRepository(db),
		bookings:  bookingRepo.NewRepository(db),
	}

	ctx := context.Background()
	if err := s.run(ctx, *profiles, *days); err != nil {
		log.Fatalf("seed failed: %v", err)
	}

	log.Println("seed complete")
}

type seeder struct {
	slots     *slotRepo.Repository
	templates *templateRepo.Repository
	bookings  *bookingRepo.Repository
}

// Рабочие окна, из которых собираются демо-шаблоны
var workdayWindows = []struct {
	start, end string
	duration   int
}{
	{"09:00", "18:00", 60},
	{"10:00", "19:00", 45},
	{"08:00", "14:00", 30},
	{"12:00", "21:00", 90},
}

func (s *seeder) run(ctx context.Context, profileCount, days int) error {
	today := truncateToDay(time.Now())

	for i := 0; i < profileCount; i++ {
		// Профили живут во внешнем ProfileService; здесь только их ID
		profileID := int64(i + 1)
		ownerID := int64(1000 + i)

		tpl, err := s.seedTemplate(ctx, ownerID)
		if err != nil {
			return fmt.Errorf("profile %d: seed template: %w", profileID, err)
		}

		created, err := s.seedSlots(ctx, profileID, tpl, today, days)
		if err != nil {
			return fmt.Errorf("profile %d: seed slots: %w", profileID, err)
		}

		booked, err := s.seedBookings(ctx, profileID, created)
		if err != nil {
			return fmt.Errorf("profile %d: seed bookings: %w", profileID, err)
		}

		log.Printf("profile %d seeded: template=%q, slots=%d, bookings=%d",
			profileID, tpl.Name, len(created), booked)
	}

	return nil
}

func (s *seeder) seedTemplate(ctx context.Context, ownerID int64) (*domain.SlotTemplate, error) {
	window := workdayWindows[gofakeit.Number(0, len(workdayWindows)-1)]

	start, err := types.NewTimeStringFromString(window.start)
	if err != nil {
		return nil, err
	}
	end, err := types.NewTimeStringFromString(window.end)
	if err != nil {
		return nil, err
	}

	// В части шаблонов добавляем обеденный перерыв
	var breakStart, breakEnd *types.TimeString
	if gofakeit.Bool() {
		bs, err := types.NewTimeStringFromString("13:00")
		if err != nil {
			return nil, err
		}
		be, err := types.NewTimeStringFromString("14:00")
		if err != nil {
			return nil, err
		}
		breakStart, breakEnd = &bs, &be
	}

	intervals, err := domain.PartitionTimeRange(start, end, window.duration, breakStart, breakEnd)
	if err != nil {
		return nil, err
	}

	tpl := &domain.SlotTemplate{
		OwnerID:   ownerID,
		Name:      fmt.Sprintf("%s %s-%s", gofakeit.AdjectiveDescriptive(), window.start, window.end),
		IsDefault: true,
		Slots:     intervals,
	}

	return s.templates.Create(ctx, tpl)
}

func (s *seeder) seedSlots(ctx context.Context, profileID int64, tpl *domain.SlotTemplate, from time.Time, days int) ([]*domain.Slot, error) {
	created := make([]*domain.Slot, 0, days*len(tpl.Slots))

	for d := 0; d < days; d++ {
		date := from.AddDate(0, 0, d)

		// Выходные пропускаем, как это делает реальный мастер
		if date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
			continue
		}

		for _, interval := range tpl.Slots {
			timeSlot, err := interval.Range()
			if err != nil {
				return nil, err
			}

			slot, err := s.slots.Create(ctx, &domain.Slot{
				ProfileID:   profileID,
				Date:        date,
				TimeSlot:    timeSlot,
				MaxCapacity: gofakeit.Number(1, 3),
				IsAvailable: true,
			})
			if err != nil {
				return nil, err
			}
			created = append(created, slot)
		}
	}

	return created, nil
}

// seedBookings бронирует случайную десятую часть созданных слотов
func (s *seeder) seedBookings(ctx context.Context, profileID int64, slots []*domain.Slot) (int, error) {
	booked := 0

	for _, slot := range slots {
		if gofakeit.Number(0, 9) != 0 {
			continue
		}

		if err := s.slots.Reserve(ctx, slot.ID); err != nil {
			return booked, err
		}

		refID := uuid.New()
		_, err := s.bookings.Create(ctx, &domain.Booking{
			BookingRef:  fmt.Sprintf("%X", refID[0:3]),
			UserID:      int64(gofakeit.Number(2000, 2999)),
			ProfileID:   profileID,
			SlotID:      slot.ID,
			BookingDate: slot.Date,
			TimeSlot:    slot.TimeSlot,
			Status:      domain.StatusConfirmed,
			Notes:       ptr.Ptr(gofakeit.Sentence(5)),
		})
		if err != nil {
			return booked, err
		}
		booked++
	}

	return booked, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
