package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	applyTemplateHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/apply_template"
	bulkApplyTemplateHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/bulk_apply_template"
	bulkDeleteSlotsHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/bulk_delete_slots"
	cancelBookingHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/create_booking"
	createSlotsHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/create_slots"
	createTemplateHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/create_template"
	deleteSlotHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/delete_slot"
	deleteTemplateHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/delete_template"
	generateSlotsHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/generate_slots"
	getAvailabilityHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/get_availability"
	getBookingHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/get_booking"
	getDateSlotsHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/get_date_slots"
	getTemplateHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/get_template"
	getUserBookingsHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/get_user_bookings"
	listTemplatesHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/list_templates"
	previewTemplateHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/preview_template"
	rescheduleBookingHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/reschedule_booking"
	updateBookingStatusHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/update_booking_status"
	updateSlotHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/update_slot"
	updateTemplateHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/update_template"
	"github.com/m04kA/SMC-AvailabilityService/internal/api/middleware"
	"github.com/m04kA/SMC-AvailabilityService/internal/config"
	bookingRepo "github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/booking"
	slotRepo "github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/slot"
	templateRepo "github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/template"
	profileServiceClient "github.com/m04kA/SMC-AvailabilityService/internal/integrations/profileservice"
	bookingsService "github.com/m04kA/SMC-AvailabilityService/internal/service/bookings"
	slotsService "github.com/m04kA/SMC-AvailabilityService/internal/service/slots"
	templatesService "github.com/m04kA/SMC-AvailabilityService/internal/service/templates"
	bulkApplyTemplateUC "github.com/m04kA/SMC-AvailabilityService/internal/usecase/bulk_apply_template"
	bulkDeleteSlotsUC "github.com/m04kA/SMC-AvailabilityService/internal/usecase/bulk_delete_slots"
	createBookingUC "github.com/m04kA/SMC-AvailabilityService/internal/usecase/create_booking"
	generateSlotsUC "github.com/m04kA/SMC-AvailabilityService/internal/usecase/generate_slots"
	rescheduleBookingUC "github.com/m04kA/SMC-AvailabilityService/internal/usecase/reschedule_booking"
	"github.com/m04kA/SMC-AvailabilityService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AvailabilityService/pkg/logger"
	"github.com/m04kA/SMC-AvailabilityService/pkg/metrics"
	"github.com/m04kA/SMC-AvailabilityService/pkg/simpletxmanager"
	"github.com/m04kA/SMC-AvailabilityService/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-AvailabilityService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Инициализируем интеграционного клиента
	profileClient := profileServiceClient.NewClient(
		cfg.ProfileService.URL,
		time.Duration(cfg.ProfileService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration client initialized (ProfileService=%s timeout=%ds)",
		cfg.ProfileService.URL, cfg.ProfileService.Timeout)

	// Инициализируем репозитории (с метриками или без)
	var (
		slotRepository     *slotRepo.Repository
		templateRepository *templateRepo.Repository
		bookingRepository  *bookingRepo.Repository
	)

	// Интерфейс для transaction manager (используется в сервисах и usecases)
	type TxManager interface {
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		slotRepository = slotRepo.NewRepository(wrappedDB)
		templateRepository = templateRepo.NewRepository(wrappedDB)
		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		slotRepository = slotRepo.NewRepository(db)
		templateRepository = templateRepo.NewRepository(db)
		bookingRepository = bookingRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем сервисы
	slotsSvc := slotsService.NewService(
		slotRepository,
		profileClient,
		txMgr,
		cfg.Policy.MaxCapacityLimit,
		cfg.Policy.MaxRangeDays,
		log,
	)
	templatesSvc := templatesService.NewService(
		templateRepository,
		slotRepository,
		profileClient,
		txMgr,
		cfg.Policy.MaxCapacityLimit,
		log,
	)
	bookingsSvc := bookingsService.NewService(
		bookingRepository,
		slotRepository,
		profileClient,
		txMgr,
		log,
	)

	// Инициализируем use cases
	generateSlotsUseCase := generateSlotsUC.NewUseCase(
		slotRepository,
		profileClient,
		txMgr,
		cfg.Policy.MaxCapacityLimit,
		cfg.Policy.MaxRangeDays,
		log,
	)
	bulkApplyTemplateUseCase := bulkApplyTemplateUC.NewUseCase(
		slotRepository,
		templateRepository,
		profileClient,
		txMgr,
		cfg.Policy.MaxCapacityLimit,
		log,
	)
	bulkDeleteSlotsUseCase := bulkDeleteSlotsUC.NewUseCase(
		slotRepository,
		profileClient,
		txMgr,
		log,
	)
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		slotRepository,
		txMgr,
		log,
	)
	rescheduleBookingUseCase := rescheduleBookingUC.NewUseCase(
		bookingRepository,
		slotRepository,
		profileClient,
		txMgr,
		log,
	)

	// Инициализируем handlers
	getAvailability := getAvailabilityHandler.NewHandler(slotsSvc, log)
	getDateSlots := getDateSlotsHandler.NewHandler(slotsSvc, log)
	createSlots := createSlotsHandler.NewHandler(slotsSvc, log)
	updateSlot := updateSlotHandler.NewHandler(slotsSvc, log)
	deleteSlot := deleteSlotHandler.NewHandler(slotsSvc, log)
	generateSlots := generateSlotsHandler.NewHandler(generateSlotsUseCase, log)
	bulkApplyTemplate := bulkApplyTemplateHandler.NewHandler(bulkApplyTemplateUseCase, log)
	bulkDeleteSlots := bulkDeleteSlotsHandler.NewHandler(bulkDeleteSlotsUseCase, log)
	listTemplates := listTemplatesHandler.NewHandler(templatesSvc, log)
	getTemplate := getTemplateHandler.NewHandler(templatesSvc, log)
	createTemplate := createTemplateHandler.NewHandler(templatesSvc, log)
	updateTemplate := updateTemplateHandler.NewHandler(templatesSvc, log)
	deleteTemplate := deleteTemplateHandler.NewHandler(templatesSvc, log)
	previewTemplate := previewTemplateHandler.NewHandler(templatesSvc, log)
	applyTemplate := applyTemplateHandler.NewHandler(templatesSvc, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingsSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingsSvc, log)
	updateBookingStatus := updateBookingStatusHandler.NewHandler(bookingsSvc, log)
	rescheduleBooking := rescheduleBookingHandler.NewHandler(rescheduleBookingUseCase, log)
	getUserBookings := getUserBookingsHandler.NewHandler(bookingsSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")
	}

	// Metrics endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Агрегированная доступность профиля за период
	api.HandleFunc("/profiles/{profileId}/availability",
		getAvailability.Handle).Methods(http.MethodGet)

	// Слоты профиля на конкретную дату
	api.HandleFunc("/profiles/{profileId}/slots/{date:[0-9]{4}-[0-9]{2}-[0-9]{2}}",
		getDateSlots.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Слоты ---
	// Создание слотов на дату
	protected.HandleFunc("/profiles/{profileId}/slots", createSlots.Handle).Methods(http.MethodPost)

	// Массовая генерация слотов на период
	protected.HandleFunc("/profiles/{profileId}/slots/generate", generateSlots.Handle).Methods(http.MethodPost)

	// Массовое применение шаблона к списку дат
	protected.HandleFunc("/profiles/{profileId}/slots/bulk-apply", bulkApplyTemplate.Handle).Methods(http.MethodPost)

	// Массовое удаление свободных слотов
	protected.HandleFunc("/profiles/{profileId}/slots/bulk-delete", bulkDeleteSlots.Handle).Methods(http.MethodPost)

	// Изменение вместимости и доступности слота
	protected.HandleFunc("/slots/{slotId}", updateSlot.Handle).Methods(http.MethodPatch)

	// Удаление слота
	protected.HandleFunc("/slots/{slotId}", deleteSlot.Handle).Methods(http.MethodDelete)

	// --- Шаблоны расписания ---
	// Список шаблонов владельца
	protected.HandleFunc("/templates", listTemplates.Handle).Methods(http.MethodGet)

	// Создание шаблона
	protected.HandleFunc("/templates", createTemplate.Handle).Methods(http.MethodPost)

	// Превью слотов шаблона без сохранения
	protected.HandleFunc("/templates/preview", previewTemplate.Handle).Methods(http.MethodPost)

	// Получение шаблона
	protected.HandleFunc("/templates/{templateId}", getTemplate.Handle).Methods(http.MethodGet)

	// Обновление шаблона
	protected.HandleFunc("/templates/{templateId}", updateTemplate.Handle).Methods(http.MethodPut)

	// Удаление шаблона
	protected.HandleFunc("/templates/{templateId}", deleteTemplate.Handle).Methods(http.MethodDelete)

	// Применение шаблона к одной дате
	protected.HandleFunc("/templates/{templateId}/apply", applyTemplate.Handle).Methods(http.MethodPost)

	// --- Бронирования ---
	// Создание бронирования
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)

	// Получение бронирования по короткому коду
	protected.HandleFunc("/bookings/ref/{bookingRef}", getBooking.HandleByRef).Methods(http.MethodGet)

	// Получение бронирования по ID
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)

	// Отмена бронирования
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)

	// Обновление статуса бронирования (для владельца профиля)
	protected.HandleFunc("/bookings/{bookingId}/status", updateBookingStatus.Handle).Methods(http.MethodPatch)

	// Перенос бронирования на другой слот
	protected.HandleFunc("/bookings/{bookingId}/reschedule", rescheduleBooking.Handle).Methods(http.MethodPatch)

	// История бронирований пользователя
	protected.HandleFunc("/users/{userId}/bookings", getUserBookings.Handle).Methods(http.MethodGet)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
