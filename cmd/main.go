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

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	addScheduleSlotHandler "github.com/tutorlink/TL-AdminService/internal/api/handlers/add_schedule_slot"
	cancelBookingHandler "github.com/tutorlink/TL-AdminService/internal/api/handlers/cancel_booking"
	createDraftHandler "github.com/tutorlink/TL-AdminService/internal/api/handlers/create_draft"
	createStaffHandler "github.com/tutorlink/TL-AdminService/internal/api/handlers/create_staff"
	deleteStaffHandler "github.com/tutorlink/TL-AdminService/internal/api/handlers/delete_staff"
	discardDraftHandler "github.com/tutorlink/TL-AdminService/internal/api/handlers/discard_draft"
	getDashboardStatsHandler "github.com/tutorlink/TL-AdminService/internal/api/handlers/get_dashboard_stats"
	getDraftHandler "github.com/tutorlink/TL-AdminService/internal/api/handlers/get_draft"
	getIntegrationsHandler "github.com/tutorlink/TL-AdminService/internal/api/handlers/get_integrations"
	getStaffScheduleHandler "github.com/tutorlink/TL-AdminService/internal/api/handlers/get_staff_schedule"
	listBookingsHandler "github.com/tutorlink/TL-AdminService/internal/api/handlers/list_bookings"
	listStaffHandler "github.com/tutorlink/TL-AdminService/internal/api/handlers/list_staff"
	refreshDraftHandler "github.com/tutorlink/TL-AdminService/internal/api/handlers/refresh_draft"
	removeScheduleSlotHandler "github.com/tutorlink/TL-AdminService/internal/api/handlers/remove_schedule_slot"
	selectSlotHandler "github.com/tutorlink/TL-AdminService/internal/api/handlers/select_slot"
	setDraftScopeHandler "github.com/tutorlink/TL-AdminService/internal/api/handlers/set_draft_scope"
	setWorkingDayHandler "github.com/tutorlink/TL-AdminService/internal/api/handlers/set_working_day"
	submitDraftHandler "github.com/tutorlink/TL-AdminService/internal/api/handlers/submit_draft"
	updateIntegrationHandler "github.com/tutorlink/TL-AdminService/internal/api/handlers/update_integration"
	updateStaffHandler "github.com/tutorlink/TL-AdminService/internal/api/handlers/update_staff"
	"github.com/tutorlink/TL-AdminService/internal/api/middleware"
	"github.com/tutorlink/TL-AdminService/internal/changefeed"
	"github.com/tutorlink/TL-AdminService/internal/config"
	bookingRepo "github.com/tutorlink/TL-AdminService/internal/infra/storage/booking"
	scheduleRepo "github.com/tutorlink/TL-AdminService/internal/infra/storage/schedule"
	settingsRepo "github.com/tutorlink/TL-AdminService/internal/infra/storage/settings"
	staffRepo "github.com/tutorlink/TL-AdminService/internal/infra/storage/staff"
	availabilityClient "github.com/tutorlink/TL-AdminService/internal/integrations/availability"
	bitrixClient "github.com/tutorlink/TL-AdminService/internal/integrations/bitrix"
	zoomClient "github.com/tutorlink/TL-AdminService/internal/integrations/zoom"
	"github.com/tutorlink/TL-AdminService/internal/reconciler"
	bookingsService "github.com/tutorlink/TL-AdminService/internal/service/bookings"
	draftsService "github.com/tutorlink/TL-AdminService/internal/service/drafts"
	integrationsService "github.com/tutorlink/TL-AdminService/internal/service/integrations"
	scheduleService "github.com/tutorlink/TL-AdminService/internal/service/schedule"
	staffService "github.com/tutorlink/TL-AdminService/internal/service/staff"
	statsService "github.com/tutorlink/TL-AdminService/internal/service/stats"
	"github.com/tutorlink/TL-AdminService/pkg/dbmetrics"
	"github.com/tutorlink/TL-AdminService/pkg/logger"
	"github.com/tutorlink/TL-AdminService/pkg/metrics"
	"github.com/tutorlink/TL-AdminService/pkg/simpletxmanager"
	"github.com/tutorlink/TL-AdminService/pkg/txmanager"
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

	log.Info("Starting TL-AdminService...")
	log.Info("Configuration loaded from config.toml")

	// Метрики регистрируются всегда, endpoint и middleware - по конфигурации
	metricsCollector := metrics.New(cfg.Metrics.ServiceName)
	stopMetricsCh := make(chan struct{})

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Подключаемся к Redis (change feed)
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Fatal("Failed to ping redis: %v", err)
	}
	cancelPing()
	log.Info("Successfully connected to redis (addr=%s)", cfg.Redis.Addr)

	// Инициализируем интеграционных клиентов
	availability := availabilityClient.NewClient(
		cfg.AvailabilityEngine.URL,
		time.Duration(cfg.AvailabilityEngine.Timeout)*time.Second,
		log,
	)
	zoom := zoomClient.NewClient(
		cfg.Zoom.URL,
		cfg.Zoom.AuthToken,
		cfg.Zoom.Timezone,
		time.Duration(cfg.Zoom.Timeout)*time.Second,
		log,
	)
	bitrix := bitrixClient.NewClient(
		cfg.Bitrix.WebhookURL,
		cfg.Bitrix.OwnerID,
		time.Duration(cfg.Bitrix.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (AvailabilityEngine=%s timeout=%ds)",
		cfg.AvailabilityEngine.URL, cfg.AvailabilityEngine.Timeout)

	// Инициализируем репозитории (с метриками или без)
	var (
		bookingRepository  *bookingRepo.Repository
		staffRepository    *staffRepo.Repository
		scheduleRepository *scheduleRepo.Repository
		settingsRepository *settingsRepo.Repository
		txMgr              bookingsService.TransactionManager
	)

	if cfg.Metrics.Enabled {
		wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		staffRepository = staffRepo.NewRepository(wrappedDB)
		scheduleRepository = scheduleRepo.NewRepository(wrappedDB)
		settingsRepository = settingsRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		bookingRepository = bookingRepo.NewRepository(db)
		staffRepository = staffRepo.NewRepository(db)
		scheduleRepository = scheduleRepo.NewRepository(db)
		settingsRepository = settingsRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Change feed поверх Redis pub/sub
	feed := changefeed.New(redisClient, log)

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		staffRepository,
		settingsRepository,
		zoom,
		bitrix,
		feed,
		txMgr,
		log,
	)
	staffSvc := staffService.NewService(staffRepository, log)
	scheduleSvc := scheduleService.NewService(scheduleRepository, staffRepository, txMgr, log)
	statsSvc := statsService.NewService(bookingRepository, txMgr, log)
	integrationsSvc := integrationsService.NewService(settingsRepository, log)

	// Менеджер черновиков бронирования
	draftManager := draftsService.NewManager(
		availability,
		bookingSvc,
		feed,
		bookingRepository,
		metricsCollector,
		log,
		draftsService.Options{
			TTL:             time.Duration(cfg.Drafts.TTLMinutes) * time.Minute,
			CleanupSchedule: cfg.Drafts.CleanupSchedule,
			Reconciler: reconciler.Options{
				PollInterval: time.Duration(cfg.Reconciler.PollIntervalSeconds) * time.Second,
				FetchTimeout: time.Duration(cfg.Reconciler.OracleTimeout) * time.Second,
			},
		},
	)
	if err := draftManager.Start(); err != nil {
		log.Fatal("Failed to start draft manager: %v", err)
	}

	// Инициализируем handlers
	createDraft := createDraftHandler.NewHandler(draftManager, log)
	getDraft := getDraftHandler.NewHandler(draftManager, log)
	setDraftScope := setDraftScopeHandler.NewHandler(draftManager, log)
	selectSlot := selectSlotHandler.NewHandler(draftManager, log)
	refreshDraft := refreshDraftHandler.NewHandler(draftManager, log)
	submitDraft := submitDraftHandler.NewHandler(draftManager, log)
	discardDraft := discardDraftHandler.NewHandler(draftManager, log)

	listStaff := listStaffHandler.NewHandler(staffSvc, log)
	createStaff := createStaffHandler.NewHandler(staffSvc, log)
	updateStaff := updateStaffHandler.NewHandler(staffSvc, log)
	deleteStaff := deleteStaffHandler.NewHandler(staffSvc, log)

	listBookings := listBookingsHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)

	getStaffSchedule := getStaffScheduleHandler.NewHandler(scheduleSvc, log)
	setWorkingDay := setWorkingDayHandler.NewHandler(scheduleSvc, log)
	addScheduleSlot := addScheduleSlotHandler.NewHandler(scheduleSvc, log)
	removeScheduleSlot := removeScheduleSlotHandler.NewHandler(scheduleSvc, log)

	getDashboardStats := getDashboardStatsHandler.NewHandler(statsSvc, log)
	getIntegrations := getIntegrationsHandler.NewHandler(integrationsSvc, log)
	updateIntegration := updateIntegrationHandler.NewHandler(integrationsSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix: все операции админки требуют X-User-ID header
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Auth)

	// --- Черновики бронирования ---
	api.HandleFunc("/drafts", createDraft.Handle).Methods(http.MethodPost)
	api.HandleFunc("/drafts/{draftId}", getDraft.Handle).Methods(http.MethodGet)
	api.HandleFunc("/drafts/{draftId}", discardDraft.Handle).Methods(http.MethodDelete)
	api.HandleFunc("/drafts/{draftId}/scope", setDraftScope.Handle).Methods(http.MethodPut)
	api.HandleFunc("/drafts/{draftId}/selection", selectSlot.Handle).Methods(http.MethodPut)
	api.HandleFunc("/drafts/{draftId}/refresh", refreshDraft.Handle).Methods(http.MethodPost)
	api.HandleFunc("/drafts/{draftId}/submit", submitDraft.Handle).Methods(http.MethodPost)

	// --- Преподаватели ---
	api.HandleFunc("/staff", listStaff.Handle).Methods(http.MethodGet)
	api.HandleFunc("/staff", createStaff.Handle).Methods(http.MethodPost)
	api.HandleFunc("/staff/{staffId}", updateStaff.Handle).Methods(http.MethodPatch)
	api.HandleFunc("/staff/{staffId}", deleteStaff.Handle).Methods(http.MethodDelete)

	// --- Бронирования ---
	api.HandleFunc("/bookings", listBookings.Handle).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)

	// --- Рабочее расписание ---
	api.HandleFunc("/staff/{staffId}/schedule", getStaffSchedule.Handle).Methods(http.MethodGet)
	api.HandleFunc("/staff/{staffId}/schedule/day", setWorkingDay.Handle).Methods(http.MethodPut)
	api.HandleFunc("/staff/{staffId}/schedule/slots", addScheduleSlot.Handle).Methods(http.MethodPost)
	api.HandleFunc("/schedule/slots/{slotId}", removeScheduleSlot.Handle).Methods(http.MethodDelete)

	// --- Дашборд и настройки ---
	api.HandleFunc("/stats/dashboard", getDashboardStats.Handle).Methods(http.MethodGet)
	api.HandleFunc("/integrations", getIntegrations.Handle).Methods(http.MethodGet)
	api.HandleFunc("/integrations/{name}", updateIntegration.Handle).Methods(http.MethodPut)

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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	draftManager.Stop()

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
