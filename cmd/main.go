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
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	checkSlotBookableHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/check_slot_bookable"
	createPatternHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/create_pattern"
	deletePatternHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/delete_pattern"
	deleteSlotHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/delete_slot"
	generateSlotsHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/generate_slots"
	generationJobsHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/generation_jobs"
	getAvailableSlotsHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/get_available_slots"
	listPatternsHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/list_patterns"
	listSlotsHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/list_slots"
	replacePatternsHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/replace_patterns"
	setBlockedStatusHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/set_blocked_status"
	setBookedStatusHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/set_booked_status"
	updatePatternHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/update_pattern"
	generationListener "github.com/m04kA/SMC-AvailabilityService/internal/api/listeners/generation"
	"github.com/m04kA/SMC-AvailabilityService/internal/api/middleware"
	"github.com/m04kA/SMC-AvailabilityService/internal/config"
	"github.com/m04kA/SMC-AvailabilityService/internal/infra/cache"
	"github.com/m04kA/SMC-AvailabilityService/internal/infra/migrations"
	patternRepo "github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/pattern"
	slotRepo "github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/slot"
	consultantServiceClient "github.com/m04kA/SMC-AvailabilityService/internal/integrations/consultantservice"
	"github.com/m04kA/SMC-AvailabilityService/internal/scheduler"
	patternsService "github.com/m04kA/SMC-AvailabilityService/internal/service/patterns"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/reconciliation"
	slotsService "github.com/m04kA/SMC-AvailabilityService/internal/service/slots"
	generateSlotsUC "github.com/m04kA/SMC-AvailabilityService/internal/usecase/generate_slots"
	getAvailableSlotsUC "github.com/m04kA/SMC-AvailabilityService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-AvailabilityService/pkg/clock"
	"github.com/m04kA/SMC-AvailabilityService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AvailabilityService/pkg/logger"
	"github.com/m04kA/SMC-AvailabilityService/pkg/metrics"
	"github.com/m04kA/SMC-AvailabilityService/pkg/txmanager"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level, cfg.App.Env)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-AvailabilityService (env=%s, timezone=%s)...", cfg.App.Env, cfg.Location())

	// Метрики: nil коллектор означает, что метрики выключены
	var metricsCollector *metrics.Metrics
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
	if err := db.PingContext(ctx); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Миграции
	if cfg.Database.AutoMigrate {
		migrator, err := migrations.NewMigrator(db, log)
		if err != nil {
			log.Fatal("Failed to initialize migrator: %v", err)
		}
		if err := migrator.Up(ctx); err != nil {
			log.Fatal("Failed to apply migrations: %v", err)
		}
	}

	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)

	// Репозитории и транзакции
	patternRepository := patternRepo.NewRepository(wrappedDB)
	slotRepository := slotRepo.NewRepository(wrappedDB)
	txMgr := txmanager.NewTransactionManager(wrappedDB)
	timeProvider := clock.NewRealTimeProvider(cfg.Location())

	// Redis нужен кэшу или истории прогонов планировщика
	var redisClient *redis.Client
	if cfg.Cache.Backend == config.CacheBackendRedis || cfg.Scheduler.StatusBackend == config.CacheBackendRedis {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal("Failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
		log.Info("Connected to redis at %s", cfg.Redis.Addr)
	}

	// Кэш свободных слотов
	var cacheStore cache.Store
	switch cfg.Cache.Backend {
	case config.CacheBackendRedis:
		cacheStore = cache.NewRedisStore(redisClient)
	case config.CacheBackendMemory:
		cacheStore = cache.NewMemoryStore(cfg.Cache.Size, cfg.Cache.TTL())
	default:
		cacheStore = cache.NewNoopStore()
	}
	availabilityCache := cache.NewAvailabilityCache(cacheStore, cfg.Cache.TTL(), log, metricsCollector, cfg.Metrics.ServiceName)
	log.Info("Availability cache backend: %s (ttl=%s)", cfg.Cache.Backend, cfg.Cache.TTL())

	// Интеграционные клиенты
	consultantClient := consultantServiceClient.NewClient(
		cfg.ConsultantService.URL,
		time.Duration(cfg.ConsultantService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (ConsultantService=%s timeout=%ds)",
		cfg.ConsultantService.URL, cfg.ConsultantService.Timeout)

	// Сервисы
	reconciler := reconciliation.NewReconciler(slotRepository, timeProvider, metricsCollector, cfg.Metrics.ServiceName, log)
	patternSvc := patternsService.NewService(patternRepository, reconciler, txMgr, availabilityCache, log)
	slotSvc := slotsService.NewService(slotRepository, txMgr, availabilityCache, timeProvider, metricsCollector, cfg.Metrics.ServiceName, log)

	// Use cases
	generateSlotsUseCase := generateSlotsUC.NewUseCase(
		patternRepository,
		slotRepository,
		availabilityCache,
		metricsCollector,
		cfg.Metrics.ServiceName,
		log,
	)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		slotRepository,
		consultantClient,
		availabilityCache,
		timeProvider,
		log,
	)

	// Планировщик генерации
	var statusStore scheduler.StatusStore
	if cfg.Scheduler.StatusBackend == config.CacheBackendRedis {
		statusStore = scheduler.NewRedisStatusStore(redisClient, cfg.Scheduler.HistorySize)
	} else {
		memoryStatusStore, err := scheduler.NewMemoryStatusStore(cfg.Scheduler.HistorySize)
		if err != nil {
			log.Fatal("Failed to initialize job status store: %v", err)
		}
		statusStore = memoryStatusStore
	}
	slotScheduler := scheduler.NewScheduler(
		patternRepository,
		generateSlotsUseCase,
		statusStore,
		timeProvider,
		time.Duration(cfg.Scheduler.IntervalMinutes)*time.Minute,
		cfg.Scheduler.HorizonDays,
		log,
	)
	if cfg.Scheduler.Enabled {
		slotScheduler.Start(ctx)
	}

	// Очередь заданий на генерацию
	var listener *generationListener.Listener
	if cfg.RabbitMQ.Enabled {
		listener, err = generationListener.NewListener(
			cfg.RabbitMQ.URL,
			cfg.RabbitMQ.Queue,
			cfg.RabbitMQ.PrefetchCount,
			generateSlotsUseCase,
			log,
		)
		if err != nil {
			log.Fatal("Failed to initialize rabbitmq listener: %v", err)
		}
		if err := listener.Start(ctx); err != nil {
			log.Fatal("Failed to start rabbitmq listener: %v", err)
		}
	}

	// Handlers
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	checkSlotBookable := checkSlotBookableHandler.NewHandler(slotSvc, log)
	createPattern := createPatternHandler.NewHandler(patternSvc, log)
	listPatterns := listPatternsHandler.NewHandler(patternSvc, log)
	replacePatterns := replacePatternsHandler.NewHandler(patternSvc, log)
	updatePattern := updatePatternHandler.NewHandler(patternSvc, log)
	deletePattern := deletePatternHandler.NewHandler(patternSvc, log)
	generateSlots := generateSlotsHandler.NewHandler(generateSlotsUseCase, log)
	listSlots := listSlotsHandler.NewHandler(slotSvc, log)
	setBookedStatus := setBookedStatusHandler.NewHandler(slotSvc, log)
	setBlockedStatus := setBlockedStatusHandler.NewHandler(slotSvc, log)
	deleteSlot := deleteSlotHandler.NewHandler(slotSvc, log)
	generationJobs := generationJobsHandler.NewHandler(slotScheduler, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации, с ограничением частоты)
	// ============================================================

	public := api.PathPrefix("").Subrouter()
	if cfg.RateLimit.Enabled {
		limiter, err := middleware.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.TrustedProxies)
		if err != nil {
			log.Fatal("Failed to initialize rate limiter: %v", err)
		}
		public.Use(middleware.RateLimit(limiter))
		log.Info("Public rate limit: rps=%.1f, burst=%d, trusted_proxies=%v", cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.TrustedProxies)
	}

	// Свободные слоты консультанта для клиентов
	public.HandleFunc("/slots/{consultant}", getAvailableSlots.Handle).Methods(http.MethodGet)

	// Проверка перед созданием записи
	public.HandleFunc("/slots/{slotId}/bookable", checkSlotBookable.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-Consultant-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Шаблоны ---
	protected.HandleFunc("/patterns", listPatterns.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/patterns", createPattern.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/patterns/bulk", replacePatterns.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/patterns/{patternId}", updatePattern.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/patterns/{patternId}", deletePattern.Handle).Methods(http.MethodDelete)

	// --- Слоты ---
	protected.HandleFunc("/generate-slots", generateSlots.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/slots", listSlots.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/slots/booked-status", setBookedStatus.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/slots/blocked-status", setBlockedStatus.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/slots/{slotId}", deleteSlot.Handle).Methods(http.MethodDelete)

	// --- Прогоны генерации ---
	protected.HandleFunc("/generation-jobs", generationJobs.List).Methods(http.MethodGet)
	protected.HandleFunc("/generation-jobs", generationJobs.Trigger).Methods(http.MethodPost)
	protected.HandleFunc("/generation-jobs/{jobId}", generationJobs.Get).Methods(http.MethodGet)

	// CORS для кабинета консультанта
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", middleware.ConsultantIDHeader},
	}).Handler(r)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      corsHandler,
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
	<-ctx.Done()

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	if err := listener.Stop(); err != nil {
		log.Error("Failed to stop rabbitmq listener: %v", err)
	}
	slotScheduler.Stop()

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	log.Info("Server stopped gracefully")
}
