package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinicops/config"
	"clinicops/cron"
	"clinicops/database"
	"clinicops/database/repository"
	"clinicops/handlers"
	"clinicops/middleware"
	"clinicops/routes"
	"clinicops/services/appointment"
	"clinicops/services/dentist"
	"clinicops/services/notification"
	"clinicops/services/patient"
	"clinicops/services/scheduling"
	"clinicops/services/tasks"
	"clinicops/services/user"
	"clinicops/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer func() { _ = logger.Sync() }()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		if config.AppConfig.JWTSecret == "" {
			logger.Fatal("JWT_SECRET must be set in production")
		}
	}

	database.InitDB()
	utils.InitCache()
	utils.InitAuthCache()

	repos := repository.NewMongoRepositories(database.DB())

	queue := asynq.NewClient(utils.QueueRedisOpt())
	defer queue.Close()

	// services.
	userService := &user.DefaultUserService{
		Repo:      repos.Users,
		AuthCache: utils.GetAuthCacheClient(),
		TokenTTL:  time.Duration(config.AppConfig.TokenTTLHours) * time.Hour,
	}
	patientService := &patient.DefaultPatientService{
		Repo:      repos.Patients,
		Sequences: repos.Sequences,
		Users:     repos.Users,
		AuthCache: utils.GetAuthCacheClient(),
	}
	appointmentService := &appointment.DefaultAppointmentService{
		Appointments: repos.Appointments,
		Dentists:     repos.Dentists,
		Patients:     repos.Patients,
		Sequences:    repos.Sequences,
		Cache:        utils.GetCacheClient(),
		Reminders:    &tasks.AsynqReminderScheduler{Client: queue},
		Machine:      scheduling.NewMachine(),
		Settings: appointment.Settings{
			SlotCacheTTL: seconds(config.AppConfig.SlotCacheTTLSeconds),
			LockTTL:      seconds(config.AppConfig.BookingLockTTLSeconds),
			ReminderLead: time.Duration(config.AppConfig.ReminderLeadHours) * time.Hour,
			Location:     config.ClinicLocation(),
		},
	}
	dentistService := &dentist.DefaultDentistService{
		Repo:      repos.Dentists,
		Sequences: repos.Sequences,
		Observer:  appointmentService,
	}

	worker := cron.InitReminderWorker(&cron.ReminderHandler{
		Appointments: repos.Appointments,
		Dispatcher:   notification.LogDispatcher{},
	})

	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	defer stopMonitor()
	utils.StartHealthMonitor(monitorCtx, 30*time.Second,
		[]*redis.Client{utils.GetCacheClient(), utils.GetAuthCacheClient()}, database.MongoClient)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))

	handlerBundle := &handlers.HandlerBundle{
		UserRepo:     repos.Users,
		AuthCache:    utils.GetAuthCacheClient(),
		Auth:         handlers.NewAuthHandler(userService),
		Patients:     handlers.NewPatientHandler(patientService),
		Dentists:     handlers.NewDentistHandler(dentistService),
		Appointments: handlers.NewAppointmentHandler(appointmentService),
	}
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Info("Starting server", zap.String("addr", srv.Addr))
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Server is shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	worker.Shutdown()
	stopMonitor()
	if err := database.Disconnect(ctx); err != nil {
		logger.Error("Failed to disconnect from MongoDB", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
