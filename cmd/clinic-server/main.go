package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dentora/clinic-server/internal/config"
	"github.com/dentora/clinic-server/internal/domain/booking"
	"github.com/dentora/clinic-server/internal/domain/identity"
	"github.com/dentora/clinic-server/internal/domain/roster"
	"github.com/dentora/clinic-server/internal/domain/treatment"
	"github.com/dentora/clinic-server/internal/platform/db"
	"github.com/dentora/clinic-server/internal/platform/lock"
	"github.com/dentora/clinic-server/internal/platform/middleware"
	"github.com/dentora/clinic-server/internal/platform/notification"
)

// RosterShiftAdapter exposes the roster's working calendar to the booking
// allocator, avoiding a direct import between the two domains.
type RosterShiftAdapter struct {
	svc *roster.Service
}

func NewRosterShiftAdapter(svc *roster.Service) *RosterShiftAdapter {
	return &RosterShiftAdapter{svc: svc}
}

// WorkingWindows implements booking.ShiftSource.
func (a *RosterShiftAdapter) WorkingWindows(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]booking.WorkingWindow, error) {
	intervals, err := a.svc.ActiveIntervals(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}
	windows := make([]booking.WorkingWindow, 0, len(intervals))
	for _, iv := range intervals {
		windows = append(windows, booking.WorkingWindow{StartMin: iv.StartMin, EndMin: iv.EndMin})
	}
	return windows, nil
}

// TreatmentStepAdapter exposes treatment-plan steps to the booking allocator.
type TreatmentStepAdapter struct {
	svc *treatment.Service
}

func NewTreatmentStepAdapter(svc *treatment.Service) *TreatmentStepAdapter {
	return &TreatmentStepAdapter{svc: svc}
}

// Step implements booking.StepSource. The patient and doctor come from the
// step's plan.
func (a *TreatmentStepAdapter) Step(ctx context.Context, stepID uuid.UUID) (*booking.FollowUpStep, error) {
	st, err := a.svc.GetStep(ctx, stepID)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, nil
	}
	plan, err := a.svc.GetPlan(ctx, st.PlanID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, fmt.Errorf("treatment plan %s not found for step %s", st.PlanID, stepID)
	}
	return &booking.FollowUpStep{
		ID:        st.ID,
		PatientID: plan.PatientID,
		DoctorID:  plan.DoctorID,
		Seq:       st.Seq,
		BookingID: st.BookingID,
	}, nil
}

// LinkBooking implements booking.StepSource.
func (a *TreatmentStepAdapter) LinkBooking(ctx context.Context, stepID, bookingID uuid.UUID) error {
	return a.svc.MarkStepScheduled(ctx, stepID, bookingID)
}

// NotificationAdapter forwards booking transitions to the notification
// manager. Delivery runs in the background and never fails the booking
// operation; failures are logged and retryable through the notification API.
type NotificationAdapter struct {
	mgr      *notification.Manager
	identity *identity.Service
	logger   zerolog.Logger
}

func NewNotificationAdapter(mgr *notification.Manager, identitySvc *identity.Service, logger zerolog.Logger) *NotificationAdapter {
	return &NotificationAdapter{mgr: mgr, identity: identitySvc, logger: logger}
}

// BookingStatusChanged implements booking.Notifier.
func (a *NotificationAdapter) BookingStatusChanged(b *booking.Booking, previous booking.Status) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if b.PatientID == nil {
			return
		}
		patient, err := a.identity.GetPatient(ctx, *b.PatientID)
		if err != nil || patient == nil || patient.Email == nil {
			return
		}

		template := "booking-status-changed"
		if previous == "" {
			template = "booking-created"
		}
		data := map[string]string{
			"patient_name": patient.FullName,
			"date":         b.Date.Format("2006-01-02"),
			"time":         booking.MinuteOfDay(b.StartMin),
			"status":       string(b.Status),
		}
		if doctor, err := a.identity.GetDoctor(ctx, b.DoctorID); err == nil && doctor != nil {
			data["doctor_name"] = doctor.FullName
		}

		if _, err := a.mgr.SendFromTemplate(ctx, template, data, *patient.Email); err != nil {
			a.logger.Warn().Err(err).
				Str("booking_id", b.ID.String()).
				Msg("failed to send booking notification")
		}
	}()
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic-server",
		Short: "Dental clinic scheduling API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(tenantCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, _ := cmd.Flags().GetString("schema")
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			fmt.Printf("Running migrations on schema: %s\n", schema)

			count, err := migrator.Up(ctx, schema)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("schema", "tenant_default", "Target schema for migrations")
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, _ := cmd.Flags().GetString("schema")
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx, schema)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("Migration status for schema: %s\n", schema)
			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("schema", "tenant_default", "Target schema for migrations")
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func tenantCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenant",
		Short: "Manage tenants",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new tenant schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			dir, _ := cmd.Flags().GetString("dir")
			if name == "" {
				return fmt.Errorf("--name is required")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			fmt.Printf("Creating tenant schema: tenant_%s\n", name)
			if err := db.CreateTenantSchema(ctx, pool, name, dir); err != nil {
				return err
			}
			fmt.Println("Tenant created successfully.")
			return nil
		},
	}
	createCmd.Flags().String("name", "", "Tenant identifier (alphanumeric)")
	createCmd.Flags().String("dir", "./migrations", "Path to migrations directory")

	cmd.AddCommand(createCmd)
	return cmd
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid scheduling configuration")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID", "X-Tenant-ID"},
	}))
	e.Use(db.TenantMiddleware(pool, cfg.DefaultTenant))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	apiV1 := e.Group("/api/v1")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// Notification engine. Senders log instead of delivering until a real
	// provider is configured.
	emailSender := notification.NewLogEmailSender(logger)
	smsSender := notification.NewLogSMSSender(logger)
	notifyMgr := notification.NewManager(emailSender, smsSender, notification.NewTemplateEngine())
	notifyHandler := notification.NewHandler(notifyMgr)
	notifyHandler.RegisterRoutes(apiV1)

	// Identity domain
	doctorRepo := identity.NewDoctorRepoPG(pool)
	patientRepo := identity.NewPatientRepoPG(pool)
	identitySvc := identity.NewService(doctorRepo, patientRepo)
	identityHandler := identity.NewHandler(identitySvc)
	identityHandler.RegisterRoutes(apiV1)

	// Roster domain
	rosterRepo := roster.NewRepoPG(pool)
	rosterSvc := roster.NewService(rosterRepo)
	rosterHandler := roster.NewHandler(rosterSvc)
	rosterHandler.RegisterRoutes(apiV1)

	// Treatment domain
	treatmentRepo := treatment.NewRepoPG(pool)
	treatmentSvc := treatment.NewService(treatmentRepo)
	treatmentHandler := treatment.NewHandler(treatmentSvc)
	treatmentHandler.RegisterRoutes(apiV1)

	// Booking domain: the allocator serializes per-doctor mutations with a
	// keyed lock and runs every check-then-write inside a transaction.
	bookingRepo := booking.NewRepoPG(pool, cfg.StoreRetryAttempts)
	bookingRules := booking.Rules{
		SlotMinutes:        cfg.SlotMinutes,
		OpenMin:            cfg.BookingOpenMin,
		CloseMin:           cfg.BookingCloseMin,
		RescheduleCloseMin: cfg.RescheduleCloseMin,
	}
	bookingSvc := booking.NewService(
		bookingRepo,
		NewRosterShiftAdapter(rosterSvc),
		NewTreatmentStepAdapter(treatmentSvc),
		NewNotificationAdapter(notifyMgr, identitySvc, logger),
		lock.NewKeyed(),
		func(ctx context.Context, fn func(ctx context.Context) error) error {
			return db.WithTx(ctx, pool, fn)
		},
		bookingRules,
	)
	bookingHandler := booking.NewHandler(bookingSvc)
	bookingHandler.RegisterRoutes(apiV1)

	// Start server with graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
