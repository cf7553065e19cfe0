package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/yeremiapane/clubday/config"
	"github.com/yeremiapane/clubday/database"
	"github.com/yeremiapane/clubday/models"
	"github.com/yeremiapane/clubday/realtime"
	"github.com/yeremiapane/clubday/router"
	"github.com/yeremiapane/clubday/services"
	"github.com/yeremiapane/clubday/utils"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:   "clubday",
	Short: "clubday runs the day-use club ordering backend.",
	Long: `clubday serves the table ordering, kitchen display, reservation,
inventory and reporting API for a day-use leisure club.`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and websocket server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := bootstrap()
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg, db)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply schema migrations and default settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, err := bootstrap()
		return err
	},
}

var seedAdmin services.RegisterInput

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the first admin account",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := bootstrap()
		if err != nil {
			return err
		}
		seedAdmin.Role = models.RoleAdmin
		user, err := services.NewAuthService(db, cfg.JWTTTL).Register(cmd.Context(), seedAdmin)
		if err != nil {
			return fmt.Errorf("create admin: %w", err)
		}
		utils.InfoLogger.Printf("Admin %s created with id %d", user.Email, user.ID)
		return nil
	},
}

var cleanupIdle time.Duration

var sessionsCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Close client sessions idle for longer than --idle",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := bootstrap()
		if err != nil {
			return err
		}
		idle := cleanupIdle
		if idle <= 0 {
			idle = cfg.SessionIdleTimeout
		}
		closed, err := services.NewSessionService(db).CleanupIdle(cmd.Context(), idle)
		if err != nil {
			return err
		}
		utils.InfoLogger.Printf("Closed %d idle sessions", len(closed))
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedAdmin.Name, "name", "Administrador", "admin display name")
	seedCmd.Flags().StringVar(&seedAdmin.Email, "email", "", "admin email")
	seedCmd.Flags().StringVar(&seedAdmin.Password, "password", "", "admin password")
	_ = seedCmd.MarkFlagRequired("email")
	_ = seedCmd.MarkFlagRequired("password")

	sessionsCleanupCmd.Flags().DurationVar(&cleanupIdle, "idle", 0, "idle duration (defaults to SESSION_IDLE_TIMEOUT)")
	sessionsCmd := &cobra.Command{Use: "sessions", Short: "Client session maintenance"}
	sessionsCmd.AddCommand(sessionsCleanupCmd)

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, sessionsCmd)
}

// bootstrap loads configuration, connects and migrates the database.
func bootstrap() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	utils.InitLogger(cfg.LogLevel)
	utils.SetJWTSecret(cfg.JWTSecret)

	db, err := config.InitDB(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	if err := database.SeedDefaults(db); err != nil {
		return nil, nil, fmt.Errorf("seed defaults: %w", err)
	}
	return cfg, db, nil
}

func serve(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	svc := services.NewContainer(db, cfg)
	hub := realtime.NewHub()

	changes := services.NewChangeMonitor(db, hub, cfg.ChangePollInterval)
	changes.Start()
	defer changes.Stop()

	activity := services.NewActivityMonitor(svc.Activity, hub, cfg.ActivityRefreshInterval)
	activity.Start()
	defer activity.Stop()

	janitor := services.NewJanitor(svc.Sessions, svc.Carts, cfg.SessionIdleTimeout, cfg.JanitorInterval)
	janitor.Start()
	defer janitor.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.SetupRouter(svc, hub, cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	utils.InfoLogger.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
