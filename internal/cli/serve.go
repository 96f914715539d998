package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"

	"inviteplanner/config"
	_ "inviteplanner/docs"
	"inviteplanner/internal/adapters/auth"
	delivery "inviteplanner/internal/delivery/http"
	"inviteplanner/internal/delivery/http/controllers"
	"inviteplanner/internal/domain"
	"inviteplanner/internal/paging"
	"inviteplanner/internal/repository/mongodb"
	"inviteplanner/internal/repository/postgres"
	"inviteplanner/internal/services"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Connect to PostgreSQL and MongoDB, apply the schema and indexes, and
serve the API until SIGINT or SIGTERM. In-flight requests get a grace period
to finish on shutdown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.RequireJWTSecret(); err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		db, err := openPostgres(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		client, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.ContextTimeout)
		if err != nil {
			return err
		}
		defer client.Disconnect(context.Background())
		mdb := client.Database(cfg.MongoDatabase)

		if err := prepareStores(ctx, db, mdb); err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           newHandler(cfg, logger, db, mdb),
			ReadHeaderTimeout: 10 * time.Second,
		}
		return runServer(ctx, srv, logger)
	},
}

// newHandler wires repositories, services and controllers into the API handler.
func newHandler(c *config.Config, logger *slog.Logger, db *sql.DB, mdb *mongo.Database) http.Handler {
	plans := domain.Plans(c.PlanQuotas)
	jwt := auth.NewJWT(c.JWTSecret, c.JWTIssuer)

	userRepo := postgres.NewUserRepository(db)
	roleRepo := postgres.NewRoleRepository(db)
	invitationRepo := mongodb.NewInvitationRepository(mdb)
	paymentRepo := mongodb.NewPaymentRepository(mdb)

	userService := services.NewUserService(userRepo, roleRepo, auth.NewBcryptHasher(c.BcryptCost), jwt, c.JWTExpiry, c.ContextTimeout)
	capabilityService := services.NewCapabilityService(paymentRepo, invitationRepo, plans, c.FreeInvitations, c.ContextTimeout)
	invitationService := services.NewInvitationService(invitationRepo, capabilityService, paging.Config{
		DefaultLimit: c.PageDefaultLimit,
		ValidID:      mongodb.CursorValidator(c.CursorIDValidator()),
		Logger:       logger,
	}, c.ContextTimeout)
	paymentService := services.NewPaymentService(paymentRepo, plans, c.ContextTimeout)

	mux := delivery.NewRouter(delivery.Routes{
		Users:       controllers.NewUserController(logger, userService, capabilityService),
		Invitations: controllers.NewInvitationController(logger, invitationService, c.PageMaxLimit),
		Payments:    controllers.NewPaymentController(logger, paymentService),
	}, jwt, logger)
	return delivery.WithMiddleware(mux, logger, c.CORSAllowedOrigins)
}

// runServer serves until ctx is done, then shuts srv down gracefully.
func runServer(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", shutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}
