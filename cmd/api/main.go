package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/georgemunganga/mascotas-backend/internal/config"
	"github.com/georgemunganga/mascotas-backend/internal/modules/admin"
	"github.com/georgemunganga/mascotas-backend/internal/modules/auth"
	"github.com/georgemunganga/mascotas-backend/internal/modules/cart"
	"github.com/georgemunganga/mascotas-backend/internal/modules/catalog"
	"github.com/georgemunganga/mascotas-backend/internal/modules/order"
	"github.com/georgemunganga/mascotas-backend/internal/modules/routing"
	"github.com/georgemunganga/mascotas-backend/internal/modules/user"
	"github.com/georgemunganga/mascotas-backend/internal/platform/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func logger(prefix string) *log.Logger {
	return log.New(os.Stderr, prefix+": ", log.LstdFlags)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer backend.Close()
	log.Printf("storage driver: %s", cfg.StorageDriver)

	// ── Users ───────────────────────────────────────────────
	var userRepo user.Repository
	if backend.DB != nil {
		if err := user.EnsureSchema(ctx, backend.DB); err != nil {
			log.Fatal(err)
		}
		userRepo = user.NewPostgresRepository(backend.DB)
	} else {
		userRepo = user.NewMemoryRepository()
	}
	if err := user.Seed(ctx, userRepo, user.DefaultSeed()); err != nil {
		log.Fatal(err)
	}

	// ── Stores ──────────────────────────────────────────────
	catalogStore, err := catalog.NewStore(ctx, backend.Storage, logger("catalog"))
	if err != nil {
		log.Fatal(err)
	}
	cartStore := cart.NewStore(ctx, backend.Storage, logger("cart"))
	sessionStore := auth.NewStore(ctx, userRepo, backend.Storage, auth.Options{
		Tokens: auth.NewTokens([]byte(cfg.JWTSecret), cfg.TokenTTL),
		Delay:  cfg.AuthDelay,
	}, logger("session"))
	userService := user.NewService(userRepo, logger("user"), sessionStore.AccountChanged)

	orderRepo := order.NewStorageRepository(ctx, backend.Storage, logger("order"))
	orderService := order.NewService(orderRepo, cartStore, logger("order"))

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Location", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.NotFound(routing.NotFound)

	shoppers := routing.Require(sessionStore, user.RoleAdmin, user.RoleCustomer)
	admins := routing.Require(sessionStore, user.RoleAdmin)

	// ── Public views ────────────────────────────────────────
	catalogHandler := catalog.NewHandler(catalogStore)
	catalogHandler.RegisterRoutes(router)
	auth.NewHandler(sessionStore).RegisterRoutes(router)
	routing.NewHandler(sessionStore, routing.Table).RegisterRoutes(router)

	// ── Customer & admin ────────────────────────────────────
	cart.NewHandler(cartStore, catalogStore).RegisterRoutes(router, shoppers)
	orderHandler := order.NewHandler(orderService, sessionStore)
	orderHandler.RegisterRoutes(router, shoppers)

	// ── Admin only ──────────────────────────────────────────
	admin.NewHandler(
		admin.NewService(userService, catalogStore, orderService),
		catalogHandler.RegisterAdminRoutes,
		user.NewHandler(userService).RegisterRoutes,
		orderHandler.RegisterAdminRoutes,
	).RegisterRoutes(router, admins)

	// ── Start Server ─────────────────────────────────────────
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router}
	go func() {
		<-ctx.Done()
		log.Println("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("Mascotas API server starting on :%s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
