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

  "golang.org/x/sync/errgroup"

  "github.com/grdops/verificar-backend/internal/clients/redis"
  "github.com/grdops/verificar-backend/internal/db"
  "github.com/grdops/verificar-backend/internal/handlers"
  "github.com/grdops/verificar-backend/internal/logger"
  "github.com/grdops/verificar-backend/internal/middleware"
  "github.com/grdops/verificar-backend/internal/observability"
  "github.com/grdops/verificar-backend/internal/repos"
  "github.com/grdops/verificar-backend/internal/server"
  "github.com/grdops/verificar-backend/internal/services"
  "github.com/grdops/verificar-backend/internal/utils"
)

const serviceName = "verificar-backend"

func main() {
  // Logger
  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    fmt.Printf("Failed to init logger: %v\n", err)
    os.Exit(1)
  }
  defer log.Sync()

  ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
  defer stop()

  // Tracing
  otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
    ServiceName: serviceName,
    Environment: utils.GetEnv("DEPLOY_ENV", "development", log),
    Version:     utils.GetEnv("SERVICE_VERSION", "dev", log),
  })

  // Env
  log.Info("Loading environment variables from main...")
  jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
  accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
  refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
  cacheTTL := utils.GetEnvAsInt("ACTIVITY_CACHE_TTL", 600, log)

  // Database
  databaseService, err := db.NewDatabaseService(log)
  if err != nil {
    log.Error("Database init failed", "error", err)
    os.Exit(1)
  }
  if err = databaseService.AutoMigrateAuth(); err != nil {
    log.Warn("Auth auto migration failed", "error", err)
  }
  theDB := databaseService.DB()

  // Repos
  log.Info("Setting up repos from main...")
  activityRepo := repos.NewActivityRepo(theDB, log)
  userRepo := repos.NewUserRepo(theDB, log)
  userTokenRepo := repos.NewUserTokenRepo(theDB, log)

  // Cache (optional: the dashboard still works against the database alone)
  var contextCache services.ContextCache
  if cache, err := redis.NewContextCache(log, time.Duration(cacheTTL)*time.Second); err != nil {
    log.Warn("Redis cache unavailable, continuing without cache", "error", err)
  } else {
    contextCache = cache
  }

  // Services
  log.Info("Setting up services from main...")
  activityService := services.NewActivityService(theDB, log, activityRepo, contextCache)
  distributionService := services.NewDistributionService(log)
  authService := services.NewAuthService(
    theDB,
    log,
    userRepo,
    userTokenRepo,
    jwtSecretKey,
    time.Duration(accessTokenTTL)*time.Second,
    time.Duration(refreshTokenTTL)*time.Second,
  )

  // Handlers
  log.Info("Setting up handlers from main...")
  authHandler := handlers.NewAuthHandler(authService)
  activityHandler := handlers.NewActivityHandler(log, activityService)
  distributionHandler := handlers.NewDistributionHandler(log, activityService, distributionService)

  // Middleware
  authMiddleware := middleware.NewAuthMiddleware(log, authService)

  // Router
  log.Info("Setting up router from main...")
  router := server.NewRouter(server.RouterConfig{
    ServiceName:         serviceName,
    AuthHandler:         authHandler,
    AuthMiddleware:      authMiddleware,
    ActivityHandler:     activityHandler,
    DistributionHandler: distributionHandler,
  })

  port := utils.GetEnv("PORT", "8080", log)
  srv := &http.Server{
    Addr:    ":" + port,
    Handler: router,
  }

  g, gctx := errgroup.WithContext(ctx)
  g.Go(func() error {
    log.Info("Server listening", "port", port)
    if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
      return err
    }
    return nil
  })
  g.Go(func() error {
    <-gctx.Done()
    shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    if otelShutdown != nil {
      _ = otelShutdown(shutdownCtx)
    }
    return srv.Shutdown(shutdownCtx)
  })

  if err := g.Wait(); err != nil {
    log.Error("Server failed", "error", err)
    os.Exit(1)
  }
  log.Info("Server stopped")
}
