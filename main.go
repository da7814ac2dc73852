package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"plantnet/admin"
	"plantnet/auth"
	"plantnet/config"
	"plantnet/db"
	"plantnet/idempotency"
	"plantnet/mailer"
	"plantnet/middleware"
	"plantnet/mq"
	"plantnet/orders"
	"plantnet/pay"
	"plantnet/plants"
	"plantnet/ratelim"
	"plantnet/rdx"
	"plantnet/reports"
	"plantnet/routes"
	"plantnet/stripe"
	"plantnet/users"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

func setupLogger(cfg config.Config) {
	zerolog.TimeFieldFormat = time.RFC3339
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && cfg.LogLevel != "" {
		zerolog.SetGlobalLevel(lvl)
	}
	if !cfg.Production() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func newBroker(ctx context.Context, cfg config.Config) (mq.Broker, error) {
	if cfg.EventBroker == "kafka" {
		return mq.NewKafkaBroker(cfg.KafkaBrokers, cfg.KafkaTopic, "plantnet-notifier"), nil
	}
	conn, err := rdx.Connect(ctx, cfg.RedisAddr)
	if err != nil {
		return nil, err
	}
	return mq.NewRedisBroker(conn, mq.NotificationsChannel), nil
}

func newSender(cfg config.Config) mq.Sender {
	smtp := mailer.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	if !smtp.Enabled() {
		log.Warn().Msg("SMTP_USER/SMTP_PASS not set; notifications will only be logged")
		return mailer.LogSender{}
	}
	return smtp
}

func newIdentityVerifier(cfg config.Config) auth.IdentityVerifier {
	switch {
	case cfg.DevLogin:
		log.Warn().Msg("DEV_LOGIN enabled; POST /jwt trusts the posted email")
		return auth.UnverifiedEmail{}
	case len(cfg.IdentitySecret) > 0:
		return auth.NewIDTokenVerifier(cfg.IdentitySecret, cfg.IdentityIssuer, cfg.IdentityAudience)
	default:
		log.Warn().Msg("IDENTITY_TOKEN_SECRET not set; POST /jwt will refuse every request")
		return nil
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	setupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongo, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to MongoDB")
	}
	if err := mongo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("ensure indexes")
	}

	broker, err := newBroker(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("connect event broker")
	}
	queue := mq.NewQueue(broker, 256)
	go queue.Run(ctx)
	go func() {
		if err := mq.NewDispatcher(broker, newSender(cfg)).Run(ctx); err != nil {
			log.Error().Err(err).Msg("notification dispatcher stopped")
		}
	}()

	if cfg.StripeKey == "" {
		log.Warn().Msg("STRIPE_SECRET_KEY not set; payment intents will fail")
	}

	userSvc := users.NewService(users.NewMongoStore(mongo.UserCollection))
	plantStore := plants.NewStore(mongo.PlantsCollection)
	engine := orders.NewEngine(plantStore, orders.NewMongoStore(mongo.OrdersCollection), mongo, queue)
	reconciler := pay.NewReconciler(plantStore, stripe.NewIntents(cfg.StripeKey), cfg.Currency)
	aggregator := reports.NewAggregator(reports.NewMongoStore(mongo.UserCollection, mongo.PlantsCollection, mongo.OrdersCollection))

	limiter := ratelim.NewRateLimiter(cfg.RateLimitRPS, int(cfg.RateLimitRPS)+1)
	go func() {
		t := time.NewTicker(time.Minute)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				limiter.Sweep()
			}
		}
	}()

	router := httprouter.New()
	routes.RegisterRoutes(router, routes.Deps{
		Gate:        middleware.NewGate(userSvc, cfg.Secret),
		Limiter:     limiter,
		Idempotency: idempotency.NewGuard(idempotency.NewMongoStore(mongo.IdempotencyCollection), 24*time.Hour),
		Sessions:    auth.NewSessions(cfg.Secret, cfg.TokenTTL, cfg.Production(), newIdentityVerifier(cfg)),
		Users:       users.NewHandler(userSvc),
		Admin:       admin.NewHandler(userSvc),
		Plants:      plants.NewHandler(plantStore),
		Orders:      orders.NewHandler(engine),
		Pay:         pay.NewHandler(reconciler),
		Reports:     reports.NewHandler(aggregator),
		Ping: func(ctx context.Context) error {
			return mongo.Client.Ping(ctx, readpref.Primary())
		},
	})

	// CORS → security headers → logging → router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigin,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", idempotency.Header},
		AllowCredentials: true,
	}).Handler(router)

	addr := cfg.Port
	if !strings.HasPrefix(addr, ":") {
		addr = ":" + addr
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           middleware.Logging(middleware.SecurityHeaders(corsHandler)),
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received; shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if err := broker.Close(); err != nil {
		log.Error().Err(err).Msg("close event broker")
	}
	if err := mongo.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("disconnect MongoDB")
	}
	log.Info().Msg("server stopped cleanly")
}
