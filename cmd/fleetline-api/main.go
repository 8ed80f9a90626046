// README: API server entry point: config, infrastructure, wiring, serve.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"fleetline/internal/config"
	httpapi "fleetline/internal/http"
	"fleetline/internal/http/handlers"
	"fleetline/internal/infra"
	"fleetline/internal/maps"
	"fleetline/internal/modules/assignment"
	"fleetline/internal/modules/availability"
	"fleetline/internal/modules/notify"
	"fleetline/internal/modules/pricing"
	"fleetline/internal/modules/rating"
	"fleetline/internal/modules/trip"
	"fleetline/internal/modules/triprequest"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	pool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	rdb := infra.NewRedis(cfg.Redis.Addr)
	defer rdb.Close()

	amqpConn, amqpCh, err := infra.NewAMQP(cfg.AMQP.URL, notify.DefaultExchange)
	if err != nil {
		log.Fatalf("rabbitmq: %v", err)
	}
	defer amqpConn.Close()
	sink := notify.NewAMQPSink(amqpCh, notify.DefaultExchange)

	tripStore := trip.NewStore(pool)
	requestStore := triprequest.NewStore(pool)
	availabilityStore := availability.NewStore(pool)
	ratingStore := rating.NewStore(pool)

	var policy availability.LocationPolicy
	if cfg.Maps.APIKey != "" {
		places, err := maps.NewPlacesService(cfg.Maps.APIKey)
		if err != nil {
			log.Fatalf("maps: %v", err)
		}
		policy = availability.NewPlacePolicy(places)
	}

	window := time.Duration(cfg.Assignment.ConflictWindowMins) * time.Minute
	tripService := trip.NewService(tripStore, pricing.NewService(cfg.Pricing))
	matcher := availability.NewService(
		availabilityStore, tripStore, requestStore,
		availability.NewOffers(rdb), policy, window,
	)
	ratingService := rating.NewService(ratingStore)
	workflow := assignment.NewService(pool, tripStore, requestStore, sink, ratingService, window)

	router := httpapi.NewRouter(httpapi.Handlers{
		Trips:    handlers.NewTripHandler(tripService, workflow, matcher),
		Requests: handlers.NewRequestHandler(workflow, requestStore),
		Drivers:  handlers.NewDriverHandler(availabilityStore, matcher),
	})

	srv := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: router,
	}

	go func() {
		log.Printf("listening on %s", cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
