package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"thermohub/internal/handlers"
	"thermohub/internal/logger"
	"thermohub/internal/mqtt"
	"thermohub/internal/repository"
	"thermohub/internal/server"
	"thermohub/internal/service"

	"github.com/spf13/viper"
)

func main() {
	// init logger, load config.yml
	if err := loadConfig(); err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}
	log := logger.Get(viper.GetString("log.level"))

	// daily event store
	repos, err := openStore(log)
	if err != nil {
		log.Fatalw("failed to init event store", "err", err)
	}
	defer func() {
		if cerr := repos.Events.Close(); cerr != nil {
			log.Errorw("failed to close event store", "err", cerr)
		}
	}()

	// transport
	transport, err := connectBroker(log)
	if err != nil {
		log.Fatalw("failed to connect mqtt broker", "err", err)
	}
	defer func() { _ = transport.Close() }()

	// wire dependencies
	services := service.NewService(repos, transport, log, viper.GetInt("fanout.buffer"))
	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// reconstruct latest state from today's log, then start merging
	services.Merger.Seed(ctx)
	go services.Merger.Run(ctx)

	if err := transport.SubscribeFeeds(services.Merger.SensorFeed(), services.Merger.StatusFeed()); err != nil {
		log.Fatalw("failed to subscribe feeds", "err", err)
	}

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

// openStore prepares the store directory and the per-day repository.
func openStore(log *logger.Logger) (*repository.Repository, error) {
	dir := viper.GetString("db.dir")
	if dir == "" {
		log.Infow("db.dir not set in config; using default directory", "default", "database")
		dir = "database"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return repository.NewRepository(dir), nil
}

// connectBroker connects the paho client with the configured topics.
func connectBroker(log *logger.Logger) (mqtt.Client, error) {
	broker := viper.GetString("mqtt.broker")
	if broker == "" {
		broker = "tcp://localhost:1883"
	}
	clientID := viper.GetString("mqtt.client_id")
	if clientID == "" {
		clientID = "thermohub"
	}

	topics := mqtt.DefaultTopics()
	if t := viper.GetString("mqtt.topics.sensor"); t != "" {
		topics.Sensor = t
	}
	if t := viper.GetString("mqtt.topics.status"); t != "" {
		topics.Status = t
	}
	if t := viper.GetString("mqtt.topics.command"); t != "" {
		topics.Command = t
	}

	return mqtt.NewRealClient(broker, clientID, topics, log)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "5001"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down hub...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
