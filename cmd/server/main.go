package main

import (
	"context"
	"fmt"
	"github.com/countyhealth/portal/internal/api"
	"github.com/countyhealth/portal/internal/config"
	"github.com/countyhealth/portal/internal/dashboard"
	"github.com/countyhealth/portal/internal/selection"
	"github.com/countyhealth/portal/internal/session"
	"github.com/countyhealth/portal/internal/session/storage/badger"
	"github.com/countyhealth/portal/internal/session/storage/inmem"
	"github.com/countyhealth/portal/internal/task"
	"github.com/countyhealth/portal/internal/upstream"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"os"
	"os/signal"
	"strings"
	"time"
)

func main() {
	// Set up zerolog to use pretty printing
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out: os.Stderr,
	})
	log.Info().Msg("starting up...")

	// Load the application configuration
	log.Info().Msg("loading configuration...")
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("could not load the configuration")
	}
	if cfg.IsEnvProduction() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Debug().Str("config", fmt.Sprintf("%+v", cfg)).Msg("")

	// Initialize the session storage driver
	log.Info().Str("driver", cfg.SessionStorageDriver).Msg("initializing session storage...")
	driver, err := initializeSessionStorage(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("could not initialize the session storage")
	}
	defer driver.Close()

	// Restore a previously persisted session, if any
	sessions := session.NewStore(driver)
	if restored := sessions.Restore(context.Background()); restored != nil {
		log.Info().Bool("super_user", restored.IsSuperUser).Msg("restored a persisted session")
	}

	// Create the backend gateway client, the dashboard resolver and the county selection controller
	gateway := upstream.NewClient(cfg.BackendBaseURL, cfg.BackendTimeout, sessions)
	defer gateway.Close()
	resolver := dashboard.New(gateway, sessions)
	controller := selection.NewController(gateway, resolver, sessions)

	// Start up the portal API
	log.Info().Str("portal_api", cfg.PortalAPIListenAddress).Msg("starting up the portal API...")
	apis := &api.Service{
		Config:     cfg,
		Sessions:   sessions,
		Gateway:    gateway,
		Resolver:   resolver,
		Controller: controller,
	}
	apiErrs := make(chan error, 1)
	apis.Startup(apiErrs)
	go func() {
		err := <-apiErrs
		log.Fatal().Err(err).Msg("the API service raised an unexpected error")
	}()
	defer func() {
		log.Info().Msg("shutting down the portal API...")
		apis.Shutdown()
	}()

	log.Info().Msg("done!")
	defer log.Info().Msg("shutting down...")

	// Wait for the application to be terminated
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt)
	<-shutdown
}

func initializeSessionStorage(cfg *config.Config) (session.Driver, error) {
	switch strings.ToLower(cfg.SessionStorageDriver) {
	case "badger":
		driver := badger.New(cfg.SessionStoragePath)
		if err := driver.Initialize(context.Background()); err != nil {
			return nil, err
		}

		// Schedule a task that runs the badger value log GC
		maintenance := task.NewRepeating(func() {
			if err := driver.Maintain(); err != nil {
				log.Error().Err(err).Msg("could not run the session storage maintenance cycle")
			}
		}, 5*time.Minute)
		maintenance.Start()

		return driver, nil
	case "memory":
		return inmem.New()
	default:
		return nil, fmt.Errorf("unknown session storage driver '%s'", cfg.SessionStorageDriver)
	}
}
