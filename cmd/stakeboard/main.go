package main

import (
	"os"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/xrpstake/stakeboard/adapters/events"
	"github.com/xrpstake/stakeboard/adapters/session"
	"github.com/xrpstake/stakeboard/adapters/statusws"
	"github.com/xrpstake/stakeboard/adapters/store"
	"github.com/xrpstake/stakeboard/adapters/xrpl"
	"github.com/xrpstake/stakeboard/adapters/xumm"
	"github.com/xrpstake/stakeboard/internal/config"
	"github.com/xrpstake/stakeboard/service"
	"github.com/xrpstake/stakeboard/transport/http"
)

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if !cfg.Production {
		log = log.Level(zerolog.DebugLevel)
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid redis url")
	}
	redisClient := redis.NewClient(opts)

	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{
			Client: redisClient,
		},
		watermill.NewStdLogger(false, false),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create event publisher")
	}

	requests := xumm.New(xumm.Config{
		BaseURL:     cfg.XummAPIURL,
		APIKey:      cfg.XummAPIKey,
		APISecret:   cfg.XummAPISecret,
		CallbackURL: cfg.AppBaseURL + "/auth/login/callback",
	}, log)
	ledger := xrpl.NewGateway(cfg.XRPLNodeURL, log)
	sessions := session.NewCookieStore(cfg.Production)
	consumed := store.NewRedisStore(redisClient)
	eventPub := events.NewWatermillPublisher(publisher)
	status := statusws.NewChannel(log)

	coordinator := service.NewHandshakeCoordinator(requests, status, consumed, eventPub, log)
	escrows := service.NewEscrowViewBuilder(ledger, log)

	handlers := http.NewHandlers(coordinator, escrows, sessions, log)
	router := http.SetupRouter(handlers, sessions, log)

	log.Info().Str("addr", cfg.ListenAddr).Msg("starting server")
	if err := router.Run(cfg.ListenAddr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
