package main

import (
	"context"
	"encoding/json"

	"github.com/juniorleague/api-server/db"
	"github.com/juniorleague/api-server/internals/auction"
	"github.com/juniorleague/api-server/internals/auth"
	"github.com/juniorleague/api-server/internals/livebid"
	"github.com/juniorleague/api-server/internals/notification"
	"github.com/juniorleague/api-server/internals/players"
	"github.com/juniorleague/api-server/internals/roster"
	"github.com/juniorleague/api-server/pkg/conf"
	"github.com/juniorleague/api-server/pkg/kvstore"
	"github.com/juniorleague/api-server/pkg/mq"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func failOnError(log *zap.Logger, err error, msg string) {
	if err != nil {
		log.Panic(msg, zap.Error(err))
	}
}

func initDB(cfg *conf.Config) (*gorm.DB, error) {
	gdb, err := db.Open(cfg.Postgres.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(gdb); err != nil {
		return nil, err
	}
	return gdb, nil
}

func initKVStore(cfg *conf.Config, log *zap.Logger) (kvstore.KVStore, error) {
	if !cfg.Redis.Enabled {
		log.Warn("Redis disabled, using embedded store")
		return kvstore.NewEmbedded()
	}
	return kvstore.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
}

// newApp wires services and routes. Bid events go straight to the
// websocket clients until initBroker routes them through RabbitMQ.
func newApp(cfg *conf.Config, log *zap.Logger, gdb *gorm.DB, kv kvstore.KVStore) *App {
	app := &App{
		DB:      gdb,
		WS:      make(map[*websocket.Conn]*WSDetails),
		KVStore: kv,
		Log:     log,
		Cfg:     cfg,
	}

	app.Auth = auth.New(kv, gdb, log, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	app.Auction = auction.New(kv, gdb, log, cfg.Recommendation.CacheTTL)
	app.Players = players.New(gdb, log, app.Auction)
	app.Roster = roster.New(gdb, log, cfg.League.Budget)
	app.Notifications = notification.New(gdb)
	app.LiveBid = livebid.New(gdb, kv, log, app.Roster, app.Notifications,
		livebid.PublisherFunc(app.broadcastLocal),
		livebid.Options{
			MinimumBid:       cfg.League.MinimumBid,
			MinimumIncrement: cfg.League.MinimumIncrement,
		})

	r := chi.NewRouter()
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}).Handler)
	app.R = r

	app.initHandlers()
	return app
}

func (app *App) broadcastLocal(_ context.Context, event livebid.BidEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	app.BidPicker(data)
	return nil
}

// initBroker publishes bid events to the fanout exchange and relays what
// comes back to this instance's websocket clients, so every API replica sees
// every bid.
func (app *App) initBroker() (*mq.Broker, error) {
	broker, err := mq.Dial(app.Cfg.AMQP.URL, app.Cfg.AMQP.Exchange)
	if err != nil {
		return nil, err
	}

	msgs, err := broker.Consume()
	if err != nil {
		broker.Close()
		return nil, err
	}

	app.LiveBid.Events = livebid.PublisherFunc(func(ctx context.Context, event livebid.BidEvent) error {
		return broker.PublishJSON(ctx, event)
	})

	go func() {
		for d := range msgs {
			app.Log.Debug("Bid event received", zap.ByteString("body", d.Body))
			app.BidPicker(d.Body)
		}
		app.Log.Warn("Bid event consumer stopped")
	}()

	app.Log.Info("Bid events routed through RabbitMQ", zap.String("exchange", app.Cfg.AMQP.Exchange))
	return broker, nil
}
