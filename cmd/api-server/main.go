package main

import (
	"flag"
	"net/http"
	"sync"

	"github.com/juniorleague/api-server/internals/auction"
	"github.com/juniorleague/api-server/internals/auth"
	"github.com/juniorleague/api-server/internals/livebid"
	"github.com/juniorleague/api-server/internals/notification"
	"github.com/juniorleague/api-server/internals/players"
	"github.com/juniorleague/api-server/internals/roster"
	"github.com/juniorleague/api-server/pkg/conf"
	"github.com/juniorleague/api-server/pkg/kvstore"
	"github.com/juniorleague/api-server/pkg/logger"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	DB       *gorm.DB
	R        *chi.Mux
	WS       map[*websocket.Conn]*WSDetails
	ClientsM sync.Mutex
	KVStore  kvstore.KVStore
	Log      *zap.Logger
	Cfg      *conf.Config

	Auth          *auth.AuthService
	Auction       *auction.AuctionService
	Players       *players.PlayerService
	Roster        *roster.RosterService
	LiveBid       *livebid.LiveBidService
	Notifications *notification.NotificationService
}

func main() {
	confDir := flag.String("config", ".", "directory holding conf.yaml")
	flag.Parse()

	cfg, err := conf.Load(*confDir)
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	gdb, err := initDB(cfg)
	failOnError(log, err, "Failed to open database")

	kv, err := initKVStore(cfg, log)
	failOnError(log, err, "Failed to connect to redis")

	app := newApp(cfg, log, gdb, kv)

	if cfg.AMQP.Enabled {
		broker, err := app.initBroker()
		failOnError(log, err, "Failed to set up RabbitMQ")
		defer broker.Close()
	}

	log.Info("Listening", zap.String("addr", cfg.Server.Addr), zap.String("league", cfg.League.Name))
	if err := http.ListenAndServe(cfg.Server.Addr, app.R); err != nil {
		log.Fatal("Server stopped", zap.Error(err))
	}
}
