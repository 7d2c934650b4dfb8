package app

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shandysiswandi/skillport/internal/pkg/clock"
	"github.com/shandysiswandi/skillport/internal/pkg/config"
	"github.com/shandysiswandi/skillport/internal/pkg/goroutine"
	"github.com/shandysiswandi/skillport/internal/pkg/instrument"
	"github.com/shandysiswandi/skillport/internal/pkg/jwt"
	"github.com/shandysiswandi/skillport/internal/pkg/mail"
	"github.com/shandysiswandi/skillport/internal/pkg/messaging"
	"github.com/shandysiswandi/skillport/internal/pkg/otp"
	"github.com/shandysiswandi/skillport/internal/pkg/ratelimit"
	"github.com/shandysiswandi/skillport/internal/pkg/router"
	"github.com/shandysiswandi/skillport/internal/pkg/uid"
	"github.com/shandysiswandi/skillport/internal/pkg/validator"
	"github.com/shandysiswandi/skillport/internal/verification/outbound/store"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	uid       uid.NumberID
	uuid      uid.StringID
	code      otp.Generator
	jwt       jwt.JWT

	// resources
	redisConn redis.UniversalClient
	dbConn    *pgxpool.Pool
	mongoConn *mongo.Client
	store     store.Store
	cooldown  ratelimit.Cooldown
	mail      mail.Mail
	templates *mail.Templates
	messaging messaging.Messaging

	// server
	router     *router.Router
	httpServer *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initJWT()
	app.initRedis()
	app.initDatabase()
	app.initMongo()
	app.initStore()
	app.initCooldown()
	app.initMail()
	app.initMessaging()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
