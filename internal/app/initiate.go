package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/sethvargo/go-retry"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

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

func (a *App) initConfig() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to init config", "error", err)
		os.Exit(1)
	}

	//nolint:errcheck,gosec // ignore error
	os.Setenv("TZ", cfg.GetString("app.tz"))

	a.config = cfg
}

func (a *App) initInstrument() {
	ins, err := instrument.New(context.Background(), &instrument.Config{
		Enabled:          a.config.GetBool("instrument.enabled"),
		ServiceName:      a.config.GetString("instrument.service_name"),
		ServiceVersion:   a.config.GetString("instrument.service_version"),
		Environment:      a.config.GetString("instrument.env"),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       a.config.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: a.config.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  a.config.GetSecond("instrument.metric_interval_seconds"),
		MaskFields:       a.config.GetArray("instrument.log_mask_fields"),
		LogLevel:         a.config.GetString("instrument.log_level"),
	})
	if err != nil {
		slog.Error("failed to init instrumentation", "error", err)
		os.Exit(1)
	}
	a.ins = ins
}

func (a *App) initLibraries() {
	a.clock = clock.New()
	a.uuid = uid.NewUUID()
	a.goroutine = goroutine.NewManager(a.config.GetInt("app.server.max_goroutine"))
	a.code = otp.NewNumeric(a.config.GetBool("modules.verification.otp.allow_leading_zero"))

	validator, err := validator.NewV10Validator()
	if err != nil {
		slog.Error("failed to init validation v10 validator", "error", err)
		os.Exit(1)
	}
	a.validator = validator

	snow, err := uid.NewSnowflakeNode(a.config.GetInt64("app.node_id"))
	if err != nil {
		slog.Error("failed to init uid number snowflake", "error", err)
		os.Exit(1)
	}
	a.uid = snow
}

func (a *App) initJWT() {
	defaultJWT, err := jwt.NewHS512(jwt.Config{
		Secret:    []byte(a.config.GetString("jwt.secret")),
		Issuer:    a.config.GetString("jwt.issuer"),
		Audiences: a.config.GetArray("jwt.audiences"),
		TTL:       a.config.GetMinute("modules.verification.token.ttl_minutes"),
		Clock:     a.clock,
		UUID:      a.uuid,
	})
	if err != nil {
		slog.Error("failed to init jwt token", "error", err)
		os.Exit(1)
	}
	a.jwt = defaultJWT
}

func (a *App) storeDriver() string {
	return strings.TrimSpace(a.config.GetString("modules.verification.store.driver"))
}

// ping retries fn with exponential backoff so the service can start before
// its backing services are ready.
func (a *App) ping(name string, fn func(ctx context.Context) error) error {
	b := retry.NewExponential(200 * time.Millisecond)
	b = retry.WithCappedDuration(5*time.Second, b)
	b = retry.WithMaxRetries(uint64(max(a.config.GetInt("app.startup.ping_retries"), 0)), b)

	return retry.Do(a.ctx, b, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		if err := fn(pingCtx); err != nil {
			slog.Warn("dependency not ready, retrying", "name", name, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
}

func (a *App) initRedis() {
	if a.storeDriver() != store.DriverRedis && a.config.GetString("modules.verification.otp.cooldown_driver") != "redis" {
		return
	}

	opt, err := redis.ParseURL(a.config.GetString("redis.url"))
	if err != nil {
		slog.Error("failed to parse redis url", "error", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(opt)
	if err := a.ping("redis", func(ctx context.Context) error { return rdb.Ping(ctx).Err() }); err != nil {
		slog.Error("failed to init redis", "error", err)
		os.Exit(1)
	}

	a.redisConn = rdb
}

func (a *App) initDatabase() {
	if a.storeDriver() != store.DriverPostgres {
		return
	}

	config, err := pgxpool.ParseConfig(a.config.GetString("database.url"))
	if err != nil {
		slog.Error("failed to parse DB connection string.", "error", err)
		os.Exit(1)
	}

	config.MaxConns = a.config.GetInt32("database.pool.max_conns")
	config.MinConns = a.config.GetInt32("database.pool.min_conns")
	config.MaxConnLifetime = a.config.GetSecond("database.pool.max_conn_lifetime_seconds")
	config.MaxConnIdleTime = a.config.GetSecond("database.pool.max_conn_idle_seconds")
	config.HealthCheckPeriod = a.config.GetSecond("database.pool.health_check_period_seconds")

	pool, err := pgxpool.NewWithConfig(a.ctx, config)
	if err != nil {
		slog.Error("failed to create DB connection pool", "error", err)
		os.Exit(1)
	}

	if err := a.ping("postgres", pool.Ping); err != nil {
		slog.Error("failed to ping DB", "error", err)
		os.Exit(1)
	}

	a.dbConn = pool
}

func (a *App) initMongo() {
	if a.storeDriver() != store.DriverMongo {
		return
	}

	client, err := mongo.Connect(a.ctx, options.Client().ApplyURI(a.config.GetString("mongo.uri")))
	if err != nil {
		slog.Error("failed to connect mongo", "error", err)
		os.Exit(1)
	}

	if err := a.ping("mongo", func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) }); err != nil {
		slog.Error("failed to ping mongo", "error", err)
		os.Exit(1)
	}

	a.mongoConn = client
}

func (a *App) initStore() {
	opts := store.Options{
		Driver:     a.storeDriver(),
		Clock:      a.clock,
		Grace:      a.config.GetSecond("modules.verification.store.grace_seconds"),
		Instrument: a.ins,
		Redis:      a.redisConn,
		Postgres:   a.dbConn,
	}
	if a.mongoConn != nil {
		opts.Mongo = a.mongoConn.Database(a.config.GetString("mongo.database"))
	}

	s, err := store.New(a.ctx, opts)
	if err != nil {
		slog.Error("failed to init otp store", "error", err, "driver", opts.Driver)
		os.Exit(1)
	}
	a.store = s

	sweeper, ok := s.(store.Sweeper)
	if !ok {
		return
	}
	interval := a.config.GetSecond("modules.verification.store.sweep_interval_seconds")
	if interval <= 0 {
		return
	}
	if err := a.goroutine.Go(a.ctx, "otp-store-sweeper", func(ctx context.Context) error {
		return store.RunSweeper(ctx, sweeper, interval)
	}); err != nil {
		slog.Error("failed to start otp store sweeper", "error", err)
	}
}

func (a *App) initCooldown() {
	switch a.config.GetString("modules.verification.otp.cooldown_driver") {
	case "redis":
		a.cooldown = ratelimit.NewRedis(a.redisConn, "otp:cooldown:")
	default:
		a.cooldown = ratelimit.NewMemory(a.clock)
	}
}

func (a *App) initMail() {
	templates, err := mail.NewTemplates(map[string]any{
		"company_name":  a.config.GetString("mail.company_name"),
		"support_email": a.config.GetString("mail.support_email"),
		"year":          a.clock.Now().Format("2006"),
	})
	if err != nil {
		slog.Error("failed to init mail templates", "error", err)
		os.Exit(1)
	}
	a.templates = templates

	switch driver := a.config.GetString("mail.driver"); driver {
	case mail.DriverSMTP:
		client, err := mail.NewSMTP(mail.SMTPConfig{
			Host:     a.config.GetString("mail.host"),
			Port:     a.config.GetInt("mail.port"),
			Username: a.config.GetString("mail.username"),
			Password: a.config.GetString("mail.password"),
			From:     a.config.GetString("mail.from"),
		})
		if err != nil {
			slog.Error("failed to init mail", "error", err)
			os.Exit(1)
		}
		a.mail = client
	case mail.DriverLog:
		a.mail = mail.NewLog(slog.Default())
	default:
		slog.Error("failed to init mail, unknown driver", "driver", driver)
		os.Exit(1)
	}
}

func (a *App) initMessaging() {
	driver := a.config.GetString("messaging.driver")
	client, err := messaging.NewFromDriver(a.ctx, driver, messaging.FactoryOptions{
		NSQ: messaging.NSQConfig{
			ProducerAddr:         a.config.GetString("messaging.nsq.producer_addr"),
			ConsumerNSQDAddrs:    a.config.GetArray("messaging.nsq.consumer_nsqd_addrs"),
			ConsumerLookupdAddrs: a.config.GetArray("messaging.nsq.consumer_lookupd_addrs"),
		},
		Kafka: messaging.KafkaConfig{
			Brokers: a.config.GetArray("messaging.kafka.brokers"),
		},
		NATS: messaging.NATSConfig{
			URL: a.config.GetString("messaging.nats.url"),
			Options: []nats.Option{
				nats.Name(a.config.GetString("messaging.nats.name")),
				nats.MaxReconnects(a.config.GetInt("messaging.nats.max_reconnects")),
				nats.Timeout(a.config.GetSecond("messaging.nats.timeout_seconds")),
				nats.ReconnectWait(a.config.GetSecond("messaging.nats.reconnect_wait_seconds")),
				nats.RetryOnFailedConnect(a.config.GetBool("messaging.nats.retry_on_failed_connect")),
			},
		},
		PubSub: messaging.PubSubConfig{
			ProjectID: a.config.GetString("messaging.pubsub.project_id"),
			Endpoint:  a.config.GetString("messaging.pubsub.endpoint"),
		},
	})
	if err != nil {
		slog.Error("failed to init messaging", "error", err, "driver", driver)
		os.Exit(1)
	}

	a.messaging = client
}

func (a *App) initHTTPServer() {
	a.router = router.NewRouter(router.Config{
		Config:     a.config,
		UUID:       a.uuid,
		Instrument: a.ins,
	})

	routerWithCORS := cors.New(cors.Options{
		AllowedOrigins: a.config.GetArray("app.server.cors"),
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(a.router)

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("app.server.http.address"),
		Handler:           routerWithCORS,
		ReadTimeout:       a.config.GetSecond("app.server.http.read_timeout_seconds"),
		ReadHeaderTimeout: a.config.GetSecond("app.server.http.read_header_timeout_seconds"),
		WriteTimeout:      a.config.GetSecond("app.server.http.write_timeout_seconds"),
		IdleTimeout:       a.config.GetSecond("app.server.http.idle_timeout_seconds"),
	}
}

func (a *App) initClosers() {
	a.closers = []struct {
		name string
		fn   func(context.Context) error
	}{
		{
			name: "Instrument",
			fn: func(ctx context.Context) error {
				return a.ins.Shutdown(ctx)
			},
		},
		{
			name: "Messaging",
			fn: func(context.Context) error {
				return a.messaging.Close()
			},
		},
		{
			name: "Mail",
			fn: func(context.Context) error {
				return a.mail.Close()
			},
		},
		{
			name: "Store",
			fn: func(context.Context) error {
				return a.store.Close()
			},
		},
		{
			name: "Redis",
			fn: func(context.Context) error {
				if a.redisConn == nil {
					return nil
				}
				return a.redisConn.Close()
			},
		},
		{
			name: "Database",
			fn: func(context.Context) error {
				if a.dbConn != nil {
					a.dbConn.Close()
				}
				return nil
			},
		},
		{
			name: "Mongo",
			fn: func(ctx context.Context) error {
				if a.mongoConn == nil {
					return nil
				}
				return a.mongoConn.Disconnect(ctx)
			},
		},
		{
			name: "Config",
			fn: func(context.Context) error {
				return a.config.Close()
			},
		},
	}
}
