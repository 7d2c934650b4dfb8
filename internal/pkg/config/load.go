package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// defaults keep the OTP contract stable when a key is absent from the file.
var defaults = map[string]any{
	"app.tz":                                            "UTC",
	"app.node_id":                                       1,
	"app.startup.ping_retries":                          5,
	"app.server.http.address":                           ":8080",
	"app.server.http.read_header_timeout_seconds":       5,
	"app.http.log_bodies":                               true,
	"instrument.service_name":                           "skillport-verification",
	"instrument.log_level":                              "info",
	"instrument.log_mask_fields":                        "otp,code,verificationToken,authorization",
	"modules.verification.enabled":                      true,
	"modules.verification.otp.ttl_seconds":              600,
	"modules.verification.otp.max_attempts":             3,
	"modules.verification.otp.allow_leading_zero":       false,
	"modules.verification.otp.cooldown_seconds":         0,
	"modules.verification.otp.cooldown_driver":          "memory",
	"modules.verification.store.driver":                 "memory",
	"modules.verification.store.grace_seconds":          60,
	"modules.verification.store.sweep_interval_seconds": 60,
	"modules.verification.token.ttl_minutes":            15,
	"modules.notification.enabled":                      true,
	"modules.notification.consumer_names":               "owner_verified_notification",
	"modules.notification.consumer_concurrency":         1,
	"jwt.issuer":                                        "skillport-verification",
	"mail.driver":                                       "log",
	"mail.company_name":                                 "SkillPort",
	"messaging.driver":                                  "memory",
	"mongo.database":                                    "skillport",
}

// Load resolves the config path from CONFIG_PATH (or the LOCAL default),
// loads a .env file for local runs and returns the Viper-backed Config.
func Load() (*Viper, error) {
	local := os.Getenv("LOCAL") == "true"
	if local {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("failed to load .env file", "error", err)
		}
	}

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "/config/config.yaml"
		if local {
			path = "./config/config.yaml"
		}
	}

	return NewViper(path)
}
