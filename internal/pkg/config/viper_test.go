package config

import (
	"testing"
	"time"
)

func TestNewViperFromBytes(t *testing.T) {
	// Arrange
	raw := []byte(`
app:
  server:
    cors: "http://a.test, ,http://b.test"
modules:
  verification:
    otp:
      ttl_seconds: 300
    store:
      driver: redis
instrument:
  log_mask_fields:
    - otp
    - code
`)

	// Act
	cfg, err := NewViperFromBytes("yaml", raw)
	if err != nil {
		t.Fatalf("NewViperFromBytes() error = %v", err)
	}

	// Assert
	if got := cfg.GetSecond("modules.verification.otp.ttl_seconds"); got != 5*time.Minute {
		t.Fatalf("ttl = %v, want 5m", got)
	}
	if got := cfg.GetString("modules.verification.store.driver"); got != "redis" {
		t.Fatalf("driver = %q, want redis", got)
	}
	if got := cfg.GetInt("modules.verification.otp.max_attempts"); got != 3 {
		t.Fatalf("max_attempts default = %d, want 3", got)
	}
	if got := cfg.GetArray("app.server.cors"); len(got) != 2 || got[1] != "http://b.test" {
		t.Fatalf("cors = %v, want two origins", got)
	}
	if got := cfg.GetArray("instrument.log_mask_fields"); len(got) != 2 || got[0] != "otp" {
		t.Fatalf("mask fields = %v, want [otp code]", got)
	}
}

func TestNewViperFromBytes_EnvOverride(t *testing.T) {
	// Arrange
	t.Setenv("MODULES_VERIFICATION_OTP_COOLDOWN_SECONDS", "30")

	// Act
	cfg, err := NewViperFromBytes("yaml", []byte("app:\n  tz: UTC\n"))
	if err != nil {
		t.Fatalf("NewViperFromBytes() error = %v", err)
	}

	// Assert
	if got := cfg.GetSecond("modules.verification.otp.cooldown_seconds"); got != 30*time.Second {
		t.Fatalf("cooldown = %v, want 30s", got)
	}
}

func TestNewViperFromBytes_TypeRequired(t *testing.T) {
	if _, err := NewViperFromBytes(" ", nil); err != ErrConfigTypeRequired {
		t.Fatalf("error = %v, want ErrConfigTypeRequired", err)
	}
}
