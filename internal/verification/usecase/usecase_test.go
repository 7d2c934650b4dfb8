package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/skillport/internal/pkg/clock"
	"github.com/shandysiswandi/skillport/internal/pkg/config"
	"github.com/shandysiswandi/skillport/internal/pkg/goerror"
	"github.com/shandysiswandi/skillport/internal/pkg/instrument"
	"github.com/shandysiswandi/skillport/internal/pkg/jwt"
	"github.com/shandysiswandi/skillport/internal/pkg/mail"
	"github.com/shandysiswandi/skillport/internal/pkg/ratelimit"
	"github.com/shandysiswandi/skillport/internal/pkg/uid"
	"github.com/shandysiswandi/skillport/internal/pkg/validator"
	"github.com/shandysiswandi/skillport/internal/verification/entity"
	"github.com/shandysiswandi/skillport/internal/verification/outbound/store"
)

type sentMail struct {
	to   string
	kind mail.Kind
	vars map[string]any
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *recordingMailer) Send(_ context.Context, to string, kind mail.Kind, vars map[string]any) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.sent = append(m.sent, sentMail{to: to, kind: kind, vars: vars})
	return "msg-id", nil
}

func (m *recordingMailer) last() sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[len(m.sent)-1]
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []OwnerVerifiedEvent
	err    error
}

func (p *recordingPublisher) PublishOwnerVerified(_ context.Context, msg OwnerVerifiedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, msg)
	return p.err
}

// seqCodes hands out codes in order, then repeats the last one.
type seqCodes struct {
	mu    sync.Mutex
	codes []string
}

func (s *seqCodes) Generate() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	code := s.codes[0]
	if len(s.codes) > 1 {
		s.codes = s.codes[1:]
	}
	return code, nil
}

type harness struct {
	uc        *Usecase
	store     *store.Memory
	clock     *clock.Fixed
	mailer    *recordingMailer
	publisher *recordingPublisher
	jwt       *jwt.Symmetric
}

type harnessOption func(*Dependency)

func newHarness(t *testing.T, yaml string, opts ...harnessOption) *harness {
	t.Helper()

	if yaml == "" {
		yaml = "app:\n  name: skillport-test\n"
	}
	cfg, err := config.NewViperFromBytes("yaml", []byte(yaml))
	if err != nil {
		t.Fatalf("NewViperFromBytes() error = %v", err)
	}

	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("NewV10Validator() error = %v", err)
	}

	sf, err := uid.NewSnowflake()
	if err != nil {
		t.Fatalf("NewSnowflake() error = %v", err)
	}

	clk := clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	j, err := jwt.NewHS512(jwt.Config{
		Secret:    []byte(strings.Repeat("s", 64)),
		Issuer:    "skillport-verification",
		Audiences: []string{"skillport"},
		TTL:       15 * time.Minute,
		Clock:     clk,
		UUID:      uid.NewUUID(),
	})
	if err != nil {
		t.Fatalf("NewHS512() error = %v", err)
	}

	h := &harness{
		store:     store.NewMemory(clk, time.Minute),
		clock:     clk,
		mailer:    &recordingMailer{},
		publisher: &recordingPublisher{},
		jwt:       j,
	}

	dep := Dependency{
		RepoStore:     h.store,
		RepoEmail:     h.mailer,
		RepoMessaging: h.publisher,
		Validator:     v,
		Config:        cfg,
		Code:          &seqCodes{codes: []string{"111111", "222222", "333333"}},
		UID:           sf,
		Clock:         clk,
		JWT:           j,
		Instrument:    instrument.NewNoop(),
	}
	for _, opt := range opts {
		opt(&dep)
	}
	h.uc = New(dep)

	return h
}

func (h *harness) generate(t *testing.T, email string) {
	t.Helper()
	if _, err := h.uc.Generate(context.Background(), GenerateInput{Email: email, FirstName: "Ana", LastName: "Lima"}); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
}

func asError(t *testing.T, err error) *goerror.Error {
	t.Helper()
	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("error %v (%T) is not a *goerror.Error", err, err)
	}
	return gerr
}

func TestUsecase_Generate(t *testing.T) {
	// Arrange
	h := newHarness(t, "")

	// Act
	out, err := h.uc.Generate(context.Background(), GenerateInput{
		Email:     "  Ana@Example.COM ",
		FirstName: "Ana",
		LastName:  "Lima",
	})

	// Assert
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if out.ExpiresIn != 600 {
		t.Fatalf("ExpiresIn = %d, want 600", out.ExpiresIn)
	}

	rec, err := h.store.Get(context.Background(), "ana@example.com")
	if err != nil {
		t.Fatalf("store Get() error = %v", err)
	}
	if rec.Code != "111111" || rec.Attempts != 0 || !rec.ExpiresAt.Equal(h.clock.Now().Add(10*time.Minute)) {
		t.Fatalf("record = %+v", rec)
	}

	sent := h.mailer.last()
	if sent.to != "ana@example.com" || sent.kind != mail.KindOTP || sent.vars["code"] != "111111" || sent.vars["first_name"] != "Ana" {
		t.Fatalf("mail = %+v", sent)
	}
}

func TestUsecase_Generate_Validation(t *testing.T) {
	h := newHarness(t, "")

	tests := []struct {
		name  string
		in    GenerateInput
		field string
	}{
		{name: "missing email", in: GenerateInput{FirstName: "Ana"}, field: "email"},
		{name: "bad email", in: GenerateInput{Email: "nope", FirstName: "Ana"}, field: "email"},
		{name: "missing first name", in: GenerateInput{Email: "ana@example.com"}, field: "firstName"},
		{name: "bad last name", in: GenerateInput{Email: "ana@example.com", FirstName: "Ana", LastName: "<script>"}, field: "lastName"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.uc.Generate(context.Background(), tt.in)

			gerr := asError(t, err)
			if gerr.StatusCode() != 422 || gerr.Msg() != "Email and first name are required" {
				t.Fatalf("error = %s", gerr)
			}
			var fields validator.V10ValidationError
			if !errors.As(err, &fields) || fields[tt.field] == "" {
				t.Fatalf("fields = %v, want key %q", fields, tt.field)
			}
		})
	}

	if len(h.mailer.sent) != 0 {
		t.Fatalf("mails sent = %d, want 0", len(h.mailer.sent))
	}
}

func TestUsecase_Generate_DeliveryFailureKeepsRecord(t *testing.T) {
	// Arrange
	h := newHarness(t, "")
	h.mailer.err = errors.New("smtp down")

	// Act
	_, err := h.uc.Generate(context.Background(), GenerateInput{Email: "ana@example.com", FirstName: "Ana"})

	// Assert
	if !errors.Is(err, entity.ErrEmailDeliveryFailed) || asError(t, err).StatusCode() != 502 {
		t.Fatalf("Generate() error = %v, want ErrEmailDeliveryFailed", err)
	}
	if _, err := h.store.Get(context.Background(), "ana@example.com"); err != nil {
		t.Fatalf("record should survive a failed delivery, Get() error = %v", err)
	}
}

func TestUsecase_Generate_ReplacesRecord(t *testing.T) {
	h := newHarness(t, "")
	ctx := context.Background()

	h.generate(t, "ana@example.com")
	_, _ = h.uc.Verify(ctx, VerifyInput{Email: "ana@example.com", OTP: "999999"})
	h.generate(t, "ana@example.com")

	rec, err := h.store.Get(ctx, "ana@example.com")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if rec.Code != "222222" || rec.Attempts != 0 {
		t.Fatalf("record = %+v", rec)
	}
	if _, err := h.uc.Verify(ctx, VerifyInput{Email: "ana@example.com", OTP: "111111"}); !errors.Is(err, entity.ErrOTPInvalidCode) {
		t.Fatalf("old code should be rejected, error = %v", err)
	}
}

func TestUsecase_Verify_Success(t *testing.T) {
	// Arrange
	h := newHarness(t, "")
	ctx := context.Background()
	h.generate(t, "ana@example.com")

	// Act
	out, err := h.uc.Verify(ctx, VerifyInput{Email: "ANA@example.com", OTP: "111111"})

	// Assert
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if out.Email != "ana@example.com" || out.FirstName != "Ana" || out.LastName != "Lima" {
		t.Fatalf("Verify() = %+v", out)
	}

	claims, err := h.jwt.Verify(out.VerificationToken)
	if err != nil {
		t.Fatalf("token Verify() error = %v", err)
	}
	if claims.Subject != "ana@example.com" || claims.GivenName != "Ana" || claims.Purpose != jwt.PurposeEmailVerification {
		t.Fatalf("claims = %+v", claims)
	}

	if len(h.publisher.events) != 1 || h.publisher.events[0].Email != "ana@example.com" {
		t.Fatalf("events = %+v", h.publisher.events)
	}

	_, err = h.uc.Verify(ctx, VerifyInput{Email: "ana@example.com", OTP: "111111"})
	if !errors.Is(err, entity.ErrOTPNotFound) || asError(t, err).StatusCode() != 404 {
		t.Fatalf("second Verify() error = %v, want ErrOTPNotFound", err)
	}
}

func TestUsecase_Verify_WithoutGenerate(t *testing.T) {
	h := newHarness(t, "")

	_, err := h.uc.Verify(context.Background(), VerifyInput{Email: "ghost@example.com", OTP: "123456"})

	if !errors.Is(err, entity.ErrOTPNotFound) {
		t.Fatalf("Verify() error = %v, want ErrOTPNotFound", err)
	}
	if msg := asError(t, err).Msg(); !strings.HasPrefix(msg, "No OTP found for this email") {
		t.Fatalf("message = %q", msg)
	}
}

func TestUsecase_Verify_AttemptsScenario(t *testing.T) {
	// Arrange
	h := newHarness(t, "")
	ctx := context.Background()
	h.generate(t, "ana@example.com")
	wrong := VerifyInput{Email: "ana@example.com", OTP: "000000"}

	// Act & Assert
	for i, wantLeft := range []int{2, 1, 0} {
		_, err := h.uc.Verify(ctx, wrong)
		if !errors.Is(err, entity.ErrOTPInvalidCode) {
			t.Fatalf("attempt %d error = %v, want ErrOTPInvalidCode", i+1, err)
		}
		gerr := asError(t, err)
		if gerr.StatusCode() != 401 || gerr.Meta()["attemptsLeft"] != wantLeft {
			t.Fatalf("attempt %d: status %d meta %v, want attemptsLeft %d", i+1, gerr.StatusCode(), gerr.Meta(), wantLeft)
		}
		if wantLeft == 0 && !strings.HasPrefix(gerr.Msg(), "Too many failed attempts") {
			t.Fatalf("last attempt message = %q", gerr.Msg())
		}
	}

	_, err := h.uc.Verify(ctx, VerifyInput{Email: "ana@example.com", OTP: "111111"})
	if !errors.Is(err, entity.ErrOTPAttemptsExhausted) || asError(t, err).StatusCode() != 429 {
		t.Fatalf("fourth Verify() error = %v, want ErrOTPAttemptsExhausted", err)
	}

	_, err = h.uc.Verify(ctx, VerifyInput{Email: "ana@example.com", OTP: "111111"})
	if !errors.Is(err, entity.ErrOTPNotFound) {
		t.Fatalf("fifth Verify() error = %v, want ErrOTPNotFound", err)
	}
	if len(h.publisher.events) != 0 {
		t.Fatalf("events = %d, want 0", len(h.publisher.events))
	}
}

func TestUsecase_Verify_Expired(t *testing.T) {
	// Arrange
	h := newHarness(t, "")
	ctx := context.Background()
	h.generate(t, "ana@example.com")

	// Act
	h.clock.Advance(10*time.Minute + time.Second)
	_, err := h.uc.Verify(ctx, VerifyInput{Email: "ana@example.com", OTP: "111111"})

	// Assert
	if !errors.Is(err, entity.ErrOTPExpired) || asError(t, err).StatusCode() != 410 {
		t.Fatalf("Verify() error = %v, want ErrOTPExpired", err)
	}
	if _, err := h.store.Get(ctx, "ana@example.com"); !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("expired record should be deleted, Get() error = %v", err)
	}
}

func TestUsecase_Verify_ExactExpiryStillValid(t *testing.T) {
	h := newHarness(t, "")
	h.generate(t, "ana@example.com")

	h.clock.Advance(10 * time.Minute)
	if _, err := h.uc.Verify(context.Background(), VerifyInput{Email: "ana@example.com", OTP: "111111"}); err != nil {
		t.Fatalf("Verify() at ExpiresAt error = %v", err)
	}
}

func TestUsecase_Verify_ExpiryGraceBoundary(t *testing.T) {
	tests := []struct {
		name    string
		advance time.Duration
		wantErr error
	}{
		{name: "last instant of grace is expired", advance: 11 * time.Minute, wantErr: entity.ErrOTPExpired},
		{name: "past grace is not found", advance: 11*time.Minute + time.Nanosecond, wantErr: entity.ErrOTPNotFound},
		{name: "long after expiry is not found", advance: 12 * time.Minute, wantErr: entity.ErrOTPNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			h := newHarness(t, "")
			h.generate(t, "ana@example.com")

			// Act
			h.clock.Advance(tt.advance)
			_, err := h.uc.Verify(context.Background(), VerifyInput{Email: "ana@example.com", OTP: "111111"})

			// Assert
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Verify() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestUsecase_Verify_Validation(t *testing.T) {
	h := newHarness(t, "")
	h.generate(t, "ana@example.com")

	for _, code := range []string{"", "12345", "1234567", "12a456"} {
		_, err := h.uc.Verify(context.Background(), VerifyInput{Email: "ana@example.com", OTP: code})
		gerr := asError(t, err)
		if gerr.StatusCode() != 422 || gerr.Msg() != "Email and OTP are required" {
			t.Fatalf("Verify(%q) error = %s", code, gerr)
		}
	}

	rec, _ := h.store.Get(context.Background(), "ana@example.com")
	if rec == nil || rec.Attempts != 0 {
		t.Fatalf("malformed codes must not count as attempts, record = %+v", rec)
	}
}

func TestUsecase_Verify_PublishFailureIgnored(t *testing.T) {
	h := newHarness(t, "")
	h.publisher.err = errors.New("broker down")
	h.generate(t, "ana@example.com")

	if _, err := h.uc.Verify(context.Background(), VerifyInput{Email: "ana@example.com", OTP: "111111"}); err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
}

func TestUsecase_Resend(t *testing.T) {
	// Arrange
	h := newHarness(t, "")
	ctx := context.Background()
	h.generate(t, "ana@example.com")
	_, _ = h.uc.Verify(ctx, VerifyInput{Email: "ana@example.com", OTP: "000000"})
	h.clock.Advance(5 * time.Minute)

	// Act
	out, err := h.uc.Resend(ctx, ResendInput{Email: "ana@example.com"})

	// Assert
	if err != nil {
		t.Fatalf("Resend() error = %v", err)
	}
	if out.ExpiresIn != 600 {
		t.Fatalf("ExpiresIn = %d", out.ExpiresIn)
	}

	rec, err := h.store.Get(ctx, "ana@example.com")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if rec.Code != "222222" || rec.Attempts != 0 || rec.FirstName != "Ana" || rec.LastName != "Lima" {
		t.Fatalf("record = %+v", rec)
	}
	if !rec.ExpiresAt.Equal(h.clock.Now().Add(10 * time.Minute)) {
		t.Fatalf("ExpiresAt = %v", rec.ExpiresAt)
	}
	if sent := h.mailer.last(); sent.vars["code"] != "222222" {
		t.Fatalf("resent mail = %+v", sent)
	}

	if _, err := h.uc.Verify(ctx, VerifyInput{Email: "ana@example.com", OTP: "111111"}); !errors.Is(err, entity.ErrOTPInvalidCode) {
		t.Fatalf("old code error = %v", err)
	}
	if _, err := h.uc.Verify(ctx, VerifyInput{Email: "ana@example.com", OTP: "222222"}); err != nil {
		t.Fatalf("new code error = %v", err)
	}
}

func TestUsecase_Resend_Errors(t *testing.T) {
	h := newHarness(t, "")
	ctx := context.Background()

	_, err := h.uc.Resend(ctx, ResendInput{Email: "ghost@example.com"})
	if !errors.Is(err, entity.ErrOTPNotFound) {
		t.Fatalf("Resend() error = %v, want ErrOTPNotFound", err)
	}

	_, err = h.uc.Resend(ctx, ResendInput{})
	if gerr := asError(t, err); gerr.StatusCode() != 422 || gerr.Msg() != "Email is required" {
		t.Fatalf("Resend() error = %s", gerr)
	}

	h.generate(t, "ana@example.com")
	h.mailer.err = errors.New("smtp down")
	_, err = h.uc.Resend(ctx, ResendInput{Email: "ana@example.com"})
	if !errors.Is(err, entity.ErrEmailDeliveryFailed) {
		t.Fatalf("Resend() error = %v, want ErrEmailDeliveryFailed", err)
	}
	if rec, _ := h.store.Get(ctx, "ana@example.com"); rec == nil || rec.Code != "222222" {
		t.Fatalf("reissued record should be kept, got %+v", rec)
	}
}

func TestUsecase_Cooldown(t *testing.T) {
	// Arrange
	yaml := "modules:\n  verification:\n    otp:\n      cooldown_seconds: 30\n"
	var clk *clock.Fixed
	h := newHarness(t, yaml, func(dep *Dependency) {
		clk = dep.Clock.(*clock.Fixed)
		dep.Cooldown = ratelimit.NewMemory(clk)
	})
	ctx := context.Background()
	h.generate(t, "ana@example.com")

	// Act
	clk.Advance(10 * time.Second)
	_, err := h.uc.Resend(ctx, ResendInput{Email: "ana@example.com"})

	// Assert
	if !errors.Is(err, entity.ErrOTPCooldown) {
		t.Fatalf("Resend() error = %v, want ErrOTPCooldown", err)
	}
	gerr := asError(t, err)
	if gerr.StatusCode() != 429 || gerr.Meta()["retryAfter"] != 20 {
		t.Fatalf("status %d meta %v", gerr.StatusCode(), gerr.Meta())
	}

	clk.Advance(20 * time.Second)
	if _, err := h.uc.Resend(ctx, ResendInput{Email: "ana@example.com"}); err != nil {
		t.Fatalf("Resend() after window error = %v", err)
	}
}

type failingCooldown struct{}

func (failingCooldown) Acquire(context.Context, string, time.Duration) (bool, time.Duration, error) {
	return false, 0, errors.New("redis down")
}

func TestUsecase_Cooldown_FailsOpen(t *testing.T) {
	yaml := "modules:\n  verification:\n    otp:\n      cooldown_seconds: 30\n"
	h := newHarness(t, yaml, func(dep *Dependency) { dep.Cooldown = failingCooldown{} })

	h.generate(t, "ana@example.com")
}

// conflictStore loses every compare-and-swap.
type conflictStore struct {
	*store.Memory
	swaps int
	mu    sync.Mutex
}

func (c *conflictStore) CompareAndSwap(context.Context, string, int64, *entity.OTPRecord) error {
	c.mu.Lock()
	c.swaps++
	c.mu.Unlock()
	return goerror.ErrConflict
}

func TestUsecase_ConflictRetriesExhausted(t *testing.T) {
	// Arrange
	var cs *conflictStore
	h := newHarness(t, "", func(dep *Dependency) {
		cs = &conflictStore{Memory: store.NewMemory(dep.Clock, time.Minute)}
		dep.RepoStore = cs
	})
	ctx := context.Background()
	h.generate(t, "ana@example.com")

	// Act
	_, err := h.uc.Verify(ctx, VerifyInput{Email: "ana@example.com", OTP: "111111"})

	// Assert
	if gerr := asError(t, err); gerr.StatusCode() != 500 || !errors.Is(err, goerror.ErrConflict) {
		t.Fatalf("Verify() error = %s", gerr)
	}
	if cs.swaps != casMaxRetries+1 {
		t.Fatalf("swaps = %d, want %d", cs.swaps, casMaxRetries+1)
	}

	if _, err := h.uc.Resend(ctx, ResendInput{Email: "ana@example.com"}); asError(t, err).StatusCode() != 500 {
		t.Fatalf("Resend() error = %v", err)
	}
}

func TestUsecase_ConcurrentVerifyAndResend(t *testing.T) {
	for range 20 {
		h := newHarness(t, "")
		ctx := context.Background()
		h.generate(t, "ana@example.com")
		before, _ := h.store.Get(ctx, "ana@example.com")

		var (
			wg        sync.WaitGroup
			verifyErr error
			resendErr error
		)
		wg.Go(func() {
			_, verifyErr = h.uc.Verify(ctx, VerifyInput{Email: "ana@example.com", OTP: "111111"})
		})
		wg.Go(func() {
			_, resendErr = h.uc.Resend(ctx, ResendInput{Email: "ana@example.com"})
		})
		wg.Wait()

		after, getErr := h.store.Get(ctx, "ana@example.com")
		switch {
		case verifyErr == nil && resendErr == nil:
			t.Fatalf("verify and resend both succeeded")
		case verifyErr == nil:
			if !errors.Is(resendErr, entity.ErrOTPNotFound) || !errors.Is(getErr, goerror.ErrNotFound) {
				t.Fatalf("resend error = %v, record err = %v", resendErr, getErr)
			}
		case resendErr == nil:
			if !errors.Is(verifyErr, entity.ErrOTPInvalidCode) {
				t.Fatalf("verify error = %v, want ErrOTPInvalidCode", verifyErr)
			}
			if after == nil || after.Version == before.Version {
				t.Fatalf("record after resend = %+v", after)
			}
		default:
			t.Fatalf("verify error = %v, resend error = %v", verifyErr, resendErr)
		}
	}
}

type pingStore struct {
	*store.Memory
	err error
}

func (p pingStore) Ping(context.Context) error { return p.err }

func TestUsecase_Health(t *testing.T) {
	h := newHarness(t, "")
	out, err := h.uc.Health(context.Background())
	if err != nil || !out.Timestamp.Equal(h.clock.Now()) {
		t.Fatalf("Health() = %+v, %v", out, err)
	}

	down := newHarness(t, "", func(dep *Dependency) {
		dep.RepoStore = pingStore{Memory: store.NewMemory(dep.Clock, 0), err: errors.New("conn refused")}
	})
	_, err = down.uc.Health(context.Background())
	gerr := asError(t, err)
	if gerr.StatusCode() != 503 || gerr.Meta()["timestamp"] == nil {
		t.Fatalf("Health() error = %s meta %v", gerr, gerr.Meta())
	}
}
