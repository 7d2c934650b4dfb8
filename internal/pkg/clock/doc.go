// Package clock provides a tiny time abstraction.
//
// Production code depends on the Clocker interface instead of calling
// time.Now() directly, so OTP expiry and cooldown windows can be exercised with
// the Fixed clock in tests.
package clock
