// Package jwt issues and verifies the short-lived email verification token
// returned after a successful OTP check. The registration service presents it
// to prove that the caller owns the mailbox.
package jwt
