// Package otp generates the short numeric codes mailed to users to prove
// they own an address.
package otp
