// Package mail sends transactional email.
//
// Callers build a Message (usually by rendering one of the embedded Templates)
// and hand it to a Mail implementation: SMTP for real delivery or Log for local
// runs where no mail server exists.
package mail
