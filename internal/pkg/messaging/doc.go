// Package messaging provides a broker-agnostic API for publishing and
// consuming messages.
//
// Business code depends on the Messaging interface only, so the broker
// (NATS, NSQ, Kafka, Google Pub/Sub or the in-process memory queue) is a
// configuration choice.
package messaging
