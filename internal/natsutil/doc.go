// Package natsutil holds NATS helpers shared by the transport and the CLI:
// request error classification and an in-process server.
package natsutil
