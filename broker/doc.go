// Package broker multiplexes many Tasmota devices over one MQTT
// connection.
//
// A Broker holds the single physical connection to the MQTT broker and
// routes the three Tasmota topic prefixes:
//
//	cmnd/<device>/<Command>   commands, published by this library
//	stat/<device>/<Suffix>    command replies and state notifications
//	tele/<device>/<Suffix>    periodic telemetry and availability (LWT)
//
// Attach registers a device by its topic and returns a Session, which
// implements protocol.Protocol: commands publish to the device's cmnd
// topic and the reply is correlated from its stat topics. Sessions are
// serialised per device, and stale buffered replies are discarded before
// each send, so a slow reply to one command can never be attributed to
// the next.
//
// On reconnection every attached device's subscriptions are restored
// before any reconnected callback fires, so a callback never observes a
// window in which its device is silently unsubscribed. Telemetry
// published while the connection was down is not replayed; the next
// periodic tele message or an explicit query refreshes the state.
//
// Discover broadcasts a status request to the "tasmotas" group topic and
// collects the device topics that answer within a bounded window.
package broker
