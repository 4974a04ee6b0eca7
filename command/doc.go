// Package command models the commands a Tasmota device accepts and the
// shape of the replies each one produces.
//
// A Command is a name plus an optional payload. The same Command renders
// to both transports: over HTTP it becomes the "cmnd" query parameter
// ("Power1 ON"), over MQTT the name selects the topic (cmnd/<device>/Power1)
// and the payload becomes the message body. Commands are built from
// validated types (package types), so a constructed command always carries
// a payload the device will accept.
//
// Most commands produce exactly one reply message; a few (Status 0) fan
// out into several stat fragments. Each command therefore carries a
// ResponseSpec, obtained via SpecFor, telling the transport how many
// messages to collect and for how long.
//
// The Routine builder composes multiple commands into a single atomic
// Backlog command executed by the device firmware without interleaving.
package command
