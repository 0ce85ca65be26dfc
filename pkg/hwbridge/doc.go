// Package hwbridge reaches the vehicle hardware over MQTT.
//
// The broker side runs a Bridge, which implements hardware.Access by
// publishing CBOR-encoded wire.HardwareRequest frames and matching the
// wire.HardwareResponse frames that come back by correlation id. The hardware
// side runs a Responder, which serves those requests from any local
// hardware.Access and publishes its property changes as wire.EventFrame.
//
// Topics, below a configurable prefix:
//
//	<prefix>/request   broker -> hardware
//	<prefix>/response  hardware -> broker
//	<prefix>/event     hardware -> broker
//
// The Transport interface keeps the bridge independent of the MQTT client;
// MQTTTransport is the paho implementation.
package hwbridge
