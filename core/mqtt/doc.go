// Package mqtt defines the broker-facing contract used to broadcast
// compliance results. The paho implementation lives in infra/mqtt.
package mqtt
