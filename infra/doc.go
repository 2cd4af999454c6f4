// Package infra contains technical adapters: dataset loaders, the MQTT report
// publisher, metrics exporters, the run archive and Sentry monitoring. These
// packages depend only on the interfaces defined in the core packages.
package infra
