package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nerrad567/harbour/internal/boat"
	"github.com/nerrad567/harbour/internal/infrastructure/mqtt"
)

// sailPublisher is the part of *mqtt.Client the MQTT recorder uses.
type sailPublisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// mqttSailPublisher publishes every sail as JSON on harbour/voyage/{boat}/sail.
// Sail events are not retained.
type mqttSailPublisher struct {
	client sailPublisher
	qos    byte
}

func (p *mqttSailPublisher) RecordSail(event boat.SailEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding sail event: %w", err)
	}
	return p.client.Publish(mqtt.Topics{}.VoyageSail(event.Boat), payload, p.qos, false)
}

// sailMetricWriter is the part of *influxdb.Client the InfluxDB recorder uses.
type sailMetricWriter interface {
	WriteSailMetric(boat string, sequence uint64, at time.Time)
}

// influxSailWriter queues a propulsion point per sail. Writes are
// asynchronous, so it never fails; errors surface through SetOnError.
type influxSailWriter struct {
	client sailMetricWriter
}

func (w influxSailWriter) RecordSail(event boat.SailEvent) error {
	w.client.WriteSailMetric(event.Boat, event.Sequence, event.SailedAt)
	return nil
}
