// Package notify publishes fleet lifecycle events to an MQTT broker so
// downstream consumers (parent apps, dispatch boards) can react without
// polling. Publishing happens after commit and never rolls a commit back.
package notify

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/school-transport/internal/models"
)

// Publisher emits transport lifecycle events.
type Publisher interface {
	TripEvent(event string, trip models.Trip)
	MaintenanceEvent(event string, rec models.MaintenanceRecord)
}

// Noop discards every event. Used when no broker is configured.
type Noop struct{}

func (Noop) TripEvent(string, models.Trip)                     {}
func (Noop) MaintenanceEvent(string, models.MaintenanceRecord) {}

// MQTT publishes events as JSON to school/transport/{trips,maintenance}/<event>.
type MQTT struct {
	client  mqtt.Client
	timeout time.Duration
}

// NewMQTT connects to the broker and returns a ready publisher.
func NewMQTT(broker, clientID string) (*MQTT, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetConnectTimeout(10 * time.Second).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connect to %s timed out", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", broker, err)
	}
	return &MQTT{client: client, timeout: 5 * time.Second}, nil
}

func (p *MQTT) publish(topic string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.WithError(err).WithField("topic", topic).Error("Failed to marshal event")
		return
	}
	token := p.client.Publish(topic, 0, false, data)
	if !token.WaitTimeout(p.timeout) || token.Error() != nil {
		log.WithError(token.Error()).WithField("topic", topic).Warn("Failed to publish event")
	}
}

// TripEvent publishes a trip lifecycle event ("scheduled", "started",
// "completed", "cancelled").
func (p *MQTT) TripEvent(event string, trip models.Trip) {
	p.publish("school/transport/trips/"+event, trip)
}

// MaintenanceEvent publishes a maintenance lifecycle event.
func (p *MQTT) MaintenanceEvent(event string, rec models.MaintenanceRecord) {
	p.publish("school/transport/maintenance/"+event, rec)
}
