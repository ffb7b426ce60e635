package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"soilsense/poll"
)

// Record is the JSON document published per cycle. Failed fields are
// omitted from the values and listed by name in Missing.
type Record struct {
	ID          string    `json:"id"`
	Time        time.Time `json:"time"`
	Nitrogen    *int      `json:"nitrogen_mgkg,omitempty"`
	Phosphorus  *int      `json:"phosphorus_mgkg,omitempty"`
	Potassium   *int      `json:"potassium_mgkg,omitempty"`
	PH          *float64  `json:"soil_ph,omitempty"`
	MoisturePct *int      `json:"moisture_pct,omitempty"`
	Missing     []string  `json:"missing,omitempty"`
	Species     string    `json:"species,omitempty"`
}

// NewRecord converts a reading into its wire document, tagging it with
// a fresh ID.
func NewRecord(r poll.Reading) Record {
	rec := Record{
		ID:   uuid.NewString(),
		Time: r.Time,
	}
	if r.Err(poll.FieldNitrogen) == nil {
		v := r.Nitrogen
		rec.Nitrogen = &v
	}
	if r.Err(poll.FieldPhosphorus) == nil {
		v := r.Phosphorus
		rec.Phosphorus = &v
	}
	if r.Err(poll.FieldPotassium) == nil {
		v := r.Potassium
		rec.Potassium = &v
	}
	if r.Err(poll.FieldPH) == nil {
		v := r.PH
		rec.PH = &v
	}
	if r.Err(poll.FieldMoisture) == nil {
		v := r.MoisturePct
		rec.MoisturePct = &v
	}
	rec.Missing = missingFields(r)
	if len(rec.Missing) == 0 {
		rec.Missing = nil
	}
	return rec
}

// MQTTConfig configures the broker connection
type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string
}

// MQTTSink publishes one Record per cycle at QoS 1
type MQTTSink struct {
	client mqtt.Client
	topic  string

	// Recommend, when set, is called with each complete reading and
	// its result is attached to the published record.
	Recommend func(r poll.Reading) (string, error)
}

// NewMQTTSink connects to the broker and returns a publishing sink
func NewMQTTSink(cfg MQTTConfig) (*MQTTSink, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connecting to MQTT broker: %w", token.Error())
	}
	return &MQTTSink{client: client, topic: cfg.Topic}, nil
}

// Emit publishes the cycle's record
func (s *MQTTSink) Emit(ctx context.Context, r poll.Reading) error {
	rec := NewRecord(r)
	if s.Recommend != nil && r.Complete() {
		species, err := s.Recommend(r)
		if err != nil {
			return fmt.Errorf("recommending species: %w", err)
		}
		rec.Species = species
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}

	token := s.client.Publish(s.topic, 1, false, payload)
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("publishing record: timeout")
	}
	if token.Error() != nil {
		return fmt.Errorf("publishing record: %w", token.Error())
	}
	return nil
}

// Close disconnects from the broker
func (s *MQTTSink) Close() {
	s.client.Disconnect(250)
}
