// Package publish pushes finished schedules to the external reporting
// and execution side over MQTT. The planner itself never depends on it.
package publish

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/ogauthier/obsched/core/planner"
	"github.com/ogauthier/obsched/infra/logger"
)

// Config defines the connection parameters for the MQTT publisher.
type Config struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	Broker   string `json:"broker" yaml:"broker"`
	ClientID string `json:"client_id" yaml:"client_id"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
	Topic    string `json:"topic" yaml:"topic"`
	QoS      byte   `json:"qos" yaml:"qos"`
	// TimeoutSeconds bounds connect and publish token waits.
	TimeoutSeconds int `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// SetDefaults fills in client id, topic and timeout.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "obsched-publisher"
	}
	if c.Topic == "" {
		c.Topic = "obsched/schedule"
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = 10
	}
}

// Validate checks the broker address when publishing is enabled.
func (c *Config) Validate() error {
	if c.Enabled && c.Broker == "" {
		return fmt.Errorf("publish: broker is required when enabled")
	}
	return nil
}

type pahoClient interface {
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Publisher sends one outcome per planning run to the schedule topic.
type Publisher struct {
	cli     pahoClient
	topic   string
	qos     byte
	timeout time.Duration
	log     logger.Logger
}

// New connects to the broker and returns a ready publisher.
func New(cfg Config) (*Publisher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetAutoReconnect(true)
	cli := newMQTTClient(opts)
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	tok := cli.Connect()
	if !tok.WaitTimeout(timeout) {
		return nil, fmt.Errorf("publish: connect to %s timed out", cfg.Broker)
	}
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("publish: connect to %s: %w", cfg.Broker, err)
	}
	return &Publisher{
		cli:     cli,
		topic:   cfg.Topic,
		qos:     cfg.QoS,
		timeout: timeout,
		log:     logger.New("schedule-publisher"),
	}, nil
}

// Publish sends the outcome as a JSON document.
func (p *Publisher) Publish(out *planner.Outcome) error {
	payload, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("publish: encode outcome: %w", err)
	}
	tok := p.cli.Publish(p.topic, p.qos, false, payload)
	if !tok.WaitTimeout(p.timeout) {
		return fmt.Errorf("publish: %s timed out", p.topic)
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("publish: %s: %w", p.topic, err)
	}
	p.log.Infof("published run %s (%d entries) to %s", out.RunID, len(out.Schedule), p.topic)
	return nil
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	p.cli.Disconnect(250)
}
