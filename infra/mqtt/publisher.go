package mqtt

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	coremetrics "github.com/kilianp07/homeopt/core/metrics"
	"github.com/kilianp07/homeopt/infra/logger"
)

// pahoClient is the subset of paho.Client used by Publisher.
type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
	Unsubscribe(topics ...string) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// ControlHandler receives control commands for a run.
type ControlHandler func(runID string, cmd Command)

// Publisher sends run progress and results to the broker and relays control
// commands. It implements metrics.MetricsSink so that it can be attached to
// the progress bus like any other sink.
type Publisher struct {
	cli        pahoClient
	prefix     string
	qos        map[string]byte
	retain     bool
	maxRetries int
	backoff    time.Duration
	logger     logger.Logger

	mu       sync.Mutex
	controls map[string]ControlHandler
}

// NewPublisher connects to the broker. Control subscriptions are restored on
// every reconnect.
func NewPublisher(cfg Config) (*Publisher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.New("mqtt_publisher")
	p := &Publisher{
		prefix:     cfg.TopicPrefix,
		qos:        cfg.QoS,
		retain:     cfg.RetainResult,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		logger:     log,
		controls:   make(map[string]ControlHandler),
	}

	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		p.resubscribe(c)
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	p.cli = c
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return p, nil
}

// Topic returns <prefix>/<runID>/<kind>.
func (p *Publisher) Topic(runID, kind string) string {
	return fmt.Sprintf("%s/%s/%s", p.prefix, runID, kind)
}

func (p *Publisher) qosFor(kind string) byte {
	if q, ok := p.qos[kind]; ok {
		return q
	}
	return 0
}

// RecordGeneration publishes ev as a progress message.
func (p *Publisher) RecordGeneration(ev coremetrics.GenerationEvent) error {
	return p.PublishProgress(NewProgressMessage(ev))
}

// PublishProgress publishes msg on the run progress topic.
func (p *Publisher) PublishProgress(msg ProgressMessage) error {
	return p.publish(p.Topic(msg.RunID, "progress"), p.qosFor("progress"), false, msg)
}

// PublishResult publishes msg on the run result topic.
func (p *Publisher) PublishResult(msg ResultMessage) error {
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixMilli()
	}
	return p.publish(p.Topic(msg.RunID, "result"), p.qosFor("result"), p.retain, msg)
}

func (p *Publisher) publish(topic string, qos byte, retain bool, msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, qos, retain, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.logger.Debugf("published %d bytes to %s", len(payload), topic)
			return nil
		}
		p.logger.Errorf("publish attempt %d to %s failed: %v", attempt+1, topic, publishErr)
		if attempt < p.maxRetries {
			time.Sleep(p.backoff * time.Duration(1<<attempt))
		}
	}
	return fmt.Errorf("publish %s: %w", topic, publishErr)
}

// SubscribeControl routes commands received for runID to h.
func (p *Publisher) SubscribeControl(runID string, h ControlHandler) error {
	p.mu.Lock()
	p.controls[runID] = h
	p.mu.Unlock()
	topic := p.Topic(runID, "control")
	if token := p.cli.Subscribe(topic, p.qosFor("control"), p.onControl); token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", topic, token.Error())
	}
	return nil
}

// UnsubscribeControl stops routing commands for runID.
func (p *Publisher) UnsubscribeControl(runID string) {
	p.mu.Lock()
	delete(p.controls, runID)
	p.mu.Unlock()
	if token := p.cli.Unsubscribe(p.Topic(runID, "control")); token.Wait() && token.Error() != nil {
		p.logger.Warnf("unsubscribe control %s: %v", runID, token.Error())
	}
}

func (p *Publisher) resubscribe(c paho.Client) {
	p.mu.Lock()
	runs := make([]string, 0, len(p.controls))
	for id := range p.controls {
		runs = append(runs, id)
	}
	p.mu.Unlock()
	for _, id := range runs {
		if token := c.Subscribe(p.Topic(id, "control"), p.qosFor("control"), p.onControl); token.Wait() && token.Error() != nil {
			p.logger.Errorf("subscribe error: %v", token.Error())
		}
	}
}

func (p *Publisher) onControl(_ paho.Client, msg paho.Message) {
	var m ControlMessage
	if err := json.Unmarshal(msg.Payload(), &m); err != nil {
		p.logger.Errorf("failed to decode control message: %v", err)
		return
	}
	runID := p.runIDFromTopic(msg.Topic())
	switch m.Command {
	case CommandPause, CommandResume, CommandCancel:
	default:
		p.logger.Warnf("ignoring unknown command %q for run %s", m.Command, runID)
		return
	}
	p.mu.Lock()
	h := p.controls[runID]
	p.mu.Unlock()
	if h == nil {
		return
	}
	p.logger.Infof("received %s for run %s", m.Command, runID)
	h(runID, m.Command)
}

func (p *Publisher) runIDFromTopic(topic string) string {
	rest := strings.TrimPrefix(topic, p.prefix+"/")
	runID, _, _ := strings.Cut(rest, "/")
	return runID
}

// Disconnect gracefully closes the MQTT connection.
func (p *Publisher) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
