package mqtt

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/homeopt/core/metrics"
	"github.com/kilianp07/homeopt/core/model"
)

type sentMessage struct {
	topic   string
	qos     byte
	retain  bool
	payload []byte
}

// mockClient implements pahoClient and paho.Client for tests.
type mockClient struct {
	mu          sync.Mutex
	opts        *paho.ClientOptions
	subscribed  map[string]paho.MessageHandler
	subQoS      map[string]byte
	published   []sentMessage
	publishErrs []error
	connectErr  error
}

func newMockClient() *mockClient {
	return &mockClient{subscribed: map[string]paho.MessageHandler{}, subQoS: map[string]byte{}}
}

func (m *mockClient) IsConnected() bool { return true }
func (m *mockClient) Connect() paho.Token {
	if m.connectErr != nil {
		return &dummyToken{err: m.connectErr}
	}
	if m.opts != nil && m.opts.OnConnect != nil {
		m.opts.OnConnect(m)
	}
	return &dummyToken{}
}
func (m *mockClient) Disconnect(uint) {}
func (m *mockClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, _ := payload.([]byte)
	m.published = append(m.published, sentMessage{topic, qos, retained, b})
	if len(m.publishErrs) > 0 {
		err := m.publishErrs[0]
		m.publishErrs = m.publishErrs[1:]
		return &dummyToken{err: err}
	}
	return &dummyToken{}
}
func (m *mockClient) Subscribe(topic string, qos byte, cb paho.MessageHandler) paho.Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribed[topic] = cb
	m.subQoS[topic] = qos
	return &dummyToken{}
}
func (m *mockClient) SubscribeMultiple(map[string]byte, paho.MessageHandler) paho.Token {
	return &dummyToken{}
}
func (m *mockClient) Unsubscribe(topics ...string) paho.Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range topics {
		delete(m.subscribed, t)
	}
	return &dummyToken{}
}
func (m *mockClient) AddRoute(string, paho.MessageHandler)    {}
func (m *mockClient) OptionsReader() paho.ClientOptionsReader { return paho.ClientOptionsReader{} }
func (m *mockClient) IsConnectionOpen() bool                  { return true }

// deliver simulates an incoming message on topic.
func (m *mockClient) deliver(topic string, payload []byte) {
	m.mu.Lock()
	cb := m.subscribed[topic]
	m.mu.Unlock()
	if cb != nil {
		cb(m, mockMessage{topic: topic, p: payload})
	}
}

type dummyToken struct{ err error }

func (d dummyToken) Wait() bool                     { return true }
func (d dummyToken) WaitTimeout(time.Duration) bool { return true }
func (d dummyToken) Done() <-chan struct{}          { ch := make(chan struct{}); close(ch); return ch }
func (d dummyToken) Error() error                   { return d.err }

type mockMessage struct {
	topic string
	p     []byte
}

func (m mockMessage) Duplicate() bool   { return false }
func (m mockMessage) Qos() byte         { return 0 }
func (m mockMessage) Retained() bool    { return false }
func (m mockMessage) Topic() string     { return m.topic }
func (m mockMessage) MessageID() uint16 { return 0 }
func (m mockMessage) Payload() []byte   { return m.p }
func (m mockMessage) Ack()              {}

func withMock(t *testing.T, mc *mockClient) {
	t.Helper()
	newMQTTClient = func(o *paho.ClientOptions) pahoClient { mc.opts = o; return mc }
	t.Cleanup(func() {
		newMQTTClient = func(opts *paho.ClientOptions) pahoClient { return paho.NewClient(opts) }
	})
}

func TestPublishProgress(t *testing.T) {
	mc := newMockClient()
	withMock(t, mc)
	pub, err := NewPublisher(Config{Broker: "tcp://localhost:1883", QoS: map[string]byte{"progress": 1}})
	require.NoError(t, err)

	ev := coremetrics.GenerationEvent{
		RunID:      "run-1",
		Generation: 4,
		FrontSize:  1,
		Front:      []model.Individual{{StartHours: []int{7, 18}, Cost: 3.2, Discomfort: 1}},
		Time:       time.UnixMilli(1234),
	}
	require.NoError(t, pub.RecordGeneration(ev))

	require.Len(t, mc.published, 1)
	msg := mc.published[0]
	assert.Equal(t, "homeopt/run-1/progress", msg.topic)
	assert.Equal(t, byte(1), msg.qos)
	assert.False(t, msg.retain)

	var got ProgressMessage
	require.NoError(t, json.Unmarshal(msg.payload, &got))
	assert.Equal(t, 4, got.Generation)
	assert.Equal(t, int64(1234), got.Timestamp)
	require.Len(t, got.Front, 1)
	assert.Equal(t, "07:00, 18:00", got.Front[0].Schedule)
	assert.Equal(t, []int{7, 18}, got.Front[0].StartHours)
}

func TestPublishResultRetained(t *testing.T) {
	mc := newMockClient()
	withMock(t, mc)
	pub, err := NewPublisher(Config{Broker: "tcp://localhost:1883", TopicPrefix: "house", RetainResult: true, QoS: map[string]byte{"result": 2}})
	require.NoError(t, err)

	require.NoError(t, pub.PublishResult(ResultMessage{RunID: "r", Status: "completed", Generations: 10}))
	require.Len(t, mc.published, 1)
	assert.Equal(t, "house/r/result", mc.published[0].topic)
	assert.Equal(t, byte(2), mc.published[0].qos)
	assert.True(t, mc.published[0].retain)

	var got ResultMessage
	require.NoError(t, json.Unmarshal(mc.published[0].payload, &got))
	assert.NotZero(t, got.Timestamp)
	assert.Nil(t, got.Selected)
}

func TestPublishRetries(t *testing.T) {
	mc := newMockClient()
	mc.publishErrs = []error{fmt.Errorf("net fail"), nil}
	withMock(t, mc)
	pub, err := NewPublisher(Config{Broker: "tcp://localhost:1883", MaxRetries: 1, BackoffMS: 1})
	require.NoError(t, err)

	require.NoError(t, pub.PublishProgress(ProgressMessage{RunID: "r"}))
	assert.Len(t, mc.published, 2)
}

func TestPublishGivesUp(t *testing.T) {
	mc := newMockClient()
	fail := fmt.Errorf("net fail")
	mc.publishErrs = []error{fail, fail, fail}
	withMock(t, mc)
	pub, err := NewPublisher(Config{Broker: "tcp://localhost:1883", MaxRetries: 2, BackoffMS: 1})
	require.NoError(t, err)

	err = pub.PublishProgress(ProgressMessage{RunID: "r"})
	assert.ErrorIs(t, err, fail)
	assert.Len(t, mc.published, 3)
}

func TestConnectError(t *testing.T) {
	mc := newMockClient()
	mc.connectErr = fmt.Errorf("refused")
	withMock(t, mc)
	_, err := NewPublisher(Config{Broker: "tcp://localhost:1883"})
	assert.Error(t, err)
}

func TestControlCommands(t *testing.T) {
	mc := newMockClient()
	withMock(t, mc)
	pub, err := NewPublisher(Config{Broker: "tcp://localhost:1883", QoS: map[string]byte{"control": 1}})
	require.NoError(t, err)

	var got []Command
	require.NoError(t, pub.SubscribeControl("run-9", func(runID string, cmd Command) {
		assert.Equal(t, "run-9", runID)
		got = append(got, cmd)
	}))
	topic := "homeopt/run-9/control"
	assert.Equal(t, byte(1), mc.subQoS[topic])

	mc.deliver(topic, []byte(`{"command":"pause"}`))
	mc.deliver(topic, []byte(`{"command":"explode"}`))
	mc.deliver(topic, []byte(`not json`))
	mc.deliver(topic, []byte(`{"command":"resume"}`))
	assert.Equal(t, []Command{CommandPause, CommandResume}, got)

	pub.UnsubscribeControl("run-9")
	mc.deliver(topic, []byte(`{"command":"cancel"}`))
	assert.Len(t, got, 2)
}

func TestResubscribeOnReconnect(t *testing.T) {
	mc := newMockClient()
	withMock(t, mc)
	pub, err := NewPublisher(Config{Broker: "tcp://localhost:1883"})
	require.NoError(t, err)
	require.NoError(t, pub.SubscribeControl("a", func(string, Command) {}))

	mc.subscribed = map[string]paho.MessageHandler{}
	mc.opts.OnConnect(mc)
	assert.Contains(t, mc.subscribed, "homeopt/a/control")
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, Config{}.Validate())
	assert.Error(t, Config{AuthMethod: "kerberos"}.Validate())
	assert.Error(t, Config{QoS: map[string]byte{"progress": 3}}.Validate())

	var c Config
	c.SetDefaults()
	assert.Equal(t, "homeopt", c.TopicPrefix)
	assert.Contains(t, c.ClientID, "homeopt-")
	assert.Equal(t, 3, c.MaxRetries)
	assert.False(t, c.Enabled())
}

func TestNewClientOptionsAuth(t *testing.T) {
	opts, err := NewClientOptions(Config{Broker: "tcp://localhost:1883", ClientID: "id", Username: "u", Password: "p", LWTTopic: "lwt", LWTPayload: "bye"})
	require.NoError(t, err)
	assert.Equal(t, "u", opts.Username)
	assert.Equal(t, "p", opts.Password)
	assert.True(t, opts.WillEnabled)
	assert.Equal(t, "lwt", opts.WillTopic)
}

func TestLoadTLSConfigRequiresFiles(t *testing.T) {
	_, err := Config{UseTLS: true}.LoadTLSConfig()
	assert.Error(t, err)
	_, err = NewClientOptions(Config{Broker: "ssl://x:8883", UseTLS: true})
	assert.Error(t, err)
}
