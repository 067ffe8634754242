package mqtt

import (
	"encoding/json"
	"fmt"
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/metromatic/core/events"
	coremon "github.com/kilianp07/metromatic/core/monitoring"
	"github.com/kilianp07/metromatic/infra/logger"
)

// Bridge subscribes to MQTT topics and re-emits every message as an event on
// a Source. Handlers run on paho's delivery goroutine.
type Bridge struct {
	opts     *paho.ClientOptions
	src      events.Source
	bindings []Binding
	logger   logger.Logger

	mu  sync.Mutex
	cli pahoClient
}

// NewBridge validates cfg and prepares a bridge feeding src. Nothing is
// connected until Start.
func NewBridge(cfg Config, src events.Source) (*Bridge, error) {
	if src == nil {
		return nil, fmt.Errorf("mqtt: nil event source")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	b := &Bridge{
		opts:     opts,
		src:      src,
		bindings: append([]Binding(nil), cfg.Events...),
		logger:   logger.New("mqtt_bridge"),
	}
	opts.OnConnect = b.subscribe
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		b.logger.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		b.logger.Warnf("reconnecting to MQTT broker")
	}
	return b, nil
}

// Start connects to the broker. Subscriptions are (re)established on every
// successful connection.
func (b *Bridge) Start() error {
	c := newMQTTClient(b.opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect: %w", token.Error())
	}
	b.mu.Lock()
	b.cli = c
	b.mu.Unlock()
	return nil
}

// Stop unsubscribes every binding and disconnects.
func (b *Bridge) Stop() {
	b.mu.Lock()
	c := b.cli
	b.cli = nil
	b.mu.Unlock()
	if c == nil || !c.IsConnected() {
		return
	}
	topics := make([]string, 0, len(b.bindings))
	for _, bind := range b.bindings {
		topics = append(topics, bind.Topic)
	}
	if token := c.Unsubscribe(topics...); token.Wait() && token.Error() != nil {
		b.logger.Warnf("unsubscribe error: %v", token.Error())
	}
	c.Disconnect(250)
}

func (b *Bridge) subscribe(c paho.Client) {
	b.logger.Infof("MQTT connected")
	for _, bind := range b.bindings {
		if token := c.Subscribe(bind.Topic, bind.QoS, b.handler(bind)); token.Wait() && token.Error() != nil {
			b.logger.Errorf("subscribe %s error: %v", bind.Topic, token.Error())
			continue
		}
		b.logger.Debugf("bridging %s -> %s", bind.Topic, bind.Event)
	}
}

func (b *Bridge) handler(bind Binding) paho.MessageHandler {
	return func(_ paho.Client, msg paho.Message) {
		args := EventArgs(bind, msg.Payload())
		if err := b.src.Emit(bind.Event, args...); err != nil {
			b.logger.Errorf("emit %s from %s: %v", bind.Event, msg.Topic(), err)
			coremon.CaptureException(err, map[string]string{
				"module": "mqtt",
				"topic":  msg.Topic(),
				"event":  bind.Event,
			})
		}
	}
}

// EventArgs translates a message payload into event arguments. An empty
// payload yields no arguments. JSON payloads are decoded; anything else is
// passed as a string. With an IDField, the id comes first and the decoded
// payload second.
func EventArgs(bind Binding, payload []byte) []any {
	if len(payload) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(payload, &v); err != nil {
		v = string(payload)
	}
	if bind.IDField == "" {
		return []any{v}
	}
	var id any
	if m, ok := v.(map[string]any); ok {
		id = m[bind.IDField]
	}
	return []any{id, v}
}
