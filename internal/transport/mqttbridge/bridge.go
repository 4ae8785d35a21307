// Package mqttbridge attaches broker-connected displays to the broadcast
// channel. Displays announce themselves on display/<code>/hello and receive
// arbitrated commands on display/<code>/commands, so a player behind a broker
// gets exactly the same replay and priority behaviour as a streaming one.
package mqttbridge

import (
	"encoding/json"
	"fmt"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/hikari-signage/hikari/internal/broadcast"
)

const (
	helloTopic   = "display/+/hello"
	goodbyeTopic = "display/+/bye"
)

type Bridge struct {
	client mqtt.Client
	ch     *broadcast.Channel
}

// Start connects to the broker and begins registering announcing displays.
func Start(brokerURL string, ch *broadcast.Channel) (*Bridge, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID("signage-server")
	opts.OnConnect = func(client mqtt.Client) {
		log.Info().Str("broker", brokerURL).Msg("connected to MQTT broker")
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		log.Error().Err(err).Msg("MQTT connection lost")
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	b := &Bridge{client: client, ch: ch}
	if token := client.Subscribe(helloTopic, 1, b.onHello); token.Wait() && token.Error() != nil {
		client.Disconnect(250)
		return nil, fmt.Errorf("failed to subscribe to %s: %w", helloTopic, token.Error())
	}
	if token := client.Subscribe(goodbyeTopic, 1, b.onGoodbye); token.Wait() && token.Error() != nil {
		client.Disconnect(250)
		return nil, fmt.Errorf("failed to subscribe to %s: %w", goodbyeTopic, token.Error())
	}
	return b, nil
}

func (b *Bridge) onHello(client mqtt.Client, msg mqtt.Message) {
	code, ok := displayCode(msg.Topic())
	if !ok {
		return
	}
	topic := fmt.Sprintf("display/%s/commands", code)
	b.ch.Register(code, &mqttPusher{client: b.client, topic: topic})
	log.Info().Str("display", code).Msg("display attached via MQTT")
}

func (b *Bridge) onGoodbye(client mqtt.Client, msg mqtt.Message) {
	code, ok := displayCode(msg.Topic())
	if !ok {
		return
	}
	b.ch.Unregister(code)
	log.Info().Str("display", code).Msg("display detached via MQTT")
}

// Close disconnects from the broker.
func (b *Bridge) Close() {
	b.client.Disconnect(250)
}

func displayCode(topic string) (string, bool) {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// mqttPusher publishes commands to one display's topic. Publish is fire and
// forget: the token is awaited off the hot path so a slow broker cannot stall
// a broadcast pass.
type mqttPusher struct {
	client mqtt.Client
	topic  string
}

func (p *mqttPusher) Push(cmd broadcast.Command) error {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return err
	}
	token := p.client.Publish(p.topic, 1, false, payload)
	go func() {
		if token.Wait(); token.Error() != nil {
			log.Error().Err(token.Error()).Str("topic", p.topic).Msg("MQTT publish failed")
		}
	}()
	return nil
}
