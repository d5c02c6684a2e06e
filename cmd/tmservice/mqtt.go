/* Copyright 2026 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Comcast/tmachine/storage"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Publisher announces finished runs.
type Publisher interface {
	Publish(ctx context.Context, r *storage.RunRecord) error
	Close()
}

// MQTTPublisher publishes each RunRecord as JSON to TOPIC/MACHINE.
type MQTTPublisher struct {
	Client  mqtt.Client
	Topic   string
	QoS     byte
	Retain  bool
	Timeout time.Duration

	log *slog.Logger
}

func NewMQTTPublisher(cfg *MQTTConfig, logger *slog.Logger) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientId)
	if 0 < cfg.KeepAlive {
		opts.SetKeepAlive(time.Second * time.Duration(cfg.KeepAlive))
	}
	opts.Username = cfg.Username
	opts.Password = cfg.Password
	opts.AutoReconnect = true

	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		logger.Warn("MQTT connection lost", "error", err)
	}

	p := &MQTTPublisher{
		Client:  mqtt.NewClient(opts),
		Topic:   cfg.Topic,
		QoS:     cfg.QoS,
		Retain:  cfg.Retain,
		Timeout: 5 * time.Second,
		log:     logger,
	}

	t := p.Client.Connect()
	if !t.WaitTimeout(p.Timeout) {
		return nil, fmt.Errorf("MQTT connect to %s timed out", cfg.Broker)
	}
	if err := t.Error(); err != nil {
		return nil, err
	}
	logger.Info("MQTT connected", "broker", cfg.Broker)

	return p, nil
}

func (p *MQTTPublisher) Publish(ctx context.Context, r *storage.RunRecord) error {
	js, err := json.Marshal(r)
	if err != nil {
		return err
	}
	topic := p.Topic + "/" + r.Machine
	t := p.Client.Publish(topic, p.QoS, p.Retain, js)
	if !t.WaitTimeout(p.Timeout) {
		return fmt.Errorf("MQTT publish to %s timed out", topic)
	}
	if err = t.Error(); err != nil {
		return err
	}
	p.log.Debug("published", "topic", topic, "run", r.Id)
	return nil
}

func (p *MQTTPublisher) Close() {
	p.Client.Disconnect(250)
}
