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
	"os"
	"time"

	"github.com/jsccast/yaml"
)

// Config is the service configuration.  Command-line flags
// override a config file.
type Config struct {
	// Listen is the HTTP address.
	Listen string `json:"listen"`

	// DB is the BoltDB filename.  Empty means nothing is
	// persisted.
	DB string `json:"db,omitempty"`

	// MaxStates limits compilation.
	MaxStates int `json:"maxStates,omitempty"`

	// StrictTerminals is passed to compilation.
	StrictTerminals bool `json:"strictTerminals,omitempty"`

	// MaxSteps is the default and maximum step limit for a run.
	MaxSteps int `json:"maxSteps"`

	// RunTimeout bounds the time a run can take.
	RunTimeout time.Duration `json:"runTimeout,omitempty"`

	// WebSockets turns on the /ws stride stream.
	WebSockets bool `json:"websockets,omitempty"`

	MQTT *MQTTConfig `json:"mqtt,omitempty"`

	LogLevel string `json:"logLevel,omitempty"`
	Journal  bool   `json:"journal,omitempty"`
}

// MQTTConfig configures publication of run summaries.
type MQTTConfig struct {
	Broker   string `json:"broker"`
	ClientId string `json:"clientId,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`

	// Topic is a prefix.  Summaries go to TOPIC/MACHINE.
	Topic string `json:"topic"`

	QoS       byte `json:"qos,omitempty"`
	Retain    bool `json:"retain,omitempty"`
	KeepAlive int  `json:"keepAlive,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Listen:     ":8080",
		MaxSteps:   100000,
		RunTimeout: 10 * time.Second,
		LogLevel:   "info",
	}
}

// ReadConfig reads YAML (or JSON) over the defaults.
func ReadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()
	bs, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	if err = yaml.Unmarshal(bs, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
