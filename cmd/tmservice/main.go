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

// Package main is an HTTP service that compiles templates and runs
// the resulting machines.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/Comcast/tmachine/storage"
	"github.com/Comcast/tmachine/storage/bolt"
	"github.com/Comcast/tmachine/util/logs"
)

func main() {

	var (
		configFile = flag.String("c", "", "optional YAML config file")
		listen     = flag.String("h", "", "HTTP service address (overrides config)")
		db         = flag.String("p", "", "BoltDB filename for persistence (overrides config)")
		websockets = flag.Bool("w", false, "serve websockets at /ws")
		broker     = flag.String("mqtt", "", "MQTT broker for run summaries (overrides config)")
		topic      = flag.String("topic", "tmachine/runs", "MQTT topic prefix")
		logLevel   = flag.String("log", "", "log level (overrides config)")
	)

	flag.Parse()

	cfg := DefaultConfig()
	if *configFile != "" {
		var err error
		if cfg, err = ReadConfig(*configFile); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *db != "" {
		cfg.DB = *db
	}
	if *websockets {
		cfg.WebSockets = true
	}
	if *broker != "" {
		cfg.MQTT = &MQTTConfig{
			Broker: *broker,
			Topic:  *topic,
		}
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	if err := serve(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func serve(cfg *Config) error {
	level, err := logs.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := logs.New(&logs.Options{
		Level:   level,
		Journal: cfg.Journal,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var store storage.Storage = storage.NewMemStorage()
	if cfg.DB != "" {
		b, err := bolt.NewStorage(cfg.DB)
		if err != nil {
			return err
		}
		b.Logger = logger
		store = b
	}
	if err = store.Open(ctx); err != nil {
		return err
	}
	defer store.Close(context.Background())

	s := NewService(cfg, store, logger)

	if cfg.MQTT != nil {
		p, err := NewMQTTPublisher(cfg.MQTT, logger)
		if err != nil {
			return err
		}
		defer p.Close()
		s.Publisher = p
	}

	mux := s.Handler()
	if cfg.WebSockets {
		s.WebSockets(ctx, mux)
	}

	server := &http.Server{
		Addr:    cfg.Listen,
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdown)
	}()

	logger.Info("listening", "addr", cfg.Listen)
	if err = server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("main terminating")
	return nil
}
