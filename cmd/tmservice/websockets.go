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
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// WSRequest is a run request sent over a websocket.
type WSRequest struct {
	Machine string `json:"machine"`
	RunRequest
}

// WebSockets adds "/ws" to the mux.
//
// Every client gets the run record of every run (the firehose).  A
// client can also send a WSRequest, which starts a run whose strides
// are sent only to that client.
func (s *Service) WebSockets(ctx context.Context, mux *http.ServeMux) {
	s.firehose = make(chan interface{}, 1024)

	var upgrader = websocket.Upgrader{}

	conns := sync.Map{}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case x := <-s.firehose:
				conns.Range(func(k, v interface{}) bool {
					c := v.(chan interface{})
					select {
					case c <- x:
					default:
						s.log.Warn("websocket blocked", "client", k)
					}
					return true
				})
			}
		}
	}()

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.log.Warn("websocket upgrade", "error", err)
			return
		}
		defer c.Close()

		ctl := make(chan bool)
		defer close(ctl)

		out := make(chan interface{}, 256)

		id := r.RemoteAddr
		conns.Store(id, out)
		defer conns.Delete(id)

		// All writes happen here.
		go func() {
			for {
				select {
				case <-ctl:
					return
				case <-ctx.Done():
					return
				case x := <-out:
					js, err := json.Marshal(x)
					if err != nil {
						s.log.Warn("websocket marshal", "error", err)
						continue
					}
					if err = c.WriteMessage(websocket.TextMessage, js); err != nil {
						s.log.Warn("websocket write", "error", err)
					}
				}
			}
		}()

		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				s.log.Debug("websocket read", "error", err)
				return
			}

			var req WSRequest
			if err := json.Unmarshal(message, &req); err != nil {
				out <- map[string]string{"error": "can't parse: " + err.Error()}
				continue
			}

			observer := func(e *StrideEvent) {
				out <- e
			}
			if _, err = s.Run(ctx, req.Machine, &req.RunRequest, observer); err != nil {
				out <- map[string]string{"error": err.Error()}
			}
		}
	})

	s.log.Info("websockets at /ws")
}
