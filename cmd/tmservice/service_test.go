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
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Comcast/tmachine/core"
	"github.com/Comcast/tmachine/storage"
	"github.com/Comcast/tmachine/util/logs"

	"github.com/gorilla/websocket"
)

var seekSrc = `
seek(c, k) {
  [c] k
  [*] > seek(c, k)
}
main = seek('b') { ='X' accept };
`

type published struct {
	sync.Mutex
	runs []*storage.RunRecord
}

func (p *published) Publish(ctx context.Context, r *storage.RunRecord) error {
	p.Lock()
	p.runs = append(p.runs, r)
	p.Unlock()
	return nil
}

func (p *published) Close() {
}

func newTestService(t *testing.T) (*Service, *httptest.Server) {
	cfg := DefaultConfig()
	cfg.MaxSteps = 50
	s := NewService(cfg, storage.NewMemStorage(), logs.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	mux := s.Handler()
	s.WebSockets(ctx, mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return s, ts
}

func post(t *testing.T, url, body string, want int, x interface{}) {
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != want {
		t.Fatalf("%s: %d", url, resp.StatusCode)
	}
	if x != nil {
		if err = json.NewDecoder(resp.Body).Decode(x); err != nil {
			t.Fatal(err)
		}
	}
}

func TestCacheFollowsStore(t *testing.T) {
	ctx := context.Background()
	s := NewService(DefaultConfig(), storage.NewMemStorage(), logs.Discard())
	srcs := []string{seekSrc, strings.Replace(seekSrc, "'X'", "'Y'", 1)}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(3)
		go func(src string) {
			defer wg.Done()
			if _, err := s.Compile(ctx, "seek", "", src); err != nil {
				t.Error(err)
			}
		}(srcs[i%2])
		go func() {
			defer wg.Done()
			s.Remove(ctx, "seek")
		}()
		go func() {
			defer wg.Done()
			s.Machine(ctx, "seek")
		}()
	}
	wg.Wait()

	printed := func(m *core.Machine) string {
		_, tape, _, err := m.Run(ctx, m.Entry, core.NewTape("b"))
		if err != nil {
			t.Fatal(err)
		}
		return tape.String()
	}

	s.Lock()
	u, cached := s.machines["seek"]
	s.Unlock()

	r, err := s.store.GetMachine(ctx, "seek")
	switch {
	case errors.Is(err, storage.NotFound):
		if cached {
			t.Fatal("removed machine is still cached")
		}
	case err != nil:
		t.Fatal(err)
	case cached:
		if got, want := printed(u.Machine()), printed(r.Machine); got != want {
			t.Fatalf("cached machine prints %s but stored one prints %s", got, want)
		}
	}

	if err = s.Remove(ctx, "seek"); err != nil && !errors.Is(err, storage.NotFound) {
		t.Fatal(err)
	}
	if _, err = s.Machine(ctx, "seek"); !errors.Is(err, storage.NotFound) {
		t.Fatal(err)
	}
}

func TestHTTP(t *testing.T) {
	s, ts := newTestService(t)
	p := &published{}
	s.Publisher = p

	var rec storage.MachineRecord
	post(t, ts.URL+"/machines/seek", seekSrc, http.StatusCreated, &rec)
	if len(rec.Machine.States) != 2 {
		t.Fatal(len(rec.Machine.States))
	}

	tests := []struct {
		description string
		req         string
		status      core.Status
		tape        string
	}{
		{
			description: "found",
			req:         `{"tape":"aab"}`,
			status:      core.Accepted,
			tape:        "aaX",
		},
		{
			description: "limited by the service",
			req:         `{"tape":"aaa","maxSteps":1000}`,
			status:      core.Running,
			tape:        "aaa",
		},
	}

	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			var run storage.RunRecord
			post(t, ts.URL+"/machines/seek/runs", tc.req, http.StatusOK, &run)
			if run.Status != tc.status || run.Tape != tc.tape || run.Id == "" {
				t.Fatal(run)
			}
		})
	}

	resp, err := http.Get(ts.URL + "/machines/seek/runs")
	if err != nil {
		t.Fatal(err)
	}
	var runs []*storage.RunRecord
	err = json.NewDecoder(resp.Body).Decode(&runs)
	resp.Body.Close()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 || runs[1].Steps != 50 {
		t.Fatal(runs)
	}
	if len(p.runs) != 2 {
		t.Fatal(len(p.runs))
	}
}

func TestHTTPErrors(t *testing.T) {
	_, ts := newTestService(t)

	post(t, ts.URL+"/machines/bad", "main { [ }", http.StatusBadRequest, nil)
	post(t, ts.URL+"/machines/nope/runs", `{"tape":""}`, http.StatusNotFound, nil)
	post(t, ts.URL+"/machines/seek", seekSrc, http.StatusCreated, nil)
	post(t, ts.URL+"/machines/seek/runs", `{"tape":"'x"}`, http.StatusBadRequest, nil)
	post(t, ts.URL+"/machines/seek/runs", `{"tape":"a","start":"nope"}`, http.StatusBadRequest, nil)
	post(t, ts.URL+"/machines/seek/runs", `{`, http.StatusBadRequest, nil)

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/machines/seek", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatal(resp.StatusCode)
	}
	post(t, ts.URL+"/machines/seek/runs", `{"tape":"b"}`, http.StatusNotFound, nil)
}

func TestWebSockets(t *testing.T) {
	_, ts := newTestService(t)
	post(t, ts.URL+"/machines/seek", seekSrc, http.StatusCreated, nil)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if err = c.WriteMessage(websocket.TextMessage, []byte(`{"machine":"seek","tape":"ab"}`)); err != nil {
		t.Fatal(err)
	}

	c.SetReadDeadline(time.Now().Add(5 * time.Second))

	strides := 0
	for {
		_, msg, err := c.ReadMessage()
		if err != nil {
			t.Fatal(err)
		}
		var x map[string]interface{}
		if err = json.Unmarshal(msg, &x); err != nil {
			t.Fatal(err)
		}
		if _, is := x["stride"]; is {
			strides++
			continue
		}
		if x["status"] != "accepted" || x["tape"] != "aX" {
			t.Fatal(string(msg))
		}
		break
	}
	if strides != 3 {
		t.Fatal(strides)
	}
}

func TestReadConfig(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "config.yaml")
	src := []byte("listen: \":9999\"\nmaxSteps: 7\nmqtt:\n  broker: tcp://localhost:1883\n  topic: runs\n")
	if err := os.WriteFile(filename, src, 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := ReadConfig(filename)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Listen != ":9999" || cfg.MaxSteps != 7 || cfg.MQTT == nil || cfg.MQTT.Topic != "runs" {
		t.Fatal(cfg)
	}
	if cfg.RunTimeout != DefaultConfig().RunTimeout {
		t.Fatal(cfg.RunTimeout)
	}
}
