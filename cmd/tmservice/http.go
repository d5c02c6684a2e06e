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
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/Comcast/tmachine/storage"
)

// maxBody limits template source and run requests.
const maxBody = 1 << 20

// Handler returns the HTTP API.
func (s *Service) Handler() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /machines", func(w http.ResponseWriter, r *http.Request) {
		names, err := s.store.ListMachines(r.Context())
		if err != nil {
			s.fail(w, err)
			return
		}
		s.reply(w, http.StatusOK, names)
	})

	mux.HandleFunc("POST /machines/{name}", func(w http.ResponseWriter, r *http.Request) {
		src, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
		if err != nil {
			s.fail(w, &BadRequest{err})
			return
		}
		rec, err := s.Compile(r.Context(), r.PathValue("name"), r.URL.Query().Get("entry"), string(src))
		if err != nil {
			s.fail(w, err)
			return
		}
		s.reply(w, http.StatusCreated, rec)
	})

	mux.HandleFunc("GET /machines/{name}", func(w http.ResponseWriter, r *http.Request) {
		rec, err := s.store.GetMachine(r.Context(), r.PathValue("name"))
		if err != nil {
			s.fail(w, err)
			return
		}
		s.reply(w, http.StatusOK, rec)
	})

	mux.HandleFunc("DELETE /machines/{name}", func(w http.ResponseWriter, r *http.Request) {
		if err := s.Remove(r.Context(), r.PathValue("name")); err != nil {
			s.fail(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("POST /machines/{name}/runs", func(w http.ResponseWriter, r *http.Request) {
		var req RunRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(&req); err != nil {
			s.fail(w, &BadRequest{err})
			return
		}
		rec, err := s.Run(r.Context(), r.PathValue("name"), &req, nil)
		if err != nil {
			s.fail(w, err)
			return
		}
		s.reply(w, http.StatusOK, rec)
	})

	mux.HandleFunc("GET /machines/{name}/runs", func(w http.ResponseWriter, r *http.Request) {
		runs, err := s.store.GetRuns(r.Context(), r.PathValue("name"))
		if err != nil {
			s.fail(w, err)
			return
		}
		s.reply(w, http.StatusOK, runs)
	})

	return mux
}

func (s *Service) reply(w http.ResponseWriter, code int, x interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(x); err != nil {
		s.log.Warn("reply", "error", err)
	}
}

func (s *Service) fail(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	var bad *BadRequest
	switch {
	case errors.As(err, &bad):
		code = http.StatusBadRequest
	case errors.Is(err, storage.NotFound):
		code = http.StatusNotFound
	}
	if code == http.StatusInternalServerError {
		s.log.Error("request failed", "error", err)
	}
	s.reply(w, code, map[string]string{"error": err.Error()})
}
