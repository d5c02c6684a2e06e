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

// Package bolt is a BoltDB implementation of storage.Storage.
package bolt

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"time"

	"github.com/Comcast/tmachine/storage"
	"github.com/Comcast/tmachine/util/logs"

	bolt "go.etcd.io/bbolt"
)

var (
	machinesBucket = []byte("machines")
	runsBucket     = []byte("runs")
)

type Storage struct {
	// Debug turns on logging of each operation to Logger.
	Debug  bool
	Logger *slog.Logger

	filename string
	db       *bolt.DB
}

func NewStorage(filename string) (*Storage, error) {
	return &Storage{
		Logger:   logs.Discard(),
		filename: filename,
	}, nil
}

func (s *Storage) Open(ctx context.Context) error {
	opts := &bolt.Options{
		Timeout: time.Second,
	}

	db, err := bolt.Open(s.filename, 0644, opts)
	if err != nil {
		return err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(machinesBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(runsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return err
	}
	s.db = db
	return nil
}

func (s *Storage) Close(ctx context.Context) error {
	return s.db.Close()
}

func (s *Storage) logf(msg string, args ...any) {
	if s.Debug {
		s.Logger.Debug("bolt storage "+msg, args...)
	}
}

func (s *Storage) PutMachine(ctx context.Context, r *storage.MachineRecord) error {
	s.logf("PutMachine", "name", r.Name)
	js, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(machinesBucket).Put([]byte(r.Name), js)
	})
}

func (s *Storage) GetMachine(ctx context.Context, name string) (*storage.MachineRecord, error) {
	s.logf("GetMachine", "name", name)
	var r *storage.MachineRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		js := tx.Bucket(machinesBucket).Get([]byte(name))
		if js == nil {
			return storage.NotFound
		}
		r = &storage.MachineRecord{}
		return json.Unmarshal(js, r)
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Storage) RemMachine(ctx context.Context, name string) error {
	s.logf("RemMachine", "name", name)
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(machinesBucket).Delete([]byte(name)); err != nil {
			return err
		}
		runs := tx.Bucket(runsBucket)
		if runs.Bucket([]byte(name)) == nil {
			return nil
		}
		return runs.DeleteBucket([]byte(name))
	})
}

func (s *Storage) ListMachines(ctx context.Context) ([]string, error) {
	acc := make([]string, 0, 32)
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(machinesBucket).Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			acc = append(acc, string(k))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return acc, nil
}

func (s *Storage) PutRun(ctx context.Context, r *storage.RunRecord) error {
	s.logf("PutRun", "machine", r.Machine, "id", r.Id, "status", r.Status)
	js, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.Bucket(runsBucket).CreateBucketIfNotExists([]byte(r.Machine))
		if err != nil {
			return err
		}
		return b.Put([]byte(r.Id), js)
	})
}

func (s *Storage) GetRuns(ctx context.Context, machine string) ([]*storage.RunRecord, error) {
	acc := make([]*storage.RunRecord, 0, 32)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(runsBucket).Bucket([]byte(machine))
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, js []byte) error {
			var r storage.RunRecord
			if err := json.Unmarshal(js, &r); err != nil {
				return err
			}
			acc = append(acc, &r)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(acc, func(i, j int) bool {
		return acc[i].At.Before(acc[j].At)
	})
	s.logf("GetRuns", "machine", machine, "found", len(acc))
	return acc, nil
}
