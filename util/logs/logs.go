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

// Package logs makes the structured loggers used by the commands.
//
// A logger fans out to a text handler (usually stderr), an optional
// JSON handler (say, a file), and, when requested and available, the
// systemd journal.
package logs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	slogmulti "github.com/samber/slog-multi"
	slogjournal "github.com/systemd/slog-journal"
)

// Options configures New.
type Options struct {
	// Level is the minimum level.  Nil means slog.LevelInfo.
	Level slog.Leveler

	// Text receives human-readable records.  Nil means os.Stderr.
	Text io.Writer

	// JSON, if not nil, receives a JSON record for each log
	// call.
	JSON io.Writer

	// Journal requests the systemd journal handler.  If the
	// journal isn't available, a warning goes to the text
	// handler.
	Journal bool
}

// New makes a logger according to the given options, which can be
// nil.
func New(opts *Options) *slog.Logger {
	if opts == nil {
		opts = &Options{}
	}
	level := opts.Level
	if level == nil {
		level = slog.LevelInfo
	}
	text := opts.Text
	if text == nil {
		text = os.Stderr
	}

	hopts := &slog.HandlerOptions{
		Level: level,
	}

	textHandler := slog.NewTextHandler(text, hopts)
	handlers := []slog.Handler{textHandler}

	if opts.JSON != nil {
		handlers = append(handlers, slog.NewJSONHandler(opts.JSON, hopts))
	}

	if opts.Journal {
		journalHandler, err := slogjournal.NewHandler(&slogjournal.Options{
			Level: level,
			ReplaceGroup: func(key string) string {
				return toJournalKey(key)
			},
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				a.Key = toJournalKey(a.Key)
				return a
			},
		})
		if err != nil {
			record := slog.NewRecord(time.Now(), slog.LevelWarn, "no systemd journal", 0)
			record.Add("error", err)
			_ = textHandler.Handle(context.Background(), record)
		} else {
			handlers = append(handlers, journalHandler)
		}
	}

	return slog.New(slogmulti.Fanout(handlers...))
}

// Discard is a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelError + 100,
	}))
}

// ParseLevel parses "debug", "info", "warn", or "error".
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("bad log level %q: %w", s, err)
	}
	return l, nil
}

// journal field names are upper case letters, digits, and
// underscores.
func toJournalKey(s string) string {
	s = strings.ToUpper(s)
	return strings.Map(func(r rune) rune {
		if 'A' <= r && r <= 'Z' || '0' <= r && r <= '9' {
			return r
		}
		return '_'
	}, s)
}
