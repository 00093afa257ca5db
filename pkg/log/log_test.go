// Copyright 2026 The Kestrel Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

// captureEmitter records emitted messages.
type captureEmitter struct {
	levels   []Level
	messages []string
}

func (c *captureEmitter) Emit(level Level, timestamp time.Time, format string, v ...any) {
	c.levels = append(c.levels, level)
	c.messages = append(c.messages, fmt.Sprintf(format, v...))
}

func TestLevelGating(t *testing.T) {
	for _, tc := range []struct {
		level Level
		want  int
	}{
		{Warning, 1},
		{Info, 2},
		{Debug, 3},
	} {
		e := &captureEmitter{}
		l := &BasicLogger{Level: tc.level, Emitter: e}
		l.Warningf("w")
		l.Infof("i")
		l.Debugf("d")
		if len(e.messages) != tc.want {
			t.Errorf("level %v: emitted %d messages, wanted %d", tc.level, len(e.messages), tc.want)
		}
	}
}

func TestIsLogging(t *testing.T) {
	l := &BasicLogger{Level: Info, Emitter: &captureEmitter{}}
	if !l.IsLogging(Warning) || !l.IsLogging(Info) {
		t.Error("IsLogging: enabled levels reported off")
	}
	if l.IsLogging(Debug) {
		t.Error("IsLogging: debug reported on at info level")
	}
}

func TestWriterFormat(t *testing.T) {
	var sb strings.Builder
	w := &Writer{Next: &sb}
	w.Emit(Warning, time.Unix(0, 0).UTC(), "count %d", 3)
	got := sb.String()
	if !strings.Contains(got, "[warning]") || !strings.Contains(got, "count 3") {
		t.Errorf("got %q", got)
	}
	if !strings.HasSuffix(got, "\n") {
		t.Errorf("missing trailing newline: %q", got)
	}
}

func TestGlobalLoggerSwap(t *testing.T) {
	old := Log()
	defer logger.Store(old)

	e := &captureEmitter{}
	SetTarget(e)
	SetLevel(Debug)
	Debugf("trace %d", 1)
	Infof("event")
	if len(e.messages) != 2 {
		t.Fatalf("emitted %d messages, wanted 2", len(e.messages))
	}
	if e.messages[0] != "trace 1" {
		t.Errorf("got %q, wanted %q", e.messages[0], "trace 1")
	}

	SetLevel(Warning)
	Infof("dropped")
	if len(e.messages) != 2 {
		t.Error("info logged at warning level")
	}
}
