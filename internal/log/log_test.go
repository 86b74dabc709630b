// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package log

import (
	"bytes"
	"testing"
	"time"

	"github.com/apex/log"
	"github.com/stretchr/testify/assert"
)

func TestCustomHandler_HandleLog(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(&buf)
	h.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }

	entry := &log.Entry{
		Level:   log.WarnLevel,
		Message: "refresh failed",
		Fields:  log.Fields{"key": "routing:table", "attempt": 1},
	}

	assert.NoError(t, h.HandleLog(entry))
	assert.Equal(t, "2025-01-02 03:04:05 W refresh failed attempt=1 key=routing:table\n", buf.String())
}

func TestInitLogger_Level(t *testing.T) {
	t.Setenv("VYCTL_LOG", "debug")
	InitLogger()
	assert.Equal(t, log.DebugLevel, log.Log.(*log.Logger).Level)

	t.Setenv("VYCTL_LOG", "")
	InitLogger()
	assert.Equal(t, log.ErrorLevel, log.Log.(*log.Logger).Level)
}
