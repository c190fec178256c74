package logger

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNew_Level(t *testing.T) {
	tests := []struct {
		level string
		want  logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"warn", logrus.WarnLevel},
		{"not-a-level", logrus.InfoLevel},
		{"", logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l := New(tt.level, "text")
			assert.Equal(t, tt.want, l.GetLevel())
		})
	}
}

func TestNew_Format(t *testing.T) {
	_, isJSON := New("info", "JSON").Formatter.(*logrus.JSONFormatter)
	assert.True(t, isJSON)

	_, isText := New("info", "text").Formatter.(*logrus.TextFormatter)
	assert.True(t, isText)
}

