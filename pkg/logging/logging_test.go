package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNew(t *testing.T) {
	cases := []struct {
		level, format string
		wantLevel     logrus.Level
		wantText      bool
	}{
		{"debug", "json", logrus.DebugLevel, false},
		{"WARN", "text", logrus.WarnLevel, true},
		{"bogus", "", logrus.InfoLevel, false},
	}
	for _, tc := range cases {
		e := New("svc", tc.level, tc.format)
		if e.Logger.GetLevel() != tc.wantLevel {
			t.Errorf("%s: level = %s", tc.level, e.Logger.GetLevel())
		}
		if _, isText := e.Logger.Formatter.(*logrus.TextFormatter); isText != tc.wantText {
			t.Errorf("%s: text formatter = %v", tc.format, isText)
		}
		if e.Data["service"] != "svc" {
			t.Errorf("service field = %v", e.Data["service"])
		}
	}
}
