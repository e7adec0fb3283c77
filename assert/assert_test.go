package assert

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestIsTruePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	IsTrue(false, "broken %s", "invariant")
}

func TestEnsureLogsOnce(t *testing.T) {
	Reset()
	buf := &bytes.Buffer{}
	log := logrus.New()
	log.SetOutput(buf)

	if Ensure(true, log, "never") != true {
		t.Fatalf("expected true passthrough")
	}
	for range 3 {
		if Ensure(false, log, "missing gait settings for %s", "Aiming") {
			t.Fatalf("expected false passthrough")
		}
	}
	if n := strings.Count(buf.String(), "missing gait settings for Aiming"); n != 1 {
		t.Fatalf("expected one log line, got %d", n)
	}
}
