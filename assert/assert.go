package assert

import (
	"fmt"
	"sync"

	"github.com/getsentry/sentry-go"
	"github.com/oomph-ac/locomotion/oerror"
	"github.com/sirupsen/logrus"
)

// IsTrue panics if ok is false. It guards invariants that can only be broken by
// a programming error.
func IsTrue(ok bool, message string, args ...interface{}) {
	if !ok {
		panic(oerror.New(message, args...))
	}
}

var reported sync.Map

// Ensure is a soft assertion. When ok is false the failure is logged once per
// distinct message and captured by sentry, and execution continues. The value of
// ok is returned so callers can branch on it.
func Ensure(ok bool, log *logrus.Logger, message string, args ...interface{}) bool {
	if ok {
		return true
	}
	msg := fmt.Sprintf(message, args...)
	if _, seen := reported.LoadOrStore(msg, struct{}{}); seen {
		return false
	}
	if log != nil {
		log.Warnf("ensure failed: %s", msg)
	}
	sentry.CaptureException(oerror.New("ensure failed: %s", msg))
	return false
}

// Reset forgets every reported soft assertion.
func Reset() {
	reported.Range(func(key, _ any) bool {
		reported.Delete(key)
		return true
	})
}
