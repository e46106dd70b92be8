package display

import (
	"time"

	"github.com/apex/log"
	"github.com/briandowns/spinner"
)

var (
	useSpinner bool
	s          = spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(out))
)

// InProgress shows a progress spinner with a message. Outside of interactive
// mode the message is logged at debug level instead.
func InProgress(message string) {
	if useSpinner {
		s.Suffix = " " + message
		s.Restart()
		return
	}
	log.Debug(message)
}

// ClearProgress stops a progress spinner.
func ClearProgress() {
	if s.Active() {
		s.Stop()
	}
}
