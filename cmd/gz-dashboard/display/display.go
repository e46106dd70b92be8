// Package display implements functions for displaying output to users.
package display

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/apex/log"
	"github.com/fatih/color"
)

var (
	mu    sync.Mutex
	out   io.Writer = os.Stderr
	level           = log.InfoLevel

	levelColors = map[log.Level]*color.Color{
		log.DebugLevel: color.New(color.Faint),
		log.InfoLevel:  color.New(color.FgCyan),
		log.WarnLevel:  color.New(color.FgYellow),
		log.ErrorLevel: color.New(color.FgRed),
		log.FatalLevel: color.New(color.FgRed, color.Bold),
	}
)

func init() {
	// The handler filters by level itself so that SetDebug can be toggled
	// after loggers have been created.
	log.SetLevel(log.DebugLevel)
	log.SetHandler(log.HandlerFunc(Handler))
}

// SetWriter sets where log entries and progress spinners are written.
func SetWriter(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
	s.Writer = w
}

// SetInteractive turns colors and ANSI control characters on or off.
func SetInteractive(interactive bool) {
	// Disable Unicode and ANSI control characters on Windows.
	if runtime.GOOS == "windows" {
		interactive = false
	}
	useSpinner = interactive
	if !interactive {
		color.NoColor = true
	}
}

// SetDebug turns debug logging on or off.
func SetDebug(debug bool) {
	mu.Lock()
	defer mu.Unlock()
	if debug {
		level = log.DebugLevel
	} else {
		level = log.InfoLevel
	}
}

// Handler writes human-readable log entries. Fields are only shown in debug
// mode.
func Handler(entry *log.Entry) error {
	mu.Lock()
	defer mu.Unlock()

	if entry.Level < level {
		return nil
	}

	if s.Active() {
		s.Stop()
		defer s.Start()
	}

	name := strings.ToUpper(entry.Level.String())
	if c, ok := levelColors[entry.Level]; ok {
		name = c.Sprint(name)
	}
	msg := fmt.Sprintf("%s %s", name, entry.Message)
	if level == log.DebugLevel {
		msg += formatFields(entry.Fields)
	}
	_, err := fmt.Fprintln(out, msg)
	return err
}

func formatFields(fields log.Fields) string {
	names := fields.Names()
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, " %s=%v", name, fields.Get(name))
	}
	return b.String()
}
