// Package exec runs external commands, such as the hg, svn and bzr clients.
package exec

import (
	"bytes"
	"os"
	"os/exec"
	"strings"

	"github.com/apex/log"

	"github.com/gazebo-tooling/gz-dashboard/errors"
)

// Cmd represents a single command.
type Cmd struct {
	Name string   // Executable name.
	Argv []string // Executable arguments.

	Dir string // The Command's working directory.

	// If neither Env nor WithEnv are set, the environment is inherited from os.Environ().
	Env     map[string]string // If set, the command's environment is _set_ to Env.
	WithEnv map[string]string // If set, the command's environment is _added_ to WithEnv.
}

func (c Cmd) String() string {
	return strings.Join(append([]string{c.Name}, c.Argv...), " ")
}

// BuildExec constructs the os/exec command for cmd without running it. The
// returned buffer collects the command's stderr.
func BuildExec(cmd Cmd) (*exec.Cmd, *bytes.Buffer) {
	var stderr bytes.Buffer
	xc := exec.Command(cmd.Name, cmd.Argv...)
	xc.Stderr = &stderr

	if cmd.Dir != "" {
		xc.Dir = cmd.Dir
	}

	if cmd.Env != nil {
		xc.Env = toEnv(cmd.Env)
	} else if cmd.WithEnv != nil {
		xc.Env = append(xc.Env, toEnv(cmd.WithEnv)...)
		xc.Env = append(xc.Env, os.Environ()...)
	} else {
		xc.Env = os.Environ()
	}
	return xc, &stderr
}

// Run executes a `Cmd`.
func Run(cmd Cmd) (stdout, stderr string, err error) {
	log.WithFields(log.Fields{
		"cmd": cmd.String(),
		"dir": cmd.Dir,
	}).Debug("running command")

	xc, stderrBuffer := BuildExec(cmd)
	stdoutBuffer, err := xc.Output()
	stdout = string(stdoutBuffer)
	stderr = stderrBuffer.String()

	log.WithFields(log.Fields{
		"stdout": stdout,
		"stderr": stderr,
	}).Debug("done running")

	if err != nil {
		return stdout, stderr, &errors.Error{
			Type:            errors.Exec,
			Cause:           err,
			Message:         "could not run `" + cmd.String() + "`",
			Troubleshooting: strings.TrimSpace(stderr),
		}
	}
	return stdout, stderr, nil
}

func toEnv(env map[string]string) []string {
	var out []string
	for key, val := range env {
		out = append(out, key+"="+val)
	}
	return out
}
