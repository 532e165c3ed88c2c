// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package natpunch

import (
	"fmt"
	"net/netip"
	"os/exec"
	"strconv"
	"sync"

	"github.com/pion/logging"
)

// Verb tells external tooling what happened.
type Verb string

// Notification verbs.
const (
	VerbBind        Verb = "bind"
	VerbConnRequest Verb = "cr"
)

// Notifier reports mappings and connection requests. Notify must not block
// on the work it triggers.
type Notifier interface {
	Notify(verb Verb, addr netip.Addr, port uint16) error
}

// NotifierFunc is an adapter to allow the use of ordinary functions as
// Notifier.
type NotifierFunc func(verb Verb, addr netip.Addr, port uint16) error

// Notify calls f(verb, addr, port).
func (f NotifierFunc) Notify(verb Verb, addr netip.Addr, port uint16) error {
	return f(verb, addr, port)
}

// formatAddr renders addr for the command line. A session that was never
// mapped reports 0.0.0.0.
func formatAddr(addr netip.Addr) string {
	if !addr.IsValid() {
		return "0.0.0.0"
	}

	return addr.String()
}

func (s *Session) notify(verb Verb, addr netip.Addr, port uint16) error {
	if err := s.notifier.Notify(verb, addr, port); err != nil {
		s.log.Warnf("Failed to notify %s: %v", verb, err)
		s.metrics.notification(false)

		return err
	}
	s.metrics.notification(true)

	return nil
}

type logNotifier struct {
	log logging.LeveledLogger
}

func (n *logNotifier) Notify(verb Verb, addr netip.Addr, port uint16) error {
	n.log.Infof("No script configured, skipping %s %s %d", verb, formatAddr(addr), port)

	return nil
}

const defaultShell = "/bin/sh"

// ScriptNotifier runs "<script> <verb> <addr> <port>" through a login shell
// in a new session. It returns as soon as the child is started; a
// goroutine per child reaps it, so no zombies accumulate however many
// notifications are outstanding.
type ScriptNotifier struct {
	script string
	shell  string
	log    logging.LeveledLogger
	wg     sync.WaitGroup
}

// NewScriptNotifier returns a notifier for script.
func NewScriptNotifier(script string, f logging.LoggerFactory) *ScriptNotifier {
	return &ScriptNotifier{
		script: script,
		shell:  defaultShell,
		log:    f.NewLogger("notifier"),
	}
}

// Notify spawns the script. Errors wrap ErrScriptSpawn.
func (n *ScriptNotifier) Notify(verb Verb, addr netip.Addr, port uint16) error {
	cmdline := n.script + " " + string(verb) + " " + formatAddr(addr) + " " + strconv.Itoa(int(port))
	cmd := exec.Command(n.shell, "-lc", cmdline) //nolint:gosec // operator supplied script
	cmd.SysProcAttr = detachedProcAttr()
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w '%s': %w", ErrScriptSpawn, n.script, err)
	}
	n.log.Infof("Script '%s' spawned (pid %d)", n.script, cmd.Process.Pid)

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		if err := cmd.Wait(); err != nil {
			n.log.Debugf("Script '%s' (pid %d) exited: %v", n.script, cmd.Process.Pid, err)
		}
	}()

	return nil
}

// Wait blocks until every spawned script has exited.
func (n *ScriptNotifier) Wait() {
	n.wg.Wait()
}
