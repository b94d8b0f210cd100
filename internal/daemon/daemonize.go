package daemon

import (
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"syscall"
	"time"
)

const (
	// daemonEnvVar marks the re-executed child process.
	daemonEnvVar = "TABSUSPEND_DAEMONIZED"

	// socketWaitTimeout is how long the parent waits for the child's
	// socket before reporting.
	socketWaitTimeout = 2 * time.Second

	socketCheckInterval = 50 * time.Millisecond
)

// Daemonize re-executes the current command as a detached child.
//
// In the parent it starts the child with TABSUSPEND_DAEMONIZED=1, waits
// for socketPath to accept connections, writes a one-line report to out,
// and returns shouldExit=true. In the child it returns shouldExit=false
// so the caller carries on serving.
func Daemonize(socketPath string, out io.Writer) (shouldExit bool, pid int, err error) {
	if IsDaemonized() {
		return false, os.Getpid(), nil
	}

	executable, err := os.Executable()
	if err != nil {
		return false, 0, fmt.Errorf("get executable path: %w", err)
	}

	cmd := exec.Command(executable, os.Args[1:]...)
	cmd.Env = append(os.Environ(), daemonEnvVar+"=1")
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return false, 0, fmt.Errorf("start daemon: %w", err)
	}
	childPID := cmd.Process.Pid

	if out == nil {
		out = io.Discard
	}
	if err := waitForSocketReady(socketPath, socketWaitTimeout); err != nil {
		// The child may still be loading its tab snapshot.
		_, _ = fmt.Fprintf(out, "Started daemon (pid %d) - socket not yet available\n", childPID)
	} else {
		_, _ = fmt.Fprintf(out, "Started daemon (pid %d)\n", childPID)
	}

	return true, childPID, nil
}

// IsDaemonized reports whether this process is the re-executed child.
func IsDaemonized() bool {
	return os.Getenv(daemonEnvVar) == "1"
}

// waitForSocketReady polls until socketPath accepts a connection.
func waitForSocketReady(socketPath string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("unix", socketPath, socketCheckInterval)
		if err == nil {
			_ = conn.Close()
			return nil
		}
		time.Sleep(socketCheckInterval)
	}
	return fmt.Errorf("socket not available after %v", timeout)
}
