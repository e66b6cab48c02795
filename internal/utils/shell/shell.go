package shell

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"

	"github.com/open-pkg-tools/pkgsmith/internal/utils/logger"
)

// getShell returns the preferred shell, falling back to /bin/sh if bash is not available
func getShell() string {
	shells := []string{"/bin/bash", "/usr/bin/bash", "/bin/sh"}
	for _, shell := range shells {
		if _, err := os.Stat(shell); err == nil {
			return shell
		}
	}
	return "/bin/sh" // fallback
}

// ExecCmd executes a command string in dir with the given environment
// and returns its combined output. The environment is passed explicitly;
// nothing is inherited from the calling process beyond PATH basics.
func ExecCmd(cmdStr string, dir string, envVal []string) (string, error) {
	log := logger.Logger()
	log.Debugf("Exec: [%s]", cmdStr)

	shell := getShell()
	cmd := exec.Command(shell, "-c", cmdStr)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), envVal...)

	output, err := cmd.CombinedOutput()
	outputStr := string(output)

	if err != nil {
		if outputStr != "" {
			log.Infof(outputStr)
		}
		return outputStr, fmt.Errorf("failed to exec %s: %w", cmdStr, err)
	}
	if outputStr != "" {
		log.Debugf(outputStr)
	}
	return outputStr, nil
}

// ExecCmdWithStream executes a command and streams its output line by
// line into the logger. Used for long-running build and install steps.
func ExecCmdWithStream(cmdStr string, dir string, envVal []string) (string, error) {
	var outputStr string
	log := logger.Logger()
	log.Debugf("Exec: [%s]", cmdStr)

	shell := getShell()
	cmd := exec.Command(shell, "-c", cmdStr)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), envVal...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("failed to get stdout pipe for command %s: %w", cmdStr, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return "", fmt.Errorf("failed to get stderr pipe for command %s: %w", cmdStr, err)
	}

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("failed to start command %s: %w", cmdStr, err)
	}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			str := scanner.Text()
			if str != "" {
				outputStr += str + "\n"
				log.Infof(str)
			}
		}
	}()

	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			str := scanner.Text()
			if str != "" {
				log.Infof(str)
			}
		}
	}()

	wg.Wait()

	if err := cmd.Wait(); err != nil {
		return outputStr, fmt.Errorf("failed to wait for command %s: %w", cmdStr, err)
	}

	return outputStr, nil
}

// ExitCode extracts the process exit code from an ExecCmd error chain.
// Returns -1 when the command never ran.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
