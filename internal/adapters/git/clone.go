package git

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/ralphtown/ralphtown/internal/domain"
	"github.com/ralphtown/ralphtown/internal/logging"
)

// errorTailLines caps how much non-progress stderr is kept around for
// classification when the clone fails.
const errorTailLines = 20

var (
	receivingRe = regexp.MustCompile(`Receiving objects:\s+\d+% \((\d+)/(\d+)\)(?:, ([\d.]+) ([KMGT]?iB))?`)
	indexingRe  = regexp.MustCompile(`Indexing objects:\s+\d+% \((\d+)/(\d+)\)`)
	deltasRe    = regexp.MustCompile(`Resolving deltas:\s+\d+% \((\d+)/(\d+)\)`)
)

// cloneWithProgress clones url to dest, pushing cumulative progress
// snapshots parsed from git's stderr. Snapshots are sent without
// blocking; a full channel just skips the update. Failures come back
// classified as *domain.CloneError.
func cloneWithProgress(ctx context.Context, url, dest string, progress chan<- domain.CloneProgress) error {
	logging.Logger.Info("Cloning repository", "url", url, "dest", dest)

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return &domain.CloneError{Kind: domain.CloneFailed, Message: err.Error()}
	}

	cmd := exec.CommandContext(ctx, "git", "clone", "--progress", url, dest)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return &domain.CloneError{Kind: domain.CloneFailed, Message: err.Error()}
	}

	if err := cmd.Start(); err != nil {
		return &domain.CloneError{Kind: domain.CloneFailed, Message: err.Error()}
	}

	// git rewrites progress lines with carriage returns, so the scanner
	// splits on \r as well as \n
	var snapshot domain.CloneProgress
	var tail []string

	scanner := bufio.NewScanner(stderr)
	scanner.Split(scanProgressLines)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if parseProgressLine(line, &snapshot) {
			sendProgress(progress, snapshot)
			continue
		}

		tail = append(tail, line)
		if len(tail) > errorTailLines {
			tail = tail[1:]
		}
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		cloneErr := classifyCloneError(strings.Join(tail, "\n"))
		logging.Logger.Error("Git clone failed", "url", url, "kind", cloneErr.Kind, "error", cloneErr.Message)
		return cloneErr
	}

	logging.Logger.Info("Repository cloned successfully", "path", dest)
	return nil
}

// scanProgressLines is a bufio.SplitFunc treating \r and \n both as
// line terminators
func scanProgressLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// parseProgressLine folds one stderr line into the snapshot and reports
// whether the line carried progress information
func parseProgressLine(line string, snapshot *domain.CloneProgress) bool {
	if m := receivingRe.FindStringSubmatch(line); m != nil {
		snapshot.ReceivedObjects, _ = strconv.Atoi(m[1])
		snapshot.TotalObjects, _ = strconv.Atoi(m[2])
		if m[3] != "" {
			snapshot.ReceivedBytes = parseTransferSize(m[3], m[4])
		}
		return true
	}
	if m := indexingRe.FindStringSubmatch(line); m != nil {
		snapshot.IndexedObjects, _ = strconv.Atoi(m[1])
		snapshot.TotalObjects, _ = strconv.Atoi(m[2])
		return true
	}
	if m := deltasRe.FindStringSubmatch(line); m != nil {
		snapshot.IndexedDeltas, _ = strconv.Atoi(m[1])
		snapshot.TotalDeltas, _ = strconv.Atoi(m[2])
		return true
	}
	return false
}

// parseTransferSize converts git's "2.34 MiB" style figures to bytes
func parseTransferSize(value, unit string) int64 {
	size, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}

	switch unit {
	case "KiB":
		size *= 1 << 10
	case "MiB":
		size *= 1 << 20
	case "GiB":
		size *= 1 << 30
	case "TiB":
		size *= 1 << 40
	}
	return int64(size)
}

func sendProgress(progress chan<- domain.CloneProgress, snapshot domain.CloneProgress) {
	if progress == nil {
		return
	}
	select {
	case progress <- snapshot:
	default:
		// Consumer is behind; snapshots are cumulative so skipping is safe
	}
}

// classifyCloneError maps git's stderr text onto the closed set of
// clone failure kinds. Authentication classes carry remediation steps.
func classifyCloneError(stderr string) *domain.CloneError {
	message := cloneFailureMessage(stderr)
	lower := strings.ToLower(stderr)

	switch {
	case strings.Contains(lower, "permission denied (publickey"),
		strings.Contains(lower, "host key verification failed"),
		strings.Contains(lower, "permission denied") && strings.Contains(lower, "ssh"):
		return domain.NewSSHAuthError(message)

	case strings.Contains(lower, "authentication failed"),
		strings.Contains(lower, "could not read username"),
		strings.Contains(lower, "could not read password"),
		strings.Contains(lower, "invalid username or"):
		return domain.NewHTTPSAuthError(message)

	case strings.Contains(lower, "could not resolve host"),
		strings.Contains(lower, "connection refused"),
		strings.Contains(lower, "connection timed out"),
		strings.Contains(lower, "network is unreachable"),
		strings.Contains(lower, "operation timed out"):
		return &domain.CloneError{Kind: domain.CloneNetworkError, Message: message}

	default:
		return &domain.CloneError{Kind: domain.CloneFailed, Message: message}
	}
}

// cloneFailureMessage picks the most telling line out of git's stderr
func cloneFailureMessage(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	for _, line := range lines {
		if strings.HasPrefix(line, "fatal:") {
			return strings.TrimSpace(strings.TrimPrefix(line, "fatal:"))
		}
	}
	if len(lines) > 0 && lines[len(lines)-1] != "" {
		return lines[len(lines)-1]
	}
	return "clone failed"
}
