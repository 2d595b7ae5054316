package build

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync/atomic"
)

const maxLineSize = 1 << 20

type streamResult struct {
	exitCode  int
	cancelled bool
}

// runStreaming starts argv with stdout and stderr joined into one pipe and
// appends every line to sink. When stop is not nil it is checked before each
// line is forwarded; once set, the process group is terminated.
func runStreaming(ctx context.Context, argv []string, sink Sink, stop *atomic.Bool) (streamResult, error) {
	if len(argv) == 0 {
		return streamResult{}, errors.New("empty command")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	setProcessGroup(cmd)
	cmd.Cancel = func() error { return terminate(cmd.Process) }

	reader, writer, err := os.Pipe()
	if err != nil {
		return streamResult{}, fmt.Errorf("create output pipe: %w", err)
	}
	cmd.Stdout = writer
	cmd.Stderr = writer

	if err := cmd.Start(); err != nil {
		reader.Close()
		writer.Close()
		return streamResult{}, fmt.Errorf("start %s: %w", argv[0], err)
	}
	// The child owns the write end now; EOF arrives when it and its
	// descendants exit.
	writer.Close()

	var res streamResult
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		if stop != nil && stop.Load() {
			res.cancelled = true
			_ = terminate(cmd.Process)
			break
		}
		sink.Append(strings.TrimRight(scanner.Text(), " \t\r"))
	}
	scanErr := scanner.Err()
	reader.Close()

	waitErr := cmd.Wait()
	if res.cancelled {
		return res, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, fmt.Errorf("%s interrupted: %w", argv[0], ctxErr)
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return res, fmt.Errorf("wait %s: %w", argv[0], waitErr)
		}
		res.exitCode = exitErr.ExitCode()
	}
	if scanErr != nil {
		return res, fmt.Errorf("read output: %w", scanErr)
	}
	return res, nil
}
