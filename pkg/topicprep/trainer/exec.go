package trainer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"time"

	"github.com/cognicore/topicprep/pkg/topicprep/internalerr"
)

func (m *Mallet) run(ctx context.Context, step string, args []string) error {
	logger := m.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	cmd := exec.CommandContext(ctx, m.Path, args...)
	cmd.Stdout = m.Stdout
	cmd.Stderr = m.Stderr

	logger.Info("Starting trainer step", "step", step, "binary", m.Path)
	start := time.Now()

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			logger.Error("Trainer step failed", "step", step, "exit_code", exitErr.ExitCode())
			return fmt.Errorf("%w: %s exited with code %d", internalerr.ErrTrainer, step, exitErr.ExitCode())
		}
		logger.Error("Trainer step could not start", "step", step, "error", err)
		return fmt.Errorf("%w: %s: %v", internalerr.ErrTrainer, step, err)
	}

	logger.Info("Trainer step finished", "step", step, "duration", time.Since(start))
	return nil
}
