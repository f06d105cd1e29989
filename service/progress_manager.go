package service

import (
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/ludo-technologies/revu/domain"
)

// ProgressManagerImpl shows interactive progress bars during project scans
type ProgressManagerImpl struct {
	writer io.Writer
	tasks  []*progressbar.ProgressBar
}

// NewProgressManager creates a progress manager. Progress is disabled when
// the output is non-interactive (JSON mode, pipes, CI).
func NewProgressManager(enabled bool) domain.ProgressManager {
	if enabled && term.IsTerminal(int(os.Stderr.Fd())) {
		return &ProgressManagerImpl{writer: os.Stderr}
	}
	return &NoOpProgressManager{}
}

// StartTask creates a new progress task with a description and total count
func (pm *ProgressManagerImpl) StartTask(description string, total int) domain.TaskProgress {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(pm.writer),
		progressbar.OptionSetWidth(18),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
	)
	pm.tasks = append(pm.tasks, bar)
	return &TaskProgressImpl{bar: bar}
}

// IsInteractive returns true if progress bars are shown
func (pm *ProgressManagerImpl) IsInteractive() bool { return true }

// Close finishes all tasks
func (pm *ProgressManagerImpl) Close() {
	for _, bar := range pm.tasks {
		_ = bar.Finish()
	}
	pm.tasks = nil
}

// TaskProgressImpl tracks one task with a progress bar
type TaskProgressImpl struct {
	bar *progressbar.ProgressBar
}

func (tp *TaskProgressImpl) Increment(n int) { _ = tp.bar.Add(n) }

func (tp *TaskProgressImpl) Describe(description string) { tp.bar.Describe(description) }

func (tp *TaskProgressImpl) Complete() { _ = tp.bar.Finish() }

// NoOpProgressManager disables progress reporting
type NoOpProgressManager struct{}

func (pm *NoOpProgressManager) StartTask(string, int) domain.TaskProgress { return &NoOpTaskProgress{} }

func (pm *NoOpProgressManager) IsInteractive() bool { return false }

func (pm *NoOpProgressManager) Close() {}

// NoOpTaskProgress is a no-op task handle
type NoOpTaskProgress struct{}

func (tp *NoOpTaskProgress) Increment(int)   {}
func (tp *NoOpTaskProgress) Describe(string) {}
func (tp *NoOpTaskProgress) Complete()       {}
