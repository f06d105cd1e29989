package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ludo-technologies/revu/domain"
	"github.com/ludo-technologies/revu/service"
)

// ProjectRequest configures a project-wide review
type ProjectRequest struct {
	Root             string
	StandardIDs      []string
	IncludeEducation bool
	Collect          CollectOptions

	// MaxWorkers caps concurrent per-file reviews, independent of the
	// per-review adapter parallelism
	MaxWorkers int
}

// ProjectUseCase runs reviews across a whole file tree. Per-file reviews
// run in parallel up to MaxWorkers; an IO failure on one file degrades that
// unit only and never aborts the sibling reviews.
type ProjectUseCase struct {
	review     *ReviewUseCase
	composer   *service.FeedbackComposer
	fileHelper *FileHelper
	progress   domain.ProgressManager
	logger     *zap.Logger
}

// NewProjectUseCase wires a project scan use case
func NewProjectUseCase(
	review *ReviewUseCase,
	composer *service.FeedbackComposer,
	progress domain.ProgressManager,
	logger *zap.Logger,
) *ProjectUseCase {
	if progress == nil {
		progress = &service.NoOpProgressManager{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProjectUseCase{
		review:     review,
		composer:   composer,
		fileHelper: NewFileHelper(),
		progress:   progress,
		logger:     logger,
	}
}

// Execute reviews every reviewable file under the project root
func (uc *ProjectUseCase) Execute(ctx context.Context, req ProjectRequest) (*domain.ProjectReport, error) {
	start := time.Now()

	files, err := uc.fileHelper.Collect([]string{req.Root}, req.Collect)
	if err != nil {
		return nil, fmt.Errorf("collecting project files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no reviewable files found under %s", req.Root)
	}

	maxWorkers := req.MaxWorkers
	if maxWorkers < 1 {
		maxWorkers = 4
	}

	task := uc.progress.StartTask("Reviewing files", len(files))
	defer task.Complete()

	reports := make([]*domain.Report, len(files))

	var notesMu sync.Mutex
	var notes []string
	var failed int

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)

	for i, file := range files {
		g.Go(func() error {
			report, err := uc.review.Execute(gCtx, ReviewRequest{
				Path:             file,
				StandardIDs:      req.StandardIDs,
				IncludeEducation: req.IncludeEducation,
			})
			task.Increment(1)
			if err != nil {
				// Configuration errors are identical for every unit;
				// abort the scan instead of repeating them per file.
				var unknownErr *domain.UnknownStandardError
				if errors.As(err, &unknownErr) {
					return err
				}
				uc.logger.Warn("file review failed",
					zap.String("file", file),
					zap.Error(err))
				notesMu.Lock()
				notes = append(notes, fmt.Sprintf("skipped %s: %v", file, err))
				failed++
				notesMu.Unlock()
				return nil
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	completed := reports[:0]
	for _, r := range reports {
		if r != nil {
			completed = append(completed, r)
		}
	}
	sort.Slice(notes, func(i, j int) bool { return notes[i] < notes[j] })

	project := uc.composer.ComposeProject(req.Root, completed, notes, time.Since(start).Milliseconds())
	project.FilesTotal = len(files)
	project.FilesFailed = failed
	return project, nil
}
