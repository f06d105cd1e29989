package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ludo-technologies/revu/domain"
	"github.com/ludo-technologies/revu/internal/rules"
	"github.com/ludo-technologies/revu/service"
)

// ReviewRequest is the host-layer contract for one review
type ReviewRequest struct {
	// Path of the unit under review
	Path string

	// Content of the unit; read from Path when nil
	Content []byte

	// StandardIDs are the standard and methodology identifiers to review
	// against
	StandardIDs []string

	// IncludeEducation attaches guidance blocks to the report
	IncludeEducation bool
}

// ReviewUseCase orchestrates one review end to end: compile standards, run
// the controller, compose the report.
type ReviewUseCase struct {
	engine     *rules.Engine
	controller *service.ScannerController
	composer   *service.FeedbackComposer
	logger     *zap.Logger
}

// NewReviewUseCase wires a review use case
func NewReviewUseCase(
	engine *rules.Engine,
	controller *service.ScannerController,
	composer *service.FeedbackComposer,
	logger *zap.Logger,
) *ReviewUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReviewUseCase{
		engine:     engine,
		controller: controller,
		composer:   composer,
		logger:     logger,
	}
}

// Execute runs one review. Configuration errors (unknown standard ids)
// abort immediately; IO errors are fatal for this unit only; adapter
// failures degrade coverage and surface as report notes.
func (uc *ReviewUseCase) Execute(ctx context.Context, req ReviewRequest) (*domain.Report, error) {
	standards, err := uc.engine.Compile(req.StandardIDs)
	if err != nil {
		return nil, err
	}

	unit, err := uc.loadUnit(req)
	if err != nil {
		return nil, err
	}

	result, err := uc.controller.Review(ctx, unit, standards)
	if err != nil {
		return nil, err
	}

	return uc.composer.Compose(result, domain.ComposeOptions{
		IncludeEducation: req.IncludeEducation,
	}), nil
}

func (uc *ReviewUseCase) loadUnit(req ReviewRequest) (domain.ReviewUnit, error) {
	content := req.Content
	if content == nil {
		data, err := os.ReadFile(req.Path)
		if err != nil {
			return domain.ReviewUnit{}, fmt.Errorf("reading review unit %s: %w", req.Path, err)
		}
		content = data
	}
	return domain.ReviewUnit{
		Path:         req.Path,
		Content:      content,
		LanguageHint: languageHint(req.Path),
	}, nil
}

// languageHint derives a coarse language tag from the file extension
func languageHint(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".go":
		return "go"
	case ".js", ".jsx", ".mjs", ".cjs":
		return "javascript"
	case ".ts", ".tsx":
		return "typescript"
	case ".py":
		return "python"
	case ".rb":
		return "ruby"
	case ".java":
		return "java"
	case ".md", ".markdown":
		return "markdown"
	default:
		return ""
	}
}
