package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ludo-technologies/revu/service"
)

func newProjectUseCase(t *testing.T) *ProjectUseCase {
	t.Helper()
	composer := service.NewFeedbackComposer()
	return NewProjectUseCase(newReviewUseCase(t), composer, nil, nil)
}

func TestProjectUseCase_ReviewsWholeTree(t *testing.T) {
	root := t.TempDir()
	mkTree(t, root, map[string]string{
		"clean.go": "package main\n\nfunc main() {}\n",
		"run.js":   "cp.exec(\"convert \" + req.query.file);\n",
		"lib/h.py": "import hashlib\nh = hashlib.md5(data)\n",
	})

	uc := newProjectUseCase(t)
	report, err := uc.Execute(context.Background(), ProjectRequest{
		Root:    root,
		Collect: CollectOptions{Recursive: true},
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if report.FilesTotal != 3 {
		t.Errorf("FilesTotal = %d, want 3", report.FilesTotal)
	}
	if report.FilesFailed != 0 {
		t.Errorf("FilesFailed = %d, want 0", report.FilesFailed)
	}
	if report.Summary.Critical < 1 {
		t.Errorf("expected the injection in run.js to count, summary: %+v", report.Summary)
	}
	if report.Summary.Medium < 1 {
		t.Errorf("expected the weak hash in lib/h.py to count, summary: %+v", report.Summary)
	}
}

func TestProjectUseCase_UnreadableFileDegradesOnly(t *testing.T) {
	root := t.TempDir()
	mkTree(t, root, map[string]string{
		"good.js": "cp.exec(\"convert \" + file);\n",
	})
	// A dangling symlink is collected but cannot be read
	if err := os.Symlink(filepath.Join(root, "absent.js"), filepath.Join(root, "broken.js")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	uc := newProjectUseCase(t)
	report, err := uc.Execute(context.Background(), ProjectRequest{
		Root:    root,
		Collect: CollectOptions{Recursive: true},
	})
	if err != nil {
		t.Fatalf("one unreadable file must not fail the project scan: %v", err)
	}

	if report.FilesFailed != 1 {
		t.Errorf("FilesFailed = %d, want 1", report.FilesFailed)
	}
	var noted bool
	for _, note := range report.Notes {
		if strings.Contains(note, "broken.js") {
			noted = true
		}
	}
	if !noted {
		t.Errorf("the skipped file should surface in the notes, got %v", report.Notes)
	}
	if report.Summary.Critical < 1 {
		t.Error("the readable file should still be reviewed")
	}
}

func TestProjectUseCase_UnknownStandardAbortsScan(t *testing.T) {
	root := t.TempDir()
	mkTree(t, root, map[string]string{"a.go": "package main\n"})

	uc := newProjectUseCase(t)
	_, err := uc.Execute(context.Background(), ProjectRequest{
		Root:        root,
		StandardIDs: []string{"not-a-standard"},
		Collect:     CollectOptions{Recursive: true},
	})
	if err == nil {
		t.Fatal("unknown standards are a configuration error and must abort the scan")
	}
}

func TestProjectUseCase_EmptyTree(t *testing.T) {
	uc := newProjectUseCase(t)
	_, err := uc.Execute(context.Background(), ProjectRequest{
		Root:    t.TempDir(),
		Collect: CollectOptions{Recursive: true},
	})
	if err == nil {
		t.Error("a tree without reviewable files should be reported as an error")
	}
}
