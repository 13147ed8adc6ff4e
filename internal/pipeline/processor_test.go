package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/bom-validator/constants"
	"github.com/joseph-ayodele/bom-validator/internal/common"
	"github.com/joseph-ayodele/bom-validator/internal/entity"
	"github.com/joseph-ayodele/bom-validator/internal/extract"
	"github.com/joseph-ayodele/bom-validator/internal/repository"
	"github.com/joseph-ayodele/bom-validator/internal/storage"
)

type stubExtractor struct {
	src     constants.Source
	out     extract.Output
	err     error
	panics  bool
	started *sync.WaitGroup
	release chan struct{}
}

func (s *stubExtractor) Source() constants.Source { return s.src }

func (s *stubExtractor) Extract(context.Context, string) (extract.Output, error) {
	if s.started != nil {
		s.started.Done()
		<-s.release
	}
	if s.panics {
		panic("boom")
	}
	return s.out, s.err
}

type memRuns struct {
	mu       sync.Mutex
	started  int32
	outcomes map[string]repository.RunOutcome
	names    map[uuid.UUID]string
}

func newMemRuns() *memRuns {
	return &memRuns{outcomes: map[string]repository.RunOutcome{}, names: map[uuid.UUID]string{}}
}

func (m *memRuns) Start(_ context.Context, folderID, extractor string) (*entity.ExtractRun, error) {
	atomic.AddInt32(&m.started, 1)
	run := &entity.ExtractRun{ID: uuid.New(), FolderID: folderID, Extractor: extractor}
	m.mu.Lock()
	m.names[run.ID] = extractor
	m.mu.Unlock()
	return run, nil
}

func (m *memRuns) Finish(_ context.Context, id uuid.UUID, o repository.RunOutcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes[m.names[id]] = o
	return nil
}

func (m *memRuns) ListByFolder(context.Context, string) ([]*entity.ExtractRun, error) { return nil, nil }

func newLayout(t *testing.T, folders ...string) *storage.Layout {
	t.Helper()
	dir := t.TempDir()
	l, err := storage.NewLayout(filepath.Join(dir, "raw"), filepath.Join(dir, "processed"), 0, nil)
	require.NoError(t, err)
	for _, f := range folders {
		require.NoError(t, l.EnsureFolder(f))
	}
	return l
}

func TestProcessFolderIsolatesFailures(t *testing.T) {
	l := newLayout(t, "f1")
	rows := extract.SpreadsheetRows{{Description: "STRAINER"}}
	spec := extract.SpecResult{Document: entity.NewSpecDocument()}
	spec.Document.Add(entity.PartSpec{Part: "Shaft", Raw: "SS410"})
	runs := newMemRuns()

	p := NewProcessor(l, []extract.Extractor{
		&stubExtractor{src: constants.SourceCS, err: errors.New("vision down")},
		&stubExtractor{src: constants.SourceBOM, out: rows},
		&stubExtractor{src: constants.SourceSAP, out: spec},
	}, runs, nil)

	res, err := p.ProcessFolder(context.Background(), "f1")
	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.Nil(t, res[constants.SourceCS])
	assert.Equal(t, rows, res[constants.SourceBOM])
	assert.Equal(t, spec, res[constants.SourceSAP])

	assert.Equal(t, map[string]any{"cs": false, "bom": 1, "sap": true}, res.Summary())
	assert.Equal(t, constants.RunStatusFailed, runs.outcomes["cs"].Status)
	assert.Equal(t, "vision down", runs.outcomes["cs"].ErrorMessage)
	assert.Equal(t, constants.RunStatusOK, runs.outcomes["bom"].Status)
	assert.Equal(t, 1, runs.outcomes["bom"].Records)
}

func TestProcessFolderRecoversPanics(t *testing.T) {
	l := newLayout(t, "f1")
	p := NewProcessor(l, []extract.Extractor{
		&stubExtractor{src: constants.SourceCS, panics: true},
		&stubExtractor{src: constants.SourceBOM, out: extract.SpreadsheetRows{}},
		&stubExtractor{src: constants.SourceSAP, out: extract.SpecResult{Document: entity.NewSpecDocument()}},
	}, nil, nil)

	res, err := p.ProcessFolder(context.Background(), "f1")
	require.NoError(t, err)
	assert.Nil(t, res[constants.SourceCS])
	assert.NotNil(t, res[constants.SourceBOM])
	assert.NotNil(t, res[constants.SourceSAP])
	assert.Equal(t, map[string]any{"cs": false, "bom": 0, "sap": false}, res.Summary())
}

func TestProcessFolderRunsConcurrently(t *testing.T) {
	l := newLayout(t, "f1")
	var started sync.WaitGroup
	started.Add(3)
	release := make(chan struct{})
	mk := func(src constants.Source) *stubExtractor {
		return &stubExtractor{src: src, out: extract.DrawingRows{}, started: &started, release: release}
	}
	p := NewProcessor(l, []extract.Extractor{mk(constants.SourceCS), mk(constants.SourceBOM), mk(constants.SourceSAP)}, nil, nil)

	done := make(chan Results)
	go func() {
		res, _ := p.ProcessFolder(context.Background(), "f1")
		done <- res
	}()

	// all three must be in flight at once before any is released
	waited := make(chan struct{})
	go func() { started.Wait(); close(waited) }()
	select {
	case <-waited:
	case <-time.After(5 * time.Second):
		t.Fatal("extractors did not run concurrently")
	}
	close(release)

	select {
	case res := <-done:
		assert.Len(t, res, 3)
	case <-time.After(5 * time.Second):
		t.Fatal("ProcessFolder did not return")
	}
}

func TestProcessFolderMissingFolder(t *testing.T) {
	p := NewProcessor(newLayout(t), nil, nil, nil)
	_, err := p.ProcessFolder(context.Background(), "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Equal(t, "Folder not found: nope", common.Message(err))
}

func TestRunOne(t *testing.T) {
	l := newLayout(t, "f1")
	p := NewProcessor(l, []extract.Extractor{
		&stubExtractor{src: constants.SourceBOM, err: errors.New("corrupt workbook")},
	}, nil, nil)

	_, err := p.RunOne(context.Background(), constants.SourceBOM, "f1")
	assert.EqualError(t, err, "corrupt workbook")

	_, err = p.RunOne(context.Background(), constants.SourceCS, "f1")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}
