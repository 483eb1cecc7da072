package cli

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/solrsync/internal/core/domain"
	"github.com/custodia-labs/solrsync/internal/core/ports/driving"
)

// execute runs the root command with args and returns everything it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

// resetFlags restores every flag of cmd and its children to its default.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace([]string{})
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}

// useServices installs services for the duration of a test.
func useServices(t *testing.T, s *Services) {
	t.Helper()
	SetBuilder(nil)
	SetServices(s)
	t.Cleanup(func() { SetServices(nil) })
}

type mockIndexService struct {
	clearErr error
	cleared  int
	queries  []domain.SearchQuery
	hits     []any
	closed   bool
}

var _ driving.IndexService = (*mockIndexService)(nil)

func (m *mockIndexService) Index(context.Context, any) error               { return nil }
func (m *mockIndexService) SynchronizeIndex(context.Context, ...any) error { return nil }
func (m *mockIndexService) Remove(context.Context, any) error              { return nil }

func (m *mockIndexService) ClearIndex(context.Context) error {
	m.cleared++
	return m.clearErr
}

func (m *mockIndexService) Query(_ context.Context, q domain.SearchQuery) []any {
	m.queries = append(m.queries, q)
	return m.hits
}

func (m *mockIndexService) Close() error {
	m.closed = true
	return nil
}

type mockSyncOrchestrator struct {
	mu         sync.Mutex
	jobs       []domain.SyncJob
	report     *domain.SyncReport
	err        error
	runs       []domain.SyncRun
	historyErr error
	limits     []int
}

var _ driving.SyncOrchestrator = (*mockSyncOrchestrator)(nil)

func (m *mockSyncOrchestrator) Populate(_ context.Context, job domain.SyncJob, out driving.Reporter) (*domain.SyncReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs = append(m.jobs, job)
	if m.err != nil {
		return nil, m.err
	}
	out.Printf("Indexing %s\n", job.Entity)
	if m.report == nil {
		return &domain.SyncReport{}, nil
	}
	return m.report, nil
}

func (m *mockSyncOrchestrator) History(_ context.Context, limit int) ([]domain.SyncRun, error) {
	m.limits = append(m.limits, limit)
	return m.runs, m.historyErr
}

type mockSchemaService struct {
	entries []domain.SchemaEntry
	err     error
}

func (m *mockSchemaService) Describe(context.Context) ([]domain.SchemaEntry, error) {
	return m.entries, m.err
}

type mockSettingsService struct {
	settings domain.Settings
	getErr   error
	saved    *domain.Settings
}

func newMockSettings() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultSettings()}
}

func (m *mockSettingsService) Get() (*domain.Settings, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(s *domain.Settings) error {
	m.saved = s
	return nil
}

func (m *mockSettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}
