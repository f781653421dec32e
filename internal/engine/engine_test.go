package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spend-ledger/internal/advisory"
	"github.com/Veraticus/spend-ledger/internal/common"
	"github.com/Veraticus/spend-ledger/internal/model"
	"github.com/Veraticus/spend-ledger/internal/report"
	"github.com/Veraticus/spend-ledger/internal/service"
	"github.com/Veraticus/spend-ledger/internal/testutil"
)

// recordingPresenter captures calls and the order they arrived in.
type recordingPresenter struct {
	advisories chan advisory.Result
	calls      []string
	reports    []report.ComparisonReport
	statuses   []AdvisoryStatus
	mu         sync.Mutex
}

func newRecordingPresenter() *recordingPresenter {
	return &recordingPresenter{advisories: make(chan advisory.Result, 4)}
}

func (p *recordingPresenter) PresentReport(rep report.ComparisonReport, status AdvisoryStatus) {
	// Give a fast advisory the chance to overtake the report.
	time.Sleep(10 * time.Millisecond)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, "report")
	p.reports = append(p.reports, rep)
	p.statuses = append(p.statuses, status)
}

func (p *recordingPresenter) PresentAdvisory(res advisory.Result) {
	p.mu.Lock()
	p.calls = append(p.calls, "advisory")
	p.mu.Unlock()
	p.advisories <- res
}

func (p *recordingPresenter) callOrder() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

type staticAuthorizer struct {
	err        error
	privileged bool
}

func (a staticAuthorizer) IsPrivileged(context.Context) (bool, error) {
	return a.privileged, a.err
}

type clientFunc func(ctx context.Context, prompt, systemPrompt string) (string, error)

func (f clientFunc) Analyze(ctx context.Context, prompt, systemPrompt string) (string, error) {
	return f(ctx, prompt, systemPrompt)
}

var (
	meat       = model.Category{ID: 1, Name: "meat"}
	vegetables = model.Category{ID: 2, Name: "vegetables"}
)

func scenarioSource(t *testing.T) *testutil.MemorySource {
	t.Helper()
	src := testutil.NewMemorySource(meat, vegetables)
	src.Add(
		testutil.NewExpense(t, "2025-01-05", meat.ID, "600"),
		testutil.NewExpense(t, "2025-01-09", vegetables.ID, "400"),
		testutil.NewExpense(t, "2025-02-05", meat.ID, "1000"),
		testutil.NewExpense(t, "2025-02-09", vegetables.ID, "500"),
	)
	return src
}

func scenarioRequest(t *testing.T, withAdvice bool) Request {
	t.Helper()
	a, err := service.ParseDateRange("2025-01-01", "2025-01-31")
	require.NoError(t, err)
	b, err := service.ParseDateRange("2025-02-01", "2025-02-28")
	require.NoError(t, err)
	return Request{PeriodA: a, PeriodB: b, WithAdvice: withAdvice}
}

func newTestEngine(t *testing.T, src report.DataSource, p Presenter) *Engine {
	t.Helper()
	cmp, err := report.NewComparer(report.DefaultConfig())
	require.NoError(t, err)
	return New(report.NewAggregator(src, nil), cmp, p, nil)
}

func newTestSession(t *testing.T, client clientFunc) *advisory.Session {
	t.Helper()
	cfg := advisory.DefaultConfig()
	cfg.Timeout = time.Second
	cfg.RetryDelay = time.Millisecond
	runner, err := advisory.NewRunner(client, cfg, nil)
	require.NoError(t, err)
	s := runner.NewSession()
	t.Cleanup(s.Close)
	return s
}

func TestCompare_WithoutAdvice(t *testing.T) {
	p := newRecordingPresenter()
	e := newTestEngine(t, scenarioSource(t), p)

	rep, h, err := e.Compare(context.Background(), scenarioRequest(t, false))
	require.NoError(t, err)
	assert.Nil(t, h)

	assert.Equal(t, "500", rep.TotalDelta.String())
	require.Len(t, rep.TopMovers, 2)
	assert.Equal(t, "meat", rep.TopMovers[0].Category.Name)
	assert.Equal(t, "vegetables", rep.TopMovers[1].Category.Name)

	assert.Equal(t, []string{"report"}, p.callOrder())
	assert.Equal(t, []AdvisoryStatus{AdvisoryNotRequested}, p.statuses)
}

func TestCompare_AdvisoryStatuses(t *testing.T) {
	okClient := clientFunc(func(context.Context, string, string) (string, error) {
		return "advice", nil
	})

	tests := []struct {
		name       string
		source     func(t *testing.T) *testutil.MemorySource
		authorizer Authorizer
		session    bool
		want       AdvisoryStatus
	}{
		{"no session", scenarioSource, staticAuthorizer{privileged: true}, false, AdvisoryUnavailable},
		{"no authorizer", scenarioSource, nil, true, AdvisoryDenied},
		{"staff user", scenarioSource, staticAuthorizer{privileged: false}, true, AdvisoryDenied},
		{"privilege check fails", scenarioSource, staticAuthorizer{err: errors.New("db down")}, true, AdvisoryDenied},
		{"empty period", func(*testing.T) *testutil.MemorySource {
			return testutil.NewMemorySource(meat, vegetables)
		}, staticAuthorizer{privileged: true}, true, AdvisoryInsufficientData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int
			client := clientFunc(func(ctx context.Context, p, s string) (string, error) {
				calls++
				return okClient(ctx, p, s)
			})

			p := newRecordingPresenter()
			e := newTestEngine(t, tt.source(t), p)
			if tt.session {
				e.EnableAdvisory(newTestSession(t, client), tt.authorizer)
			}

			_, h, err := e.Compare(context.Background(), scenarioRequest(t, true))
			require.NoError(t, err)
			assert.Nil(t, h)
			assert.Equal(t, []AdvisoryStatus{tt.want}, p.statuses)
			assert.Equal(t, 0, calls, "no advisory call may be made")
		})
	}
}

func TestCompare_PrivilegedAdvisoryFollowsReport(t *testing.T) {
	p := newRecordingPresenter()
	e := newTestEngine(t, scenarioSource(t), p)

	client := clientFunc(func(_ context.Context, prompt, _ string) (string, error) {
		assert.Contains(t, prompt, "meat")
		return "## Overview", nil
	})
	e.EnableAdvisory(newTestSession(t, client), staticAuthorizer{privileged: true})

	_, h, err := e.Compare(context.Background(), scenarioRequest(t, true))
	require.NoError(t, err)
	require.NotNil(t, h)

	select {
	case res := <-p.advisories:
		assert.Equal(t, advisory.OutcomeSuccess, res.Outcome)
		assert.Equal(t, "## Overview", res.Text)
	case <-time.After(5 * time.Second):
		t.Fatal("advisory was not presented")
	}

	assert.Equal(t, []string{"report", "advisory"}, p.callOrder())
	assert.Equal(t, []AdvisoryStatus{AdvisoryPending}, p.statuses)
}

func TestCompare_BusyWhileAdvisoryRuns(t *testing.T) {
	release := make(chan struct{})
	client := clientFunc(func(context.Context, string, string) (string, error) {
		<-release
		return "done", nil
	})

	p := newRecordingPresenter()
	e := newTestEngine(t, scenarioSource(t), p)
	e.EnableAdvisory(newTestSession(t, client), staticAuthorizer{privileged: true})

	_, first, err := e.Compare(context.Background(), scenarioRequest(t, true))
	require.NoError(t, err)
	require.NotNil(t, first)

	_, second, err := e.Compare(context.Background(), scenarioRequest(t, true))
	require.NoError(t, err)
	assert.Nil(t, second)
	assert.Equal(t, []AdvisoryStatus{AdvisoryPending, AdvisoryBusy}, p.statuses)

	close(release)
	<-first.Done()
}

func TestCompare_CloseCancelsAdvisory(t *testing.T) {
	started := make(chan struct{})
	client := clientFunc(func(ctx context.Context, _, _ string) (string, error) {
		close(started)
		<-ctx.Done()
		return "", ctx.Err()
	})

	p := newRecordingPresenter()
	e := newTestEngine(t, scenarioSource(t), p)
	e.EnableAdvisory(newTestSession(t, client), staticAuthorizer{privileged: true})

	_, h, err := e.Compare(context.Background(), scenarioRequest(t, true))
	require.NoError(t, err)
	<-started

	e.Close()
	res := <-p.advisories
	assert.Equal(t, advisory.OutcomeCancelled, res.Outcome)
	assert.Equal(t, advisory.StateCancelled, h.State())

	_, h, err = e.Compare(context.Background(), scenarioRequest(t, true))
	require.NoError(t, err)
	assert.Nil(t, h)
	assert.Equal(t, AdvisoryUnavailable, p.statuses[len(p.statuses)-1])
}

func TestCompare_DataSourceError(t *testing.T) {
	src := scenarioSource(t)
	src.Err = errors.New("disk I/O error")

	p := newRecordingPresenter()
	e := newTestEngine(t, src, p)

	_, _, err := e.Compare(context.Background(), scenarioRequest(t, false))
	require.ErrorIs(t, err, common.ErrDataSource)
	assert.Empty(t, p.callOrder(), "nothing is presented on failure")
}

func TestCompare_InvertedRange(t *testing.T) {
	p := newRecordingPresenter()
	e := newTestEngine(t, scenarioSource(t), p)

	req := scenarioRequest(t, false)
	req.PeriodA.Start, req.PeriodA.End = req.PeriodA.End, req.PeriodA.Start

	_, _, err := e.Compare(context.Background(), req)
	assert.ErrorIs(t, err, common.ErrPrecondition)
}

func TestAdvisoryStatus_Message(t *testing.T) {
	assert.Empty(t, AdvisoryNotRequested.Message())
	for _, s := range []AdvisoryStatus{AdvisoryPending, AdvisoryDenied, AdvisoryUnavailable, AdvisoryInsufficientData, AdvisoryBusy} {
		assert.NotEmpty(t, s.Message(), s.String())
	}
}
