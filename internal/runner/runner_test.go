package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"proprompt-mcp/internal/genai/gemini"
	"proprompt-mcp/internal/state"
	"proprompt-mcp/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) Notify(ctx context.Context, message string) {
	m.Called(ctx, message)
}

type mockReauthorizer struct{ mock.Mock }

func (m *mockReauthorizer) SelectKey(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type recorder struct {
	mu    sync.Mutex
	snaps []state.Progress
}

func (r *recorder) Report(_ context.Context, p state.Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, p)
}

func (r *recorder) all() []state.Progress {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]state.Progress(nil), r.snaps...)
}

func fastOptions() Options {
	return Options{
		Interval:    time.Millisecond,
		Settle:      20 * time.Millisecond,
		Step:        2,
		Ceiling:     98,
		PhraseEvery: 10,
		Phrases:     LoadingPhrases,
	}
}

func setup(t *testing.T) (*Runner, *state.App, *mockNotifier, *mockReauthorizer) {
	t.Helper()
	app := state.New(store.NewMemory(), nil)
	n := &mockNotifier{}
	ra := &mockReauthorizer{}
	return New(app, ra, n, fastOptions()), app, n, ra
}

func authError() error {
	return fmt.Errorf("generate: %w", genai.APIError{
		Code:    404,
		Status:  "NOT_FOUND",
		Message: "Requested entity was not found.",
	})
}

func TestRun_Success(t *testing.T) {
	r, app, n, ra := setup(t)
	app.Auth.MarkSelected()

	out := r.Run(context.Background(), func(context.Context) error { return nil })

	assert.True(t, out.OK())
	assert.Equal(t, KindNone, out.Kind)
	assert.Empty(t, out.Notice)
	assert.Equal(t, state.AuthAuthorized, app.Auth.Status())
	n.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
	ra.AssertNotCalled(t, "SelectKey", mock.Anything)
}

func TestRun_AuthorizationFailureReselectsOnce(t *testing.T) {
	r, app, n, ra := setup(t)
	app.Auth.Probe(true)
	ra.On("SelectKey", mock.Anything).Return(nil).Once()

	var statuses []state.AuthStatus
	app.Auth.Watch(func(s state.AuthStatus) { statuses = append(statuses, s) })

	out := r.Run(context.Background(), func(context.Context) error { return authError() })

	assert.Equal(t, Reauthorized, out.Status)
	assert.Equal(t, KindAuthorization, out.Kind)
	assert.Equal(t, []state.AuthStatus{state.AuthUnauthorized, state.AuthUnverified}, statuses)
	ra.AssertNumberOfCalls(t, "SelectKey", 1)
	n.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestRun_NoCredentialCountsAsAuthorization(t *testing.T) {
	r, app, _, ra := setup(t)
	ra.On("SelectKey", mock.Anything).Return(nil).Once()

	out := r.Run(context.Background(), func(context.Context) error { return gemini.ErrNoCredential })

	assert.Equal(t, Reauthorized, out.Status)
	assert.Equal(t, state.AuthUnverified, app.Auth.Status())
}

func TestRun_SelectionFailureStaysUnauthorized(t *testing.T) {
	r, app, _, ra := setup(t)
	app.Auth.Probe(true)
	ra.On("SelectKey", mock.Anything).Return(errors.New("dialog closed")).Once()

	out := r.Run(context.Background(), func(context.Context) error { return authError() })

	assert.Equal(t, Failed, out.Status)
	assert.Equal(t, KindAuthorization, out.Kind)
	assert.Equal(t, state.AuthUnauthorized, app.Auth.Status())
}

func TestRun_OtherFailureNotifiesOnce(t *testing.T) {
	cases := map[string]struct {
		err  error
		kind Kind
	}{
		"transport": {err: errors.New("connection reset"), kind: KindTransport},
		"rate limit": {err: genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED", Message: "quota"},
			kind: KindTransport},
		"malformed": {err: fmt.Errorf("%w: empty body", gemini.ErrMalformedResponse), kind: KindMalformed},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r, app, n, ra := setup(t)
			app.Auth.MarkSelected()
			n.On("Notify", mock.Anything, GenericNotice).Once()

			out := r.Run(context.Background(), func(context.Context) error { return tc.err })

			assert.Equal(t, Failed, out.Status)
			assert.Equal(t, tc.kind, out.Kind)
			assert.Equal(t, GenericNotice, out.Notice)
			assert.ErrorIs(t, out.Err, tc.err)
			assert.Equal(t, state.AuthUnverified, app.Auth.Status())
			n.AssertNumberOfCalls(t, "Notify", 1)
			ra.AssertNotCalled(t, "SelectKey", mock.Anything)
		})
	}
}

func TestRun_ProgressBoundedAndMonotonic(t *testing.T) {
	r, app, _, _ := setup(t)
	rec := &recorder{}
	ctx := WithReporter(context.Background(), rec)

	r.Run(ctx, func(context.Context) error {
		time.Sleep(120 * time.Millisecond)
		return nil
	})

	snaps := rec.all()
	require.NotEmpty(t, snaps)
	assert.Equal(t, 0, snaps[0].Percent)
	assert.Equal(t, LoadingPhrases[0], snaps[0].Status)

	last := snaps[len(snaps)-1]
	assert.Equal(t, 100, last.Percent)
	for i, s := range snaps {
		assert.True(t, s.Busy)
		assert.GreaterOrEqual(t, s.Percent, 0)
		assert.LessOrEqual(t, s.Percent, 100)
		if i > 0 {
			assert.GreaterOrEqual(t, s.Percent, snaps[i-1].Percent)
		}
		if i < len(snaps)-1 {
			assert.LessOrEqual(t, s.Percent, 98)
		}
	}

	// 到达 100 后仍然忙碌，停留时间之后才清除
	p := app.Busy.Snapshot()
	assert.Equal(t, 100, p.Percent)
	assert.True(t, p.Busy)
	assert.Eventually(t, func() bool { return !app.Busy.Snapshot().Busy }, time.Second, 5*time.Millisecond)
}

func TestRun_PhraseRotates(t *testing.T) {
	r, _, _, _ := setup(t)
	rec := &recorder{}
	ctx := WithReporter(context.Background(), rec)

	r.Run(ctx, func(context.Context) error {
		time.Sleep(100 * time.Millisecond)
		return nil
	})

	phrases := map[string]bool{}
	for _, s := range rec.all() {
		phrases[s.Status] = true
	}
	assert.True(t, phrases[LoadingPhrases[0]])
	assert.True(t, phrases[LoadingPhrases[1]])
}

func TestRun_NewerRunOwnsProgress(t *testing.T) {
	r, app, _, _ := setup(t)
	release := make(chan struct{})
	firstDone := make(chan struct{})

	go func() {
		defer close(firstDone)
		r.Run(context.Background(), func(context.Context) error {
			<-release
			return nil
		})
	}()
	require.Eventually(t, func() bool { return app.Busy.Snapshot().Busy }, time.Second, time.Millisecond)
	firstToken := app.Busy.Snapshot().Token

	secondDone := make(chan struct{})
	go func() {
		defer close(secondDone)
		r.Run(context.Background(), func(context.Context) error {
			time.Sleep(200 * time.Millisecond)
			return nil
		})
	}()
	require.Eventually(t, func() bool { return app.Busy.Snapshot().Token > firstToken }, time.Second, time.Millisecond)

	close(release)
	<-firstDone
	// 旧任务结束后停留时间已过，也不能清除新任务的忙碌状态
	time.Sleep(40 * time.Millisecond)
	p := app.Busy.Snapshot()
	assert.True(t, p.Busy)
	assert.Less(t, p.Percent, 100)

	<-secondDone
	assert.Eventually(t, func() bool { return !app.Busy.Snapshot().Busy }, time.Second, 5*time.Millisecond)
}

func TestRun_PanicBecomesFailure(t *testing.T) {
	r, app, n, ra := setup(t)
	app.Auth.MarkSelected()
	n.On("Notify", mock.Anything, GenericNotice).Once()

	out := r.Run(context.Background(), func(context.Context) error { panic("boom") })

	assert.Equal(t, Failed, out.Status)
	assert.Equal(t, KindTransport, out.Kind)
	assert.ErrorIs(t, out.Err, ErrTaskPanicked)
	assert.Equal(t, GenericNotice, out.Notice)
	assert.Eventually(t, func() bool { return !app.Busy.Snapshot().Busy }, time.Second, 5*time.Millisecond)
	n.AssertNumberOfCalls(t, "Notify", 1)
	ra.AssertNotCalled(t, "SelectKey", mock.Anything)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, KindNone, Classify(nil))
	assert.Equal(t, KindAuthorization, Classify(authError()))
	assert.Equal(t, KindMalformed, Classify(gemini.ErrMalformedResponse))
	assert.Equal(t, KindTransport, Classify(context.DeadlineExceeded))
}

func TestNew_FillsDefaults(t *testing.T) {
	r := New(state.New(store.NewMemory(), nil), &mockReauthorizer{}, &mockNotifier{}, Options{})
	assert.Equal(t, DefaultOptions().Interval, r.opts.Interval)
	assert.Equal(t, 98, r.opts.Ceiling)
	assert.Equal(t, LoadingPhrases, r.opts.Phrases)
}

func TestReauthorize_WithoutCause(t *testing.T) {
	r, app, _, ra := setup(t)
	ra.On("SelectKey", mock.Anything).Return(nil).Once()

	out := r.Reauthorize(context.Background(), nil)

	assert.Equal(t, Reauthorized, out.Status)
	assert.NoError(t, out.Err)
	assert.Equal(t, state.AuthUnverified, app.Auth.Status())
	ra.AssertExpectations(t)
}
