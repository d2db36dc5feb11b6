package conversation

import (
	"errors"
	"sync"
	"testing"
	"time"

	"spicy-biryani/internal/domain"
)

type fakeTimer struct {
	f       func()
	delay   time.Duration
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{f: f, delay: d}
	s.timers = append(s.timers, t)
	return t
}

// fire ejecuta el último timer aunque esté detenido, como un callback ya despachado.
func (s *fakeScheduler) fire(t *testing.T, force bool) {
	t.Helper()
	s.mu.Lock()
	if len(s.timers) == 0 {
		s.mu.Unlock()
		t.Fatalf("no timer scheduled")
	}
	timer := s.timers[len(s.timers)-1]
	s.mu.Unlock()
	if timer.stopped && !force {
		return
	}
	timer.fired = true
	timer.f()
}

type echoReplier struct{}

func (echoReplier) ClassifyAndReply(input string) string { return "re: " + input }

func TestSubmitAppendsUserThenBot(t *testing.T) {
	sched := &fakeScheduler{}
	o := New(echoReplier{}, WithScheduler(sched), WithDelay(time.Second))

	if err := o.Submit("  hello  "); err != nil {
		t.Fatalf("submit: %v", err)
	}
	msgs := o.Messages()
	if len(msgs) != 1 || msgs[0].Sender != domain.SenderUser || msgs[0].Text != "hello" {
		t.Fatalf("expected trimmed user message first, got %+v", msgs)
	}
	if !o.Typing() {
		t.Fatalf("expected typing while reply pending")
	}
	if sched.timers[0].delay != time.Second {
		t.Fatalf("expected 1s delay, got %v", sched.timers[0].delay)
	}

	sched.fire(t, false)

	msgs = o.Messages()
	if len(msgs) != 2 || msgs[1].Sender != domain.SenderBot || msgs[1].Text != "re: hello" {
		t.Fatalf("expected bot reply second, got %+v", msgs)
	}
	if o.Typing() {
		t.Fatalf("expected typing cleared after reply")
	}
}

func TestSubmitRejectsEmptyInput(t *testing.T) {
	sched := &fakeScheduler{}
	o := New(echoReplier{}, WithScheduler(sched))

	for _, in := range []string{"", "   ", "\n\t"} {
		if err := o.Submit(in); !errors.Is(err, ErrEmptyMessage) {
			t.Fatalf("input %q: expected ErrEmptyMessage, got %v", in, err)
		}
	}
	if len(o.Messages()) != 0 || len(sched.timers) != 0 || o.Typing() {
		t.Fatalf("empty input must not touch the log or schedule a reply")
	}
}

func TestSubmitWhileTypingIsRejected(t *testing.T) {
	sched := &fakeScheduler{}
	o := New(echoReplier{}, WithScheduler(sched))

	if err := o.Submit("first"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := o.Submit("second"); !errors.Is(err, ErrReplyPending) {
		t.Fatalf("expected ErrReplyPending, got %v", err)
	}
	if len(o.Messages()) != 1 || len(sched.timers) != 1 {
		t.Fatalf("second submit must be a no-op")
	}
}

func TestLogAlternatesAfterNSubmissions(t *testing.T) {
	sched := &fakeScheduler{}
	o := New(echoReplier{}, WithScheduler(sched))

	const n = 5
	inputs := []string{"a", "b", "c", "d", "e"}
	for _, in := range inputs {
		if err := o.Submit(in); err != nil {
			t.Fatalf("submit %q: %v", in, err)
		}
		sched.fire(t, false)
	}

	msgs := o.Messages()
	if len(msgs) != 2*n {
		t.Fatalf("expected %d messages, got %d", 2*n, len(msgs))
	}
	for i := 0; i < n; i++ {
		user, bot := msgs[2*i], msgs[2*i+1]
		if user.Sender != domain.SenderUser || bot.Sender != domain.SenderBot {
			t.Fatalf("pair %d not user/bot: %s/%s", i, user.Sender, bot.Sender)
		}
		if bot.Text != "re: "+user.Text {
			t.Fatalf("pair %d: bot reply does not follow its user message", i)
		}
	}
}

func TestCloseCancelsPendingReply(t *testing.T) {
	sched := &fakeScheduler{}
	o := New(echoReplier{}, WithScheduler(sched))

	if err := o.Submit("hello"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	o.Close()

	if !sched.timers[0].stopped {
		t.Fatalf("expected pending timer to be stopped")
	}
	// Un callback que ya se despachó antes de Stop no debe escribir.
	sched.fire(t, true)

	if got := len(o.Messages()); got != 1 {
		t.Fatalf("expected log length frozen at 1, got %d", got)
	}
	if err := o.Submit("again"); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed after close, got %v", err)
	}
	o.Close()
}

func TestWelcomeAndListeners(t *testing.T) {
	sched := &fakeScheduler{}
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	o := New(echoReplier{}, WithScheduler(sched), WithClock(func() time.Time { return fixed }), WithWelcome("welcome"))

	msgs := o.Messages()
	if len(msgs) != 1 || msgs[0].Sender != domain.SenderBot || msgs[0].Text != "welcome" {
		t.Fatalf("expected welcome message, got %+v", msgs)
	}

	var calls int
	o.OnChange(func() { calls++ })
	if err := o.Submit("hi"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	sched.fire(t, false)
	if calls != 2 {
		t.Fatalf("expected 2 change notifications, got %d", calls)
	}
	for _, m := range o.Messages()[1:] {
		if !m.Timestamp.Equal(fixed) {
			t.Fatalf("expected injected clock timestamp, got %v", m.Timestamp)
		}
		if m.ID == "" {
			t.Fatalf("expected message id")
		}
	}
}

func TestRealSchedulerDeliversReply(t *testing.T) {
	o := New(echoReplier{}, WithDelay(5*time.Millisecond))
	done := make(chan struct{}, 2)
	o.OnChange(func() { done <- struct{}{} })

	if err := o.Submit("ping"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	<-done
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("reply not delivered")
	}
	if msgs := o.Messages(); len(msgs) != 2 || msgs[1].Text != "re: ping" {
		t.Fatalf("unexpected transcript: %+v", msgs)
	}
}

func TestRealSchedulerCloseBeforeDelay(t *testing.T) {
	o := New(echoReplier{}, WithDelay(50*time.Millisecond))
	if err := o.Submit("ping"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	o.Close()
	time.Sleep(100 * time.Millisecond)
	if got := len(o.Messages()); got != 1 {
		t.Fatalf("expected no reply after close, got %d messages", got)
	}
}

func TestSubmitWithAdmitsOnlyAcceptedMessages(t *testing.T) {
	sched := &fakeScheduler{}
	o := New(echoReplier{}, WithScheduler(sched))

	var admitted int
	admit := func() error {
		admitted++
		return nil
	}

	if err := o.SubmitWith("   ", admit); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
	if err := o.SubmitWith("first", admit); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := o.SubmitWith("second", admit); !errors.Is(err, ErrReplyPending) {
		t.Fatalf("expected ErrReplyPending, got %v", err)
	}
	if admitted != 1 {
		t.Fatalf("expected admission checked once, got %d", admitted)
	}

	sched.fire(t, false)
	denied := errors.New("denied")
	if err := o.SubmitWith("third", func() error { return denied }); !errors.Is(err, denied) {
		t.Fatalf("expected admission error, got %v", err)
	}
	if got := len(o.Messages()); got != 2 || o.Typing() || len(sched.timers) != 1 {
		t.Fatalf("denied message must not touch the log, got %d messages", got)
	}

	o.Close()
	if err := o.SubmitWith("late", admit); !errors.Is(err, ErrClosed) || admitted != 1 {
		t.Fatalf("expected ErrClosed without admission, got %v (admitted %d)", err, admitted)
	}
}
