package conversation

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"spicy-biryani/internal/domain"
)

// DefaultReplyDelay es la demora de "escribiendo..." antes de cada respuesta.
const DefaultReplyDelay = time.Second

var (
	ErrEmptyMessage = errors.New("empty message")
	ErrReplyPending = errors.New("reply pending")
	ErrClosed       = errors.New("conversation closed")
)

// Replier calcula la respuesta del bot para un texto de usuario.
type Replier interface {
	ClassifyAndReply(input string) string
}

// Orchestrator: Idle -> (Submit) -> AwaitingReply -> (timer) -> Idle.
// Solo una respuesta puede estar pendiente a la vez.
type Orchestrator struct {
	mu         sync.Mutex
	log        *Log
	replier    Replier
	scheduler  Scheduler
	delay      time.Duration
	now        func() time.Time
	typing     bool
	closed     bool
	pending    Timer
	generation uint64
	listeners  []func()
}

type Option func(*Orchestrator)

func WithScheduler(s Scheduler) Option {
	return func(o *Orchestrator) {
		if s != nil {
			o.scheduler = s
		}
	}
}

func WithDelay(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d >= 0 {
			o.delay = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// WithWelcome siembra un mensaje del bot al crear la conversación.
func WithWelcome(text string) Option {
	return func(o *Orchestrator) {
		if strings.TrimSpace(text) != "" {
			o.log.Append(o.newMessage(text, domain.SenderBot))
		}
	}
}

func New(replier Replier, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		log:       NewLog(),
		replier:   replier,
		scheduler: NewRealScheduler(),
		delay:     DefaultReplyDelay,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Submit agrega el mensaje del usuario de inmediato y programa la respuesta.
// Texto vacío devuelve ErrEmptyMessage sin tocar el log.
func (o *Orchestrator) Submit(text string) error {
	return o.SubmitWith(text, nil)
}

// SubmitWith es Submit con un control de admisión. admit corre bajo el lock
// solo cuando el mensaje sería aceptado; si devuelve error, nada cambia y
// SubmitWith devuelve ese error.
func (o *Orchestrator) SubmitWith(text string, admit func() error) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return ErrClosed
	}
	if o.typing {
		o.mu.Unlock()
		return ErrReplyPending
	}
	if admit != nil {
		if err := admit(); err != nil {
			o.mu.Unlock()
			return err
		}
	}
	o.log.Append(o.newMessage(text, domain.SenderUser))
	o.typing = true
	o.generation++
	gen := o.generation
	o.pending = o.scheduler.AfterFunc(o.delay, func() { o.deliver(gen, text) })
	listeners := o.snapshotListeners()
	o.mu.Unlock()

	notify(listeners)
	return nil
}

func (o *Orchestrator) deliver(gen uint64, text string) {
	o.mu.Lock()
	// Un timer ya disparado puede llegar después de Close o de otra respuesta.
	if o.closed || gen != o.generation || !o.typing {
		o.mu.Unlock()
		return
	}
	reply := o.replier.ClassifyAndReply(text)
	o.log.Append(o.newMessage(reply, domain.SenderBot))
	o.typing = false
	o.pending = nil
	listeners := o.snapshotListeners()
	o.mu.Unlock()

	notify(listeners)
}

// Close cancela la respuesta pendiente; después de Close el log no cambia.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	if o.pending != nil {
		o.pending.Stop()
		o.pending = nil
	}
	o.typing = false
	o.listeners = nil
	o.mu.Unlock()
}

// OnChange registra un callback que se invoca tras cada cambio del log o del
// flag de escritura. Se llama fuera del lock.
func (o *Orchestrator) OnChange(fn func()) {
	if fn == nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.listeners = append(o.listeners, fn)
}

func (o *Orchestrator) Typing() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.typing
}

func (o *Orchestrator) Closed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.closed
}

func (o *Orchestrator) Messages() []domain.Message {
	return o.log.Messages()
}

func (o *Orchestrator) newMessage(text string, sender domain.Sender) domain.Message {
	return domain.Message{
		ID:        uuid.NewString(),
		Text:      text,
		Sender:    sender,
		Timestamp: o.now(),
	}
}

func (o *Orchestrator) snapshotListeners() []func() {
	if len(o.listeners) == 0 {
		return nil
	}
	out := make([]func(), len(o.listeners))
	copy(out, o.listeners)
	return out
}

func notify(listeners []func()) {
	for _, fn := range listeners {
		fn()
	}
}
