package registration

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// DefaultNoticeMessage is shown to the user when a submit is rejected.
const DefaultNoticeMessage = "Por favor, completa todos los campos obligatorios."

// Status tracks the submit lifecycle of a Component.
type Status string

const (
	StatusUnsubmitted Status = "unsubmitted"
	StatusRejected    Status = "rejected"
	StatusSummarized  Status = "summarized"
)

// Notice is the payload handed to the presentation layer when a submit is
// rejected.
type Notice struct {
	Message string
	Reason  string
	Missing []string
}

// Notifier presents a blocking notice to the user. Notify returns once the
// notice has been acknowledged (or could not be shown).
type Notifier interface {
	Notify(ctx context.Context, notice Notice) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, notice Notice) error

func (fn NotifierFunc) Notify(ctx context.Context, notice Notice) error {
	return fn(ctx, notice)
}

// Outcome describes the result of a single Submit call.
type Outcome struct {
	Status  Status `json:"status"`
	Summary string `json:"summary,omitempty"`
	Result  Result `json:"result"`
}

// Err returns ErrIncompleteSubmission for rejected outcomes.
func (o Outcome) Err() error {
	return o.Result.Err()
}

// Option configures a Component.
type Option func(*Component)

// WithNotifier sets the notice capability used on rejected submits.
func WithNotifier(n Notifier) Option {
	return func(c *Component) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithNoticeMessage overrides the user-facing rejection message.
func WithNoticeMessage(message string) Option {
	return func(c *Component) {
		if message != "" {
			c.noticeMessage = message
		}
	}
}

// WithLogger attaches a logger for submit outcomes.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Component) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Component is the course registration form: it owns the store, the row
// editor, and the outcome of the last submit.
type Component struct {
	store         *Store
	editor        RowEditor
	notifier      Notifier
	noticeMessage string
	logger        *zap.Logger

	mu         sync.Mutex
	status     Status
	summary    string
	lastResult Result
}

// New creates a component with one blank row.
func New(options ...Option) *Component {
	store := NewStore()
	c := &Component{
		store:         store,
		editor:        NewRowEditor(store),
		notifier:      NotifierFunc(func(context.Context, Notice) error { return nil }),
		noticeMessage: DefaultNoticeMessage,
		logger:        zap.NewNop(),
		status:        StatusUnsubmitted,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}

	store.Subscribe(func(Form) {
		c.mu.Lock()
		c.status = StatusUnsubmitted
		c.mu.Unlock()
	})
	return c
}

// Store exposes the field store for scalar edits and subscriptions.
func (c *Component) Store() *Store {
	return c.store
}

// Editor exposes the row editor.
func (c *Component) Editor() RowEditor {
	return c.editor
}

// Snapshot returns the current form state.
func (c *Component) Snapshot() Form {
	return c.store.Snapshot()
}

// Status reports where the component sits in the submit lifecycle.
func (c *Component) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Summary returns the summary from the last successful submit. It stays in
// place after later edits or rejected submits until the next success.
func (c *Component) Summary() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.summary
}

// LastResult returns the validator verdict of the last submit.
func (c *Component) LastResult() Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastResult
}

// Submit validates the current snapshot. A rejected submit leaves the form
// untouched and hands a Notice to the notifier; the returned error is only
// set when the notifier fails. A valid submit stores the built summary.
func (c *Component) Submit(ctx context.Context) (Outcome, error) {
	form := c.store.Snapshot()
	result := Validate(form)

	if !result.Valid {
		c.mu.Lock()
		c.status = StatusRejected
		c.lastResult = result
		c.mu.Unlock()

		c.logger.Info("registration rejected",
			zap.String("reason", result.Reason),
			zap.Strings("missing", result.Missing),
			zap.Int("rows", form.Len()),
		)

		outcome := Outcome{Status: StatusRejected, Result: result}
		notice := Notice{
			Message: c.noticeMessage,
			Reason:  result.Reason,
			Missing: append([]string(nil), result.Missing...),
		}
		if err := c.notifier.Notify(ctx, notice); err != nil {
			return outcome, fmt.Errorf("registration: present notice: %w", err)
		}
		return outcome, nil
	}

	summary := BuildSummary(form)

	c.mu.Lock()
	c.status = StatusSummarized
	c.summary = summary
	c.lastResult = result
	c.mu.Unlock()

	c.logger.Info("registration summarized", zap.Int("rows", form.Len()))
	return Outcome{Status: StatusSummarized, Summary: summary, Result: result}, nil
}
