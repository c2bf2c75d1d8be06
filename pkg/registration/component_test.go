package registration

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingNotifier struct {
	notices []Notice
	err     error
}

func (n *recordingNotifier) Notify(_ context.Context, notice Notice) error {
	n.notices = append(n.notices, notice)
	return n.err
}

func fill(c *Component) {
	c.Store().SetScalarField(FieldName, "Ana")
	c.Store().SetScalarField(FieldEmail, "a@x.com")
	ed := c.Editor()
	ed.SetCourseName(0, "Cálculo")
	ed.SetDate(0, "2024-01-10")
	ed.SetCredits(0, "4")
	ed.SetInstructor(0, "Dr. Pérez")
}

func TestSubmit_RejectedLeavesStateUntouched(t *testing.T) {
	notifier := &recordingNotifier{}
	c := New(WithNotifier(notifier))
	c.Store().SetScalarField(FieldName, "Ana")

	before := c.Snapshot()
	outcome, err := c.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if outcome.Status != StatusRejected || c.Status() != StatusRejected {
		t.Fatalf("expected rejected, got %s / %s", outcome.Status, c.Status())
	}
	if !errors.Is(outcome.Err(), ErrIncompleteSubmission) {
		t.Fatalf("expected ErrIncompleteSubmission, got %v", outcome.Err())
	}
	if outcome.Summary != "" || c.Summary() != "" {
		t.Fatalf("rejected submit produced a summary")
	}
	if diff := cmp.Diff(before, c.Snapshot()); diff != "" {
		t.Fatalf("state changed on rejected submit (-want +got):\n%s", diff)
	}
	if len(notifier.notices) != 1 {
		t.Fatalf("expected one notice, got %d", len(notifier.notices))
	}
	notice := notifier.notices[0]
	if notice.Message != DefaultNoticeMessage || notice.Reason != ReasonRequiredFieldsMissing {
		t.Fatalf("unexpected notice: %+v", notice)
	}
}

func TestSubmit_ValidStoresSummary(t *testing.T) {
	notifier := &recordingNotifier{}
	c := New(WithNotifier(notifier))
	fill(c)

	outcome, err := c.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	want := "Gracias, Ana. Has cursado las siguientes materias: Cálculo (Créditos: 4, Docente: Dr. Pérez, Fecha: 2024-01-10)."
	if outcome.Summary != want || c.Summary() != want {
		t.Fatalf("summary mismatch: %q / %q", outcome.Summary, c.Summary())
	}
	if c.Status() != StatusSummarized || outcome.Err() != nil {
		t.Fatalf("unexpected status %s err %v", c.Status(), outcome.Err())
	}
	if len(notifier.notices) != 0 {
		t.Fatalf("valid submit should not notify")
	}
}

func TestSubmit_StaleSummaryStaysAfterEdits(t *testing.T) {
	c := New()
	fill(c)
	if _, err := c.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	summary := c.Summary()

	c.Editor().AppendRow()
	if c.Status() != StatusUnsubmitted {
		t.Fatalf("edit should reset status, got %s", c.Status())
	}
	if c.Summary() != summary {
		t.Fatalf("summary cleared by edit")
	}

	// The new blank row makes the form incomplete; the old summary remains.
	outcome, err := c.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if outcome.Status != StatusRejected {
		t.Fatalf("expected rejection, got %s", outcome.Status)
	}
	if c.Summary() != summary {
		t.Fatalf("rejected submit replaced the displayed summary")
	}
}

func TestSubmit_NotifierErrorIsReturned(t *testing.T) {
	boom := errors.New("closed")
	c := New(WithNotifier(&recordingNotifier{err: boom}), WithNoticeMessage("Faltan datos"))

	outcome, err := c.Submit(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected notifier error, got %v", err)
	}
	if outcome.Status != StatusRejected {
		t.Fatalf("expected rejected outcome, got %s", outcome.Status)
	}
}

func TestSubmit_LogsOutcome(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	c := New(WithLogger(zap.New(core)))

	if _, err := c.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	entries := logs.FilterMessage("registration rejected").All()
	if len(entries) != 1 {
		t.Fatalf("expected one rejection log, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["rows"]; got != int64(1) {
		t.Fatalf("unexpected rows field: %v", got)
	}
}
