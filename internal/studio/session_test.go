package studio

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"veostudio/internal/domain"
	"veostudio/internal/form"
)

func TestSessionTriggerSuccess(t *testing.T) {
	svc := &fakeService{
		submitOp: &domain.GenerationOperation{Name: "op", Done: true, Videos: []domain.VideoRef{{URI: "u"}}},
		fetch:    map[string][]byte{"u": []byte("mp4")},
	}
	inputs := form.NewCollector(form.Options{})
	inputs.SetPrompt("sunrise")
	host := newFakeHost()
	s := NewSession(inputs, newTestOrchestrator(t, svc, Options{}), host, nil)

	if err := s.Trigger(context.Background()); err != nil {
		t.Fatalf("Trigger: %v", err)
	}
	if s.State() != StateDone {
		t.Fatalf("state = %s, want done", s.State())
	}
	if host.status != StatusDone {
		t.Fatalf("status = %q, want %q", host.status, StatusDone)
	}
	if !host.controlsEnabled {
		t.Fatal("controls must be re-enabled")
	}
	if host.quotaVisible {
		t.Fatal("quota notice must stay hidden")
	}
	if svc.submitted[0].Prompt != "sunrise" {
		t.Fatalf("submitted prompt = %q", svc.submitted[0].Prompt)
	}
	res := s.LastResult()
	if res == nil || len(res.Videos) != 1 {
		t.Fatalf("last result = %#v", res)
	}
	location := res.InvocationID + "/video0.mp4"
	want := []string{
		"status:" + StatusGenerating,
		"hide",
		"controls:false",
		"quota:false",
		"show:" + location,
		"status:" + StatusDone,
		"controls:true",
	}
	if diff := cmp.Diff(want, host.events); diff != "" {
		t.Fatalf("host events mismatch (-want +got):\n%s", diff)
	}
}

func TestSessionTriggerQuotaFailure(t *testing.T) {
	svc := &fakeService{submitErr: &domain.RemoteError{Code: 429, Message: "exhausted"}}
	host := newFakeHost()
	s := NewSession(form.NewCollector(form.Options{}), newTestOrchestrator(t, svc, Options{}), host, nil)

	err := s.Trigger(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if s.State() != StateFailed {
		t.Fatalf("state = %s, want failed", s.State())
	}
	if host.status != "" {
		t.Fatalf("status = %q, want empty for quota errors", host.status)
	}
	if !host.quotaVisible {
		t.Fatal("quota notice must be shown")
	}
	if !host.controlsEnabled {
		t.Fatal("controls must be re-enabled after failure")
	}
	if !s.LastError().IsQuotaOrAuthError {
		t.Fatal("last error must be flagged")
	}
}

func TestSessionTriggerPlainFailure(t *testing.T) {
	svc := &fakeService{submitErr: errors.New("boom")}
	host := newFakeHost()
	s := NewSession(form.NewCollector(form.Options{}), newTestOrchestrator(t, svc, Options{}), host, nil)

	_ = s.Trigger(context.Background())
	if host.status != "boom" {
		t.Fatalf("status = %q, want boom", host.status)
	}
	if host.quotaVisible {
		t.Fatal("quota notice must stay hidden")
	}
}

func TestSessionNewTriggerClearsQuotaNotice(t *testing.T) {
	svc := &fakeService{submitErr: &domain.RemoteError{Code: 403}}
	host := newFakeHost()
	s := NewSession(form.NewCollector(form.Options{}), newTestOrchestrator(t, svc, Options{}), host, nil)
	_ = s.Trigger(context.Background())
	if !host.quotaVisible {
		t.Fatal("quota notice must be shown after auth error")
	}

	svc.submitErr = nil
	svc.submitOp = &domain.GenerationOperation{Name: "op", Done: true, Videos: []domain.VideoRef{{URI: "u"}}}
	svc.fetch = map[string][]byte{"u": []byte("x")}
	if err := s.Trigger(context.Background()); err != nil {
		t.Fatalf("second Trigger: %v", err)
	}
	if host.quotaVisible {
		t.Fatal("quota notice must be cleared by a new generation")
	}
}

func TestSessionRejectsOverlappingTrigger(t *testing.T) {
	gen := &blockingGenerator{started: make(chan struct{}), release: make(chan struct{})}
	host := newFakeHost()
	s := NewSession(form.NewCollector(form.Options{}), gen, host, nil)

	done := make(chan error, 1)
	go func() { done <- s.Trigger(context.Background()) }()
	<-gen.started

	if !s.Busy() {
		t.Fatal("session must report busy")
	}
	if s.State() != StateGenerating {
		t.Fatalf("state = %s, want generating", s.State())
	}
	if err := s.Trigger(context.Background()); !errors.Is(err, domain.ErrBusy) {
		t.Fatalf("second trigger err = %v, want ErrBusy", err)
	}

	close(gen.release)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("first trigger: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("first trigger did not finish")
	}
	if s.Busy() {
		t.Fatal("session must be idle after completion")
	}
}

func TestSessionStartClaimsBeforeReturning(t *testing.T) {
	gen := &blockingGenerator{started: make(chan struct{}), release: make(chan struct{}), err: errors.New("boom")}
	host := newFakeHost()
	s := NewSession(form.NewCollector(form.Options{}), gen, host, nil)

	done, err := s.Start(context.Background())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := s.Start(context.Background()); !errors.Is(err, domain.ErrBusy) {
		t.Fatalf("second Start err = %v, want ErrBusy", err)
	}

	<-gen.started
	close(gen.release)
	select {
	case err := <-done:
		if err == nil || err.Error() != "boom" {
			t.Fatalf("generation err = %v, want boom", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("generation did not finish")
	}
	if s.Busy() {
		t.Fatal("session must accept a new trigger once done yields")
	}
	if s.State() != StateFailed || host.status != "boom" {
		t.Fatalf("state = %s status = %q", s.State(), host.status)
	}
}

func TestSessionClassifiesDownloadAuthFailure(t *testing.T) {
	svc := &fakeService{
		submitOp: &domain.GenerationOperation{Name: "op", Done: true, Videos: []domain.VideoRef{{URI: "u"}}},
		fetchErr: &domain.RemoteError{Code: 403, Message: "download forbidden"},
	}
	host := newFakeHost()
	s := NewSession(form.NewCollector(form.Options{}), newTestOrchestrator(t, svc, Options{}), host, nil)

	if err := s.Trigger(context.Background()); err == nil {
		t.Fatal("Trigger must report the download failure")
	}
	if host.status != authErrorMessage {
		t.Fatalf("status = %q, want %q", host.status, authErrorMessage)
	}
	if !host.quotaVisible {
		t.Fatal("quota notice must be shown after a forbidden download")
	}
	if s.State() != StateFailed || !s.LastError().IsQuotaOrAuthError {
		t.Fatalf("state = %s, last error = %+v", s.State(), s.LastError())
	}
}
