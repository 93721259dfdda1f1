package studio

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"veostudio/internal/domain"
)

type fakeService struct {
	mu sync.Mutex

	submitOp  *domain.GenerationOperation
	submitErr error
	polls     []*domain.GenerationOperation
	pollErr   error
	fetch     map[string][]byte
	fetchErr  error

	submitted []domain.GenerationRequest
	pollCalls int
	fetched   []string
}

func (f *fakeService) Submit(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationOperation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, req)
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return f.submitOp, nil
}

func (f *fakeService) Poll(ctx context.Context, op *domain.GenerationOperation) (*domain.GenerationOperation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pollCalls++
	if f.pollErr != nil {
		return nil, f.pollErr
	}
	if len(f.polls) == 0 {
		return &domain.GenerationOperation{Name: op.Name}, nil
	}
	next := f.polls[0]
	f.polls = f.polls[1:]
	return next, nil
}

func (f *fakeService) Fetch(ctx context.Context, ref domain.VideoRef) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, ref.URI)
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	data, ok := f.fetch[ref.URI]
	if !ok {
		return nil, fmt.Errorf("unknown uri %q", ref.URI)
	}
	return data, nil
}

type savedFile struct {
	invocation string
	name       string
	data       []byte
}

type fakeHost struct {
	mu sync.Mutex

	saveErr error
	saved   []savedFile
	shown   []string
	events  []string

	status          string
	controlsEnabled bool
	videoVisible    bool
	quotaVisible    bool
}

func newFakeHost() *fakeHost {
	return &fakeHost{controlsEnabled: true}
}

func (h *fakeHost) Save(ctx context.Context, invocationID, filename string, data []byte) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.saveErr != nil {
		return "", h.saveErr
	}
	h.saved = append(h.saved, savedFile{invocation: invocationID, name: filename, data: data})
	return invocationID + "/" + filename, nil
}

func (h *fakeHost) ShowVideo(location string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.shown = append(h.shown, location)
	h.videoVisible = true
	h.events = append(h.events, "show:"+location)
}

func (h *fakeHost) SetControlsEnabled(enabled bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.controlsEnabled = enabled
	h.events = append(h.events, fmt.Sprintf("controls:%v", enabled))
}

func (h *fakeHost) SetStatus(text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status = text
	h.events = append(h.events, "status:"+text)
}

func (h *fakeHost) HideVideo() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.videoVisible = false
	h.events = append(h.events, "hide")
}

func (h *fakeHost) SetQuotaNoticeVisible(visible bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.quotaVisible = visible
	h.events = append(h.events, fmt.Sprintf("quota:%v", visible))
}

type blockingGenerator struct {
	started chan struct{}
	release chan struct{}
	err     error
}

func (g *blockingGenerator) Generate(ctx context.Context, in domain.Inputs, out Output) (*Result, error) {
	close(g.started)
	select {
	case <-g.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if g.err != nil {
		return nil, g.err
	}
	return &Result{InvocationID: "inv"}, nil
}

var errFetch = errors.New("fetch failed")
