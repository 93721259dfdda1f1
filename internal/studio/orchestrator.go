// Package studio drives one video generation from a form snapshot to saved,
// playable files, and maps failures to the messages a form host displays.
package studio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"veostudio/internal/domain"
	"veostudio/internal/infra"
	"veostudio/internal/metrics"
)

const (
	DefaultModel        = "veo-2.0-generate-001"
	DefaultPollInterval = time.Second
)

// Service is the remote generation contract.
type Service interface {
	Submit(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationOperation, error)
	Poll(ctx context.Context, op *domain.GenerationOperation) (*domain.GenerationOperation, error)
	Fetch(ctx context.Context, ref domain.VideoRef) ([]byte, error)
}

// Output receives finished videos: Save triggers the download and returns a
// locally playable location, ShowVideo points the player at it.
type Output interface {
	Save(ctx context.Context, invocationID, filename string, data []byte) (string, error)
	ShowVideo(location string)
}

// Options configures an Orchestrator. PollMaxAttempts and Timeout of zero
// leave the poll loop unbounded; it then ends only when the service reports
// completion, a poll fails, or ctx is cancelled.
type Options struct {
	Service         Service
	Model           string
	NumberOfVideos  int
	PollInterval    time.Duration
	PollMaxAttempts int
	Timeout         time.Duration
	Logger          *infra.Logger
}

type Orchestrator struct {
	service         Service
	model           string
	numberOfVideos  int
	pollInterval    time.Duration
	pollMaxAttempts int
	timeout         time.Duration
	logger          *infra.Logger
}

// SavedVideo describes one downloaded result.
type SavedVideo struct {
	Index    int
	Filename string
	Location string
}

// Result is the outcome of a successful Generate call.
type Result struct {
	InvocationID string
	Operation    string
	Polls        int
	Videos       []SavedVideo
}

func NewOrchestrator(opts Options) (*Orchestrator, error) {
	if opts.Service == nil {
		return nil, errors.New("studio: service is required")
	}
	if opts.PollInterval < 0 || opts.PollMaxAttempts < 0 || opts.Timeout < 0 {
		return nil, errors.New("studio: poll settings must not be negative")
	}
	model := opts.Model
	if model == "" {
		model = DefaultModel
	}
	interval := opts.PollInterval
	if interval == 0 {
		interval = DefaultPollInterval
	}
	count := opts.NumberOfVideos
	if count <= 0 {
		count = 1
	}
	logger := opts.Logger
	if logger == nil {
		l := zerolog.New(io.Discard)
		logger = &l
	}
	return &Orchestrator{
		service:         opts.Service,
		model:           model,
		numberOfVideos:  count,
		pollInterval:    interval,
		pollMaxAttempts: opts.PollMaxAttempts,
		timeout:         opts.Timeout,
		logger:          logger,
	}, nil
}

// BuildRequest turns a form snapshot into the request submitted to the
// service. The image is attached only when bytes are present, which selects
// image-to-video over text-to-video.
func (o *Orchestrator) BuildRequest(in domain.Inputs) domain.GenerationRequest {
	req := domain.GenerationRequest{
		Model:           o.model,
		Prompt:          in.Prompt,
		DurationSeconds: in.DurationSeconds,
		AspectRatio:     in.AspectRatio,
		NumberOfVideos:  o.numberOfVideos,
	}
	if in.Image != nil && in.Image.Data != "" {
		img := *in.Image
		req.SourceImage = &img
	}
	return req
}

// Generate submits in, waits for the operation to finish and hands every
// produced video to out. Videos are handled concurrently; Generate returns
// once all of them are saved or the first one fails.
func (o *Orchestrator) Generate(ctx context.Context, in domain.Inputs, out Output) (*Result, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	result := &Result{InvocationID: uuid.NewString()}
	log := o.logger.With().Str("invocation_id", result.InvocationID).Logger()

	req := o.BuildRequest(in)
	log.Info().
		Str("model", req.Model).
		Bool("image", req.SourceImage != nil).
		Int("duration_seconds", req.DurationSeconds).
		Str("aspect_ratio", string(req.AspectRatio)).
		Msg("studio: submitting generation")

	op, err := o.service.Submit(ctx, req)
	if err != nil {
		return nil, err
	}
	if op == nil {
		return nil, errors.New("studio: service returned no operation")
	}
	result.Operation = op.Name

	for !op.Done {
		if o.pollMaxAttempts > 0 && result.Polls >= o.pollMaxAttempts {
			return nil, fmt.Errorf("%w (%d attempts)", domain.ErrPollLimit, result.Polls)
		}
		log.Debug().Str("operation", op.Name).Msg("studio: waiting for completion")
		if err := sleep(ctx, o.pollInterval); err != nil {
			return nil, err
		}
		result.Polls++
		metrics.StatusPollsTotal.Inc()
		next, err := o.service.Poll(ctx, op)
		if err != nil {
			return nil, err
		}
		if next == nil {
			return nil, errors.New("studio: service returned no operation")
		}
		op = next
	}

	if op.Err != nil {
		return nil, op.Err
	}
	if len(op.Videos) == 0 {
		return nil, domain.ErrNoVideos
	}

	result.Videos = make([]SavedVideo, len(op.Videos))
	g, gctx := errgroup.WithContext(ctx)
	for i, ref := range op.Videos {
		g.Go(func() error {
			saved, err := o.handleVideo(gctx, result.InvocationID, i, ref, out)
			if err != nil {
				log.Error().Err(err).Int("video_index", i).Msg("studio: video not saved")
				return err
			}
			result.Videos[i] = saved
			log.Info().Int("video_index", i).Str("location", saved.Location).Msg("studio: downloaded video")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func (o *Orchestrator) handleVideo(ctx context.Context, invocationID string, index int, ref domain.VideoRef, out Output) (SavedVideo, error) {
	// fetch failures stay unwrapped so the classifier sees the service error
	data, err := o.service.Fetch(ctx, ref)
	if err != nil {
		return SavedVideo{}, err
	}
	filename := fmt.Sprintf("video%d.mp4", index)
	location, err := out.Save(ctx, invocationID, filename, data)
	if err != nil {
		return SavedVideo{}, fmt.Errorf("save %s: %w", filename, err)
	}
	metrics.VideosSavedTotal.Inc()
	out.ShowVideo(location)
	return SavedVideo{Index: index, Filename: filename, Location: location}, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
