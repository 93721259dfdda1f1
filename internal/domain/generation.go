package domain

// AspectRatio enumerates output frame shapes accepted by the video models.
type AspectRatio string

const (
	AspectRatioSquare    AspectRatio = "1:1"
	AspectRatioLandscape AspectRatio = "16:9"
	AspectRatioPortrait  AspectRatio = "9:16"
)

// Inputs is the latest value of every form field at a point in time.
type Inputs struct {
	Prompt          string
	Image           *SourceImage
	DurationSeconds int
	AspectRatio     AspectRatio
}

// SourceImage carries base64 encoded image bytes and their MIME type.
type SourceImage struct {
	Data     string
	MIMEType string
}

// GenerationRequest is built fresh for every invocation and never mutated
// after submission.
type GenerationRequest struct {
	Model           string
	Prompt          string
	SourceImage     *SourceImage
	DurationSeconds int
	AspectRatio     AspectRatio
	NumberOfVideos  int
}

// GenerationOperation is the handle of an in-flight or finished remote job.
type GenerationOperation struct {
	Name   string
	Done   bool
	Videos []VideoRef
	Err    *RemoteError
}

// VideoRef locates one produced video. Data is set when the backend returns
// the bytes inline instead of a fetchable URI.
type VideoRef struct {
	URI      string
	MIMEType string
	Data     []byte
}

// ClassifiedError is the user-facing rendition of a generation failure.
type ClassifiedError struct {
	DisplayMessage     string
	IsQuotaOrAuthError bool
}
