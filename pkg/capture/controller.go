package capture

import (
	"bytes"
	"context"
	"encoding/base64"
	"log/slog"
	"sync"

	"voicechat/pkg/logger"
)

const (
	permissionNeededAlert  = "Please enable microphone permission first."
	permissionHaveAlert    = "Microphone permission already granted."
	permissionGrantedAlert = "Microphone permission granted."
	permissionDeniedAlert  = "Microphone permission denied."
)

type State int

const (
	StateIdle State = iota
	StatePermissionPending
	StateRecording
)

// PermissionState is the tri-state outcome of the capability probe.
// PermissionProbed means the platform permission query was unavailable and
// permission was proven by actually acquiring a stream; that stream must be
// reused or released, never leaked.
type PermissionState int

const (
	PermissionDenied PermissionState = iota
	PermissionGranted
	PermissionProbed
)

// Stream is one exclusive hold on the capture device. Chunks is closed
// after Stop; Stop releases the device.
type Stream interface {
	Chunks() <-chan []byte
	Stop() error
}

// Device abstracts the platform microphone: a permission status query plus
// the actual capture request.
type Device interface {
	QueryPermission(ctx context.Context) (bool, error)
	Capture(ctx context.Context) (Stream, error)
}

type AudioSender interface {
	SendAudio(ctx context.Context, audioBase64 string, generateImage bool)
}

type Alerter interface {
	Alert(message string)
}

// RecorderView mirrors the recording indicator in the UI.
type RecorderView interface {
	SetRecording(recording bool)
}

// Controller runs the microphone lifecycle: permission check, a single
// exclusive recording session, and the stop-time handoff of the encoded
// capture to the session manager.
type Controller struct {
	device  Device
	sender  AudioSender
	alerter Alerter
	view    RecorderView

	mu         sync.Mutex
	state      State
	stream     Stream
	chunkCount int
	collected  chan [][]byte
}

func NewController(device Device, sender AudioSender, alerter Alerter, view RecorderView) *Controller {
	return &Controller{
		device:  device,
		sender:  sender,
		alerter: alerter,
		view:    view,
	}
}

// probePermission checks the platform permission status first and falls
// back to a real capture request when the query itself is unsupported. A
// successful fallback is a true grant and returns the acquired stream.
func (c *Controller) probePermission(ctx context.Context) (PermissionState, Stream) {
	granted, err := c.device.QueryPermission(ctx)
	if err == nil {
		if granted {
			return PermissionGranted, nil
		}
		return PermissionDenied, nil
	}

	slog.DebugContext(ctx, "Permission query unsupported, probing via capture", logger.Err(err))

	stream, err := c.device.Capture(ctx)
	if err != nil {
		return PermissionDenied, nil
	}
	return PermissionProbed, stream
}

// RequestPermission is the explicit "enable microphone" action. It never
// starts a recording; a stream acquired while probing is released.
func (c *Controller) RequestPermission(ctx context.Context) {
	state, stream := c.probePermission(ctx)
	switch state {
	case PermissionGranted:
		c.alerter.Alert(permissionHaveAlert)
	case PermissionProbed:
		if err := stream.Stop(); err != nil {
			slog.WarnContext(ctx, "Releasing probe stream failed", logger.Err(err))
		}
		c.alerter.Alert(permissionHaveAlert)
	default:
		granted, err := c.device.Capture(ctx)
		if err != nil {
			c.alerter.Alert(permissionDeniedAlert)
			return
		}
		if err := granted.Stop(); err != nil {
			slog.WarnContext(ctx, "Releasing permission stream failed", logger.Err(err))
		}
		c.alerter.Alert(permissionGrantedAlert)
	}
}

// StartRecording opens the capture stream and begins buffering chunks.
// Denied permission alerts and returns to Idle; a second start while
// recording is a no-op, keeping the device hold exclusive.
func (c *Controller) StartRecording(ctx context.Context) {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return
	}
	c.state = StatePermissionPending
	c.mu.Unlock()

	permission, stream := c.probePermission(ctx)
	if permission == PermissionDenied {
		c.alerter.Alert(permissionNeededAlert)
		c.setState(StateIdle)
		return
	}

	// The probe fallback already holds the device; reuse it instead of
	// opening a duplicate stream.
	if stream == nil {
		var err error
		stream, err = c.device.Capture(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "Opening capture stream failed", logger.Err(err))
			c.alerter.Alert("Could not start recording: " + err.Error())
			c.setState(StateIdle)
			return
		}
	}

	collected := make(chan [][]byte, 1)

	c.mu.Lock()
	c.state = StateRecording
	c.stream = stream
	c.chunkCount = 0
	c.collected = collected
	c.mu.Unlock()

	c.view.SetRecording(true)
	slog.InfoContext(ctx, "Recording started")

	// Chunks accumulate in the collector's own slice and travel to the
	// stop handoff through the collected channel, so a quick restart can
	// never mix two recordings through shared state.
	go func() {
		var chunks [][]byte
		for chunk := range stream.Chunks() {
			chunks = append(chunks, chunk)
			c.mu.Lock()
			if c.collected == collected {
				c.chunkCount = len(chunks)
			}
			c.mu.Unlock()
		}
		collected <- chunks
	}()
}

// StopRecording finalizes the in-flight capture. The recording indicator
// drops immediately; encoding and the network submission happen after the
// chunk channel drains, asynchronously to this call.
func (c *Controller) StopRecording(ctx context.Context, generateImage bool) {
	c.mu.Lock()
	if c.state != StateRecording {
		c.mu.Unlock()
		return
	}
	stream := c.stream
	collected := c.collected
	c.state = StateIdle
	c.stream = nil
	c.mu.Unlock()

	c.view.SetRecording(false)
	slog.InfoContext(ctx, "Recording stopped")

	if err := stream.Stop(); err != nil {
		slog.WarnContext(ctx, "Stopping capture stream failed", logger.Err(err))
	}

	go func() {
		chunks := <-collected

		c.mu.Lock()
		if c.collected == collected {
			c.collected = nil
			c.chunkCount = 0
		}
		c.mu.Unlock()

		var buf bytes.Buffer
		for _, chunk := range chunks {
			buf.Write(chunk)
		}

		if buf.Len() == 0 {
			slog.DebugContext(ctx, "Discarding empty recording")
			return
		}

		c.sender.SendAudio(ctx, base64.StdEncoding.EncodeToString(buf.Bytes()), generateImage)
	}()
}

// Toggle starts a recording when idle and stops the active one otherwise.
func (c *Controller) Toggle(ctx context.Context, generateImage bool) {
	if c.Recording() {
		c.StopRecording(ctx, generateImage)
		return
	}
	c.StartRecording(ctx)
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Recording() bool {
	return c.State() == StateRecording
}

// BufferedChunks reports how many fragments the newest recording has
// buffered between start and the completion of its stop processing.
func (c *Controller) BufferedChunks() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.chunkCount
}

func (c *Controller) setState(state State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = state
}
