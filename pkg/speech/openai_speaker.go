package speech

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/sashabaranov/go-openai"

	"voicechat/pkg/logger"
)

// AudioSink plays synthesized audio on the presentation surface.
type AudioSink interface {
	PlayAudio(audioBase64 string)
	StopAudio()
}

// OpenAISpeaker narrates bot replies through the OpenAI speech endpoint
// and ships the resulting MP3 to the sink. Speak is meant to be fired and
// forgotten; Cancel aborts any synthesis still in flight and silences the
// sink.
type OpenAISpeaker struct {
	client *openai.Client
	sink   AudioSink

	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewOpenAISpeaker(token string, sink AudioSink) (*OpenAISpeaker, error) {
	if token == "" {
		return nil, fmt.Errorf("token is empty")
	}
	return &OpenAISpeaker{
		client: openai.NewClient(token),
		sink:   sink,
	}, nil
}

func (s *OpenAISpeaker) Speak(ctx context.Context, text string) {
	if text == "" {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	s.mu.Unlock()

	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model: openai.TTSModel1,
		Input: text,
		Voice: openai.VoiceAlloy,
	})
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.WarnContext(ctx, "Speech synthesis failed", logger.Err(err))
		}
		return
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		slog.WarnContext(ctx, "Reading synthesized audio failed", logger.Err(err))
		return
	}

	// A cancel that raced the download wins: stale narration is worse
	// than no narration.
	if ctx.Err() != nil {
		return
	}

	s.sink.PlayAudio(base64.StdEncoding.EncodeToString(audio))
}

func (s *OpenAISpeaker) Cancel() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	s.sink.StopAudio()
}
