package web

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"

	"voicechat/pkg/domain"
	"voicechat/pkg/logger"
)

type SessionController interface {
	Initialize(ctx context.Context)
	CreateNew(ctx context.Context, mode string)
	Load(ctx context.Context, conversationID string)
	Delete(ctx context.Context, conversationID string)
	Send(ctx context.Context, text string, generateImage bool)
	SetMode(mode string)
	Upload(ctx context.Context, files []domain.UploadFile)
}

type CaptureController interface {
	StartRecording(ctx context.Context)
	StopRecording(ctx context.Context, generateImage bool)
	RequestPermission(ctx context.Context)
}

// Router maps user actions arriving from the page onto controller
// operations. Unknown or malformed envelopes are logged and dropped;
// nothing propagates back to the read loop.
type Router struct {
	session SessionController
	capture CaptureController
}

func NewRouter(session SessionController, capture CaptureController) *Router {
	return &Router{
		session: session,
		capture: capture,
	}
}

func (r *Router) Route(ctx context.Context, msgType MessageType, payload json.RawMessage) {
	switch msgType {
	case TypeSend:
		p, err := UnmarshalPayload[SendPayload](payload)
		if err != nil {
			r.dropPayload(ctx, msgType, err)
			return
		}
		r.session.Send(ctx, p.Text, p.GenerateImage)

	case TypeNewChat:
		var mode string
		if len(payload) > 0 {
			if p, err := UnmarshalPayload[NewChatPayload](payload); err == nil {
				mode = p.Mode
			}
		}
		r.session.CreateNew(ctx, mode)

	case TypeLoadChat:
		p, err := UnmarshalPayload[LoadChatPayload](payload)
		if err != nil {
			r.dropPayload(ctx, msgType, err)
			return
		}
		r.session.Load(ctx, p.ConversationID)

	case TypeDeleteChat:
		p, err := UnmarshalPayload[DeleteChatPayload](payload)
		if err != nil {
			r.dropPayload(ctx, msgType, err)
			return
		}
		r.session.Delete(ctx, p.ConversationID)

	case TypeSetMode:
		p, err := UnmarshalPayload[ModePayload](payload)
		if err != nil {
			r.dropPayload(ctx, msgType, err)
			return
		}
		r.session.SetMode(p.Mode)

	case TypeUpload:
		p, err := UnmarshalPayload[UploadPayload](payload)
		if err != nil {
			r.dropPayload(ctx, msgType, err)
			return
		}
		r.session.Upload(ctx, decodeUploadFiles(ctx, p.Files))

	case TypeRecordStart:
		r.capture.StartRecording(ctx)

	case TypeRecordStop:
		var generateImage bool
		if len(payload) > 0 {
			if p, err := UnmarshalPayload[RecordStopPayload](payload); err == nil {
				generateImage = p.GenerateImage
			}
		}
		r.capture.StopRecording(ctx, generateImage)

	case TypeRequestMic:
		r.capture.RequestPermission(ctx)

	default:
		slog.WarnContext(ctx, "Unhandled message", "type", msgType)
	}
}

func (r *Router) dropPayload(ctx context.Context, msgType MessageType, err error) {
	slog.WarnContext(ctx, "Dropping malformed payload", "type", msgType, logger.Err(err))
}

func decodeUploadFiles(ctx context.Context, payloads []UploadFilePayload) []domain.UploadFile {
	files := make([]domain.UploadFile, 0, len(payloads))
	for _, p := range payloads {
		data, err := base64.StdEncoding.DecodeString(p.Data)
		if err != nil {
			slog.WarnContext(ctx, "Skipping undecodable upload file", "name", p.Name, logger.Err(err))
			continue
		}
		files = append(files, domain.UploadFile{Name: p.Name, Data: data})
	}
	return files
}
