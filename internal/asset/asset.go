package asset

import (
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// UploadedAsset is the ephemeral input to the processing pipeline: one
// uploaded file or finished live recording. It is consumed exactly once
// and never persisted itself.
type UploadedAsset struct {
	Name       string
	MIMEType   string
	SizeBytes  int64
	BinaryData []byte
	UploadedAt time.Time
}

// Modality is the media category an asset is processed as.
type Modality string

const (
	ModalityAudio    Modality = "audio"
	ModalityVideo    Modality = "video"
	ModalityImage    Modality = "image"
	ModalityPDF      Modality = "pdf"
	ModalityDocument Modality = "document"
	ModalityText     Modality = "text"
	ModalityUnknown  Modality = "unknown"
)

var extModalities = map[string]Modality{
	".mp3":  ModalityAudio,
	".wav":  ModalityAudio,
	".m4a":  ModalityAudio,
	".aac":  ModalityAudio,
	".ogg":  ModalityAudio,
	".flac": ModalityAudio,
	".webm": ModalityAudio, // browser MediaRecorder default

	".mp4": ModalityVideo,
	".mov": ModalityVideo,
	".mkv": ModalityVideo,
	".avi": ModalityVideo,
	".wmv": ModalityVideo,

	".jpg":  ModalityImage,
	".jpeg": ModalityImage,
	".png":  ModalityImage,
	".gif":  ModalityImage,
	".webp": ModalityImage,
	".bmp":  ModalityImage,

	".pdf": ModalityPDF,

	".doc":  ModalityDocument,
	".docx": ModalityDocument,
	".rtf":  ModalityDocument,
	".odt":  ModalityDocument,
	".ppt":  ModalityDocument,
	".pptx": ModalityDocument,

	".txt": ModalityText,
	".md":  ModalityText,
	".csv": ModalityText,
}

// Classify maps a MIME type and filename to a Modality. MIME type wins when
// present; the extension table is the fallback for uploads whose browser or
// OS supplied no usable type. ModalityUnknown is fatal to the pipeline.
func Classify(mimeType, name string) Modality {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	switch {
	case strings.HasPrefix(mt, "audio/"):
		return ModalityAudio
	case strings.HasPrefix(mt, "video/"):
		return ModalityVideo
	case strings.HasPrefix(mt, "image/"):
		return ModalityImage
	case mt == "application/pdf":
		return ModalityPDF
	case strings.HasPrefix(mt, "text/"):
		return ModalityText
	}

	ext := strings.ToLower(filepath.Ext(name))
	if m, ok := extModalities[ext]; ok {
		return m
	}
	return ModalityUnknown
}

// Classify reports the asset's modality from its own MIME type and name.
func (a UploadedAsset) Classify() Modality {
	return Classify(a.MIMEType, a.Name)
}

// MaxPayloadBytes is the hard cap on inline payloads sent to the AI
// provider. Oversized assets are truncated to this size rather than
// rejected; for binary formats the tail loss may corrupt the payload, so
// callers log a warning when Truncated is set.
const MaxPayloadBytes = 20 << 20

// Payload is a base64 inline-data payload ready for an AI provider call.
// Base64Data is a full data URI; RawBase64 strips the prefix for transports
// that want only the encoded bytes.
type Payload struct {
	Base64Data string
	MIMEType   string
	FileName   string
	Truncated  bool
}

// EncodePayload converts an asset's binary into a bounded inline payload.
// The MIME type is normalized to lowercase, defaulting to
// application/octet-stream when the upload carried none.
func EncodePayload(a UploadedAsset) Payload {
	mimeType := strings.ToLower(strings.TrimSpace(a.MIMEType))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	data := a.BinaryData
	truncated := false
	if len(data) > MaxPayloadBytes {
		data = data[:MaxPayloadBytes]
		truncated = true
	}

	encoded := base64.StdEncoding.EncodeToString(data)
	return Payload{
		Base64Data: fmt.Sprintf("data:%s;base64,%s", mimeType, encoded),
		MIMEType:   mimeType,
		FileName:   a.Name,
		Truncated:  truncated,
	}
}

// RawBase64 returns the base64 content without the data-URI prefix.
func (p Payload) RawBase64() string {
	if idx := strings.Index(p.Base64Data, ";base64,"); idx >= 0 {
		return p.Base64Data[idx+len(";base64,"):]
	}
	return p.Base64Data
}
