package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"cognote/internal/asset"
	"cognote/internal/pipeline"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  32 << 10,
	WriteBufferSize: 1 << 10,
	// The API is already open CORS-wise; the websocket follows suit.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// recordControl is the text-frame protocol on the recording socket.
type recordControl struct {
	Event string `json:"event"` // "stop" or "cancel"
}

// handleRecord receives a live audio recording over a websocket: binary
// frames carry audio data, a {"event":"stop"} text frame ends the take.
// The assembled recording then goes through the same pipeline as an
// uploaded audio file, with the live-recording transcription prompt.
func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warnf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	title := r.URL.Query().Get("title")
	mimeType := r.URL.Query().Get("mime")
	if mimeType == "" {
		mimeType = "audio/webm"
	}

	var buf bytes.Buffer
	conn.SetReadLimit(maxUploadBytes)

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			s.log.Warnf("recording socket closed mid-take: %v", err)
			return
		}

		switch msgType {
		case websocket.BinaryMessage:
			buf.Write(data)

		case websocket.TextMessage:
			var ctl recordControl
			if err := json.Unmarshal(data, &ctl); err != nil {
				s.writeRecordError(conn, "invalid control frame")
				return
			}
			switch ctl.Event {
			case "cancel":
				_ = conn.WriteJSON(map[string]string{"status": "cancelled"})
				return
			case "stop":
				s.finishRecording(conn, title, mimeType, buf.Bytes())
				return
			default:
				s.writeRecordError(conn, "unknown event: "+ctl.Event)
				return
			}
		}
	}
}

func (s *Server) finishRecording(conn *websocket.Conn, title, mimeType string, data []byte) {
	if len(data) == 0 {
		s.writeRecordError(conn, "no audio received")
		return
	}

	fileName := fmt.Sprintf("recording-%s.webm", time.Now().Format("20060102-150405"))
	if title == "" {
		title = "Live Recording " + time.Now().Format("Jan 2 15:04")
	}

	mat, err := s.materials.Create(title, fileName, string(asset.ModalityAudio), int64(len(data)), nil)
	if err != nil {
		s.writeRecordError(conn, err.Error())
		return
	}

	if url, err := s.files.Save(data, mat.ID, fileName); err != nil {
		s.log.Warnf("failed to store recording for %s: %v", mat.ID, err)
	} else {
		mat.FileURL = url
		_ = s.materials.Update(*mat)
	}

	a := asset.UploadedAsset{
		Name:       fileName,
		MIMEType:   mimeType,
		SizeBytes:  int64(len(data)),
		BinaryData: data,
		UploadedAt: time.Now(),
	}

	go s.processMaterial(context.Background(), mat.ID, a, pipeline.Options{
		LiveRecording: true,
		GenerateAll:   true,
	})

	_ = conn.WriteJSON(map[string]interface{}{
		"status":   "processing",
		"material": mat,
	})
}

func (s *Server) writeRecordError(conn *websocket.Conn, msg string) {
	_ = conn.WriteJSON(map[string]string{"error": msg})
}
