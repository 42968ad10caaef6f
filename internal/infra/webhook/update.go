package webhook

import (
	"encoding/json"
	"fmt"
	"io"

	"voice-relay/internal/domain"
)

type update struct {
	UpdateID int64    `json:"update_id"`
	Message  *message `json:"message"`
}

type message struct {
	MessageID int64    `json:"message_id"`
	Chat      *chat    `json:"chat"`
	Text      string   `json:"text"`
	Voice     *fileRef `json:"voice"`
	VideoNote *fileRef `json:"video_note"`
}

type chat struct {
	ID int64 `json:"id"`
}

type fileRef struct {
	FileID   string `json:"file_id"`
	MIMEType string `json:"mime_type"`
	Duration int    `json:"duration"`
}

// decodeEvent reads a Telegram update. An update without a message or chat
// decodes to an event with ChatID 0.
func decodeEvent(body io.Reader) (domain.InboundEvent, error) {
	var u update
	if err := json.NewDecoder(body).Decode(&u); err != nil {
		return domain.InboundEvent{}, fmt.Errorf("decoding update: %w", err)
	}

	ev := domain.InboundEvent{UpdateID: u.UpdateID}
	if u.Message == nil {
		return ev, nil
	}

	if u.Message.Chat != nil {
		ev.ChatID = u.Message.Chat.ID
	}
	ev.Text = u.Message.Text
	if u.Message.Voice != nil {
		ev.HasVoice = true
		ev.VoiceFileID = u.Message.Voice.FileID
	}
	if u.Message.VideoNote != nil {
		ev.HasVideoNote = true
		ev.VideoNoteFileID = u.Message.VideoNote.FileID
	}

	return ev, nil
}
