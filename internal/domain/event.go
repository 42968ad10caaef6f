package domain

// StartCommand is the greeting command Telegram clients send on first contact.
const StartCommand = "/start"

// InboundEvent is the part of a Telegram update the relay acts on.
// ChatID 0 means the update carried no chat.
type InboundEvent struct {
	UpdateID        int64
	ChatID          int64
	Text            string
	VoiceFileID     string
	VideoNoteFileID string
	// HasVoice and HasVideoNote record that the update carried the media
	// object, even when its file id is missing.
	HasVoice     bool
	HasVideoNote bool
}

// MediaFileID returns the file id of the attached media, preferring voice
// over video notes. Empty when the event carries no media.
func (e InboundEvent) MediaFileID() string {
	if e.VoiceFileID != "" {
		return e.VoiceFileID
	}
	return e.VideoNoteFileID
}

// HasMedia reports whether the event asks for a transcription. A media
// object without a file id still counts; the fetch then fails and the
// failure is reported to the chat.
func (e InboundEvent) HasMedia() bool {
	return e.HasVoice || e.HasVideoNote || e.MediaFileID() != ""
}
