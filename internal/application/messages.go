package application

import (
	"fmt"
	"strings"

	"voice-relay/internal/domain"
)

const (
	msgUnauthorized = "⚠️ Sorry, you are not authorized to use this bot. Please contact the administrator for access."
	msgWelcome      = "👋 Welcome to Voice-to-Text Bot!\n\nSend me a voice message, and I'll convert it to text for you."
	msgProcessing   = "🎵 Processing your audio message..."
	msgSending      = "🔄 Sending to OpenAI for transcription..."
)

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// escapeHTML escapes the characters Telegram's HTML parse mode treats as markup.
func escapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

func receivedMessage(media domain.MediaPayload) string {
	return fmt.Sprintf("📥 Audio file received:\nSize: %.2f KB\nFormat: %s",
		media.SizeKB(), escapeHTML(media.MIMEType))
}

func resultMessage(text string) string {
	return "✅ Transcription complete!\n\n📝 Text:\n" + escapeHTML(text)
}

func headline(kind domain.Kind) string {
	switch kind {
	case domain.KindMetadata:
		return "⚠️ Failed to get audio message from Telegram\n"
	case domain.KindDownload:
		return "⚠️ Failed to download the audio file\n"
	case domain.KindParse:
		return "⚠️ Invalid response from transcription service\n"
	case domain.KindTranscriptionAPI:
		return "⚠️ Transcription service error\n"
	default:
		return ""
	}
}

func errorMessage(err error) string {
	var b strings.Builder
	b.WriteString("❌ Error Details:\n")
	b.WriteString(headline(domain.KindOf(err)))
	b.WriteString("\nDebug info:\n")
	b.WriteString(escapeHTML(domain.Detail(err)))
	return b.String()
}
