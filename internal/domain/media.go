package domain

// UnknownMIMEType is reported when the platform gives no mime type.
const UnknownMIMEType = "unknown"

type MediaPayload struct {
	Data     []byte
	Size     int
	MIMEType string
}

// SizeKB is the payload size in kilobytes.
func (m MediaPayload) SizeKB() float64 {
	return float64(m.Size) / 1024
}
