package model

import "strconv"

// UserID identifies a Telegram user. In private chats it is also the chat ID.
type UserID int64

func (id UserID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Feature is one of the metered capabilities of the bot.
type Feature string

const (
	FeatureChat     Feature = "chat"
	FeatureImage    Feature = "image"
	FeatureMusic    Feature = "music"
	FeatureVideo    Feature = "video"
	FeatureDocument Feature = "document"
)

// Features lists every metered feature in menu order.
var Features = []Feature{FeatureChat, FeatureImage, FeatureMusic, FeatureVideo, FeatureDocument}

func (f Feature) Valid() bool {
	switch f {
	case FeatureChat, FeatureImage, FeatureMusic, FeatureVideo, FeatureDocument:
		return true
	}
	return false
}

// Payload is the user input forwarded to a generator.
type Payload struct {
	Text     string `json:"text,omitempty"`
	FileID   string `json:"file_id,omitempty"`
	MIMEType string `json:"mime_type,omitempty"`
}

// GenerationResult is what a generator produced for one invocation.
type GenerationResult struct {
	JobID     string  `json:"job_id"`
	Feature   Feature `json:"feature"`
	Text      string  `json:"text,omitempty"`
	Image     []byte  `json:"-"`
	ImageMIME string  `json:"image_mime,omitempty"`
}
