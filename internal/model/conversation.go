package model

// ConversationState is the per-user dialog state.
type ConversationState string

const (
	StateIdle                ConversationState = "idle"
	StateAwaitingChatText    ConversationState = "awaiting_chat_text"
	StateAwaitingImagePrompt ConversationState = "awaiting_image_prompt"
	StateAwaitingMusicPrompt ConversationState = "awaiting_music_prompt"
	StateAwaitingVideoPrompt ConversationState = "awaiting_video_prompt"
	StateAwaitingDocument    ConversationState = "awaiting_document"
)

var stateByFeature = map[Feature]ConversationState{
	FeatureChat:     StateAwaitingChatText,
	FeatureImage:    StateAwaitingImagePrompt,
	FeatureMusic:    StateAwaitingMusicPrompt,
	FeatureVideo:    StateAwaitingVideoPrompt,
	FeatureDocument: StateAwaitingDocument,
}

// AwaitingState returns the state that collects input for f.
func AwaitingState(f Feature) (ConversationState, bool) {
	s, ok := stateByFeature[f]
	return s, ok
}

// Feature returns the feature whose input this state is waiting for.
func (s ConversationState) Feature() (Feature, bool) {
	for f, st := range stateByFeature {
		if st == s {
			return f, true
		}
	}
	return "", false
}

// ExpectsImage reports whether the state accepts an image rather than text.
func (s ConversationState) ExpectsImage() bool {
	return s == StateAwaitingDocument
}

type EventKind int

const (
	EventUnknown EventKind = iota
	EventStart
	EventSelectFeature
	EventText
	EventImage
	EventReturnToMenu
	EventShowProfile
	EventShowVIPInfo
	EventCheckSubscriptions
	EventSkipSubscriptions
	EventSeparator
)

var eventNames = map[EventKind]string{
	EventUnknown:            "unknown",
	EventStart:              "start",
	EventSelectFeature:      "select_feature",
	EventText:               "text",
	EventImage:              "image",
	EventReturnToMenu:       "return_to_menu",
	EventShowProfile:        "show_profile",
	EventShowVIPInfo:        "show_vip_info",
	EventCheckSubscriptions: "check_subscriptions",
	EventSkipSubscriptions:  "skip_subscriptions",
	EventSeparator:          "separator",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return "unknown"
}

// Event is a transport-neutral user action.
type Event struct {
	ID      string
	Kind    EventKind
	UserID  UserID
	Feature Feature
	Payload Payload
}

type ResponseKind int

const (
	ResponseUnrecognized ResponseKind = iota
	ResponseWelcome
	ResponseMenu
	ResponsePermitted
	ResponseDenied
	ResponseResult
	ResponseFailure
	ResponseProfile
	ResponseVIPInfo
	ResponseSubscriptionCheck
	ResponseSkipped
	ResponseAcknowledged
)

// Response is the outcome of handling an Event. The transport decides how
// to present it.
type Response struct {
	Kind      ResponseKind
	Tier      Tier
	Feature   Feature
	Remaining int
	Result    *GenerationResult
	Snapshot  *TierSnapshot
	Channels  []ChannelStatus
}
