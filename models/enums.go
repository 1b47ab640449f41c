package models

// PostLocation is where a post is placed on the home page.
type PostLocation string

const (
	LocationTop         PostLocation = "Top"
	LocationLarge       PostLocation = "Large"
	LocationBottomLeft  PostLocation = "BottomLeft"
	LocationBottomRight PostLocation = "BottomRight"
	LocationSponsored   PostLocation = "Sponsored"
	LocationNormal      PostLocation = "Normal"
)

// PostLocations lists every placement in home page order.
var PostLocations = []PostLocation{
	LocationTop,
	LocationLarge,
	LocationBottomLeft,
	LocationBottomRight,
	LocationSponsored,
	LocationNormal,
}

func (l PostLocation) Valid() bool {
	for _, known := range PostLocations {
		if l == known {
			return true
		}
	}
	return false
}

// ModerationReason is the code a moderator must pick when redacting a comment.
type ModerationReason string

const (
	ReasonPolitical   ModerationReason = "Political"
	ReasonLanguage    ModerationReason = "Language"
	ReasonDrugs       ModerationReason = "Drugs"
	ReasonThreatening ModerationReason = "Threatening"
	ReasonSexual      ModerationReason = "Sexual"
	ReasonHateSpeech  ModerationReason = "HateSpeech"
	ReasonShaming     ModerationReason = "Shaming"
	ReasonOther       ModerationReason = "Other"
)

var ModerationReasons = []ModerationReason{
	ReasonPolitical,
	ReasonLanguage,
	ReasonDrugs,
	ReasonThreatening,
	ReasonSexual,
	ReasonHateSpeech,
	ReasonShaming,
	ReasonOther,
}

func (r ModerationReason) Valid() bool {
	for _, known := range ModerationReasons {
		if r == known {
			return true
		}
	}
	return false
}

// Role is a capability granted by the identity provider.
type Role string

const (
	RoleAdmin     Role = "Admin"
	RoleModerator Role = "Moderator"
)
