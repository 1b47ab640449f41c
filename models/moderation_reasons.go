package models

// ModerationReasonLabel pairs a reason code with the text shown to readers.
type ModerationReasonLabel struct {
	Code        ModerationReason `json:"code"`
	Description string           `json:"description"`
}

// moderationReasonDescriptions is display data only; codes without an entry render as the code itself.
var moderationReasonDescriptions = map[ModerationReason]string{
	ReasonPolitical:   "Political Propaganda",
	ReasonLanguage:    "Offensive Language",
	ReasonDrugs:       "Drug References",
	ReasonThreatening: "Threatening Speech",
	ReasonSexual:      "Sexual Content",
	ReasonHateSpeech:  "Hate Speech",
	ReasonShaming:     "Targeted Shaming",
}

// DescribeModerationReason returns the display string for a reason code.
func DescribeModerationReason(r ModerationReason) string {
	if d, ok := moderationReasonDescriptions[r]; ok {
		return d
	}
	return string(r)
}

// ModerationReasonLabels returns every reason in declaration order with its display string.
func ModerationReasonLabels() []ModerationReasonLabel {
	labels := make([]ModerationReasonLabel, 0, len(ModerationReasons))
	for _, r := range ModerationReasons {
		labels = append(labels, ModerationReasonLabel{Code: r, Description: DescribeModerationReason(r)})
	}
	return labels
}
