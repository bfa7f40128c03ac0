package model

import "strings"

type IssueType string

const (
	IssueTypeLeakingPipe       IssueType = "leaking_pipe"
	IssueTypeBurstPipe         IssueType = "burst_pipe"
	IssueTypeIllegalConnection IssueType = "illegal_connection"
	IssueTypeBrokenMeter       IssueType = "broken_meter"
	IssueTypeOther             IssueType = "other"
)

// DefaultIssueType is preselected on every new form.
const DefaultIssueType = IssueTypeLeakingPipe

// IssueTypes is the selector order shown to reporters.
var IssueTypes = []IssueType{
	IssueTypeLeakingPipe,
	IssueTypeBurstPipe,
	IssueTypeIllegalConnection,
	IssueTypeBrokenMeter,
	IssueTypeOther,
}

var issueTypeLabels = map[IssueType]string{
	IssueTypeLeakingPipe:       "Leaking Pipe",
	IssueTypeBurstPipe:         "Burst Pipe",
	IssueTypeIllegalConnection: "Illegal Connection",
	IssueTypeBrokenMeter:       "Broken Meter",
	IssueTypeOther:             "Other Issue",
}

var issueTypeIcons = map[IssueType]string{
	IssueTypeLeakingPipe:       "💧",
	IssueTypeBurstPipe:         "🚿",
	IssueTypeIllegalConnection: "⚠️",
	IssueTypeBrokenMeter:       "🔧",
	IssueTypeOther:             "📋",
}

func (t IssueType) Valid() bool {
	_, ok := issueTypeLabels[t]
	return ok
}

func (t IssueType) Label() string {
	return issueTypeLabels[t]
}

func (t IssueType) Icon() string {
	return issueTypeIcons[t]
}

// ParseIssueType maps blank input to the default. Unknown values are returned
// as-is and fail Valid.
func ParseIssueType(raw string) IssueType {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return DefaultIssueType
	}
	return IssueType(raw)
}

type IssueTypeOption struct {
	Value IssueType `json:"value"`
	Label string    `json:"label"`
	Icon  string    `json:"icon"`
}

func IssueTypeOptions() []IssueTypeOption {
	options := make([]IssueTypeOption, 0, len(IssueTypes))
	for _, t := range IssueTypes {
		options = append(options, IssueTypeOption{Value: t, Label: t.Label(), Icon: t.Icon()})
	}
	return options
}
