package models

import "time"

// TemplateKind identifies the lifecycle event a template is written for.
type TemplateKind string

const (
	TemplateJobPosting      TemplateKind = "jobPosting"
	TemplateRoundCompletion TemplateKind = "roundCompletion"
	TemplateFinalSelection  TemplateKind = "finalSelection"
)

// TemplateKinds lists the kinds in display order.
var TemplateKinds = []TemplateKind{TemplateJobPosting, TemplateRoundCompletion, TemplateFinalSelection}

// IsValid reports whether k is a known template kind.
func (k TemplateKind) IsValid() bool {
	for _, known := range TemplateKinds {
		if k == known {
			return true
		}
	}
	return false
}

// TemplateField names an editable part of a template.
type TemplateField string

const (
	TemplateFieldSubject TemplateField = "subject"
	TemplateFieldBody    TemplateField = "body"
)

// NotificationTemplate is the editable subject/body for one kind. Placeholders
// such as [Job Title] are plain text.
type NotificationTemplate struct {
	Kind     TemplateKind `json:"kind"`
	Subject  string       `json:"subject"`
	Body     string       `json:"body"`
	Editable bool         `json:"editable"`
}

// DispatchAction says why a notification was handed to the sink.
type DispatchAction string

const (
	DispatchSend    DispatchAction = "send"
	DispatchPreview DispatchAction = "preview"
	DispatchCopy    DispatchAction = "copy"
)

// Notification is what the sink receives. Delivery success is never reported
// back to the pipeline.
type Notification struct {
	ID        string         `json:"id"`
	Kind      TemplateKind   `json:"kind"`
	Action    DispatchAction `json:"action"`
	Subject   string         `json:"subject"`
	Body      string         `json:"body"`
	Reference string         `json:"reference,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
