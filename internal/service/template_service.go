package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/placement-api/internal/models"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
)

// UpdateTemplateRequest overwrites one field of a template.
type UpdateTemplateRequest struct {
	Field models.TemplateField `json:"field" validate:"required,oneof=subject body"`
	Value string               `json:"value"`
}

// EditModeRequest toggles edit mode for a template.
type EditModeRequest struct {
	Editable *bool `json:"editable" validate:"required"`
}

// DispatchRequest renders a template into a notification.
type DispatchRequest struct {
	Kind      models.TemplateKind
	Action    models.DispatchAction
	Reference string
	// Values fills bracketed placeholders such as "[Job Title]". Placeholders
	// without a value stay as written.
	Values map[string]string
	// Appendix is added below the rendered body.
	Appendix string
}

// TemplateService stores the three notification templates and renders them
// for dispatch. All access is serialized by one lock.
type TemplateService struct {
	mu        sync.RWMutex
	templates map[models.TemplateKind]models.NotificationTemplate
	notifier  Notifier
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewTemplateService constructs the store seeded with the default templates.
func NewTemplateService(notifier Notifier, validate *validator.Validate, logger *zap.Logger) *TemplateService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	templates := make(map[models.TemplateKind]models.NotificationTemplate, len(models.TemplateKinds))
	for _, tpl := range DefaultTemplates() {
		templates[tpl.Kind] = tpl
	}
	return &TemplateService{
		templates: templates,
		notifier:  notifier,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// List returns the templates in display order.
func (s *TemplateService) List(_ context.Context) []models.NotificationTemplate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.NotificationTemplate, 0, len(models.TemplateKinds))
	for _, kind := range models.TemplateKinds {
		out = append(out, s.templates[kind])
	}
	return out
}

// Get returns one template.
func (s *TemplateService) Get(_ context.Context, kind models.TemplateKind) (*models.NotificationTemplate, error) {
	if !kind.IsValid() {
		return nil, unknownKind(kind)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	tpl := s.templates[kind]
	return &tpl, nil
}

// SetEditable toggles edit mode for one kind. Other kinds are unaffected and
// the current subject and body are kept as they are.
func (s *TemplateService) SetEditable(_ context.Context, kind models.TemplateKind, req EditModeRequest) (*models.NotificationTemplate, error) {
	if !kind.IsValid() {
		return nil, unknownKind(kind)
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "editable is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tpl := s.templates[kind]
	tpl.Editable = *req.Editable
	s.templates[kind] = tpl
	return &tpl, nil
}

// Update overwrites the subject or body. It does not require edit mode.
func (s *TemplateService) Update(_ context.Context, kind models.TemplateKind, req UpdateTemplateRequest) (*models.NotificationTemplate, error) {
	if !kind.IsValid() {
		return nil, unknownKind(kind)
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "field must be subject or body")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tpl := s.templates[kind]
	switch req.Field {
	case models.TemplateFieldSubject:
		tpl.Subject = req.Value
	case models.TemplateFieldBody:
		tpl.Body = req.Value
	}
	s.templates[kind] = tpl
	s.logger.Debug("template updated", zap.String("kind", string(kind)), zap.String("field", string(req.Field)))
	return &tpl, nil
}

// Copy returns the raw body for the caller's clipboard and records the copy.
func (s *TemplateService) Copy(ctx context.Context, kind models.TemplateKind) (string, error) {
	tpl, err := s.Get(ctx, kind)
	if err != nil {
		return "", err
	}
	if _, err := s.Dispatch(ctx, DispatchRequest{Kind: kind, Action: models.DispatchCopy}); err != nil {
		return "", err
	}
	return tpl.Body, nil
}

// SendPreview dispatches the template unrendered as a preview.
func (s *TemplateService) SendPreview(ctx context.Context, kind models.TemplateKind) (*models.Notification, error) {
	return s.Dispatch(ctx, DispatchRequest{Kind: kind, Action: models.DispatchPreview})
}

// Dispatch renders the current template and hands it to the notifier.
func (s *TemplateService) Dispatch(ctx context.Context, req DispatchRequest) (*models.Notification, error) {
	tpl, err := s.Get(ctx, req.Kind)
	if err != nil {
		return nil, err
	}
	if req.Action == "" {
		req.Action = models.DispatchSend
	}
	subject, body := render(tpl.Subject, req.Values), render(tpl.Body, req.Values)
	if req.Appendix != "" {
		body = strings.TrimRight(body, "\n") + "\n\n" + req.Appendix
	}
	notification := models.Notification{
		ID:        uuid.NewString(),
		Kind:      req.Kind,
		Action:    req.Action,
		Subject:   subject,
		Body:      body,
		Reference: req.Reference,
		CreatedAt: s.now(),
	}
	if s.notifier != nil {
		s.notifier.Notify(ctx, notification)
	}
	return &notification, nil
}

func render(text string, values map[string]string) string {
	if len(values) == 0 {
		return text
	}
	pairs := make([]string, 0, len(values)*2)
	for placeholder, value := range values {
		pairs = append(pairs, "["+placeholder+"]", value)
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

func unknownKind(kind models.TemplateKind) error {
	return appErrors.Clone(appErrors.ErrValidation, "unknown template kind "+string(kind))
}

// DefaultTemplates returns the built-in subject and body for every kind.
func DefaultTemplates() []models.NotificationTemplate {
	return []models.NotificationTemplate{
		{
			Kind:    models.TemplateJobPosting,
			Subject: "📢 New Job Post – [Job Title] by [Company Name]",
			Body: `Dear TPO,

A new job has been posted on PlaceNext. Below are the details:

📢 **Job Title:** [Job Name]
🏢 **Company:** [Company Name]
📅 **Application Deadline:** [Date]
📍 **Location:** [Job Location]

🔗 **View Job Details & Applications:** [Portal Link]

Best Regards,
**[Company Name]**`,
		},
		{
			Kind:    models.TemplateRoundCompletion,
			Subject: "🚀 Shortlisted Students for [Job Title] – [Company Name]",
			Body: `Dear TPO,

The following students have been **shortlisted for the next round** of the **[Job Title]** recruitment process.

📢 **Job Title:** [Job Name]
🏢 **Company:** [Company Name]
📅 **Next Round:** [Round Name] on [Date & Time]
📍 **Mode:** [Online/Offline]

🔗 **View Full List & Schedule:** [Portal Link]

Best Regards,
**[Company Name]**`,
		},
		{
			Kind:    models.TemplateFinalSelection,
			Subject: "🎉 Final Selected Students for [Job Title] – [Company Name]",
			Body: `Dear TPO,

We're pleased to announce the **final list of selected students** for the **[Job Title]** position.

📢 **Job Title:** [Job Name]
🏢 **Company:** [Company Name]
👥 **Total Selected:** [Number of Students]
💰 **Package Offered:** [Package Details]

🔗 **Download Complete Report:** [Portal Link]

We thank you for your support throughout the recruitment process.

Best Regards,
**[Company Name]**`,
		},
	}
}
