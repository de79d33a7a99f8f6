package onboarding

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/PIUMYOMIN/ekaro-sub002/internal/domain"
	"github.com/PIUMYOMIN/ekaro-sub002/internal/remote"
)

const (
	msgNetworkFailure = "Could not reach the server. Please check your connection and try again."
	msgSessionExpired = "Your session has expired. Please sign in again."
)

// SubmitResult is the outcome of a step submission
type SubmitResult struct {
	Success bool
	// NextStep is the step to navigate to after a successful submission.
	NextStep Step
	// Redirect is set instead when a prerequisite is missing and the user
	// must be sent back to an earlier step.
	Redirect Step
	// FieldErrors maps field names to messages for validation failures.
	FieldErrors map[string]string
	Message     string
}

// Options configures an onboarding Controller
type Options struct {
	// OnAuthExpired is invoked when the API reports the session is gone, so
	// the embedding UI can redirect to re-authentication.
	OnAuthExpired func()
}

// Controller drives the 5-step seller onboarding wizard. The current step
// only advances on a successful server acknowledgement; backward moves are
// free. Form data is mirrored to the durable store on every change so a
// reload resumes mid-wizard, with the server's status as tie-breaker.
type Controller struct {
	svc    remote.Service
	store  Store
	logger *zap.Logger
	opts   Options

	mu           sync.Mutex
	currentStep  Step
	formData     map[string]string
	businessType *domain.BusinessType
	uploadedDocs map[string]domain.UploadedDocument
}

func NewController(svc remote.Service, store Store, opts Options, logger *zap.Logger) *Controller {
	return &Controller{
		svc:          svc,
		store:        store,
		logger:       logger,
		opts:         opts,
		currentStep:  StepStoreBasic,
		formData:     make(map[string]string),
		uploadedDocs: make(map[string]domain.UploadedDocument),
	}
}

// Initialize restores locally cached form data and reconciles it with the
// server's authoritative onboarding status. When the server reports a step
// strictly behind the local cache, the cache is stale and is discarded; when
// the server is further along, the wizard jumps forward. A server the client
// cannot reach leaves the local view in place and returns the error.
func (c *Controller) Initialize(ctx context.Context) error {
	cached, err := c.store.Load()
	if err != nil {
		c.logger.Warn("Failed to load onboarding cache", zap.Error(err))
	}

	c.mu.Lock()
	if cached != nil {
		c.formData = cached.Fields
		if cached.Step != "" {
			c.currentStep = cached.Step
		}
	}
	localStep := c.currentStep
	c.mu.Unlock()

	status, err := remote.FetchOnboardingStatus(ctx, c.svc)
	if err != nil {
		if remote.IsAuthError(err) && c.opts.OnAuthExpired != nil {
			c.opts.OnAuthExpired()
		}
		return fmt.Errorf("failed to fetch onboarding status: %w", err)
	}

	serverStep := StepStoreBasic
	if parsed, ok := ParseStep(status.CurrentStep); ok {
		serverStep = parsed
	}

	c.mu.Lock()
	if serverStep.Before(localStep) {
		// Local cache claims progress the server never acknowledged.
		c.formData = make(map[string]string)
	}
	c.currentStep = serverStep
	if status.BusinessTypeInfo != nil {
		c.businessType = status.BusinessTypeInfo
	}
	c.mu.Unlock()

	if serverStep.Before(localStep) {
		if err := c.store.Clear(); err != nil {
			c.logger.Warn("Failed to clear stale onboarding cache", zap.Error(err))
		}
		c.persist()
	}

	c.logger.Info("Onboarding initialized",
		zap.String("local_step", string(localStep)),
		zap.String("server_step", string(serverStep)),
	)
	return nil
}

// AvailableBusinessTypes lists the business types the store-basic form
// offers for selection.
func (c *Controller) AvailableBusinessTypes(ctx context.Context) ([]domain.BusinessType, error) {
	types, err := remote.FetchBusinessTypes(ctx, c.svc)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch business types: %w", err)
	}
	return types, nil
}

// SelectBusinessType fetches and caches the descriptor for the chosen
// business type; it gates required fields and documents downstream.
func (c *Controller) SelectBusinessType(ctx context.Context, slug string) error {
	businessType, err := remote.FetchBusinessType(ctx, c.svc, slug)
	if err != nil {
		return fmt.Errorf("failed to fetch business type %s: %w", slug, err)
	}

	c.mu.Lock()
	c.businessType = businessType
	c.formData["business_type"] = slug
	c.mu.Unlock()

	c.persist()
	return nil
}

// SetField records one form field change and persists it immediately, so a
// reload mid-wizard loses nothing.
func (c *Controller) SetField(name, value string) {
	c.mu.Lock()
	c.formData[name] = value
	c.mu.Unlock()

	c.persist()
}

// SubmitStep posts data to the step's dedicated endpoint. On success the
// data is merged into the accumulated form state and the wizard advances to
// the fixed next step. Validation failures return field errors without
// moving; transport failures return a generic retryable message.
func (c *Controller) SubmitStep(ctx context.Context, step Step, data map[string]string) SubmitResult {
	endpoint, ok := stepEndpoints[step]
	if !ok {
		return SubmitResult{Message: fmt.Sprintf("unknown onboarding step: %s", step)}
	}

	c.mu.Lock()
	businessType := c.businessType
	uploaded := c.uploadedDocs
	current := c.currentStep
	c.mu.Unlock()

	// Advancing is only possible by submitting the step the wizard is on;
	// a submission for a later step is sent back to the current one.
	if current.Before(step) {
		return SubmitResult{
			Redirect: current,
			Message:  "Complete the current step first",
		}
	}

	// Reaching a gated step without its prerequisite redirects backward
	// instead of rendering a broken form.
	if step != StepStoreBasic && businessType == nil {
		return SubmitResult{
			Redirect: StepStoreBasic,
			Message:  "Choose a business type before continuing",
		}
	}

	if fieldErrors := validateStep(step, data, businessType, uploaded); len(fieldErrors) > 0 {
		return SubmitResult{FieldErrors: fieldErrors, Message: "Please correct the highlighted fields"}
	}

	body := make(map[string]string, len(data))
	for k, v := range data {
		body[k] = v
	}

	envelope, err := c.svc.Post(ctx, endpoint, body)
	if err != nil {
		return c.submitFailure(step, err)
	}

	c.mu.Lock()
	for k, v := range data {
		c.formData[k] = v
	}
	next := step.Next()
	c.currentStep = next
	c.mu.Unlock()

	if step == StepReview {
		// Terminal submission: no stale resume data may survive it.
		c.clearState()
		c.logger.Info("Onboarding submitted")
		return SubmitResult{Success: true, NextStep: StepComplete, Message: envelope.Message}
	}

	c.persist()

	if step == StepStoreBasic {
		if slug := strings.TrimSpace(data["business_type"]); slug != "" {
			if businessType == nil || businessType.Slug != slug {
				if err := c.SelectBusinessType(ctx, slug); err != nil {
					// Recoverable: the descriptor is re-fetched on demand.
					c.logger.Warn("Failed to fetch business type info", zap.Error(err))
				}
			}
		}
	}

	c.logger.Info("Onboarding step completed",
		zap.String("step", string(step)),
		zap.String("next", string(next)),
	)
	return SubmitResult{Success: true, NextStep: next, Message: envelope.Message}
}

func (c *Controller) submitFailure(step Step, err error) SubmitResult {
	var validationErr *remote.ValidationError
	switch {
	case errors.As(err, &validationErr):
		fieldErrors := make(map[string]string, len(validationErr.Fields))
		for field, messages := range validationErr.Fields {
			fieldErrors[field] = strings.Join(messages, ", ")
		}
		message := validationErr.Message
		if message == "" {
			message = validationErr.FieldSummary()
		}
		return SubmitResult{FieldErrors: fieldErrors, Message: message}

	case remote.IsAuthError(err):
		if c.opts.OnAuthExpired != nil {
			c.opts.OnAuthExpired()
		}
		return SubmitResult{Message: msgSessionExpired}

	case remote.IsNetworkError(err):
		c.logger.Warn("Onboarding submission failed",
			zap.String("step", string(step)), zap.Error(err))
		return SubmitResult{Message: msgNetworkFailure}

	default:
		c.logger.Error("Onboarding submission rejected",
			zap.String("step", string(step)), zap.Error(err))
		return SubmitResult{Message: err.Error()}
	}
}

// Back moves one step backward without any server call. It is a no-op on
// the first step.
func (c *Controller) Back() Step {
	c.mu.Lock()
	idx := c.currentStep.Index()
	if idx > 0 {
		c.currentStep = Steps[idx-1]
	}
	step := c.currentStep
	c.mu.Unlock()

	c.persist()
	return step
}

// GoTo jumps to an earlier step. Forward jumps are refused; advancing is
// only possible through successful submissions.
func (c *Controller) GoTo(step Step) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.currentStep.Before(step) {
		return fmt.Errorf("cannot skip forward to %s from %s", step, c.currentStep)
	}
	if step.Index() < 0 {
		return fmt.Errorf("unknown step: %s", step)
	}
	c.currentStep = step
	return nil
}

// RefreshDocumentRequirements pulls the authoritative requirement list and
// the server's record of already-uploaded documents.
func (c *Controller) RefreshDocumentRequirements(ctx context.Context) error {
	resp, err := remote.FetchDocumentRequirements(ctx, c.svc)
	if err != nil {
		return fmt.Errorf("failed to fetch document requirements: %w", err)
	}

	c.mu.Lock()
	if resp.BusinessTypeInfo != nil {
		c.businessType = resp.BusinessTypeInfo
	}
	if c.businessType != nil && len(resp.Requirements) > 0 {
		c.businessType.DocumentRequirements = resp.Requirements
	}
	if resp.UploadedDocuments != nil {
		c.uploadedDocs = resp.UploadedDocuments
	}
	c.mu.Unlock()
	return nil
}

// UploadDocument sends one document as multipart form data. The uploaded
// set only changes after the server confirms; a failed upload leaves prior
// state untouched.
func (c *Controller) UploadDocument(ctx context.Context, documentType, fileName string, file io.Reader) (string, error) {
	fields := map[string]string{"document_type": documentType}
	envelope, err := c.svc.PostMultipart(ctx, "/seller/onboarding/documents", fields, "document", fileName, file)
	if err != nil {
		if remote.IsAuthError(err) && c.opts.OnAuthExpired != nil {
			c.opts.OnAuthExpired()
		}
		return "", fmt.Errorf("failed to upload %s: %w", documentType, err)
	}

	var payload struct {
		URL string `json:"url"`
	}
	if err := envelope.DecodeData(&payload); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}

	c.mu.Lock()
	c.uploadedDocs[documentType] = domain.UploadedDocument{
		Uploaded: true,
		URL:      payload.URL,
		Name:     fileName,
	}
	c.mu.Unlock()

	c.logger.Info("Document uploaded", zap.String("type", documentType))
	return payload.URL, nil
}

// DeleteDocument removes an uploaded document; the local record goes away
// only after the server confirms.
func (c *Controller) DeleteDocument(ctx context.Context, documentType string) error {
	if _, err := c.svc.Delete(ctx, "/seller/documents/"+documentType); err != nil {
		return fmt.Errorf("failed to delete %s: %w", documentType, err)
	}

	c.mu.Lock()
	delete(c.uploadedDocs, documentType)
	c.mu.Unlock()

	c.logger.Info("Document deleted", zap.String("type", documentType))
	return nil
}

// ClearOnboardingData wipes the durable cache and resets in-memory state.
// Called only after the final successful submission, or explicitly when a
// seller abandons onboarding.
func (c *Controller) ClearOnboardingData() {
	c.clearState()
}

func (c *Controller) clearState() {
	c.mu.Lock()
	c.formData = make(map[string]string)
	c.uploadedDocs = make(map[string]domain.UploadedDocument)
	c.mu.Unlock()

	if err := c.store.Clear(); err != nil {
		c.logger.Warn("Failed to clear onboarding cache", zap.Error(err))
	}
}

func (c *Controller) persist() {
	c.mu.Lock()
	state := &cachedState{
		Step:   c.currentStep,
		Fields: make(map[string]string, len(c.formData)),
	}
	for k, v := range c.formData {
		state.Fields[k] = v
	}
	c.mu.Unlock()

	if err := c.store.Save(state); err != nil {
		c.logger.Warn("Failed to persist onboarding cache", zap.Error(err))
	}
}

// CurrentStep returns the wizard's position.
func (c *Controller) CurrentStep() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentStep
}

// Progress returns the wizard progress percentage.
func (c *Controller) Progress() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentStep.Progress()
}

// FormData returns a copy of the accumulated form fields.
func (c *Controller) FormData() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]string, len(c.formData))
	for k, v := range c.formData {
		out[k] = v
	}
	return out
}

// BusinessType returns the cached authoritative business type descriptor,
// nil until one has been chosen.
func (c *Controller) BusinessType() *domain.BusinessType {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.businessType
}

// UploadedDocuments returns a copy of the uploaded document records.
func (c *Controller) UploadedDocuments() map[string]domain.UploadedDocument {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]domain.UploadedDocument, len(c.uploadedDocs))
	for k, v := range c.uploadedDocs {
		out[k] = v
	}
	return out
}
