package onboarding_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/PIUMYOMIN/ekaro-sub002/internal/apitest"
	"github.com/PIUMYOMIN/ekaro-sub002/internal/domain"
	"github.com/PIUMYOMIN/ekaro-sub002/internal/onboarding"
	"github.com/PIUMYOMIN/ekaro-sub002/internal/remote"
)

func newOnboardingFixture(t *testing.T, token string) (*apitest.API, *onboarding.Controller, *onboarding.FileStore) {
	t.Helper()

	api := apitest.New()
	api.BusinessTypes = []domain.BusinessType{
		{
			Slug:         "private-company",
			NameEN:       "Private Company",
			IsIndividual: false,
			DocumentRequirements: []domain.DocumentRequirement{
				{Type: "business_license", Label: "Business License", Required: true},
				{Type: "owner_id", Label: "Owner ID", Required: true},
				{Type: "tax_certificate", Label: "Tax Certificate", Required: false},
			},
		},
		{Slug: "individual", NameEN: "Individual", IsIndividual: true},
	}

	server := httptest.NewServer(api.Router())
	t.Cleanup(server.Close)

	client := remote.NewClient(server.URL, 5*time.Second, remote.NewStaticTokenSource(token), zap.NewNop())
	store := onboarding.NewFileStore(t.TempDir())
	ctrl := onboarding.NewController(client, store, onboarding.Options{}, zap.NewNop())
	return api, ctrl, store
}

func TestFullWizardAgainstLiveContract(t *testing.T) {
	api, ctrl, store := newOnboardingFixture(t, "")
	ctx := context.Background()

	require.NoError(t, ctrl.Initialize(ctx))
	require.Equal(t, onboarding.StepStoreBasic, ctrl.CurrentStep())
	require.InDelta(t, 20, ctrl.Progress(), 0.01)

	// The store-basic form offers the full type list for selection.
	types, err := ctrl.AvailableBusinessTypes(ctx)
	require.NoError(t, err)
	require.Len(t, types, 2)

	// Step 1: store basics, choosing a non-individual business type.
	result := ctrl.SubmitStep(ctx, onboarding.StepStoreBasic, map[string]string{
		"store_name":    "Golden Paddy Trading",
		"business_type": "private-company",
		"contact_email": "owner@goldenpaddy.test",
		"contact_phone": "+95911111111",
	})
	require.True(t, result.Success, "store-basic failed: %+v", result)
	require.Equal(t, onboarding.StepBusinessDetails, result.NextStep)
	bt := ctrl.BusinessType()
	require.NotNil(t, bt)
	require.False(t, bt.IsIndividual)

	// Step 2: registration fields are mandatory for a company.
	result = ctrl.SubmitStep(ctx, onboarding.StepBusinessDetails, map[string]string{})
	require.False(t, result.Success)
	require.Contains(t, result.FieldErrors, "business_registration_number")

	result = ctrl.SubmitStep(ctx, onboarding.StepBusinessDetails, map[string]string{
		"business_registration_number": "REG-2026-0042",
		"tax_id":                       "TIN-778899",
	})
	require.True(t, result.Success, "business-details failed: %+v", result)

	// Step 3: address.
	result = ctrl.SubmitStep(ctx, onboarding.StepAddress, map[string]string{
		"address": "12 Strand Road",
		"city":    "Yangon",
		"state":   "Yangon Region",
		"country": "MM",
	})
	require.True(t, result.Success, "address failed: %+v", result)
	require.Equal(t, onboarding.StepDocuments, ctrl.CurrentStep())

	// Step 4: both required documents, one deleted and re-uploaded.
	result = ctrl.SubmitStep(ctx, onboarding.StepDocuments, nil)
	require.False(t, result.Success)
	require.Len(t, result.FieldErrors, 2)

	_, err = ctrl.UploadDocument(ctx, "business_license", "license.pdf", strings.NewReader("license-bytes"))
	require.NoError(t, err)
	_, err = ctrl.UploadDocument(ctx, "owner_id", "id.pdf", strings.NewReader("id-bytes"))
	require.NoError(t, err)

	require.NoError(t, ctrl.DeleteDocument(ctx, "owner_id"))
	result = ctrl.SubmitStep(ctx, onboarding.StepDocuments, nil)
	require.False(t, result.Success, "deleted required document must block the step")

	_, err = ctrl.UploadDocument(ctx, "owner_id", "id-v2.pdf", strings.NewReader("id-bytes"))
	require.NoError(t, err)

	result = ctrl.SubmitStep(ctx, onboarding.StepDocuments, nil)
	require.True(t, result.Success, "documents failed: %+v", result)
	require.Equal(t, onboarding.StepReview, ctrl.CurrentStep())

	// Step 5: terminal submit clears the durable cache.
	result = ctrl.SubmitStep(ctx, onboarding.StepReview, nil)
	require.True(t, result.Success, "review failed: %+v", result)
	require.Equal(t, onboarding.StepComplete, ctrl.CurrentStep())
	require.InDelta(t, 100, ctrl.Progress(), 0.01)

	cached, err := store.Load()
	require.NoError(t, err)
	require.Nil(t, cached, "durable cache must be gone after completion")

	require.Equal(t, "complete", api.Onboarding.CurrentStep)
}

func TestResumeFromServerStateAgainstLiveContract(t *testing.T) {
	api, ctrl, _ := newOnboardingFixture(t, "")
	ctx := context.Background()

	bt := api.BusinessTypes[0]
	api.Onboarding.CurrentStep = "address"
	api.Onboarding.BusinessType = &bt

	require.NoError(t, ctrl.Initialize(ctx))
	require.Equal(t, onboarding.StepAddress, ctrl.CurrentStep())
	require.NotNil(t, ctrl.BusinessType())
	require.Equal(t, "private-company", ctrl.BusinessType().Slug)
}

func TestDocumentRequirementsRefreshAgainstLiveContract(t *testing.T) {
	api, ctrl, _ := newOnboardingFixture(t, "")
	ctx := context.Background()

	bt := api.BusinessTypes[0]
	api.Onboarding.CurrentStep = "documents"
	api.Onboarding.BusinessType = &bt
	api.Onboarding.Documents["business_license"] = domain.UploadedDocument{
		Uploaded: true, URL: "https://cdn.ekaro.test/old-license.pdf", Name: "old-license.pdf",
	}

	require.NoError(t, ctrl.Initialize(ctx))
	require.NoError(t, ctrl.RefreshDocumentRequirements(ctx))

	uploaded := ctrl.UploadedDocuments()
	require.Contains(t, uploaded, "business_license")
	require.True(t, uploaded["business_license"].Uploaded)
}

func TestUnauthenticatedSessionAgainstLiveContract(t *testing.T) {
	api, ctrl, _ := newOnboardingFixture(t, "wrong-token")
	api.RequireToken = "right-token"

	err := ctrl.Initialize(context.Background())
	require.Error(t, err)
	require.True(t, remote.IsAuthError(err))
}
