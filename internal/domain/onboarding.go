package domain

// BusinessType describes a seller business classification and the document
// set it requires during onboarding.
type BusinessType struct {
	ID                   ID                    `json:"id"`
	Slug                 string                `json:"slug"`
	NameEN               string                `json:"name_en"`
	IsIndividual         bool                  `json:"is_individual"`
	DocumentRequirements []DocumentRequirement `json:"document_requirements"`
}

// DocumentRequirement is one document slot a business type demands
type DocumentRequirement struct {
	Type     string `json:"type"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
}

// UploadedDocument records a document the seller has already uploaded
type UploadedDocument struct {
	Uploaded bool   `json:"uploaded"`
	URL      string `json:"url"`
	Name     string `json:"name"`
}

// OnboardingStatus is the server's authoritative view of a seller's
// onboarding progress.
type OnboardingStatus struct {
	CurrentStep        string        `json:"current_step"`
	ProgressPercentage float64       `json:"progress_percentage"`
	BusinessTypeInfo   *BusinessType `json:"business_type_info"`
}

// DocumentRequirementsResponse is returned by the document-requirements
// endpoint: the required slots plus what has been uploaded so far.
type DocumentRequirementsResponse struct {
	Requirements      []DocumentRequirement       `json:"requirements"`
	UploadedDocuments map[string]UploadedDocument `json:"uploaded_documents"`
	IsIndividual      bool                        `json:"is_individual"`
	BusinessTypeInfo  *BusinessType               `json:"business_type_info"`
}
