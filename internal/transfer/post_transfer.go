package transfer

// PostCreation is the submitted form: message text, an optional image URL
// (ignored when a file is uploaded instead) and the provider names to
// publish to.
type PostCreation struct {
	Message   string
	ImageURL  string
	Platforms []string
}

// PublishResult is one provider's successful outcome. Permalink may be empty
// when the follow-up lookup did not return one; that is not a failure.
type PublishResult struct {
	PostID    string `json:"id"`
	Permalink string `json:"permalink"`
}

// PublishSummary is the aggregate reported back to the caller after all
// selected providers have been attempted.
type PublishSummary struct {
	PostID       int64    `json:"post_id,omitempty"`
	Published    []string `json:"published"`
	Warnings     []string `json:"warnings,omitempty"`
	SavedLocally bool     `json:"saved_locally"`
}
