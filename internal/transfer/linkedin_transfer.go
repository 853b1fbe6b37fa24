package transfer

type LinkedinUserInfo struct {
	Sub     string `json:"sub"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

type UGCText struct {
	Text string `json:"text"`
}

type UGCMedia struct {
	Status      string  `json:"status"`
	Description UGCText `json:"description"`
	Media       string  `json:"media"`
	Title       UGCText `json:"title"`
}

type UGCShareContent struct {
	ShareCommentary    UGCText    `json:"shareCommentary"`
	ShareMediaCategory string     `json:"shareMediaCategory"`
	Media              []UGCMedia `json:"media,omitempty"`
}

type UGCSpecificContent struct {
	ShareContent UGCShareContent `json:"com.linkedin.ugc.ShareContent"`
}

type UGCVisibility struct {
	MemberNetworkVisibility string `json:"com.linkedin.ugc.MemberNetworkVisibility"`
}

type UGCShareRequest struct {
	Author          string             `json:"author"`
	LifecycleState  string             `json:"lifecycleState"`
	SpecificContent UGCSpecificContent `json:"specificContent"`
	Visibility      UGCVisibility      `json:"visibility"`
}

type UGCShareResponse struct {
	ID               string `json:"id"`
	ServiceErrorCode *int   `json:"serviceErrorCode"`
	Message          string `json:"message"`
}

type RegisterUploadServiceRelationship struct {
	Identifier       string `json:"identifier"`
	RelationshipType string `json:"relationshipType"`
}

type RegisterUploadBody struct {
	Owner                string                              `json:"owner"`
	Recipes              []string                            `json:"recipes"`
	ServiceRelationships []RegisterUploadServiceRelationship `json:"serviceRelationships"`
}

type RegisterUploadRequest struct {
	RegisterUploadRequest RegisterUploadBody `json:"registerUploadRequest"`
}

type RegisterUploadResponse struct {
	Value *struct {
		UploadMechanism struct {
			MediaUploadHTTPRequest struct {
				UploadURL string            `json:"uploadUrl"`
				Headers   map[string]string `json:"headers"`
			} `json:"com.linkedin.digitalmedia.uploading.MediaUploadHttpRequest"`
		} `json:"uploadMechanism"`
		Asset string `json:"asset"`
	} `json:"value"`
}
