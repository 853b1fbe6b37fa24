package transfer

// Graph API response shapes shared by the Facebook and Instagram flows.
// Any payload may carry an "error" object instead of its normal fields.

type MetaError struct {
	Message      string `json:"message"`
	Type         string `json:"type"`
	Code         int    `json:"code"`
	ErrorSubcode int    `json:"error_subcode"`
	FbtraceID    string `json:"fbtrace_id"`
}

type MetaTokenResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	ExpiresIn   int64      `json:"expires_in"`
	Error       *MetaError `json:"error"`
}

type MetaUser struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Error *MetaError `json:"error"`
}

type MetaIGAccount struct {
	ID string `json:"id"`
}

type MetaPage struct {
	ID                       string         `json:"id"`
	Name                     string         `json:"name"`
	AccessToken              string         `json:"access_token"`
	InstagramBusinessAccount *MetaIGAccount `json:"instagram_business_account"`
}

type MetaPages struct {
	Data  []MetaPage `json:"data"`
	Error *MetaError `json:"error"`
}

type MetaIGUser struct {
	ID       string     `json:"id"`
	Username string     `json:"username"`
	Error    *MetaError `json:"error"`
}

// MetaPostResponse covers /feed (id), /photos (post_id) and the two
// Instagram media endpoints (id).
type MetaPostResponse struct {
	ID     string     `json:"id"`
	PostID string     `json:"post_id"`
	Error  *MetaError `json:"error"`
}

type MetaPermalink struct {
	// permalink_url for Facebook posts, permalink for Instagram media.
	PermalinkURL string     `json:"permalink_url"`
	Permalink    string     `json:"permalink"`
	Error        *MetaError `json:"error"`
}
