package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	config "github.com/crosspost-labs/crosspost/configs"
	"github.com/crosspost-labs/crosspost/internal/models"
	"github.com/crosspost-labs/crosspost/internal/transfer"
	"github.com/crosspost-labs/crosspost/pkg/utils"
	"github.com/stretchr/testify/require"
)

// testSecret is a 32-byte AES key for token encryption in tests.
const testSecret = "0123456789abcdef0123456789abcdef"

func testConfig() config.Config {
	return config.Config{
		MetaAppID:            "meta-app-id",
		MetaAppSecret:        "meta-app-secret",
		FacebookRedirectURI:  "https://app.test/auth/facebook/callback",
		InstagramRedirectURI: "https://app.test/auth/instagram/callback",
		LinkedinClientID:     "li-client-id",
		LinkedinClientSecret: "li-client-secret",
		LinkedinRedirectURI:  "https://app.test/auth/linkedin/callback",
		SecretKey:            testSecret,
	}
}

type accountKey struct {
	userID   int64
	provider string
	kind     string
}

type fakeAccounts struct {
	mu       sync.Mutex
	nextID   int64
	accounts map[accountKey]*models.SocialAccount
	upserts  int
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{accounts: make(map[accountKey]*models.SocialAccount)}
}

func (f *fakeAccounts) Upsert(_ context.Context, sa *models.SocialAccount) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.upserts++
	key := accountKey{sa.UserID, sa.Provider, sa.Kind}
	if existing, ok := f.accounts[key]; ok {
		sa.ID = existing.ID
	} else {
		f.nextID++
		sa.ID = f.nextID
	}
	stored := *sa
	f.accounts[key] = &stored
	return sa.ID, nil
}

func (f *fakeAccounts) GetByKind(_ context.Context, userID int64, provider, kind string) (*models.SocialAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	sa, ok := f.accounts[accountKey{userID, provider, kind}]
	if !ok {
		return nil, nil
	}
	copied := *sa
	return &copied, nil
}

func (f *fakeAccounts) ListByUserID(_ context.Context, userID int64) ([]*models.SocialAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*models.SocialAccount
	for _, sa := range f.accounts {
		if sa.UserID == userID {
			copied := *sa
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeAccounts) RemoveByKind(_ context.Context, userID int64, provider, kind string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.accounts, accountKey{userID, provider, kind})
	return nil
}

func (f *fakeAccounts) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.accounts)
}

// seedAccount stores a connected account with an encrypted token, the way a
// completed callback would.
func seedAccount(t *testing.T, f *fakeAccounts, userID int64, provider, kind, accountID, token string) {
	t.Helper()

	encrypted, err := utils.Encrypt([]byte(token), []byte(testSecret))
	require.NoError(t, err)

	_, err = f.Upsert(context.Background(), &models.SocialAccount{
		UserID:      userID,
		Provider:    provider,
		Kind:        kind,
		AccountID:   accountID,
		AccessToken: encrypted,
	})
	require.NoError(t, err)
}

type fakePosts struct {
	mu     sync.Mutex
	nextID int64
	posts  []*models.Post
}

func (f *fakePosts) Create(_ context.Context, post *models.Post) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	stored := *post
	stored.ID = f.nextID
	f.posts = append(f.posts, &stored)
	return stored.ID, nil
}

func (f *fakePosts) GetByID(_ context.Context, id int64) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, p := range f.posts {
		if p.ID == id {
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakePosts) GetByUserID(_ context.Context, userID int64) ([]*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*models.Post
	for _, p := range f.posts {
		if p.UserID == userID {
			copied := *p
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakePosts) CheckByUserID(_ context.Context, postID, userID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, p := range f.posts {
		if p.ID == postID && p.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePosts) Remove(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, p := range f.posts {
		if p.ID == id {
			f.posts = append(f.posts[:i], f.posts[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeStates struct {
	mu     sync.Mutex
	states map[int64]string
}

func newFakeStates() *fakeStates {
	return &fakeStates{states: make(map[int64]string)}
}

func (f *fakeStates) Set(_ context.Context, userID int64, state string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states[userID] = state
	return nil
}

func (f *fakeStates) Consume(_ context.Context, userID int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	state := f.states[userID]
	delete(f.states, userID)
	return state, nil
}

// stubPublisher records call order and returns a canned outcome.
type stubPublisher struct {
	name   string
	order  *[]string
	result *transfer.PublishResult
	err    error
}

func (p *stubPublisher) Publish(_ context.Context, _ int64, _, _ string) (*transfer.PublishResult, error) {
	if p.order != nil {
		*p.order = append(*p.order, p.name)
	}
	if p.err != nil {
		return nil, p.err
	}
	return p.result, nil
}

type fakeUploader struct {
	url         string
	contentType string
	calls       int
}

func (f *fakeUploader) Upload(_ context.Context, _ []byte, contentType string) (string, error) {
	f.calls++
	f.contentType = contentType
	return f.url, nil
}

// failingTransport fails the test on any outbound HTTP call.
type failingTransport struct {
	t     *testing.T
	calls int
}

func (ft *failingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	ft.calls++
	ft.t.Errorf("unexpected outbound call to %s", r.URL)
	return nil, errors.New("unexpected outbound call")
}
