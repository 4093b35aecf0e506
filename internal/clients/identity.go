package clients

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"quickforge/internal/cache"
	"quickforge/internal/models"
)

// IdentityUser is the snapshot of an identity provider account the
// application cares about: plan, usage counter and display identity.
type IdentityUser struct {
	ID        string `json:"id"`
	Plan      string `json:"plan"`
	FreeUsage int    `json:"free_usage"`
	Name      string `json:"name"`
	ImageURL  string `json:"image_url"`
}

// PlanPremium marks accounts exempt from the free usage quota.
const PlanPremium = "premium"

// IdentityClient fetches user records from the identity provider with
// a Redis cache in front, and verifies its signed webhooks.
type IdentityClient struct {
	baseURL       string
	apiKey        string
	webhookSecret string
	rdb           *redis.Client
	http          *http.Client
}

func NewIdentityClient(baseURL, apiKey, webhookSecret string, rdb *redis.Client) *IdentityClient {
	return &IdentityClient{
		baseURL:       baseURL,
		apiKey:        apiKey,
		webhookSecret: webhookSecret,
		rdb:           rdb,
		http:          &http.Client{Timeout: 10 * time.Second},
	}
}

// GetUser returns the user snapshot, served from cache when fresh.
func (ic *IdentityClient) GetUser(ctx context.Context, userID string) (IdentityUser, error) {
	return cache.Aside(ctx, ic.rdb, cache.IdentityKey(userID), cache.IdentityTTL,
		func(ctx context.Context) (IdentityUser, error) {
			return ic.fetchUser(ctx, userID)
		})
}

func (ic *IdentityClient) fetchUser(ctx context.Context, userID string) (IdentityUser, error) {
	var user IdentityUser

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		ic.baseURL+"/v1/users/"+url.PathEscape(userID), nil)
	if err != nil {
		return user, models.NewInternalError(err)
	}
	req.Header.Set("Authorization", "Bearer "+ic.apiKey)

	resp, err := ic.http.Do(req)
	if err != nil {
		return user, models.NewDependencyError("identity provider request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return user, models.NewNotFoundError("user")
	}
	if resp.StatusCode != http.StatusOK {
		return user, models.NewDependencyError(
			fmt.Sprintf("identity provider returned status %d", resp.StatusCode), nil)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return user, models.NewDependencyError("identity provider response read failed", err)
	}
	if err := json.Unmarshal(raw, &user); err != nil {
		return user, models.NewParseError("identity provider returned malformed response", err)
	}
	return user, nil
}

// SetFreeUsage writes the user's usage counter back to the identity
// provider and drops the cached snapshot.
func (ic *IdentityClient) SetFreeUsage(ctx context.Context, userID string, usage int) error {
	body := strings.NewReader(fmt.Sprintf(`{"free_usage":%d}`, usage))
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch,
		ic.baseURL+"/v1/users/"+url.PathEscape(userID)+"/metadata", body)
	if err != nil {
		return models.NewInternalError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+ic.apiKey)

	resp, err := ic.http.Do(req)
	if err != nil {
		return models.NewDependencyError("identity provider request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return models.NewDependencyError(
			fmt.Sprintf("identity provider returned status %d", resp.StatusCode), nil)
	}

	cache.Invalidate(ctx, ic.rdb, cache.IdentityKey(userID))
	return nil
}

// webhookTolerance bounds the accepted clock skew on webhook timestamps.
const webhookTolerance = 5 * time.Minute

// VerifyWebhook checks the identity provider's webhook signature. The
// signed content is "<id>.<timestamp>.<payload>" with an HMAC-SHA256
// key carried base64-encoded after the "whsec_" prefix. The signature
// header may list several space-separated "v1,<base64>" candidates.
func (ic *IdentityClient) VerifyWebhook(id, timestamp, signature string, payload []byte) error {
	if id == "" || timestamp == "" || signature == "" {
		return models.NewUnauthorizedError("missing webhook signature headers")
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return models.NewUnauthorizedError("invalid webhook timestamp")
	}
	if d := time.Since(time.Unix(ts, 0)); d > webhookTolerance || d < -webhookTolerance {
		return models.NewUnauthorizedError("webhook timestamp outside tolerance")
	}

	secret, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(ic.webhookSecret, "whsec_"))
	if err != nil {
		return models.NewInternalError(fmt.Errorf("malformed webhook secret: %w", err))
	}

	mac := hmac.New(sha256.New, secret)
	fmt.Fprintf(mac, "%s.%s.%s", id, timestamp, payload)
	expected := mac.Sum(nil)

	for _, candidate := range strings.Fields(signature) {
		version, sig, found := strings.Cut(candidate, ",")
		if !found || version != "v1" {
			continue
		}
		decoded, err := base64.StdEncoding.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(decoded, expected) {
			return nil
		}
	}
	return models.NewUnauthorizedError("webhook signature mismatch")
}
