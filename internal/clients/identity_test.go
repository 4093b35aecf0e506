package clients

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickforge/internal/models"
)

func TestGetUser_CachesSecondLookup(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/v1/users/user_abc", r.URL.Path)
		w.Write([]byte(`{"id":"user_abc","plan":"free","free_usage":3,"name":"Ada","image_url":"https://img/a.png"}`))
	}))
	defer srv.Close()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ic := NewIdentityClient(srv.URL, "key", "whsec_x", rdb)

	for i := 0; i < 2; i++ {
		user, err := ic.GetUser(context.Background(), "user_abc")
		require.NoError(t, err)
		assert.Equal(t, "free", user.Plan)
		assert.Equal(t, 3, user.FreeUsage)
	}
	assert.Equal(t, 1, calls)
}

func TestSetFreeUsage_InvalidatesCache(t *testing.T) {
	usage := 3
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPatch {
			usage = 4
			w.WriteHeader(http.StatusNoContent)
			return
		}
		fmt.Fprintf(w, `{"id":"user_abc","plan":"free","free_usage":%d}`, usage)
	}))
	defer srv.Close()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ic := NewIdentityClient(srv.URL, "key", "whsec_x", rdb)

	user, err := ic.GetUser(context.Background(), "user_abc")
	require.NoError(t, err)
	assert.Equal(t, 3, user.FreeUsage)

	require.NoError(t, ic.SetFreeUsage(context.Background(), "user_abc", 4))

	user, err = ic.GetUser(context.Background(), "user_abc")
	require.NoError(t, err)
	assert.Equal(t, 4, user.FreeUsage, "stale snapshot must be dropped after usage write")
}

func TestGetUser_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	ic := NewIdentityClient(srv.URL, "key", "whsec_x", nil)
	_, err := ic.GetUser(context.Background(), "ghost")
	assert.Equal(t, models.CodeNotFound, appErrCode(t, err))
}

func signWebhook(t *testing.T, secret, id, ts string, payload []byte) string {
	t.Helper()
	key, err := base64.StdEncoding.DecodeString(secret)
	require.NoError(t, err)
	mac := hmac.New(sha256.New, key)
	fmt.Fprintf(mac, "%s.%s.%s", id, ts, payload)
	return "v1," + base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhook(t *testing.T) {
	rawSecret := base64.StdEncoding.EncodeToString([]byte("super-secret-key"))
	ic := NewIdentityClient("http://unused", "key", "whsec_"+rawSecret, nil)

	payload := []byte(`{"type":"user.updated","data":{"id":"user_abc"}}`)
	id := "msg_1"
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	sig := signWebhook(t, rawSecret, id, ts, payload)

	t.Run("valid signature", func(t *testing.T) {
		assert.NoError(t, ic.VerifyWebhook(id, ts, sig, payload))
	})

	t.Run("multiple candidates", func(t *testing.T) {
		assert.NoError(t, ic.VerifyWebhook(id, ts, "v1,Zm9v "+sig, payload))
	})

	t.Run("tampered payload", func(t *testing.T) {
		err := ic.VerifyWebhook(id, ts, sig, []byte(`{"type":"user.deleted"}`))
		assert.Equal(t, models.CodeUnauthorized, appErrCode(t, err))
	})

	t.Run("stale timestamp", func(t *testing.T) {
		old := strconv.FormatInt(time.Now().Add(-time.Hour).Unix(), 10)
		oldSig := signWebhook(t, rawSecret, id, old, payload)
		err := ic.VerifyWebhook(id, old, oldSig, payload)
		assert.Equal(t, models.CodeUnauthorized, appErrCode(t, err))
	})

	t.Run("missing headers", func(t *testing.T) {
		err := ic.VerifyWebhook("", ts, sig, payload)
		assert.Equal(t, models.CodeUnauthorized, appErrCode(t, err))
	})
}
