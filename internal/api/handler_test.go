package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdulachik/threados/internal/config"
	"github.com/abdulachik/threados/internal/db"
	"github.com/abdulachik/threados/internal/insights"
	"github.com/abdulachik/threados/internal/oauth"
	"github.com/abdulachik/threados/internal/posts"
	"github.com/abdulachik/threados/internal/scheduler"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testAPI struct {
	router *gin.Engine
	h      *Handler
	store  *db.Store
	oauth  *oauth.Service
	posts  *posts.Service
}

// newTestAPI wires the handler against a fake Graph API served by graph.
func newTestAPI(t *testing.T, graph http.HandlerFunc, connected bool) *testAPI {
	t.Helper()
	ctx := context.Background()

	server := httptest.NewServer(graph)
	t.Cleanup(server.Close)

	store, err := db.NewStore(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, store.Migrate(ctx))
	t.Cleanup(func() {
		store.Close()
	})

	cfg := config.Default()
	cfg.AppEnv = "test"
	cfg.ThreadsGraphBase = server.URL
	cfg.ThreadsClientID = "client-id"
	cfg.ThreadsClientSecret = "client-secret"
	cfg.FrontendURL = "http://frontend.test"

	oauthSvc := oauth.NewService(store, cfg)
	postSvc := posts.NewService(store, nil)
	capturer := insights.NewCapturer(store)
	sched := scheduler.New(scheduler.Config{
		Credentials: oauthSvc,
		Posts:       postSvc,
		Capturer:    capturer,
	})

	if connected {
		_, err := oauthSvc.Save(ctx, oauth.Grant{
			ThreadsUserID: "42",
			Username:      "demo",
			AccessToken:   "tok",
			Scopes:        "threads_basic",
		})
		require.NoError(t, err)
	}

	h := New(Deps{
		Config:    cfg,
		OAuth:     oauthSvc,
		Posts:     postSvc,
		Insights:  capturer,
		Scheduler: sched,
	})

	return &testAPI{
		router: h.Router(),
		h:      h,
		store:  store,
		oauth:  oauthSvc,
		posts:  postSvc,
	}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func noGraph(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected Graph API call %s %s", r.Method, r.URL.Path)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func TestHealth(t *testing.T) {
	a := newTestAPI(t, noGraph(t), false)

	w := a.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	var body map[string]any
	decodeJSON(t, w, &body)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test", body["env"])
}

func TestRequestID_Propagated(t *testing.T) {
	a := newTestAPI(t, noGraph(t), false)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
}

func TestCORS(t *testing.T) {
	a := newTestAPI(t, noGraph(t), false)

	req := httptest.NewRequest(http.MethodOptions, "/threads/posts", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestNotConnected(t *testing.T) {
	a := newTestAPI(t, noGraph(t), false)

	routes := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "/threads/me", nil},
		{http.MethodGet, "/threads/my-posts", nil},
		{http.MethodPost, "/threads/post", map[string]string{"text": "hello"}},
		{http.MethodDelete, "/threads/post/p1", nil},
		{http.MethodGet, "/threads/post/p1/replies", nil},
		{http.MethodPost, "/threads/reply", map[string]string{"text": "hi", "parent_media_id": "p1"}},
		{http.MethodGet, "/threads/insights/p1", nil},
		{http.MethodPost, "/jobs/insights/run", nil},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			w := a.do(t, rt.method, rt.path, rt.body)
			assert.Equal(t, http.StatusUnauthorized, w.Code)

			var body map[string]string
			decodeJSON(t, w, &body)
			assert.Equal(t, notConnectedDetail, body["detail"])
		})
	}
}

func TestCreatePost(t *testing.T) {
	t.Run("published", func(t *testing.T) {
		a := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			switch r.URL.Path {
			case "/v1.0/42/threads":
				w.Write([]byte(`{"id":"c1"}`))
			case "/v1.0/42/threads_publish":
				w.Write([]byte(`{"id":"p1"}`))
			}
		}, true)

		w := a.do(t, http.MethodPost, "/threads/post", map[string]string{"text": "hello"})
		require.Equal(t, http.StatusOK, w.Code)

		var post postResponse
		decodeJSON(t, w, &post)
		assert.Equal(t, "PUBLISHED", post.Status)
		require.NotNil(t, post.ThreadsMediaID)
		assert.Equal(t, "p1", *post.ThreadsMediaID)
		assert.Nil(t, post.ErrorMessage)
	})

	t.Run("remote rejection returns FAILED record", func(t *testing.T) {
		a := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"message":"Param text is too long"}}`))
		}, true)

		w := a.do(t, http.MethodPost, "/threads/post", map[string]string{"text": "hello"})
		require.Equal(t, http.StatusOK, w.Code)

		var post postResponse
		decodeJSON(t, w, &post)
		assert.Equal(t, "FAILED", post.Status)
		require.NotNil(t, post.ErrorMessage)
		assert.Equal(t, "Threads API Error: Param text is too long", *post.ErrorMessage)
		assert.Nil(t, post.ThreadsMediaID)
	})

	t.Run("validation", func(t *testing.T) {
		a := newTestAPI(t, noGraph(t), true)

		w := a.do(t, http.MethodPost, "/threads/post", map[string]string{})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		w = a.do(t, http.MethodPost, "/threads/post", map[string]string{"text": strings.Repeat("a", 501)})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		list, err := a.posts.List(context.Background(), 10)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestListPosts(t *testing.T) {
	a := newTestAPI(t, noGraph(t), false)
	ctx := context.Background()

	for _, text := range []string{"one", "two", "three"} {
		_, err := a.posts.Create(ctx, text)
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	w := a.do(t, http.MethodGet, "/threads/posts?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list []postResponse
	decodeJSON(t, w, &list)
	require.Len(t, list, 2)
	assert.Equal(t, "three", list[0].Text)
	assert.Equal(t, "two", list[1].Text)

	w = a.do(t, http.MethodGet, "/threads/posts?limit=abc", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestMyPosts(t *testing.T) {
	t.Run("remote list", func(t *testing.T) {
		a := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1.0/42/threads", r.URL.Path)
			w.Write([]byte(`{"data":[{"id":"p2","text":"b"},{"id":"p1","text":"a"}]}`))
		}, true)

		w := a.do(t, http.MethodGet, "/threads/my-posts", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var items []map[string]any
		decodeJSON(t, w, &items)
		require.Len(t, items, 2)
		assert.Equal(t, "p2", items[0]["id"])
	})

	t.Run("remote error degrades to empty list", func(t *testing.T) {
		a := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}, true)

		w := a.do(t, http.MethodGet, "/threads/my-posts", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})
}

func TestMe_RemoteErrorStatus(t *testing.T) {
	a := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"message":"Missing permission"}}`))
	}, true)

	w := a.do(t, http.MethodGet, "/threads/me", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	var body map[string]string
	decodeJSON(t, w, &body)
	assert.Equal(t, "Threads API Error: Missing permission", body["detail"])
}

func TestDeletePost(t *testing.T) {
	a := newTestAPI(t, noGraph(t), true)
	ctx := context.Background()

	post, err := a.posts.Create(ctx, "bye")
	require.NoError(t, err)
	_, err = a.posts.MarkPublished(ctx, post.ID, "p1")
	require.NoError(t, err)

	w := a.do(t, http.MethodDelete, "/threads/post/p1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())

	got, err := a.store.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, db.PostStatusDeleted, got.Status)

	w = a.do(t, http.MethodDelete, "/threads/post/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	var body map[string]string
	decodeJSON(t, w, &body)
	assert.Equal(t, "Post not found locally", body["detail"])
}

func TestReplies(t *testing.T) {
	a := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/p1/replies":
			w.Write([]byte(`{"data":[{"id":"r1","text":"nice","username":"bob"}]}`))
		case "/v1.0/42/threads":
			body := map[string]string{}
			json.NewDecoder(r.Body).Decode(&body)
			assert.Equal(t, "p1", body["reply_to_id"])
			w.Write([]byte(`{"id":"c9"}`))
		case "/v1.0/42/threads_publish":
			w.Write([]byte(`{"id":"r2"}`))
		}
	}, true)

	w := a.do(t, http.MethodGet, "/threads/post/p1/replies", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":"r1","text":"nice","username":"bob"}]`, w.Body.String())

	w = a.do(t, http.MethodPost, "/threads/reply", map[string]string{
		"text":            "thanks",
		"parent_media_id": "p1",
		"author":          "me",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var reply replyResponse
	decodeJSON(t, w, &reply)
	require.NotNil(t, reply.ThreadsReplyID)
	assert.Equal(t, "r2", *reply.ThreadsReplyID)
	assert.Equal(t, "p1", reply.ParentMediaID)
	require.NotNil(t, reply.Author)
	assert.Equal(t, "me", *reply.Author)
}

func TestInsights(t *testing.T) {
	a := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/p1/insights", r.URL.Path)
		w.Write([]byte(`{"data":[{"name":"likes","values":[{"value":7}]}]}`))
	}, true)

	w := a.do(t, http.MethodGet, "/threads/insights/p1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var snap snapshotResponse
	decodeJSON(t, w, &snap)
	assert.Equal(t, "p1", snap.ThreadsMediaID)
	assert.Equal(t, int64(7), snap.Likes)
	assert.Zero(t, snap.Views)
}

func TestInsights_TransportError(t *testing.T) {
	a := newTestAPI(t, noGraph(t), true)
	a.h.cfg.ThreadsGraphBase = "http://127.0.0.1:1"
	a.h.oauth = oauth.NewService(a.store, a.h.cfg)

	w := a.do(t, http.MethodGet, "/threads/insights/p1", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	var body map[string]string
	decodeJSON(t, w, &body)
	assert.True(t, strings.HasPrefix(body["detail"], "network error: "))
}

func TestRunInsightsJob(t *testing.T) {
	a := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"name":"views","values":[{"value":5}]}]}`))
	}, true)
	ctx := context.Background()

	post, err := a.posts.Create(ctx, "x")
	require.NoError(t, err)
	_, err = a.posts.MarkPublished(ctx, post.ID, "p1")
	require.NoError(t, err)

	w := a.do(t, http.MethodPost, "/jobs/insights/run", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"completed","checked":1,"captured":1,"failed":0}`, w.Body.String())
}

func TestAuthFlow(t *testing.T) {
	a := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/access_token":
			w.Write([]byte(`{"access_token":"new-tok","user_id":77}`))
		case "/me":
			w.Write([]byte(`{"id":"77","username":"fresh"}`))
		}
	}, false)

	w := a.do(t, http.MethodGet, "/auth/threads/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"connected":false,"username":null,"threads_user_id":null,"expires_at":null,"scopes":[]}`, w.Body.String())

	w = a.do(t, http.MethodPost, "/auth/threads/start", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var start map[string]string
	decodeJSON(t, w, &start)
	authURL, err := url.Parse(start["url"])
	require.NoError(t, err)
	state := authURL.Query().Get("state")
	require.NotEmpty(t, state)
	assert.Equal(t, "client-id", authURL.Query().Get("client_id"))

	t.Run("unknown state is rejected", func(t *testing.T) {
		w := a.do(t, http.MethodGet, "/auth/threads/callback?code=abc&state=forged", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	w = a.do(t, http.MethodGet, "/auth/threads/callback?code=abc&state="+state, nil)
	require.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "http://frontend.test/connect?connected=true&username=fresh", w.Header().Get("Location"))

	w = a.do(t, http.MethodGet, "/auth/threads/status", nil)
	var st oauth.Status
	decodeJSON(t, w, &st)
	assert.True(t, st.Connected)
	require.NotNil(t, st.Username)
	assert.Equal(t, "fresh", *st.Username)

	t.Run("state is single use", func(t *testing.T) {
		w := a.do(t, http.MethodGet, "/auth/threads/callback?code=abc&state="+state, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthCallback_ExchangeFailure(t *testing.T) {
	a := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}, false)

	state := a.h.states.Issue()
	w := a.do(t, http.MethodGet, "/auth/threads/callback?code=abc&state="+state, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]string
	decodeJSON(t, w, &body)
	assert.Equal(t, "Failed to exchange authorization code", body["detail"])
}

func TestStateStore_Expiry(t *testing.T) {
	s := newStateStore()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	state := s.Issue()
	now = now.Add(stateTTL + time.Second)
	assert.False(t, s.Consume(state))
	assert.False(t, s.Consume(""))
}
