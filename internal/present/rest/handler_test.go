package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"runtime"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/folio-sh/folio"
	"github.com/folio-sh/folio/internal/domain"
	"github.com/folio-sh/folio/internal/present/rest/middleware"
	"github.com/folio-sh/folio/internal/service"
	"github.com/folio-sh/folio/internal/usecase"
)

// --- mocks ---

type mockContentRepo struct {
	items map[string]domain.ContentItem
	next  int
}

func newMockContentRepo() *mockContentRepo {
	return &mockContentRepo{items: map[string]domain.ContentItem{}}
}

func (m *mockContentRepo) List(ctx context.Context, collection string, activeOnly bool) ([]domain.ContentItem, error) {
	var out []domain.ContentItem
	for _, item := range m.items {
		if item.Collection != collection {
			continue
		}
		if activeOnly && !item.IsActive {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (m *mockContentRepo) Get(ctx context.Context, collection, id string) (domain.ContentItem, error) {
	item, ok := m.items[id]
	if !ok || item.Collection != collection {
		return domain.ContentItem{}, domain.NotFoundError{Resource: "content item"}
	}
	return item, nil
}

func (m *mockContentRepo) Create(ctx context.Context, item domain.ContentItem) (domain.ContentItem, error) {
	m.next++
	item.ID = fmt.Sprintf("item-%d", m.next)
	item.Position = m.next
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt
	m.items[item.ID] = item
	return item, nil
}

func (m *mockContentRepo) Update(ctx context.Context, collection, id string, patch domain.ContentPatch) (domain.ContentItem, error) {
	item, err := m.Get(ctx, collection, id)
	if err != nil {
		return domain.ContentItem{}, err
	}
	for name, value := range patch.Fields {
		item.Fields[name] = value
	}
	if patch.Tags != nil {
		item.Tags = *patch.Tags
	}
	m.items[id] = item
	return item, nil
}

func (m *mockContentRepo) SetActive(ctx context.Context, collection, id string, active bool) error {
	item, err := m.Get(ctx, collection, id)
	if err != nil {
		return err
	}
	item.IsActive = active
	m.items[id] = item
	return nil
}

func (m *mockContentRepo) Delete(ctx context.Context, collection, id string) error {
	if _, err := m.Get(ctx, collection, id); err != nil {
		return err
	}
	delete(m.items, id)
	return nil
}

func (m *mockContentRepo) UpsertSingleton(ctx context.Context, collection string, fields map[string]any) (domain.ContentItem, error) {
	id := "singleton:" + collection
	item := domain.ContentItem{ID: id, Collection: collection, Fields: fields, IsActive: true}
	m.items[id] = item
	return item, nil
}

type mockContactRepo struct {
	subs []domain.ContactSubmission
}

func (m *mockContactRepo) Create(ctx context.Context, sub domain.ContactSubmission) (domain.ContactSubmission, error) {
	sub.ID = "contact-1"
	sub.CreatedAt = time.Now()
	m.subs = append(m.subs, sub)
	return sub, nil
}

func (m *mockContactRepo) List(ctx context.Context) ([]domain.ContactSubmission, error) {
	return m.subs, nil
}

func (m *mockContactRepo) SetRead(ctx context.Context, id string, read bool) error {
	for i := range m.subs {
		if m.subs[i].ID == id {
			m.subs[i].IsRead = read
			return nil
		}
	}
	return domain.NotFoundError{Resource: "contact submission"}
}

func (m *mockContactRepo) Delete(ctx context.Context, id string) error {
	for i := range m.subs {
		if m.subs[i].ID == id {
			m.subs = append(m.subs[:i], m.subs[i+1:]...)
			return nil
		}
	}
	return domain.NotFoundError{Resource: "contact submission"}
}

type mockVisitRepo struct {
	recorded int
}

func (m *mockVisitRepo) Record(ctx context.Context, at time.Time) error {
	m.recorded++
	return nil
}

func (m *mockVisitRepo) Stats(ctx context.Context, at time.Time) (folio.VisitStats, error) {
	return folio.VisitStats{TotalVisits: int64(m.recorded), TodayVisits: int64(m.recorded)}, nil
}

type noopRevalidator struct{}

func (noopRevalidator) ContentChanged(ctx context.Context, eventType, collection, itemID string) {}

type fakeSubscriber struct {
	events chan folio.Event
}

func (f *fakeSubscriber) Subscribe(ctx context.Context, output chan<- folio.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-f.events:
			select {
			case output <- ev:
			case <-ctx.Done():
				return
			}
		}
	}
}

// --- fixture ---

type fixture struct {
	e           *echo.Echo
	contentRepo *mockContentRepo
	contactRepo *mockContactRepo
	session     *service.SessionService
	subscriber  *fakeSubscriber
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	config := domain.Config{
		SiteURL:           "https://example.com",
		AdminEmail:        "admin@example.com",
		AdminPasswordHash: string(hash),
		SessionSecret:     "secret",
		SessionTTL:        time.Hour,
	}

	contentRepo := newMockContentRepo()
	contactRepo := &mockContactRepo{}

	session := service.NewSessionService(config)
	contentUC := usecase.NewContentUsecase(contentRepo, noopRevalidator{})
	contactUC := usecase.NewContactUsecase(contactRepo, noopRevalidator{})
	pageUC := usecase.NewPageUsecase(contentRepo, nil)
	visitUC := usecase.NewVisitUsecase(&mockVisitRepo{})
	subscriber := &fakeSubscriber{events: make(chan folio.Event, 8)}

	h := NewHandler(config, contentUC, contactUC, pageUC, visitUC, session, subscriber)

	e := echo.New()
	h.RegisterRoutes(e, middleware.NewAuthMiddleware(session), middleware.NewRateLimiter(100, time.Minute))

	return &fixture{e: e, contentRepo: contentRepo, contactRepo: contactRepo, session: session, subscriber: subscriber}
}

func (f *fixture) sessionCookie(t *testing.T) *http.Cookie {
	t.Helper()
	token, err := f.session.Login(context.Background(), "admin@example.com", "hunter22")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	return &http.Cookie{Name: domain.SessionCookieName, Value: token}
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	res := httptest.NewRecorder()
	f.e.ServeHTTP(res, req)
	return res
}

func jsonReq(method, target string, payload any) *http.Request {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

// --- tests ---

func TestAdminRejectedWithoutSession(t *testing.T) {
	f := newFixture(t)

	res := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/admin/content/talks", nil))
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "invalid credentials") {
		t.Fatalf("expected generic error body, got %s", res.Body.String())
	}
}

func TestAdminBrowserRedirectedToLogin(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/contacts", nil)
	req.Header.Set("Accept", "text/html")
	res := f.do(req)

	if res.Code != http.StatusFound {
		t.Fatalf("expected 302 got %d", res.Code)
	}
	location, err := url.Parse(res.Header().Get("Location"))
	if err != nil {
		t.Fatalf("bad redirect target: %v", err)
	}
	if location.Path != domain.LoginPath {
		t.Fatalf("expected redirect to login, got %s", location.Path)
	}
	if location.Query().Get("redirect") != "/api/v1/admin/contacts" {
		t.Fatalf("expected original path preserved, got %s", location.Query().Get("redirect"))
	}
}

func TestLoginIssuesSessionCookie(t *testing.T) {
	f := newFixture(t)

	res := f.do(jsonReq(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    "admin@example.com",
		"password": "hunter22",
	}))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", res.Code, res.Body.String())
	}

	var sessionCookie *http.Cookie
	for _, cookie := range res.Result().Cookies() {
		if cookie.Name == domain.SessionCookieName {
			sessionCookie = cookie
		}
	}
	if sessionCookie == nil {
		t.Fatalf("expected session cookie to be set")
	}
	if !sessionCookie.HttpOnly {
		t.Fatalf("session cookie must be http-only")
	}

	// the issued cookie opens the admin surface
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/content/talks", nil)
	req.AddCookie(sessionCookie)
	if res := f.do(req); res.Code != http.StatusOK {
		t.Fatalf("expected 200 with session got %d", res.Code)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)

	res := f.do(jsonReq(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    "admin@example.com",
		"password": "wrong",
	}))
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", res.Code)
	}
}

func TestAdminCreateDecodesStringFields(t *testing.T) {
	f := newFixture(t)
	cookie := f.sessionCookie(t)

	req := jsonReq(http.MethodPost, "/api/v1/admin/content/navigation", map[string]any{
		"fields": map[string]string{
			"label":    "Blog",
			"path":     "https://blog.example.com",
			"external": "true",
		},
	})
	req.AddCookie(cookie)
	res := f.do(req)

	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", res.Code, res.Body.String())
	}
	var created domain.ContentItem
	if err := json.Unmarshal(res.Body.Bytes(), &created); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if created.Fields["external"] != true {
		t.Fatalf("expected external decoded to bool true, got %v", created.Fields["external"])
	}
	if !created.IsActive {
		t.Fatalf("expected new items to default to active")
	}
}

func TestAdminCreateRejectsMissingField(t *testing.T) {
	f := newFixture(t)
	cookie := f.sessionCookie(t)

	req := jsonReq(http.MethodPost, "/api/v1/admin/content/talks", map[string]any{
		"fields": map[string]string{"title": "GopherCon"},
	})
	req.AddCookie(cookie)
	res := f.do(req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", res.Code)
	}
	if len(f.contentRepo.items) != 0 {
		t.Fatalf("invalid item must not be stored")
	}
}

func TestAdminToggleAcceptsStringBoolean(t *testing.T) {
	f := newFixture(t)
	cookie := f.sessionCookie(t)

	created, err := f.contentRepo.Create(context.Background(), domain.ContentItem{
		Collection: "talks",
		Fields:     map[string]any{"title": "GopherCon", "event": "GopherCon EU", "date": "2026-06-01"},
		IsActive:   true,
	})
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	req := jsonReq(http.MethodPost, "/api/v1/admin/content/talks/"+created.ID+"/toggle", map[string]any{
		"isActive": "true",
	})
	req.AddCookie(cookie)
	res := f.do(req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", res.Code, res.Body.String())
	}
	if f.contentRepo.items[created.ID].IsActive {
		t.Fatalf("expected item deactivated")
	}
}

func TestPublicListExcludesInactive(t *testing.T) {
	f := newFixture(t)

	fields := map[string]any{"title": "GopherCon", "event": "GopherCon EU", "date": "2026-06-01"}
	active, _ := f.contentRepo.Create(context.Background(), domain.ContentItem{Collection: "talks", Fields: fields, IsActive: true})
	f.contentRepo.Create(context.Background(), domain.ContentItem{Collection: "talks", Fields: fields, IsActive: false})

	res := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/content/talks", nil))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}
	var items []domain.ContentItem
	if err := json.Unmarshal(res.Body.Bytes(), &items); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if len(items) != 1 || items[0].ID != active.ID {
		t.Fatalf("expected only the active item, got %v", items)
	}
}

func TestPublicListUnknownCollection(t *testing.T) {
	f := newFixture(t)

	res := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/content/nope", nil))
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", res.Code)
	}
}

func TestContactSubmitStoresValid(t *testing.T) {
	f := newFixture(t)

	res := f.do(jsonReq(http.MethodPost, "/api/v1/contact", map[string]any{
		"name":    "Ada Lovelace",
		"email":   "ada@example.com",
		"message": "I enjoyed your talk on analytical engines.",
		"consent": true,
	}))
	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", res.Code, res.Body.String())
	}
	if len(f.contactRepo.subs) != 1 {
		t.Fatalf("expected one stored submission")
	}
	if f.contactRepo.subs[0].IsRead {
		t.Fatalf("new submissions start unread")
	}
}

func TestContactSubmitRejectsWithoutConsent(t *testing.T) {
	f := newFixture(t)

	// string-typed consent, as the form posts it
	res := f.do(jsonReq(http.MethodPost, "/api/v1/contact", map[string]any{
		"name":    "Ada Lovelace",
		"email":   "ada@example.com",
		"message": "I enjoyed your talk on analytical engines.",
		"consent": "false",
	}))
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", res.Code)
	}
	if len(f.contactRepo.subs) != 0 {
		t.Fatalf("non-consenting submission must not be stored")
	}
}

func TestRealtimeStreamsEventsAndReleasesConnections(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.e)
	defer srv.Close()

	header := http.Header{}
	header.Set("Cookie", f.sessionCookie(t).String())
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/admin/realtime"

	baseline := runtime.NumGoroutine()

	for i := 0; i < 4; i++ {
		conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
		if err != nil {
			t.Fatalf("dial failed: %v", err)
		}
		if resp != nil {
			resp.Body.Close()
		}

		f.subscriber.events <- folio.Event{Type: folio.EventTypeContentCreated, Collection: "talks"}

		var ev folio.Event
		if err := conn.ReadJSON(&ev); err != nil {
			t.Fatalf("read event: %v", err)
		}
		if ev.Type != folio.EventTypeContentCreated {
			t.Fatalf("unexpected event type %q", ev.Type)
		}

		// keep events flowing while the peer goes away, so teardown runs
		// from the write side as well as the read side
		f.subscriber.events <- folio.Event{Type: folio.EventTypeContentCreated, Collection: "talks"}
		conn.Close()
	}

	deadline := time.Now().Add(3 * time.Second)
	for runtime.NumGoroutine() > baseline+2 {
		if time.Now().After(deadline) {
			t.Fatalf("connection goroutines not released: %d running, baseline %d",
				runtime.NumGoroutine(), baseline)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestHomePageAggregate(t *testing.T) {
	f := newFixture(t)

	f.contentRepo.UpsertSingleton(context.Background(), "hero", map[string]any{"headline": "Hello"})
	f.contentRepo.Create(context.Background(), domain.ContentItem{
		Collection: "talks",
		Fields:     map[string]any{"title": "GopherCon", "event": "GopherCon EU", "date": "2026-06-01"},
		IsActive:   true,
	})

	res := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/page", nil))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", res.Code, res.Body.String())
	}

	var page struct {
		Hero     map[string]any                  `json:"hero"`
		Sections map[string][]domain.ContentItem `json:"sections"`
		Version  string                          `json:"version"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &page); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if page.Hero["headline"] != "Hello" {
		t.Fatalf("expected hero headline, got %v", page.Hero)
	}
	if len(page.Sections["talks"]) != 1 {
		t.Fatalf("expected one talk section entry")
	}
	if page.Version == "" {
		t.Fatalf("expected a content version")
	}
}
