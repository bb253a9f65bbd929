package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/folio-sh/folio"
	"github.com/folio-sh/folio/internal/domain"
	"github.com/folio-sh/folio/internal/present/rest/middleware"
	"github.com/folio-sh/folio/internal/present/rest/presenter"
	"github.com/folio-sh/folio/internal/service"
	"github.com/folio-sh/folio/internal/usecase"
	"github.com/folio-sh/folio/schemas"
)

// EventSubscriber streams content-change events to realtime admin clients
// until the context ends.
type EventSubscriber interface {
	Subscribe(ctx context.Context, output chan<- folio.Event)
}

type Handler struct {
	config  domain.Config
	content *usecase.ContentUsecase
	contact *usecase.ContactUsecase
	page    *usecase.PageUsecase
	visit   *usecase.VisitUsecase
	session *service.SessionService
	signal  EventSubscriber
}

func NewHandler(
	config domain.Config,
	content *usecase.ContentUsecase,
	contact *usecase.ContactUsecase,
	page *usecase.PageUsecase,
	visit *usecase.VisitUsecase,
	session *service.SessionService,
	signal EventSubscriber,
) *Handler {
	return &Handler{
		config:  config,
		content: content,
		contact: contact,
		page:    page,
		visit:   visit,
		session: session,
		signal:  signal,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo, auth *middleware.AuthMiddleware, contactLimiter *middleware.RateLimiter) {
	e.GET("/api/v1/page", h.handleHomePage)
	e.GET("/api/v1/content/:collection", h.handlePublicList)
	e.POST("/api/v1/contact", h.handleContactSubmit, contactLimiter.Middleware)
	e.POST("/api/v1/visits", h.handleVisitRecord)
	e.GET("/api/v1/visits", h.handleVisitStats)
	e.POST("/api/v1/auth/login", h.handleLogin)
	e.POST("/api/v1/auth/logout", h.handleLogout)

	admin := e.Group(domain.AdminPathPrefix, auth.RequireSession)
	admin.GET("/content/:collection", h.handleAdminList)
	admin.POST("/content/:collection", h.handleAdminCreate)
	admin.GET("/content/:collection/:id", h.handleAdminGet)
	admin.PATCH("/content/:collection/:id", h.handleAdminUpdate)
	admin.POST("/content/:collection/:id/toggle", h.handleAdminToggle)
	admin.DELETE("/content/:collection/:id", h.handleAdminDelete)
	admin.PUT("/singleton/:collection", h.handleAdminUpsertSingleton)
	admin.GET("/contacts", h.handleAdminContacts)
	admin.POST("/contacts/:id/toggle-read", h.handleAdminContactToggleRead)
	admin.DELETE("/contacts/:id", h.handleAdminContactDelete)
	admin.GET("/realtime", h.handleRealtime)
}

// flexBool decodes the string-typed booleans that form submissions send
// ("true"/"false") while also accepting real JSON booleans.
type flexBool struct {
	Value bool
	Set   bool
}

func (b *flexBool) UnmarshalJSON(data []byte) error {
	var asBool bool
	if err := json.Unmarshal(data, &asBool); err == nil {
		b.Value = asBool
		b.Set = true
		return nil
	}
	var asString string
	if err := json.Unmarshal(data, &asString); err != nil {
		return errors.New("expected boolean or string")
	}
	value, ok := folio.ParseBool(asString)
	if !ok {
		return errors.New("expected \"true\" or \"false\"")
	}
	b.Value = value
	b.Set = true
	return nil
}

// --- public ---

func (h *Handler) handleHomePage(c echo.Context) error {
	ctx := c.Request().Context()

	payload, err := h.page.GetHomePageJSON(ctx)
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return c.JSONBlob(http.StatusOK, payload)
}

func (h *Handler) handlePublicList(c echo.Context) error {
	ctx := c.Request().Context()

	items, err := h.content.List(ctx, c.Param("collection"), true)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "unknown collection")
		}
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, items)
}

type contactRequest struct {
	Name    string   `json:"name"`
	Email   string   `json:"email"`
	Subject string   `json:"subject"`
	Message string   `json:"message"`
	Consent flexBool `json:"consent"`
}

func (h *Handler) handleContactSubmit(c echo.Context) error {
	ctx := c.Request().Context()

	var req contactRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	created, err := h.contact.Submit(ctx, usecase.SubmitInput{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
		Consent: req.Consent.Value,
	})
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return presenter.BadRequest(c, err)
		}
		return presenter.InternalError(c, err)
	}
	return presenter.Created(c, created)
}

func (h *Handler) handleVisitRecord(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.visit.Record(ctx); err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleVisitStats(c echo.Context) error {
	ctx := c.Request().Context()

	stats, err := h.visit.Stats(ctx)
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, stats)
}

// --- auth ---

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleLogin(c echo.Context) error {
	ctx := c.Request().Context()

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	token, err := h.session.Login(ctx, req.Email, req.Password)
	if err != nil {
		return presenter.Unauthorized(c, "invalid credentials")
	}

	c.SetCookie(&http.Cookie{
		Name:     domain.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.session.TTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleLogout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     domain.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return presenter.OK(c, echo.Map{"status": "ok"})
}

// --- admin content ---

func (h *Handler) handleAdminList(c echo.Context) error {
	ctx := c.Request().Context()

	items, err := h.content.List(ctx, c.Param("collection"), false)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "unknown collection")
		}
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, items)
}

func (h *Handler) handleAdminGet(c echo.Context) error {
	ctx := c.Request().Context()

	item, err := h.content.Get(ctx, c.Param("collection"), c.Param("id"))
	if err != nil {
		return h.mapContentError(c, err)
	}
	return presenter.OK(c, item)
}

type contentRequest struct {
	Fields   map[string]string `json:"fields"`
	Tags     []string          `json:"tags"`
	IsActive *flexBool         `json:"isActive"`
}

// decodeFields turns the string-typed transport payload into typed values
// according to the collection schema, before any business logic runs.
func decodeFields(collection string, raw map[string]string) (map[string]any, error) {
	schema, ok := schemas.Lookup(collection)
	if !ok {
		return nil, domain.NotFoundError{Resource: "collection"}
	}

	fields := make(map[string]any, len(raw))
	for name, value := range raw {
		kind := schemas.KindString
		for _, f := range schema.Fields {
			if f.Name == name {
				kind = f.Kind
				break
			}
		}
		switch kind {
		case schemas.KindBool:
			parsed, ok := folio.ParseBool(value)
			if !ok {
				return nil, domain.ValidationError{Field: name, Reason: "expected \"true\" or \"false\""}
			}
			fields[name] = parsed
		case schemas.KindInt:
			parsed, err := strconv.Atoi(value)
			if err != nil {
				return nil, domain.ValidationError{Field: name, Reason: "expected a number"}
			}
			fields[name] = parsed
		default:
			fields[name] = value
		}
	}
	return fields, nil
}

func (h *Handler) handleAdminCreate(c echo.Context) error {
	ctx := c.Request().Context()
	collection := c.Param("collection")

	var req contentRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	fields, err := decodeFields(collection, req.Fields)
	if err != nil {
		return h.mapContentError(c, err)
	}

	input := usecase.CreateInput{
		Collection: collection,
		Fields:     fields,
		Tags:       req.Tags,
	}
	if req.IsActive != nil && req.IsActive.Set {
		input.IsActive = &req.IsActive.Value
	}

	created, err := h.content.Create(ctx, input)
	if err != nil {
		return h.mapContentError(c, err)
	}
	return presenter.Created(c, created)
}

func (h *Handler) handleAdminUpdate(c echo.Context) error {
	ctx := c.Request().Context()
	collection := c.Param("collection")

	var req contentRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	patch := domain.ContentPatch{}
	if req.Fields != nil {
		fields, err := decodeFields(collection, req.Fields)
		if err != nil {
			return h.mapContentError(c, err)
		}
		patch.Fields = fields
	}
	if req.Tags != nil {
		patch.Tags = &req.Tags
	}

	updated, err := h.content.Update(ctx, collection, c.Param("id"), patch)
	if err != nil {
		return h.mapContentError(c, err)
	}
	return presenter.OK(c, updated)
}

type toggleRequest struct {
	IsActive *flexBool `json:"isActive"`
}

func (h *Handler) handleAdminToggle(c echo.Context) error {
	ctx := c.Request().Context()

	var req toggleRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	if req.IsActive == nil || !req.IsActive.Set {
		return presenter.BadRequestMessage(c, "isActive is required")
	}

	err := h.content.Toggle(ctx, c.Param("collection"), c.Param("id"), req.IsActive.Value)
	if err != nil {
		return h.mapContentError(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleAdminDelete(c echo.Context) error {
	ctx := c.Request().Context()

	err := h.content.Delete(ctx, c.Param("collection"), c.Param("id"))
	if err != nil {
		return h.mapContentError(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleAdminUpsertSingleton(c echo.Context) error {
	ctx := c.Request().Context()
	collection := c.Param("collection")

	var req contentRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	fields, err := decodeFields(collection, req.Fields)
	if err != nil {
		return h.mapContentError(c, err)
	}

	item, err := h.content.UpsertSingleton(ctx, collection, fields)
	if err != nil {
		return h.mapContentError(c, err)
	}
	return presenter.OK(c, item)
}

func (h *Handler) mapContentError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return presenter.BadRequest(c, err)
	case errors.Is(err, domain.ErrNotFound):
		return presenter.NotFound(c, err.Error())
	default:
		return presenter.InternalError(c, err)
	}
}

// --- admin contacts ---

func (h *Handler) handleAdminContacts(c echo.Context) error {
	ctx := c.Request().Context()

	subs, err := h.contact.List(ctx)
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, subs)
}

type toggleReadRequest struct {
	IsRead *flexBool `json:"isRead"`
}

func (h *Handler) handleAdminContactToggleRead(c echo.Context) error {
	ctx := c.Request().Context()

	var req toggleReadRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	if req.IsRead == nil || !req.IsRead.Set {
		return presenter.BadRequestMessage(c, "isRead is required")
	}

	err := h.contact.ToggleRead(ctx, c.Param("id"), req.IsRead.Value)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, err.Error())
		}
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleAdminContactDelete(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.contact.Delete(ctx, c.Param("id")); err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

// --- realtime ---

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type realtimeRequest struct {
	Type string `json:"type"`
}

func (h *Handler) handleRealtime(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer func() {
		ws.Close()
	}()

	ctx := c.Request().Context()

	output := make(chan folio.Event)
	go h.signal.Subscribe(ctx, output)

	quit := make(chan struct{})

	go func() {
		for {
			var req realtimeRequest
			err := ws.ReadJSON(&req)
			if err != nil {

				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.ErrorContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}

				// closed, not sent to: the write loop may already be gone
				// after a failed write, and a send would strand this
				// goroutine.
				close(quit)
				break
			}

			switch req.Type {
			case "h": // heartbeat
				// do nothing
			default:
				slog.InfoContext(
					ctx, "Unknown request type",
					slog.String("type", req.Type),
					slog.String("module", "socket"),
				)
			}
		}
	}()

	for {
		select {
		case <-quit:
			return nil
		case event := <-output:
			err := ws.WriteJSON(event)
			if err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}
