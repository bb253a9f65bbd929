package domain

const (
	SessionCookieName = "folio_session"
	SessionSubject    = "folio-admin"

	AdminPathPrefix = "/api/v1/admin"
	LoginPath       = "/api/v1/auth/login"

	RequesterEmailCtxKey = "folio-requesterEmail"
)

const (
	VisitsTotalKey   = "visits:total"
	VisitsDayKeyBase = "visits:day:"
	EventChannel     = "folio:events"
	HomePageCacheKey = "folio:page:home"
)
