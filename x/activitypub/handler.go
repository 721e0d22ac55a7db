// Package activitypub implements a single-actor ActivityPub endpoint:
// the actor profile, WebFinger discovery, an inbox that auto-accepts
// follows, and an operator trigger that emits signed activities.
package activitypub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"

	"github.com/strawberryfields/strawberryfields/x/key"
	"github.com/strawberryfields/strawberryfields/x/util"
)

var tracer = otel.Tracer("activitypub")

// Handler serves every route of the endpoint.
type Handler struct {
	client Client
	signer *Signer
	key    *key.Material
	config util.Config
}

// NewHandler returns a new Handler.
func NewHandler(client Client, signer *Signer, km *key.Material, config util.Config) *Handler {
	return &Handler{client, signer, km, config}
}

// hostOf returns the request host with any port stripped.
func hostOf(c echo.Context) string {
	return strings.Split(c.Request().Host, ":")[0]
}

// isSecureURL reports whether s parses as an https URL.
func isSecureURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme == "https"
}

// Root serves the plain-text banner.
func (h *Handler) Root(c echo.Context) error {
	return c.String(http.StatusOK, "StrawberryFields Echo")
}

// Actor serves the actor document, content-negotiated against a plain
// text summary.
func (h *Handler) Actor(c echo.Context) error {
	_, span := tracer.Start(c.Request().Context(), "Handler.Actor")
	defer span.End()

	name := c.Param("name")
	host := hostOf(c)
	if name != h.config.Actor.Name {
		return echo.ErrNotFound
	}
	if !strings.Contains(c.Request().Header.Get(echo.HeaderAccept), "application/activity+json") {
		return c.String(http.StatusOK, name+": "+h.config.Actor.DisplayName)
	}

	me := "https://" + host + "/u/" + name

	homeHost := ""
	if u, err := url.Parse(h.config.Actor.HomeURL); err == nil {
		homeHost = u.Hostname()
	}
	homeLink := `<a href="https://` + homeHost + `/" rel="me nofollow noopener noreferrer" target="_blank">https://` + homeHost + `/</a>`

	c.Response().Header().Set(echo.HeaderContentType, "application/activity+json")
	return c.JSON(http.StatusOK, Person{
		Context: []any{
			ContextActivityStreams,
			ContextSecurity,
			map[string]string{
				"schema":        "https://schema.org/",
				"PropertyValue": "schema:PropertyValue",
				"value":         "schema:value",
				"Key":           "sec:Key",
			},
		},
		ID:                me,
		Type:              "Person",
		Inbox:             me + "/inbox",
		Outbox:            me + "/outbox",
		Following:         me + "/following",
		Followers:         me + "/followers",
		PreferredUsername: name,
		Name:              h.config.Actor.DisplayName,
		Summary:           "<p>" + util.GetVersion() + "</p>",
		URL:               me,
		Endpoints:         Endpoints{SharedInbox: me + "/inbox"},
		Attachment: []PropertyValue{
			{Type: "PropertyValue", Name: "me", Value: homeLink},
		},
		Icon: Image{
			Type:      "Image",
			MediaType: "image/png",
			URL:       "https://" + host + "/public/" + name + "u.png",
		},
		Image: Image{
			Type:      "Image",
			MediaType: "image/png",
			URL:       "https://" + host + "/public/" + name + "s.png",
		},
		PublicKey: Key{
			ID:           me + "#Key",
			Type:         "Key",
			Owner:        me,
			PublicKeyPem: h.key.PublicKeyPem(),
		},
	})
}

// Inbox dispatches an inbound activity. Digest and Signature headers are
// required to be present but their values are not cryptographically
// verified; this mirrors the trust model of the service being ported and
// is a known gap, not an oversight.
func (h *Handler) Inbox(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Handler.Inbox")
	defer span.End()

	name := c.Param("name")
	host := hostOf(c)
	if name != h.config.Actor.Name {
		return echo.ErrNotFound
	}
	if !strings.Contains(c.Request().Header.Get(echo.HeaderContentType), "application/activity+json") {
		return c.String(http.StatusBadRequest, "Bad Request")
	}
	if c.Request().Header.Get("Digest") == "" || c.Request().Header.Get("Signature") == "" {
		return c.String(http.StatusBadRequest, "Bad Request")
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.String(http.StatusBadRequest, "Bad Request")
	}
	var envelope map[string]any
	err = json.Unmarshal(body, &envelope)
	if err != nil {
		return c.String(http.StatusBadRequest, "Bad Request")
	}

	id, _ := envelope["id"].(string)
	typ, _ := envelope["type"].(string)
	actor, _ := envelope["actor"].(string)

	slog.InfoContext(ctx, fmt.Sprintf("INBOX %s %s", id, typ),
		slog.String("module", "activitypub"),
	)

	switch typ {
	case "Accept", "Reject", "Add", "Remove", "Like", "Announce", "Create", "Update", "Delete":
		// nothing is stored locally, so there is nothing to update
		return c.NoContent(http.StatusOK)

	case "Follow":
		return h.acceptFollow(ctx, c, name, host, actor, envelope)

	case "Undo":
		object, ok := envelope["object"].(map[string]any)
		if !ok {
			return c.String(http.StatusInternalServerError, "Internal Server Error")
		}
		switch object["type"] {
		case "Accept", "Like", "Announce":
			return c.NoContent(http.StatusOK)
		case "Follow":
			// no follow state is persisted, so undoing a follow re-sends
			// the same Accept a fresh follow would get
			return h.acceptFollow(ctx, c, name, host, actor, object)
		}
		return c.String(http.StatusInternalServerError, "Internal Server Error")
	}

	return c.String(http.StatusInternalServerError, "Internal Server Error")
}

// acceptFollow fetches the requesting actor and answers with a signed
// Accept wrapping the follow activity.
func (h *Handler) acceptFollow(ctx context.Context, c echo.Context, name string, host string, actor string, follow any) error {
	if !isSecureURL(actor) {
		return c.String(http.StatusBadRequest, "Bad Request")
	}
	requester, err := h.client.Fetch(ctx, actor)
	if err != nil {
		return c.String(http.StatusInternalServerError, "Internal Server Error")
	}
	env, err := Build(name, host, time.Now(), Intent{
		Verb:   VerbAccept,
		Object: requester,
		Accept: follow,
	})
	if err != nil {
		return c.String(http.StatusInternalServerError, "Internal Server Error")
	}
	err = h.send(ctx, name, host, env)
	if err != nil {
		return c.String(http.StatusInternalServerError, "Internal Server Error")
	}
	return c.NoContent(http.StatusOK)
}

// send serializes an activity once, signs those exact bytes and delivers
// them. Delivery is attempted only after every preceding fetch succeeded.
func (h *Handler) send(ctx context.Context, name string, host string, env Envelope) error {
	body, err := json.Marshal(env.Activity)
	if err != nil {
		return err
	}
	headers, err := h.signer.Headers(body, name, host, env.Inbox, time.Now())
	if err != nil {
		return err
	}
	return h.client.Deliver(ctx, env.Inbox, body, headers)
}

// Trigger is the operator-only outbox: it resolves the target document(s)
// and emits the requested activity. A wrong or placeholder secret behaves
// exactly like a missing route.
func (h *Handler) Trigger(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Handler.Trigger")
	defer span.End()

	name := c.Param("name")
	host := hostOf(c)
	if name != h.config.Actor.Name {
		return echo.ErrNotFound
	}
	secret := c.Param("secret")
	if secret == "" || secret == "-" || secret != h.config.Actor.Secret {
		return echo.ErrNotFound
	}

	id := c.QueryParam("id")
	if !isSecureURL(id) {
		return c.String(http.StatusBadRequest, "Bad Request")
	}
	x, err := h.client.Fetch(ctx, id)
	if err != nil {
		return c.String(http.StatusInternalServerError, "Internal Server Error")
	}

	intent := Intent{Verb: Verb(c.QueryParam("type")), Object: x}

	switch intent.Verb {
	case VerbFollow, VerbUndoFollow:

	case VerbLike, VerbUndoLike, VerbAnnounce, VerbUndoAnnounce, VerbCreateNoteMention:
		if !isSecureURL(x.AttributedTo) {
			return c.String(http.StatusBadRequest, "Bad Request")
		}
		author, err := h.client.Fetch(ctx, x.AttributedTo)
		if err != nil {
			return c.String(http.StatusInternalServerError, "Internal Server Error")
		}
		intent.Author = author
		if intent.Verb == VerbCreateNoteMention {
			source := c.QueryParam("url")
			if source == "" {
				source = "https://localhost"
			}
			if !isSecureURL(source) {
				return c.String(http.StatusBadRequest, "Bad Request")
			}
			intent.URL = source
		}

	case VerbCreateNote, VerbCreateNoteHashtag:
		source := c.QueryParam("url")
		if source == "" {
			source = "https://localhost"
		}
		if !isSecureURL(source) {
			return c.String(http.StatusBadRequest, "Bad Request")
		}
		intent.URL = source
		if intent.Verb == VerbCreateNoteHashtag {
			tag := c.QueryParam("tag")
			if tag == "" {
				tag = "Hashtag"
			}
			intent.Tag = tag
		}

	case VerbCreateNoteImage:
		image := c.QueryParam("url")
		if image == "" {
			image = "https://" + host + "/public/logo.png"
		}
		if !isSecureURL(image) {
			return c.String(http.StatusBadRequest, "Bad Request")
		}
		// the bot must not relay third-party image references
		if u, err := url.Parse(image); err != nil || u.Hostname() != host {
			return c.String(http.StatusBadRequest, "Bad Request")
		}
		intent.URL = image

	case VerbDeleteNote:
		target := c.QueryParam("url")
		if target == "" {
			target = "https://" + host + "/u/" + name + "/s/0"
		}
		if !isSecureURL(target) {
			return c.String(http.StatusBadRequest, "Bad Request")
		}
		intent.URL = target

	default:
		slog.InfoContext(ctx, fmt.Sprintf("TYPE %s %s", x.ID, x.Type),
			slog.String("module", "activitypub"),
		)
		return c.NoContent(http.StatusOK)
	}

	env, err := Build(name, host, time.Now(), intent)
	if err != nil {
		return c.String(http.StatusInternalServerError, "Internal Server Error")
	}
	err = h.send(ctx, name, host, env)
	if err != nil {
		return c.String(http.StatusInternalServerError, "Internal Server Error")
	}
	return c.NoContent(http.StatusOK)
}

// WebFinger resolves the six accepted resource forms to the actor.
func (h *Handler) WebFinger(c echo.Context) error {
	_, span := tracer.Start(c.Request().Context(), "Handler.WebFinger")
	defer span.End()

	name := h.config.Actor.Name
	host := hostOf(c)
	resource := c.QueryParam("resource")

	accepted := false
	for _, form := range []string{
		"acct:" + name + "@" + host,
		"mailto:" + name + "@" + host,
		"https://" + host + "/@" + name,
		"https://" + host + "/u/" + name,
		"https://" + host + "/user/" + name,
		"https://" + host + "/users/" + name,
	} {
		if resource == form {
			accepted = true
			break
		}
	}
	if !accepted {
		return echo.ErrNotFound
	}

	c.Response().Header().Set(echo.HeaderContentType, "application/jrd+json")
	return c.JSON(http.StatusOK, WebFinger{
		Subject: "acct:" + name + "@" + host,
		Aliases: []string{
			"mailto:" + name + "@" + host,
			"https://" + host + "/@" + name,
			"https://" + host + "/u/" + name,
			"https://" + host + "/user/" + name,
			"https://" + host + "/users/" + name,
		},
		Links: []WebFingerLink{
			{
				Rel:  "self",
				Type: "application/activity+json",
				Href: "https://" + host + "/u/" + name,
			},
			{
				Rel:  "http://webfinger.net/rel/avatar",
				Type: "image/png",
				Href: "https://" + host + "/public/" + name + "u.png",
			},
			{
				Rel:  "http://webfinger.net/rel/profile-page",
				Type: "text/plain",
				Href: "https://" + host + "/u/" + name,
			},
		},
	})
}

// Outbox serves the (empty) outbox collection.
func (h *Handler) Outbox(c echo.Context) error {
	return h.collection(c, "outbox")
}

// Following serves the (empty) following collection.
func (h *Handler) Following(c echo.Context) error {
	return h.collection(c, "following")
}

// Followers serves the (empty) followers collection.
func (h *Handler) Followers(c echo.Context) error {
	return h.collection(c, "followers")
}

func (h *Handler) collection(c echo.Context, kind string) error {
	name := c.Param("name")
	host := hostOf(c)
	if name != h.config.Actor.Name {
		return echo.ErrNotFound
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/activity+json")
	return c.JSON(http.StatusOK, OrderedCollection{
		Context:    ContextActivityStreams,
		ID:         "https://" + host + "/u/" + name + "/" + kind,
		Type:       "OrderedCollection",
		TotalItems: 0,
	})
}

// MethodNotAllowed rejects GET inbox / POST outbox.
func (h *Handler) MethodNotAllowed(c echo.Context) error {
	return echo.ErrMethodNotAllowed
}

// Home redirects the bare alias prefixes to the root.
func (h *Handler) Home(c echo.Context) error {
	return c.Redirect(http.StatusFound, "/")
}

// ProfileAlias redirects /user/{name} and /users/{name} to the canonical
// profile path.
func (h *Handler) ProfileAlias(c echo.Context) error {
	return c.Redirect(http.StatusFound, "/u/"+c.Param("name"))
}

// HandleAlias serves mastodon-style /@{name} paths, which echo's router
// cannot express as a literal route.
func (h *Handler) HandleAlias(c echo.Context) error {
	handle := c.Param("handle")
	if !strings.HasPrefix(handle, "@") {
		return echo.ErrNotFound
	}
	name := strings.TrimPrefix(handle, "@")
	if name == "" {
		return c.Redirect(http.StatusFound, "/")
	}
	return c.Redirect(http.StatusFound, "/u/"+name)
}
