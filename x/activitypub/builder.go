package activitypub

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

const (
	ContextActivityStreams = "https://www.w3.org/ns/activitystreams"
	ContextSecurity        = "https://w3id.org/security/v1"
	PublicCollection       = "https://www.w3.org/ns/activitystreams#Public"
)

// Verb enumerates the outbound activity kinds this endpoint can emit.
// The string values double as the trigger endpoint's type parameter.
type Verb string

const (
	VerbAccept            Verb = "accept"
	VerbFollow            Verb = "follow"
	VerbUndoFollow        Verb = "undo_follow"
	VerbLike              Verb = "like"
	VerbUndoLike          Verb = "undo_like"
	VerbAnnounce          Verb = "announce"
	VerbUndoAnnounce      Verb = "undo_announce"
	VerbCreateNote        Verb = "create_note"
	VerbCreateNoteMention Verb = "create_note_mention"
	VerbCreateNoteImage   Verb = "create_note_image"
	VerbCreateNoteHashtag Verb = "create_note_hashtag"
	VerbDeleteNote        Verb = "delete_note"
)

// Intent is one outbound activity to build: the verb plus the documents it
// needs, already resolved by the caller.
type Intent struct {
	Verb   Verb
	Object RemoteObject // the fetched target object or actor
	Author RemoteObject // the resolved author or mentioned actor
	URL    string       // the trigger's url parameter: talk source, image url, or deleted object id
	Tag    string       // hashtag name
	Accept any          // the inbound activity an Accept wraps
}

// Envelope pairs a built activity with the inbox it is addressed to.
type Envelope struct {
	Activity Activity
	Inbox    string
}

// Build assembles the wire shape for an intent. Activity ids are derived
// from the current unix second; two activities built within the same
// second share an id.
func Build(name string, host string, now time.Time, intent Intent) (Envelope, error) {
	var (
		me        = "https://" + host + "/u/" + name
		stampID   = me + "/s/" + strconv.FormatInt(now.Unix(), 10)
		published = now.UTC().Format("2006-01-02T15:04:05") + "Z"
		addressed = []string{PublicCollection}
		followers = []string{me + "/followers"}
	)

	note := func() Note {
		return Note{
			ID:           stampID,
			Type:         "Note",
			AttributedTo: me,
			URL:          stampID,
			Published:    published,
			To:           addressed,
			CC:           followers,
		}
	}
	create := func(object Note) Activity {
		return Activity{
			Context:   ContextActivityStreams,
			ID:        stampID + "/activity",
			Type:      "Create",
			Actor:     me,
			Published: published,
			To:        addressed,
			CC:        followers,
			Object:    object,
		}
	}
	undo := func(inner Activity) Activity {
		return Activity{
			Context: ContextActivityStreams,
			ID:      stampID + "#Undo",
			Type:    "Undo",
			Actor:   me,
			Object:  inner,
		}
	}
	// inner activities of an Undo carry no @context of their own
	inner := func(typ string, object any) Activity {
		return Activity{ID: stampID, Type: typ, Actor: me, Object: object}
	}

	switch intent.Verb {
	case VerbAccept:
		return Envelope{
			Inbox: intent.Object.Inbox,
			Activity: Activity{
				Context: ContextActivityStreams,
				ID:      stampID,
				Type:    "Accept",
				Actor:   me,
				Object:  intent.Accept,
			},
		}, nil

	case VerbFollow:
		return Envelope{
			Inbox: intent.Object.Inbox,
			Activity: Activity{
				Context: ContextActivityStreams,
				ID:      stampID,
				Type:    "Follow",
				Actor:   me,
				Object:  intent.Object.ID,
			},
		}, nil

	case VerbUndoFollow:
		return Envelope{
			Inbox:    intent.Object.Inbox,
			Activity: undo(inner("Follow", intent.Object.ID)),
		}, nil

	case VerbLike:
		return Envelope{
			Inbox: intent.Author.Inbox,
			Activity: Activity{
				Context: ContextActivityStreams,
				ID:      stampID,
				Type:    "Like",
				Actor:   me,
				Object:  intent.Object.ID,
			},
		}, nil

	case VerbUndoLike:
		return Envelope{
			Inbox:    intent.Author.Inbox,
			Activity: undo(inner("Like", intent.Object.ID)),
		}, nil

	case VerbAnnounce:
		return Envelope{
			Inbox: intent.Author.Inbox,
			Activity: Activity{
				Context:   ContextActivityStreams,
				ID:        stampID,
				Type:      "Announce",
				Actor:     me,
				Published: published,
				To:        addressed,
				CC:        followers,
				Object:    intent.Object.ID,
			},
		}, nil

	case VerbUndoAnnounce:
		return Envelope{
			Inbox:    intent.Author.Inbox,
			Activity: undo(inner("Announce", intent.Object.ID)),
		}, nil

	case VerbCreateNote:
		content, err := talkScript(intent.URL, now)
		if err != nil {
			return Envelope{}, err
		}
		object := note()
		object.Content = content
		return Envelope{Inbox: intent.Object.Inbox, Activity: create(object)}, nil

	case VerbCreateNoteMention:
		content, err := talkScript(intent.URL, now)
		if err != nil {
			return Envelope{}, err
		}
		inboxURL, err := url.Parse(intent.Author.Inbox)
		if err != nil {
			return Envelope{}, errors.Wrap(err, "invalid author inbox")
		}
		object := note()
		object.InReplyTo = intent.Object.ID
		object.Content = content
		object.Tag = []Tag{{
			Type: "Mention",
			Name: "@" + intent.Author.PreferredUsername + "@" + inboxURL.Hostname(),
		}}
		return Envelope{Inbox: intent.Author.Inbox, Activity: create(object)}, nil

	case VerbCreateNoteImage:
		// attachments never echo caller text; content is the fixed placeholder
		content, err := talkScript("https://localhost", now)
		if err != nil {
			return Envelope{}, err
		}
		object := note()
		object.Content = content
		object.Attachment = []Image{{
			Type:      "Image",
			MediaType: "image/png",
			URL:       intent.URL,
		}}
		return Envelope{Inbox: intent.Object.Inbox, Activity: create(object)}, nil

	case VerbCreateNoteHashtag:
		content, err := talkScript(intent.URL, now)
		if err != nil {
			return Envelope{}, err
		}
		object := note()
		object.Content = content
		object.Tag = []Tag{{Type: "Hashtag", Name: "#" + intent.Tag}}
		activity := create(object)
		activity.Context = []any{
			ContextActivityStreams,
			map[string]string{"Hashtag": "as:Hashtag"},
		}
		return Envelope{Inbox: intent.Object.Inbox, Activity: activity}, nil

	case VerbDeleteNote:
		return Envelope{
			Inbox: intent.Object.Inbox,
			Activity: Activity{
				Context: ContextActivityStreams,
				ID:      stampID + "/activity",
				Type:    "Delete",
				Actor:   me,
				Object: Note{
					ID:           intent.URL,
					Type:         "Note",
					AttributedTo: me,
				},
			},
		}, nil
	}

	return Envelope{}, errors.New("unknown verb: " + string(intent.Verb))
}

// talkScript renders note content from a source URI. Remote content is
// never echoed; only the hostname is surfaced, as a safe link. A loopback
// source renders the current unix second instead.
func talkScript(source string, now time.Time) (string, error) {
	u, err := url.Parse(source)
	if err != nil {
		return "", errors.Wrap(err, "invalid talk source")
	}
	if u.Hostname() == "localhost" {
		return fmt.Sprintf("<p>%d</p>", now.Unix()), nil
	}
	host := u.Hostname()
	return `<p><a href="https://` + host + `/" rel="nofollow noopener noreferrer" target="_blank">` + host + `</a></p>`, nil
}
