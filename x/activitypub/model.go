package activitypub

// Person is the actor document served at /u/{name}.
type Person struct {
	Context           any             `json:"@context"`
	ID                string          `json:"id"`
	Type              string          `json:"type"`
	Inbox             string          `json:"inbox"`
	Outbox            string          `json:"outbox"`
	Following         string          `json:"following"`
	Followers         string          `json:"followers"`
	PreferredUsername string          `json:"preferredUsername"`
	Name              string          `json:"name"`
	Summary           string          `json:"summary"`
	URL               string          `json:"url"`
	Endpoints         Endpoints       `json:"endpoints"`
	Attachment        []PropertyValue `json:"attachment"`
	Icon              Image           `json:"icon"`
	Image             Image           `json:"image"`
	PublicKey         Key             `json:"publicKey"`
}

// Endpoints is the endpoints field of an actor.
type Endpoints struct {
	SharedInbox string `json:"sharedInbox"`
}

// PropertyValue is a schema.org profile attachment.
type PropertyValue struct {
	Type  string `json:"type"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Image is an icon/image/attachment media reference.
type Image struct {
	Type      string `json:"type"`
	MediaType string `json:"mediaType"`
	URL       string `json:"url"`
}

// Key is the publicKey field of an actor.
type Key struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Owner        string `json:"owner"`
	PublicKeyPem string `json:"publicKeyPem"`
}

// WebFinger is a JRD discovery response.
type WebFinger struct {
	Subject string          `json:"subject"`
	Aliases []string        `json:"aliases"`
	Links   []WebFingerLink `json:"links"`
}

// WebFingerLink is one entry of the links field.
type WebFingerLink struct {
	Rel  string `json:"rel"`
	Type string `json:"type"`
	Href string `json:"href"`
}

// OrderedCollection is the (always empty) outbox/following/followers body.
type OrderedCollection struct {
	Context    string `json:"@context"`
	ID         string `json:"id"`
	Type       string `json:"type"`
	TotalItems int    `json:"totalItems"`
}

// Activity is the outbound activity envelope. Object is either a bare URI,
// a Note, a nested Activity (Undo) or the echoed inbound body (Accept).
type Activity struct {
	Context   any      `json:"@context,omitempty"`
	ID        string   `json:"id"`
	Type      string   `json:"type"`
	Actor     string   `json:"actor"`
	Published string   `json:"published,omitempty"`
	To        []string `json:"to,omitempty"`
	CC        []string `json:"cc,omitempty"`
	Object    any      `json:"object"`
}

// Note is the object of a Create, and doubles as the Delete tombstone
// (everything past attributedTo omitted).
type Note struct {
	ID           string   `json:"id"`
	Type         string   `json:"type"`
	AttributedTo string   `json:"attributedTo"`
	InReplyTo    string   `json:"inReplyTo,omitempty"`
	Content      string   `json:"content,omitempty"`
	URL          string   `json:"url,omitempty"`
	Published    string   `json:"published,omitempty"`
	To           []string `json:"to,omitempty"`
	CC           []string `json:"cc,omitempty"`
	Tag          []Tag    `json:"tag,omitempty"`
	Attachment   []Image  `json:"attachment,omitempty"`
}

// Tag is a Mention or Hashtag entry.
type Tag struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// InboundActivity is the parsed body of a POST to the inbox. Object may be
// a URI string or an embedded object.
type InboundActivity struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Actor  string `json:"actor"`
	Object any    `json:"object"`
}

// RemoteObject is a remote actor or object document, re-fetched on demand
// and discarded with the request.
type RemoteObject struct {
	ID                string `json:"id"`
	Type              string `json:"type"`
	Inbox             string `json:"inbox"`
	PreferredUsername string `json:"preferredUsername"`
	AttributedTo      string `json:"attributedTo"`
}
