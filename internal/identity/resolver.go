package identity

import "github.com/augustos0204/room-stream-api/internal/models"

// Kind tags the single identity a connection holds for its whole life.
type Kind string

const (
	KindAnonymous     Kind = "anonymous"
	KindAuthenticated Kind = "authenticated"
	KindApplication   Kind = "application"
)

// Application is the credential identity bound to a connection
// authenticated with an application key.
type Application struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedBy string `json:"createdBy"`
}

// Identity is resolved once at connect time. Exactly one of User and App is
// set, or neither for anonymous connections. ClientID is always the
// transport connection id.
type Identity struct {
	Kind     Kind
	ClientID string
	User     *models.AuthUser
	App      *Application
}

func Anonymous(clientID string) Identity {
	return Identity{Kind: KindAnonymous, ClientID: clientID}
}

func Authenticated(clientID string, user *models.AuthUser) Identity {
	return Identity{Kind: KindAuthenticated, ClientID: clientID, User: user}
}

func FromApplication(clientID string, app *Application) Identity {
	return Identity{Kind: KindApplication, ClientID: clientID, App: app}
}

// Resolve computes the canonical participant key from a transport id and an
// optional authenticated subject id. Authenticated users keep the same key
// across reconnects; anonymous keys live and die with the connection.
func Resolve(clientID, subjectID string) string {
	if subjectID != "" {
		return subjectID
	}
	return clientID
}

// Key is the participant key used for every repository operation.
func (id Identity) Key() string {
	if id.App != nil {
		return "app_" + id.App.ID
	}
	if id.User != nil {
		return Resolve(id.ClientID, id.User.ID)
	}
	return Resolve(id.ClientID, "")
}

// SubjectID returns the authenticated subject id, or empty for
// application and anonymous connections.
func (id Identity) SubjectID() string {
	if id.User != nil {
		return id.User.ID
	}
	return ""
}

// DisplayName picks the name shown to other room members. Anonymous
// connections use the supplied name and may have none.
func (id Identity) DisplayName(participantName string) string {
	if id.App != nil {
		return "[App] " + id.App.Name
	}
	if id.User != nil {
		if id.User.Email != "" {
			return id.User.Email
		}
		if id.User.Name != "" {
			return id.User.Name
		}
		return "User"
	}
	return participantName
}
