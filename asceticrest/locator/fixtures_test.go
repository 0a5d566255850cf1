package locator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/krew-solutions/ascetic-rest-go/asceticrest/model"
	"github.com/krew-solutions/ascetic-rest-go/asceticrest/relationship"
	"github.com/krew-solutions/ascetic-rest-go/asceticrest/session/rest"
	"github.com/krew-solutions/ascetic-rest-go/asceticrest/utils/testutils"
)

type User struct {
	model.Entity
}

func (u *User) Relations() map[string]model.RelationFactory {
	return map[string]model.RelationFactory{
		"groups":   relationship.Many(GroupType),
		"roles":    relationship.Many(GroupType, relationship.Key("roles"), relationship.IndexBy("type")),
		"contacts": relationship.Many(ContactType),
		"profile":  relationship.One(ProfileType),
	}
}

type Group struct {
	model.Entity
}

func (g *Group) Relations() map[string]model.RelationFactory {
	return map[string]model.RelationFactory{
		"permissions": relationship.Many(PermissionType),
		"users":       relationship.Many(UserType, relationship.ForeignKey("group_id")),
	}
}

type Post struct {
	model.Entity
}

func (p *Post) Relations() map[string]model.RelationFactory {
	return map[string]model.RelationFactory{
		"author":   relationship.Belongs(UserType, relationship.Key("author"), relationship.IdentityKey("author_id")),
		"reviewer": relationship.Belongs(UserType, relationship.Key("reviewer"), relationship.NullOnNotFound(false)),
		"editor":   relationship.Belongs(UserType, relationship.Key("editor"), relationship.Lazy(false)),
	}
}

var (
	UserType       = model.NewType("users", func() model.Model { return &User{} })
	GroupType      = model.NewType("groups", func() model.Model { return &Group{} })
	PermissionType = model.NewType("permissions", nil)
	ContactType    = model.NewType("contacts", nil)
	ProfileType    = model.NewType("profiles", nil)
	PostType       = model.NewType("posts", func() model.Model { return &Post{} })
)

type fixture struct {
	stub    *testutils.TransportStub
	session *rest.Session
	conn    *Connection
	users   *Locator[*User]
	posts   *Locator[*Post]
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	stub := testutils.NewTransportStub()
	conn := NewConnection(opts...)
	require.NoError(t, conn.Register(GroupType, PermissionType, ContactType, ProfileType))
	users, err := New[*User](conn, UserType)
	require.NoError(t, err)
	posts, err := New[*Post](conn, PostType)
	require.NoError(t, err)
	return &fixture{
		stub:    stub,
		session: rest.NewSession(context.Background(), stub),
		conn:    conn,
		users:   users,
		posts:   posts,
	}
}
