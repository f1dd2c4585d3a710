package bot

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waterboxdeveloper/miprimerachamba-bot/pkg/types"
)

type fakeUsers struct {
	exists    bool
	createErr error
	created   []*types.User
	updated   []string
}

func (f *fakeUsers) UserExists(ctx context.Context, telegramID string) bool {
	return f.exists
}

func (f *fakeUsers) CreateUser(ctx context.Context, user *types.User) error {
	f.created = append(f.created, user)
	return f.createErr
}

func (f *fakeUsers) UpdateUser(ctx context.Context, telegramID string, keywords []string, country, jobType string) error {
	f.updated = append(f.updated, telegramID)
	return nil
}

func newTestBot(users *fakeUsers) (*Bot, *fakeReplier) {
	reply := &fakeReplier{}
	b := &Bot{
		reply:    reply,
		users:    users,
		sessions: make(map[int64]*profileSession),
	}
	return b, reply
}

func TestProfileHappyPath(t *testing.T) {
	users := &fakeUsers{}
	b, reply := newTestBot(users)

	b.startProfile(10, "Alice")
	require.True(t, b.hasSession(10))
	require.Len(t, reply.markdowns, 1)
	assert.Contains(t, reply.markdowns[0], "Paso 1/3")

	b.handleProfileMessage(10, "alice", "Alice", "Python, remoto, contract")
	require.Len(t, reply.keyboards, 1)
	assert.Contains(t, reply.keyboards[0], "Paso 2/3")

	b.handleProfileMessage(10, "alice", "Alice", "🇨🇴 Colombia")
	require.Len(t, reply.keyboards, 2)
	assert.Contains(t, reply.keyboards[1], "Paso 3/3")

	b.handleProfileMessage(10, "alice", "Alice", "🤝 Contract")

	// Conversation done: session gone, profile persisted in one shot.
	assert.False(t, b.hasSession(10))
	require.Len(t, users.created, 1)
	saved := users.created[0]
	assert.Equal(t, "alice", saved.TelegramID)
	assert.Equal(t, []string{"Python", "remoto", "contract"}, saved.Keywords)
	assert.Equal(t, "Colombia", saved.Country)
	assert.Equal(t, "contract", saved.JobType)

	require.Len(t, reply.inlines, 1)
	assert.Contains(t, reply.inlines[0], "Perfil guardado")
}

func TestProfileRejectsEmptyKeywords(t *testing.T) {
	b, reply := newTestBot(&fakeUsers{})
	b.startProfile(10, "Alice")

	b.handleProfileMessage(10, "alice", "Alice", " ,  , ")

	require.Len(t, reply.markdowns, 2)
	assert.Contains(t, reply.markdowns[1], "al menos una palabra clave")
	// Still waiting on keywords, no country keyboard yet.
	assert.Empty(t, reply.keyboards)
	assert.True(t, b.hasSession(10))
}

func TestProfileRejectsTooManyKeywords(t *testing.T) {
	b, reply := newTestBot(&fakeUsers{})
	b.startProfile(10, "Alice")

	b.handleProfileMessage(10, "alice", "Alice", "a, b, c, d, e, f")

	require.Len(t, reply.markdowns, 2)
	assert.Contains(t, reply.markdowns[1], "Máximo 5 keywords")
	assert.Empty(t, reply.keyboards)
}

func TestProfileRejectsUnknownCountry(t *testing.T) {
	b, reply := newTestBot(&fakeUsers{})
	b.startProfile(10, "Alice")
	b.handleProfileMessage(10, "alice", "Alice", "python")

	b.handleProfileMessage(10, "alice", "Alice", "Wakanda")

	require.Len(t, reply.markdowns, 2)
	assert.Contains(t, reply.markdowns[1], "País no válido")
	assert.Contains(t, reply.markdowns[1], "Colombia")
	// Country keyboard sent once; the state did not advance to job type.
	assert.Len(t, reply.keyboards, 1)
}

func TestProfileAcceptsSpanishCountryAlias(t *testing.T) {
	users := &fakeUsers{}
	b, _ := newTestBot(users)
	b.startProfile(10, "Alice")
	b.handleProfileMessage(10, "alice", "Alice", "python")

	b.handleProfileMessage(10, "alice", "Alice", "perú")
	b.handleProfileMessage(10, "alice", "Alice", "Cualquiera")

	require.Len(t, users.created, 1)
	assert.Equal(t, "Peru", users.created[0].Country)
}

func TestProfileAnyJobTypeLeavesFilterEmpty(t *testing.T) {
	users := &fakeUsers{}
	b, reply := newTestBot(users)
	b.startProfile(10, "Alice")
	b.handleProfileMessage(10, "alice", "Alice", "python, remote")
	b.handleProfileMessage(10, "alice", "Alice", "🇺🇸 USA")

	b.handleProfileMessage(10, "alice", "Alice", "➡️ Cualquiera")

	require.Len(t, users.created, 1)
	assert.Empty(t, users.created[0].JobType)
	require.Len(t, reply.inlines, 1)
	assert.Contains(t, reply.inlines[0], "Cualquiera")
}

func TestProfileRejectsUnknownJobType(t *testing.T) {
	b, reply := newTestBot(&fakeUsers{})
	b.startProfile(10, "Alice")
	b.handleProfileMessage(10, "alice", "Alice", "python")
	b.handleProfileMessage(10, "alice", "Alice", "Chile")

	b.handleProfileMessage(10, "alice", "Alice", "gig economy")

	require.Len(t, reply.markdowns, 2)
	assert.Contains(t, reply.markdowns[1], "Tipo inválido")
	assert.True(t, b.hasSession(10), "invalid job type keeps the conversation open")
}

func TestProfileUpdatesExistingUser(t *testing.T) {
	users := &fakeUsers{exists: true}
	b, _ := newTestBot(users)
	b.startProfile(10, "Alice")
	b.handleProfileMessage(10, "alice", "Alice", "golang")
	b.handleProfileMessage(10, "alice", "Alice", "Mexico")
	b.handleProfileMessage(10, "alice", "Alice", "💼 Fulltime")

	assert.Empty(t, users.created)
	assert.Equal(t, []string{"alice"}, users.updated)
}

func TestProfileSaveFailureReported(t *testing.T) {
	users := &fakeUsers{createErr: fmt.Errorf("connection refused")}
	b, reply := newTestBot(users)
	b.startProfile(10, "Alice")
	b.handleProfileMessage(10, "alice", "Alice", "python")
	b.handleProfileMessage(10, "alice", "Alice", "Colombia")
	b.handleProfileMessage(10, "alice", "Alice", "Contract")

	require.Len(t, reply.markdowns, 2)
	assert.Contains(t, reply.markdowns[1], "Error al guardar perfil")
	assert.Empty(t, reply.inlines)
}

func TestProfileSaveFailureTruncatesOnRuneBoundary(t *testing.T) {
	users := &fakeUsers{createErr: fmt.Errorf("%s%s", strings.Repeat("x", 99), strings.Repeat("é", 30))}
	b, reply := newTestBot(users)
	b.startProfile(10, "Alice")
	b.handleProfileMessage(10, "alice", "Alice", "python")
	b.handleProfileMessage(10, "alice", "Alice", "Colombia")
	b.handleProfileMessage(10, "alice", "Alice", "Contract")

	require.Len(t, reply.markdowns, 2)
	assert.True(t, utf8.ValidString(reply.markdowns[1]), "message must stay valid UTF-8")
	assert.Contains(t, reply.markdowns[1], strings.Repeat("x", 99)+"é")
	assert.NotContains(t, reply.markdowns[1], "éé")
}

func TestProfileMessageWithoutSessionIgnored(t *testing.T) {
	b, reply := newTestBot(&fakeUsers{})

	b.handleProfileMessage(10, "alice", "Alice", "python")

	assert.Empty(t, reply.markdowns)
	assert.Empty(t, reply.texts)
}

func TestRestartingProfileResetsConversation(t *testing.T) {
	b, reply := newTestBot(&fakeUsers{})
	b.startProfile(10, "Alice")
	b.handleProfileMessage(10, "alice", "Alice", "python")
	require.Len(t, reply.keyboards, 1)

	// /perfil again starts over at keywords.
	b.startProfile(10, "Alice")
	b.handleProfileMessage(10, "alice", "Alice", "Colombia")

	// "Colombia" lands as a keyword, not a country, so the country keyboard
	// shows a second time.
	assert.Len(t, reply.keyboards, 2)
	assert.Contains(t, reply.keyboards[1], "Paso 2/3")
}
