package mapper

import (
	"testing"
	"time"

	"healthassist-be/internal/entity"
	"healthassist-be/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestChatMapper_MessageMetadata(t *testing.T) {
	m := NewChatMapper()
	local := time.FixedZone("WIB", 7*3600)

	msg := &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: "s1",
		Sender:        "bot",
		Content:       "Rest.",
		Metadata:      map[string]interface{}{"source": "llm", "provider": "groq"},
		Timestamp:     time.Date(2024, 5, 1, 9, 0, 0, 0, local),
	}

	row, err := m.ChatMessageToModel(msg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"source":"llm","provider":"groq"}`, string(row.Metadata))
	assert.Equal(t, time.UTC, row.Timestamp.Location())

	back := m.ChatMessageToEntity(row)
	assert.Equal(t, "groq", back.Metadata["provider"])
	assert.True(t, msg.Timestamp.Equal(back.Timestamp))
}

func TestChatMapper_MessageWithoutOrBrokenMetadata(t *testing.T) {
	m := NewChatMapper()

	row, err := m.ChatMessageToModel(&entity.ChatMessage{Id: uuid.New(), Content: "x"})
	require.NoError(t, err)
	assert.Empty(t, row.Metadata)

	back := m.ChatMessageToEntity(&model.ChatMessage{Content: "legacy", Metadata: datatypes.JSON(`{broken`)})
	assert.Nil(t, back.Metadata)
	assert.Equal(t, "legacy", back.Content)
}
