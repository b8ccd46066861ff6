package projection

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"teamchat/domain"
)

// history pages arrive newest first, the way the backend serves them.
func messagesDesc(ids ...string) []domain.Message {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	page := make([]domain.Message, 0, len(ids))
	for i, id := range ids {
		page = append(page, domain.Message{
			ID:        id,
			ChatID:    "c1",
			Sender:    "Alice",
			Text:      fmt.Sprintf("message %s", id),
			CreatedAt: base.Add(-time.Duration(i) * time.Minute),
		})
	}
	return page
}

func Test_Apply_Pages_Rebuild_Insertion_Order(t *testing.T) {
	req := require.New(t)
	history := NewHistory("c1")

	// Newest page first, then the older one, like a "load older" scroll.
	req.NoError(history.Apply(messagesDesc("m5", "m4", "m3")))
	req.NoError(history.Apply(messagesDesc("m2", "m1")))

	var ids []string
	for _, m := range history.Messages() {
		ids = append(ids, m.ID)
	}
	req.Equal([]string{"m1", "m2", "m3", "m4", "m5"}, ids)
	req.Equal(5, history.Len())
	req.False(history.Complete())
}

func Test_Apply_Empty_Page_Marks_History_Complete(t *testing.T) {
	req := require.New(t)
	history := NewHistory("c1")

	req.NoError(history.Apply(messagesDesc("m2", "m1")))
	req.NoError(history.Apply(nil))

	req.True(history.Complete())
	req.Equal(2, history.Len())
}

func Test_Apply_Duplicate_Page_Is_Rejected(t *testing.T) {
	req := require.New(t)
	history := NewHistory("c1")

	page := messagesDesc("m3", "m2")
	req.NoError(history.Apply(page))

	// Re-applying the same page means cursor ordering was broken.
	err := history.Apply(page)
	req.Error(err)
	req.Equal(2, history.Len())
}

func Test_Apply_After_Complete_Is_Rejected(t *testing.T) {
	req := require.New(t)
	history := NewHistory("c1")

	req.NoError(history.Apply(nil))
	req.Error(history.Apply(messagesDesc("m1")))
}
