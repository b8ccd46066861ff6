package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/dgraph-io/badger/v4"

	"teamchat/domain"
	errs "teamchat/errors"
)

// Cursor part of a key: 19-digit padded nanos, a colon, the message uuid.
var cursorPattern = regexp.MustCompile(`^\d{19}:[0-9a-fA-F-]{36}$`)

type IMessageRepository interface {
	Store(message domain.Message) error
	Get(chatID, messageID string) (domain.Message, error)
	Update(message domain.Message) error
	Page(chatID string, cursor *string, limit int) ([]domain.Message, *string, error)
}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log}
}

// Store persists a message in BadgerDB.
// The key is formatted as "msg:{chat_id}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  2. Prevent data loss by using UUID as a collision disconnector if two messages
//     arrive at the same nanosecond.
//
// The key suffix after the chat prefix doubles as the pagination cursor.
func (m MessageRepository) Store(message domain.Message) error {
	bytes, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(messageKey(message)), bytes)
	})
}

// Update rewrites a message in place. The key is derived from CreatedAt
// and ID, both immutable, so a retry-state change lands on the same key.
func (m MessageRepository) Update(message domain.Message) error {
	return m.Store(message)
}

// Get finds a single message by scanning the chat prefix.
// Linear, acceptable for the reference backend's data sizes.
func (m MessageRepository) Get(chatID, messageID string) (domain.Message, error) {
	var found *domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(chatPrefix(chatID))
		options := badger.DefaultIteratorOptions
		it := txn.NewIterator(options)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var message domain.Message
			err := it.Item().Value(func(value []byte) error {
				return json.Unmarshal(value, &message)
			})
			if err != nil {
				return err
			}
			if message.ID == messageID {
				found = &message
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return domain.Message{}, err
	}
	if found == nil {
		return domain.Message{}, errs.ErrNotFound
	}
	return *found, nil
}

// Page retrieves one page of messages for a chat, newest first, using a
// reverse prefix scan. Thanks to the padded timestamp in the key, the
// scan order is the reverse of insertion order. The returned cursor is
// the key suffix of the last (oldest) collected message; a nil cursor
// means the history was exhausted.
func (m MessageRepository) Page(chatID string, cursor *string, limit int) ([]domain.Message, *string, error) {
	if cursor != nil && !cursorPattern.MatchString(*cursor) {
		return nil, nil, errs.ErrInvalidCursor
	}

	var byteMessages [][]byte
	var lastKey string
	err := m.db.View(func(txn *badger.Txn) error {
		prefixStr := chatPrefix(chatID)
		prefix := []byte(prefixStr)
		prefixLen := len(prefixStr)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch cursor {
		case nil:
			// Seek past any possible timestamp, then walk backward.
			seekKey = append(prefix, []byte("9999999999999999999")...)
		default:
			seekKey = append(prefix, []byte(*cursor)...)
		}

		it.Seek(seekKey)

		// The cursor element itself was returned in the previous page.
		if cursor != nil && it.ValidForPrefix(prefix) && string(it.Item().Key()) == string(seekKey) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if len(byteMessages) == limit {
				m.log.Debug(fmt.Sprintf("Page limit of %d reached for chat %s", limit, chatID))
				break
			}
			item := it.Item()
			// Memorize cursor part of the actual key
			lastKey = string(item.Key()[prefixLen:])
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			byteMessages = append(byteMessages, value)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	if len(byteMessages) == 0 {
		return nil, nil, nil
	}

	messages := make([]domain.Message, 0, len(byteMessages))
	for _, b := range byteMessages {
		var message domain.Message
		if err = json.Unmarshal(b, &message); err != nil {
			return nil, nil, err
		}
		messages = append(messages, message)
	}
	return messages, &lastKey, nil
}

func chatPrefix(chatID string) string {
	return fmt.Sprintf("msg:%s:", chatID)
}

func messageKey(message domain.Message) string {
	return fmt.Sprintf("msg:%s:%019d:%s",
		message.ChatID,
		message.CreatedAt.UnixNano(),
		message.ID,
	)
}
