package mocks

import (
	"fmt"

	"github.com/go-telegram/bot/models"
)

// UpdateBuilder constructs Telegram updates for handler tests.
type UpdateBuilder struct {
	update *models.Update
}

// NewUpdateBuilder creates a new UpdateBuilder.
func NewUpdateBuilder() *UpdateBuilder {
	return &UpdateBuilder{
		update: &models.Update{},
	}
}

// chat returns a private chat for positive ids and a group for negative ones,
// the way Telegram numbers them.
func chat(chatID int64) models.Chat {
	if chatID < 0 {
		return models.Chat{ID: chatID, Type: models.ChatTypeGroup}
	}
	return models.Chat{ID: chatID, Type: models.ChatTypePrivate}
}

// sender builds a user with a username derived from the id.
func sender(userID int64) models.User {
	return models.User{
		ID:        userID,
		FirstName: "User",
		Username:  fmt.Sprintf("user%d", userID),
	}
}

// WithMessage sets a text message sent by userID in chatID.
func (b *UpdateBuilder) WithMessage(chatID, userID int64, text string) *UpdateBuilder {
	from := sender(userID)
	b.update.Message = &models.Message{
		ID:   1,
		Chat: chat(chatID),
		From: &from,
		Text: text,
	}
	return b
}

// WithEditedMessage sets an edited message. The bot does not handle these.
func (b *UpdateBuilder) WithEditedMessage(chatID, userID int64, text string) *UpdateBuilder {
	from := sender(userID)
	b.update.EditedMessage = &models.Message{
		ID:   1,
		Chat: chat(chatID),
		From: &from,
		Text: text,
	}
	return b
}

// WithCallbackQuery sets an inline button press on message messageID.
func (b *UpdateBuilder) WithCallbackQuery(chatID, userID int64, messageID int, data string) *UpdateBuilder {
	b.update.CallbackQuery = &models.CallbackQuery{
		ID:   fmt.Sprintf("cb-%d-%d", userID, messageID),
		From: sender(userID),
		Message: models.MaybeInaccessibleMessage{
			Message: &models.Message{
				ID:   messageID,
				Chat: chat(chatID),
			},
		},
		Data: data,
	}
	return b
}

// WithUsername overrides the sender's username on the message or callback.
func (b *UpdateBuilder) WithUsername(username string) *UpdateBuilder {
	if b.update.Message != nil && b.update.Message.From != nil {
		b.update.Message.From.Username = username
	}
	if b.update.CallbackQuery != nil {
		b.update.CallbackQuery.From.Username = username
	}
	return b
}

// WithPhoto attaches a photo to the message. Photo messages carry no text.
func (b *UpdateBuilder) WithPhoto(fileID string) *UpdateBuilder {
	if b.update.Message == nil {
		b.WithMessage(0, 0, "")
	}
	b.update.Message.Text = ""
	b.update.Message.Photo = []models.PhotoSize{
		{FileID: fileID, FileUniqueID: fileID + "_unique", Width: 1280, Height: 960},
	}
	return b
}

// Build returns the constructed Update.
func (b *UpdateBuilder) Build() *models.Update {
	return b.update
}

// MessageUpdate creates a text message update.
func MessageUpdate(chatID, userID int64, text string) *models.Update {
	return NewUpdateBuilder().
		WithMessage(chatID, userID, text).
		Build()
}

// CallbackQueryUpdate creates an inline button press update.
func CallbackQueryUpdate(chatID, userID int64, messageID int, data string) *models.Update {
	return NewUpdateBuilder().
		WithCallbackQuery(chatID, userID, messageID, data).
		Build()
}

// PhotoUpdate creates a photo message update without a caption.
func PhotoUpdate(chatID, userID int64, fileID string) *models.Update {
	return NewUpdateBuilder().
		WithMessage(chatID, userID, "").
		WithPhoto(fileID).
		Build()
}

// EditedMessageUpdate creates an edited text message update.
func EditedMessageUpdate(chatID, userID int64, text string) *models.Update {
	return NewUpdateBuilder().
		WithEditedMessage(chatID, userID, text).
		Build()
}
