package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/louisbranch/coursebot/internal/services/coursebot/router"
)

func keyboard(rows [][]router.Button) tgbotapi.InlineKeyboardMarkup {
	out := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, button := range row {
			if button.URL != "" {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL(button.Label, button.URL))
				continue
			}
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(button.Label, button.Payload))
		}
		out = append(out, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(out...)
}

func parseMode(render router.Render) string {
	if render.HTML {
		return tgbotapi.ModeHTML
	}
	return ""
}

// newMessage renders into a fresh chat message.
func newMessage(chatID int64, render router.Render) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, render.Text)
	msg.ParseMode = parseMode(render)
	msg.ReplyMarkup = keyboard(render.Rows)
	return msg
}

// editMessage replaces the message that carried the pressed button. Inline
// mode messages have no chat and are addressed by inline message id.
func editMessage(source *tgbotapi.CallbackQuery, render router.Render) tgbotapi.EditMessageTextConfig {
	markup := keyboard(render.Rows)
	var edit tgbotapi.EditMessageTextConfig
	if source.Message != nil && source.Message.Chat != nil {
		edit = tgbotapi.NewEditMessageTextAndMarkup(source.Message.Chat.ID, source.Message.MessageID, render.Text, markup)
	} else {
		edit = tgbotapi.EditMessageTextConfig{
			BaseEdit: tgbotapi.BaseEdit{
				InlineMessageID: source.InlineMessageID,
				ReplyMarkup:     &markup,
			},
			Text: render.Text,
		}
	}
	edit.ParseMode = parseMode(render)
	return edit
}
