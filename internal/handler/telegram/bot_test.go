package telegram

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpulse/internal/domain/entity"
	newsUC "stockpulse/internal/usecase/news"
)

type fakeAPI struct {
	mu      sync.Mutex
	sent    []tgbotapi.MessageConfig
	updates chan tgbotapi.Update
	sendErr error
	stopped bool
}

func newFakeAPI() *fakeAPI { return &fakeAPI{updates: make(chan tgbotapi.Update, 8)} }

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return tgbotapi.Message{}, f.sendErr
	}
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel { return f.updates }

func (f *fakeAPI) StopReceivingUpdates() {
	f.mu.Lock()
	f.stopped = true
	f.mu.Unlock()
}

func (f *fakeAPI) messages() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tgbotapi.MessageConfig(nil), f.sent...)
}

func command(chatID, userID int64, textIn string) tgbotapi.Update {
	cmdLen := len(textIn)
	if i := strings.IndexByte(textIn, ' '); i > 0 {
		cmdLen = i
	}
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text:     textIn,
		Chat:     &tgbotapi.Chat{ID: chatID},
		From:     &tgbotapi.User{ID: userID},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: cmdLen}},
	}}
}

func TestBot_Run_RepliesToCommands(t *testing.T) {
	api := newFakeAPI()
	bot := New(api, newCommands(), Config{MaxConcurrent: 1}, nil)

	api.updates <- command(100, 7, "/add tcs.ns")
	api.updates <- tgbotapi.Update{Message: &tgbotapi.Message{Text: "hello", Chat: &tgbotapi.Chat{ID: 100}}}
	api.updates <- tgbotapi.Update{}
	api.updates <- command(100, 7, "/mylist")
	close(api.updates)

	require.NoError(t, bot.Run(context.Background()))

	msgs := api.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, int64(100), msgs[0].ChatID)
	assert.Equal(t, "✅ Added TCS.NS to your watchlist.", msgs[0].Text)
	assert.Equal(t, "📂 Your watchlist:\nTCS.NS", msgs[1].Text)
	assert.True(t, msgs[1].DisableWebPagePreview)
	assert.True(t, api.stopped)
}

func TestBot_Run_StopsOnContext(t *testing.T) {
	api := newFakeAPI()
	bot := New(api, newCommands(), Config{}, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- bot.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestBot_LongReplyIsChunked(t *testing.T) {
	items := make([]entity.ScoredNewsItem, 0, 60)
	for range 60 {
		items = append(items, entity.ScoredNewsItem{NewsItem: entity.NewsItem{Title: strings.Repeat("x", 100)}, Score: 0})
	}
	cmds := newCommands()
	cmds.Agg = &fakeAggregator{reports: map[entity.Symbol]newsUC.SymbolReport{
		"AAPL": {Symbol: "AAPL", Items: items, Summary: entity.Summary{Verdict: entity.VerdictNeutral, ArticleCount: 60}},
	}}
	api := newFakeAPI()
	bot := New(api, cmds, Config{}, nil)

	bot.handle(context.Background(), command(5, 5, "/news AAPL").Message)

	msgs := api.messages()
	require.Len(t, msgs, 2)
	var joined strings.Builder
	for _, m := range msgs {
		assert.LessOrEqual(t, len([]rune(m.Text)), maxMessageRunes)
		joined.WriteString(m.Text)
	}
	assert.Equal(t, 60, strings.Count(joined.String(), "• "))
}

func TestBot_SendFailureStopsChunks(t *testing.T) {
	api := newFakeAPI()
	api.sendErr = errors.New(`Post "https://api.telegram.org/bot123:SECRET/sendMessage": timeout`)
	bot := New(api, newCommands(), Config{}, nil)

	assert.NotPanics(t, func() {
		bot.handle(context.Background(), command(1, 1, "/help").Message)
	})
	assert.Empty(t, api.messages())
}

func TestNew_Defaults(t *testing.T) {
	bot := New(newFakeAPI(), newCommands(), Config{}, nil)
	assert.Equal(t, DefaultConfig(), bot.cfg)
	assert.NotNil(t, bot.logger)
}
