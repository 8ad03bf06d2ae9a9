package antispam

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workshop-order-bot/internal/pkg/config"
	"workshop-order-bot/internal/storage/storagetest"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingLogger struct {
	mu      sync.Mutex
	err     error
	entries []SpamLogEntry
}

func (r *recordingLogger) LogSpam(_ context.Context, chatID int64, text, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, SpamLogEntry{UserID: chatID, Message: text, Reason: reason})
	return r.err
}

func testConfig() *config.AntiSpamCfg {
	cfg := config.Default().AntiSpam
	return &cfg
}

func newTestLimiter(log SpamLogger) (*Limiter, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC)}
	return NewLimiter(testConfig(), log, clock.Now), clock
}

func TestWhitelistShortCircuitsBlacklist(t *testing.T) {
	log := &recordingLogger{}
	l, _ := newTestLimiter(log)

	v := l.Check(context.Background(), 1, "Сколько стоит куплю куртку")
	assert.Equal(t, Allow, v.Kind)
	assert.Empty(t, log.entries)
}

func TestEarningsSpamIsNotWhitelisted(t *testing.T) {
	l, _ := newTestLimiter(&recordingLogger{})

	v := l.Check(context.Background(), 1, "Хочу заработок в интернете")
	assert.Equal(t, Reject, v.Kind)
	assert.Equal(t, "blacklist:заработок", v.Reason)

	v = l.Check(context.Background(), 2, "Мастерская работает в субботу?")
	assert.Equal(t, Allow, v.Kind)
}

func TestBlacklistRejectsAndMutes(t *testing.T) {
	ctx := context.Background()
	log := &recordingLogger{}
	l, clock := newTestLimiter(log)

	v := l.Check(ctx, 1, "Лучшее КАЗИНО онлайн")
	assert.Equal(t, Reject, v.Kind)
	assert.Equal(t, "blacklist:казино", v.Reason)
	require.Len(t, log.entries, 1)
	assert.Equal(t, "blacklist:казино", log.entries[0].Reason)

	var previous time.Duration
	for i := 0; i < 4; i++ {
		clock.Advance(time.Minute)
		v = l.Check(ctx, 1, "привет")
		require.Equal(t, Muted, v.Kind)
		if i > 0 {
			assert.Less(t, v.Remaining, previous)
		}
		previous = v.Remaining
	}
	assert.Equal(t, 60, v.RemainingSeconds())

	clock.Advance(time.Minute)
	v = l.Check(ctx, 1, "привет")
	assert.Equal(t, Allow, v.Kind, "mute expired")
	assert.Len(t, log.entries, 1, "muted checks are not logged")
}

func TestSixthMessageInWindowIsRateLimited(t *testing.T) {
	ctx := context.Background()
	log := &recordingLogger{}
	l, clock := newTestLimiter(log)

	for i := 0; i < 5; i++ {
		require.Equal(t, Allow, l.Check(ctx, 7, "ремонт брюк").Kind, "message %d", i+1)
		clock.Advance(5 * time.Second)
	}
	v := l.Check(ctx, 7, "ремонт брюк")
	assert.Equal(t, Reject, v.Kind)
	assert.Equal(t, ReasonRateLimit, v.Reason)
	require.Len(t, log.entries, 1)
	assert.Equal(t, ReasonRateLimit, log.entries[0].Reason)

	assert.Equal(t, Muted, l.Check(ctx, 7, "ремонт брюк").Kind)
	assert.Equal(t, Allow, l.Check(ctx, 8, "ремонт брюк").Kind, "other chats are independent")
}

func TestWindowSlides(t *testing.T) {
	ctx := context.Background()
	l, clock := newTestLimiter(nil)

	for i := 0; i < 5; i++ {
		require.True(t, l.Check(ctx, 1, "hi").Allowed())
	}
	clock.Advance(61 * time.Second)
	for i := 0; i < 5; i++ {
		require.True(t, l.Check(ctx, 1, "hi").Allowed(), "message %d after the window moved", i+1)
	}
}

func TestMutedChecksDoNotConsumeSlots(t *testing.T) {
	ctx := context.Background()
	l, clock := newTestLimiter(nil)

	l.Mute(1, 10*time.Second)
	for i := 0; i < 20; i++ {
		require.Equal(t, Muted, l.Check(ctx, 1, "hi").Kind)
	}
	clock.Advance(10 * time.Second)
	for i := 0; i < 5; i++ {
		require.True(t, l.Check(ctx, 1, "hi").Allowed())
	}
}

func TestLogFailureDoesNotChangeVerdict(t *testing.T) {
	ctx := context.Background()
	log := &recordingLogger{err: errors.New("db is down")}
	l, _ := newTestLimiter(log)

	assert.Equal(t, Reject, l.Check(ctx, 1, "переходите по ссылке").Kind)
	assert.Equal(t, Muted, l.Check(ctx, 1, "привет").Kind)
}

func TestSpamLogIsTruncated(t *testing.T) {
	log := &recordingLogger{}
	l, _ := newTestLimiter(log)

	l.Check(context.Background(), 1, "реклама "+strings.Repeat("я", 2000))
	require.Len(t, log.entries, 1)
	assert.Equal(t, maxLoggedText, len([]rune(log.entries[0].Message)))
}

func TestAdminOverrides(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLimiter(nil)

	l.Mute(1, 0)
	v := l.Check(ctx, 1, "hi")
	require.Equal(t, Muted, v.Kind)
	assert.Equal(t, 300, v.RemainingSeconds())

	l.Unmute(1)
	l.Unmute(1)
	assert.True(t, l.Check(ctx, 1, "hi").Allowed())

	for i := 0; i < 4; i++ {
		l.Check(ctx, 1, "hi")
	}
	l.Reset(1)
	l.Reset(1)
	for i := 0; i < 5; i++ {
		require.True(t, l.Check(ctx, 1, "hi").Allowed())
	}
}

func TestExtraWordsFromConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Blacklist = []string{" Ставлю Лайки "}
	cfg.Whitelist = []string{"лайки за ремонт"}
	l := NewLimiter(cfg, nil, nil)

	assert.Equal(t, "blacklist:ставлю лайки", l.Check(context.Background(), 1, "ставлю лайки всем").Reason)
	assert.True(t, l.Check(context.Background(), 2, "ставлю лайки за ремонт").Allowed())
}

func TestPrune(t *testing.T) {
	ctx := context.Background()
	l, clock := newTestLimiter(nil)

	l.Check(ctx, 1, "hi")
	l.Check(ctx, 2, "hi")
	l.Mute(3, time.Hour)

	clock.Advance(2 * time.Minute)
	l.Check(ctx, 2, "hi")

	assert.Equal(t, 1, l.Prune())
	assert.Equal(t, Muted, l.Check(ctx, 3, "hi").Kind)
}

func TestConcurrentChecks(t *testing.T) {
	l := NewLimiter(testConfig(), nil, nil)

	var wg sync.WaitGroup
	allowed := make([]int, 8)
	for chat := 0; chat < 8; chat++ {
		wg.Add(1)
		go func(chat int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				if l.Check(context.Background(), int64(chat), "hi").Allowed() {
					allowed[chat]++
				}
			}
		}(chat)
	}
	wg.Wait()
	for chat, n := range allowed {
		assert.Equal(t, 5, n, "chat %d", chat)
	}
}

func TestRepoLogsSpam(t *testing.T) {
	ctx := context.Background()
	repo := NewDefaultRepo(storagetest.Open(t), nil)
	l := NewLimiter(testConfig(), repo, nil)

	l.Check(ctx, 5, "займ без проверок")
	entries, err := repo.ListSpamLogs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(5), entries[0].UserID)
	assert.Equal(t, "blacklist:займ", entries[0].Reason)
}
