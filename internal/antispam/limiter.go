// Package antispam decides whether free-text messages are accepted, rejected or muted,
// and moderates review comments.
package antispam

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"workshop-order-bot/internal/pkg/config"
	"workshop-order-bot/internal/pkg/metrics"
)

const (
	ReasonRateLimit = "rate_limit"
	reasonBlacklist = "blacklist:"

	shardCount    = 16
	maxLoggedText = 500
)

type VerdictKind int

const (
	Allow VerdictKind = iota
	Reject
	Muted
)

func (k VerdictKind) String() string {
	switch k {
	case Allow:
		return "allow"
	case Reject:
		return "reject"
	case Muted:
		return "muted"
	default:
		return "unknown"
	}
}

type Verdict struct {
	Kind VerdictKind
	// Reason is rate_limit or blacklist:<word> for Reject.
	Reason string
	// Remaining is the rest of the mute for Muted.
	Remaining time.Duration
}

func (v Verdict) Allowed() bool {
	return v.Kind == Allow
}

// RemainingSeconds rounds the remaining mute up to whole seconds.
func (v Verdict) RemainingSeconds() int {
	return int((v.Remaining + time.Second - 1) / time.Second)
}

// SpamLogger persists rejected messages. Failures never change a verdict.
type SpamLogger interface {
	LogSpam(ctx context.Context, chatID int64, text, reason string) error
}

type window struct {
	stamps     []time.Time
	mutedUntil time.Time
}

type shard struct {
	mu      sync.Mutex
	windows map[int64]*window
}

type Limiter struct {
	threshold int
	window    time.Duration
	mute      time.Duration
	whitelist []string
	blacklist []string
	log       SpamLogger
	now       func() time.Time
	shards    [shardCount]shard
}

func NewLimiter(cfg *config.AntiSpamCfg, log SpamLogger, now func() time.Time) *Limiter {
	if now == nil {
		now = time.Now
	}
	l := &Limiter{
		threshold: cfg.Threshold,
		window:    cfg.Window,
		mute:      cfg.Mute,
		whitelist: mergeWords(defaultWhitelist, cfg.Whitelist),
		blacklist: mergeWords(defaultBlacklist, cfg.Blacklist),
		log:       log,
		now:       now,
	}
	for i := range l.shards {
		l.shards[i].windows = make(map[int64]*window)
	}
	return l
}

func (l *Limiter) shard(chatID int64) *shard {
	return &l.shards[uint64(chatID)%shardCount]
}

// Check evaluates one inbound text. A muted chat does not consume a rate-window slot.
// Whitelisted texts skip the blacklist but still count towards the rate limit.
func (l *Limiter) Check(ctx context.Context, chatID int64, text string) Verdict {
	now := l.now()
	lower := strings.ToLower(text)
	var blacklisted string
	if !containsAny(lower, l.whitelist) {
		blacklisted = firstMatch(lower, l.blacklist)
	}

	sh := l.shard(chatID)
	sh.mu.Lock()
	w, ok := sh.windows[chatID]
	if !ok {
		w = &window{}
		sh.windows[chatID] = w
	}

	var verdict Verdict
	switch {
	case now.Before(w.mutedUntil):
		verdict = Verdict{Kind: Muted, Remaining: w.mutedUntil.Sub(now)}
	case blacklisted != "":
		verdict = Verdict{Kind: Reject, Reason: reasonBlacklist + blacklisted}
		w.muteUntil(now.Add(l.mute))
	default:
		w.prune(now.Add(-l.window))
		w.stamps = append(w.stamps, now)
		if len(w.stamps) > l.threshold {
			verdict = Verdict{Kind: Reject, Reason: ReasonRateLimit}
			w.muteUntil(now.Add(l.mute))
		}
	}
	sh.mu.Unlock()

	metrics.SpamVerdicts.WithLabelValues(verdict.Kind.String()).Inc()
	if verdict.Kind == Reject {
		slog.Warn("Message rejected as spam", "chatID", chatID, "reason", verdict.Reason, "mute", l.mute)
		l.logSpam(ctx, chatID, text, verdict.Reason)
	}
	return verdict
}

func (l *Limiter) logSpam(ctx context.Context, chatID int64, text, reason string) {
	if l.log == nil {
		return
	}
	if err := l.log.LogSpam(ctx, chatID, truncate(text, maxLoggedText), reason); err != nil {
		slog.Error("Failed to log spam", "error", err, "chatID", chatID, "reason", reason)
	}
}

// Mute silences chatID for d, or for the configured mute when d is not positive.
func (l *Limiter) Mute(chatID int64, d time.Duration) {
	if d <= 0 {
		d = l.mute
	}
	sh := l.shard(chatID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	w, ok := sh.windows[chatID]
	if !ok {
		w = &window{}
		sh.windows[chatID] = w
	}
	w.muteUntil(l.now().Add(d))
	slog.Info("Chat muted", "chatID", chatID, "duration", d)
}

func (l *Limiter) Unmute(chatID int64) {
	sh := l.shard(chatID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if w, ok := sh.windows[chatID]; ok {
		w.mutedUntil = time.Time{}
	}
}

// Reset forgets both the rate window and the mute of chatID.
func (l *Limiter) Reset(chatID int64) {
	sh := l.shard(chatID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	delete(sh.windows, chatID)
}

// Prune drops windows with no recent messages and no active mute. It returns how many were dropped.
func (l *Limiter) Prune() int {
	now := l.now()
	cutoff := now.Add(-l.window)
	dropped := 0
	for i := range l.shards {
		sh := &l.shards[i]
		sh.mu.Lock()
		for chatID, w := range sh.windows {
			w.prune(cutoff)
			if len(w.stamps) == 0 && !now.Before(w.mutedUntil) {
				delete(sh.windows, chatID)
				dropped++
			}
		}
		sh.mu.Unlock()
	}
	return dropped
}

func (w *window) muteUntil(t time.Time) {
	w.mutedUntil = t
	w.stamps = w.stamps[:0]
}

func (w *window) prune(cutoff time.Time) {
	keep := 0
	for _, stamp := range w.stamps {
		if stamp.After(cutoff) {
			w.stamps[keep] = stamp
			keep++
		}
	}
	w.stamps = w.stamps[:keep]
}

func containsAny(text string, words []string) bool {
	return firstMatch(text, words) != ""
}

func firstMatch(text string, words []string) string {
	for _, word := range words {
		if strings.Contains(text, word) {
			return word
		}
	}
	return ""
}

func mergeWords(base, extra []string) []string {
	words := make([]string, 0, len(base)+len(extra))
	words = append(words, base...)
	for _, word := range extra {
		word = strings.ToLower(strings.TrimSpace(word))
		if word != "" {
			words = append(words, word)
		}
	}
	return words
}

func truncate(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit])
}
