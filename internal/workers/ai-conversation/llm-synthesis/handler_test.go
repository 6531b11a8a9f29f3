// internal/workers/ai-conversation/llm-synthesis/handler_test.go
package llmsynthesis

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	apperrors "assistant-workers/internal/common/errors"
	"assistant-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Logger Implementation
// ==========================

// TestLogger implements the Logger interface for testing
type TestLogger struct {
	t      *testing.T
	fields map[string]interface{}
}

func NewTestLogger(t *testing.T) *TestLogger {
	return &TestLogger{
		t:      t,
		fields: make(map[string]interface{}),
	}
}

func (l *TestLogger) Info(msg string, fields map[string]interface{}) {
	l.t.Logf("INFO: %s %v", msg, l.mergeFields(fields))
}

func (l *TestLogger) Warn(msg string, fields map[string]interface{}) {
	l.t.Logf("WARN: %s %v", msg, l.mergeFields(fields))
}

func (l *TestLogger) Error(msg string, fields map[string]interface{}) {
	l.t.Logf("ERROR: %s %v", msg, l.mergeFields(fields))
}

func (l *TestLogger) With(fields map[string]interface{}) Logger {
	return &TestLogger{t: l.t, fields: l.mergeFields(fields)}
}

func (l *TestLogger) mergeFields(fields map[string]interface{}) map[string]interface{} {
	allFields := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		allFields[k] = v
	}
	for k, v := range fields {
		allFields[k] = v
	}
	return allFields
}

// BenchmarkLogger is a minimal logger for benchmarks
type BenchmarkLogger struct{}

func (b *BenchmarkLogger) Info(msg string, fields map[string]interface{})  {}
func (b *BenchmarkLogger) Warn(msg string, fields map[string]interface{})  {}
func (b *BenchmarkLogger) Error(msg string, fields map[string]interface{}) {}
func (b *BenchmarkLogger) With(fields map[string]interface{}) Logger       { return b }

// ==========================
// Test Helper Functions
// ==========================

type fakeCompleter struct {
	name  models.ModelID
	reply string
	err   error

	mu           sync.Mutex
	systemPrompt string
	userMessage  string
	calls        int
}

func (f *fakeCompleter) Name() models.ModelID { return f.name }

func (f *fakeCompleter) Complete(_ context.Context, systemPrompt, userMessage string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.systemPrompt = systemPrompt
	f.userMessage = userMessage
	return f.reply, f.err
}

var fixedNow = time.Date(2025, time.November, 24, 9, 30, 0, 0, time.UTC)

func createTestConfig() *Config {
	cfg := LoadConfig()
	cfg.Timeout = 5 * time.Second
	return cfg
}

func newTestHandler(t *testing.T, completers ...Completer) *Handler {
	h := NewHandler(createTestConfig(), NewTestLogger(t), completers...)
	h.now = func() time.Time { return fixedNow }
	return h
}

func newsContext() models.EnrichmentContext {
	return models.EnrichmentContext{
		Category: models.CategoryNews,
		Provider: "news",
		Text:     "📰 **Свежие новости:**\n\n1. **Курс рубля укрепился**",
	}
}

// ==========================
// Synthesize Tests
// ==========================

func TestSynthesize_LabelsReply(t *testing.T) {
	yandex := &fakeCompleter{name: models.ModelYandexGPT, reply: "  Привет!  "}
	h := newTestHandler(t, yandex)

	out, err := h.Synthesize(context.Background(), &Input{
		Query:    "Привет",
		Username: "ivan",
		Model:    "yandex",
		Context:  models.EmptyContext(),
	})
	require.NoError(t, err)

	assert.Equal(t, "🔵 **Yandex GPT:**\n\nПривет!", out.Response)
	assert.Equal(t, models.ModelYandexGPT, out.Model)
	assert.False(t, out.Refused)
	assert.Equal(t, "Привет", yandex.userMessage)
	assert.Contains(t, yandex.systemPrompt, "2025-11-24")
	assert.Contains(t, yandex.systemPrompt, "Твои знания ограничены 2023 годом")
}

func TestSynthesize_ContextGoesIntoPrompt(t *testing.T) {
	giga := &fakeCompleter{name: models.ModelGigaChat, reply: "Рубль укрепился 📈"}
	h := newTestHandler(t, giga)

	out, err := h.Synthesize(context.Background(), &Input{
		Query:    "что с рублем",
		Username: "ivan",
		Model:    "giga",
		Context:  newsContext(),
	})
	require.NoError(t, err)

	assert.Equal(t, "🟢 **GigaChat:**\n\nРубль укрепился 📈", out.Response)
	assert.Contains(t, giga.systemPrompt, "Курс рубля укрепился")
	assert.Contains(t, giga.systemPrompt, "24 ноября 2025 года")
	assert.Contains(t, giga.systemPrompt, `Пользователь ivan спросил: "что с рублем"`)
}

func TestSynthesize_RefusalFallsBackToContext(t *testing.T) {
	giga := &fakeCompleter{name: models.ModelGigaChat, reply: "Извините, я не могу обсуждать эту тему."}
	h := newTestHandler(t, giga)

	ec := newsContext()
	out, err := h.Synthesize(context.Background(), &Input{Query: "выборы", Model: "giga", Context: ec})
	require.NoError(t, err)

	assert.True(t, out.Refused)
	assert.Contains(t, out.Response, ec.Text)
	assert.NotContains(t, out.Response, "не могу обсуждать")
	assert.True(t, strings.HasPrefix(out.Response, "🟢 **Актуальная информация:**"))
}

func TestSynthesize_Errors(t *testing.T) {
	tests := []struct {
		name     string
		model    string
		reply    string
		err      error
		expected apperrors.ErrorCode
	}{
		{"unknown model", "claude", "", nil, apperrors.ErrCodeUnknownModel},
		{"backend not configured", "giga", "", nil, apperrors.ErrCodeConfigurationMissing},
		{"backend failure", "yandex", "", apperrors.NewModelCallFailedError("yandex", nil), apperrors.ErrCodeModelCallFailed},
		{"backend timeout", "yandex", "", apperrors.NewModelTimeoutError("yandex"), apperrors.ErrCodeModelTimeout},
		{"blank reply", "yandex", "   ", nil, apperrors.ErrCodeModelCallFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, &fakeCompleter{name: models.ModelYandexGPT, reply: tt.reply, err: tt.err})

			out, err := h.Synthesize(context.Background(), &Input{Query: "q", Model: tt.model})
			assert.Nil(t, out)
			assert.True(t, apperrors.HasCode(err, tt.expected), "got %v", err)
		})
	}
}

func TestHandler_DefaultModel(t *testing.T) {
	yandex := &fakeCompleter{name: models.ModelYandexGPT}
	giga := &fakeCompleter{name: models.ModelGigaChat}

	tests := []struct {
		name       string
		completers []Completer
		expected   models.ModelID
		ok         bool
	}{
		{"both configured", []Completer{giga, yandex}, models.ModelYandexGPT, true},
		{"only gigachat", []Completer{giga}, models.ModelGigaChat, true},
		{"nothing configured", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := newTestHandler(t, tt.completers...).DefaultModel()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, m)
		})
	}
}

func TestNewCompleters_SkipsUnconfigured(t *testing.T) {
	cfg := createTestConfig()
	assert.Empty(t, NewCompleters(cfg, NewTestLogger(t)))

	cfg.GigaChat.Credentials = "Y2xpZW50OnNlY3JldA=="
	completers := NewCompleters(cfg, NewTestLogger(t))
	require.Len(t, completers, 1)
	assert.Equal(t, models.ModelGigaChat, completers[0].Name())

	cfg.Yandex.FolderID = "b1g"
	cfg.Yandex.APIKey = "key"
	assert.Len(t, NewCompleters(cfg, NewTestLogger(t)), 2)
}

// ==========================
// Refusal Policy Tests
// ==========================

func TestIsRefusal(t *testing.T) {
	tests := []struct {
		response string
		expected bool
	}{
		{"Я не могу обсуждать политику", true},
		{"К сожалению, НЕ МОГУ ОТВЕТИТЬ на этот вопрос", true},
		{"Не буду обсуждать это", true},
		{"Давайте поговорим о чём-нибудь другом", true},
		{"Не могу помочь с этим запросом", true},
		{"Сегодня в Москве +5°C", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.response, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsRefusal(tt.response))
		})
	}
}

func TestPostprocess(t *testing.T) {
	ec := newsContext()

	t.Run("refusal with context shows context", func(t *testing.T) {
		got := Postprocess(models.ModelYandexGPT, "Не могу ответить", ec)
		assert.Equal(t, "🔵 **Актуальная информация:**\n\n"+ec.Text+
			"\n\n_AI отказался обрабатывать этот запрос, поэтому показаны найденные данные напрямую._", got)
	})

	t.Run("refusal without context keeps reply", func(t *testing.T) {
		got := Postprocess(models.ModelYandexGPT, "Не могу ответить", models.EmptyContext())
		assert.Equal(t, "🔵 **Yandex GPT:**\n\nНе могу ответить", got)
	})

	t.Run("gigachat reply is capped", func(t *testing.T) {
		got := Postprocess(models.ModelGigaChat, strings.Repeat("я", 5000), models.EmptyContext())
		prefix := "🟢 **GigaChat:**\n\n"
		require.True(t, strings.HasPrefix(got, prefix))
		body := strings.TrimPrefix(got, prefix)
		assert.Equal(t, DefaultReplyLimit+3, len([]rune(body)))
		assert.True(t, strings.HasSuffix(body, "..."))
	})

	t.Run("yandex reply is not capped", func(t *testing.T) {
		long := strings.Repeat("я", 5000)
		got := Postprocess(models.ModelYandexGPT, long, models.EmptyContext())
		assert.True(t, strings.HasSuffix(got, long))
	})
}

// ==========================
// Prompt Tests
// ==========================

func TestBuildSystemPrompt_Yandex(t *testing.T) {
	t.Run("without context", func(t *testing.T) {
		prompt := BuildSystemPrompt(models.ModelYandexGPT, PromptData{Now: fixedNow, Context: models.EmptyContext()})

		assert.Equal(t, "Ты — профессиональный умный помощник. Сейчас 2025-11-24 (2025 год). Отвечай кратко и понятно."+
			"\n\n⚠️ ВАЖНО: Твои знания ограничены 2023 годом. Для актуальных новостей 2024-2025 года рекомендуй проверить достоверные источники (РИА, ТАСС, Коммерсантъ).", prompt)
	})

	t.Run("with context", func(t *testing.T) {
		ec := newsContext()
		prompt := BuildSystemPrompt(models.ModelYandexGPT, PromptData{Now: fixedNow, Context: ec})

		assert.Contains(t, prompt, "📰 АКТУАЛЬНАЯ ИНФОРМАЦИЯ ИЗ ИНТЕРНЕТА (24 ноября 2025 года):\n"+ec.Text+"\n\n🎯 КРИТИЧЕСКИ ВАЖНО:\n")
		assert.Contains(t, prompt, "1. Выше — САМЫЕ СВЕЖИЕ новости на 24 ноября 2025 года из реального интернета\n")
		assert.True(t, strings.HasSuffix(prompt, "6. Отвечай кратко, максимум 500 символов\n"))
		assert.NotContains(t, prompt, "⚠️ ВАЖНО")
	})
}

func TestBuildSystemPrompt_GigaChat(t *testing.T) {
	prompt := BuildSystemPrompt(models.ModelGigaChat, PromptData{
		Now:      fixedNow,
		Username: "ivan",
		Query:    "расскажи анекдот",
		Context:  models.EmptyContext(),
	})

	assert.True(t, strings.HasPrefix(prompt, "Текущая дата: 2025-11-24 (2025 год)\n\n"))
	assert.Contains(t, prompt, `Пользователь ivan написал: "расскажи анекдот"`)
	assert.Contains(t, prompt, "✅ Сейчас 2025 год - учитывай это при ответах\n")
	assert.NotContains(t, prompt, "АКТУАЛЬНАЯ ИНФОРМАЦИЯ")
}

func TestRussianDate(t *testing.T) {
	tests := []struct {
		date     time.Time
		expected string
	}{
		{time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), "1 января 2025 года"},
		{time.Date(2025, time.May, 9, 0, 0, 0, 0, time.UTC), "9 мая 2025 года"},
		{time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC), "31 декабря 2026 года"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, russianDate(tt.date))
		})
	}
}

// ==========================
// Benchmark Tests
// ==========================

func BenchmarkSynthesize(b *testing.B) {
	h := NewHandler(createTestConfig(), &BenchmarkLogger{}, &fakeCompleter{name: models.ModelGigaChat, reply: "ok"})
	input := &Input{Query: "новости", Username: "bench", Model: "giga", Context: newsContext()}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = h.Synthesize(context.Background(), input)
	}
}

func BenchmarkBuildSystemPrompt(b *testing.B) {
	data := PromptData{Now: fixedNow, Username: "bench", Query: "новости", Context: newsContext()}
	for i := 0; i < b.N; i++ {
		BuildSystemPrompt(models.ModelYandexGPT, data)
	}
}
