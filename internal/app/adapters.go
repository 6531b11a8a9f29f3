// internal/app/adapters.go
package app

import (
	"assistant-workers/internal/common/logger"

	ec "assistant-workers/internal/workers/ai-conversation/enrich-context"
	ews "assistant-workers/internal/workers/ai-conversation/enrich-web-search"
	fnf "assistant-workers/internal/workers/ai-conversation/fetch-news-feed"
	fw "assistant-workers/internal/workers/ai-conversation/fetch-weather"
	gl "assistant-workers/internal/workers/ai-conversation/geocode-location"
	hum "assistant-workers/internal/workers/ai-conversation/handle-user-message"
	llm "assistant-workers/internal/workers/ai-conversation/llm-synthesis"
	pui "assistant-workers/internal/workers/ai-conversation/parse-user-intent"
)

// Logger adapters for workers that have their own Logger interfaces

type intentLogger struct {
	logger.Logger
}

func (a *intentLogger) With(fields map[string]interface{}) pui.Logger {
	return &intentLogger{a.Logger.With(fields)}
}

type weatherLogger struct {
	logger.Logger
}

func (a *weatherLogger) With(fields map[string]interface{}) fw.Logger {
	return &weatherLogger{a.Logger.With(fields)}
}

type geocodingLogger struct {
	logger.Logger
}

func (a *geocodingLogger) With(fields map[string]interface{}) gl.Logger {
	return &geocodingLogger{a.Logger.With(fields)}
}

type newsLogger struct {
	logger.Logger
}

func (a *newsLogger) With(fields map[string]interface{}) fnf.Logger {
	return &newsLogger{a.Logger.With(fields)}
}

type searchLogger struct {
	logger.Logger
}

func (a *searchLogger) With(fields map[string]interface{}) ews.Logger {
	return &searchLogger{a.Logger.With(fields)}
}

type enrichLogger struct {
	logger.Logger
}

func (a *enrichLogger) With(fields map[string]interface{}) ec.Logger {
	return &enrichLogger{a.Logger.With(fields)}
}

type synthesisLogger struct {
	logger.Logger
}

func (a *synthesisLogger) With(fields map[string]interface{}) llm.Logger {
	return &synthesisLogger{a.Logger.With(fields)}
}

type messageLogger struct {
	logger.Logger
}

func (a *messageLogger) With(fields map[string]interface{}) hum.Logger {
	return &messageLogger{a.Logger.With(fields)}
}
