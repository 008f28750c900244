package gemini

import "go.uber.org/zap"

// Model - логический ключ модели. Конкретный идентификатор получается через ResolveModel.
type Model string

const (
	ModelPro       Model = "pro"
	ModelFlash     Model = "flash"
	ModelFlash20   Model = "flash-2.0"
	ModelFlashLite Model = "flash-lite"
	ModelPro20     Model = "pro-2.0" // legacy alias

	ModelPro15   Model = "pro-1.5"
	ModelFlash15 Model = "flash-1.5"
	ModelFlash8B Model = "flash-8b"
)

const DefaultModel = ModelPro

var models = map[Model]string{
	ModelPro:       "gemini-2.5-pro",
	ModelFlash:     "gemini-2.5-flash",
	ModelFlash20:   "gemini-2.0-flash",
	ModelFlashLite: "gemini-2.0-flash-lite",
	ModelPro20:     "gemini-2.0-flash",
}

// удалены из API, запросы к ним уходят на DefaultModel
var deprecatedModels = map[Model]string{
	ModelPro15:   "gemini-1.5-pro",
	ModelFlash15: "gemini-1.5-flash",
	ModelFlash8B: "gemini-1.5-flash-8b",
}

// ResolveModel всегда возвращает рабочий идентификатор. Неизвестные и
// устаревшие ключи логируются и заменяются на DefaultModel.
func ResolveModel(key Model, logger *zap.Logger) string {
	if logger == nil {
		logger = zap.NewNop()
	}

	if id, ok := models[key]; ok {
		return id
	}

	fallback := models[DefaultModel]
	if removed, ok := deprecatedModels[key]; ok {
		logger.Warn("model is deprecated and has been removed, using default",
			zap.String("model", string(key)),
			zap.String("removed_id", removed),
			zap.String("default", fallback),
		)
		return fallback
	}

	logger.Warn("invalid model, using default",
		zap.String("model", string(key)),
		zap.String("default", fallback),
	)
	return fallback
}
