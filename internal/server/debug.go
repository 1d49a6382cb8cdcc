package server

import (
	"encoding/json"
	"net/http"

	"github.com/CodeConiglietto/diggdrasil-sub000/internal/engine"
)

// DebugHandler предоставляет доступ к внутреннему состоянию движка
type DebugHandler struct {
	Service *engine.GameService
}

func NewDebugHandler(s *engine.GameService) *DebugHandler {
	return &DebugHandler{Service: s}
}

// RegisterRoutes регистрирует debug-эндпоинты
func (h *DebugHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/debug/window", h.handleWindow)
	mux.HandleFunc("/debug/entities", h.handleDumpEntities)
	mux.HandleFunc("/debug/queue", h.handleTurnQueue)
	mux.HandleFunc("/debug/snapshot", h.handleSnapshot)
}

// /debug/window - окно 3x3: смещение, границы и сущности по чанкам
func (h *DebugHandler) handleWindow(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Service.DebugWindow())
}

// /debug/entities - дамп всех резидентных сущностей (включая скрытые параметры AI)
func (h *DebugHandler) handleDumpEntities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Service.DebugEntities())
}

// /debug/queue - просмотр очереди ходов.
// TurnQueue - это куча, порядок в слайсе не совпадает с порядком извлечения.
func (h *DebugHandler) handleTurnQueue(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Service.DebugQueue())
}

// /debug/snapshot - то же, что получает наблюдатель, без логов
func (h *DebugHandler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Service.Snapshot())
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	// Разрешаем запросы с любого источника (нужно для локального debug-клиента)
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	w.Header().Set("Content-Type", "application/json")

	if data == nil {
		w.Write([]byte("[]"))
		return
	}

	json.NewEncoder(w).Encode(data)
}
