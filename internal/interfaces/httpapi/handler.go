package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/swaggerdagger987/FDL/internal/platform/logging"
	"github.com/swaggerdagger987/FDL/internal/usecase"
)

type Handler struct {
	screenerService *usecase.ScreenerService
	playerService   *usecase.PlayerService
	syncService     *usecase.SyncService
	syncJobService  *usecase.SyncJobService
	logger          *logging.Logger
	validator       *validator.Validate
}

func NewHandler(
	screenerService *usecase.ScreenerService,
	playerService *usecase.PlayerService,
	syncService *usecase.SyncService,
	syncJobService *usecase.SyncJobService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		screenerService: screenerService,
		playerService:   playerService,
		syncService:     syncService,
		syncJobService:  syncJobService,
		logger:          logger,
		validator:       validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}
