package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"groupbuy-service/internal/engine"
	"groupbuy-service/pkg/logger"
	"groupbuy-service/pkg/oauth"
	"groupbuy-service/prometheus"
)

// Storefront bundles the engine components behind the public HTTP surface.
type Storefront struct {
	assembler *engine.ReadModelAssembler
	ledger    *engine.IntentLedger
	set       *engine.EnablementSet
	gate      *engine.AuthGate
}

// NewStorefront wires the engine components against one record store and one
// token verifier.
func NewStorefront(db *gorm.DB, verifier oauth.Verifier) *Storefront {
	return &Storefront{
		assembler: engine.NewReadModelAssembler(db),
		ledger:    engine.NewIntentLedger(db),
		set:       engine.NewEnablementSet(db),
		gate:      engine.NewAuthGate(verifier, db),
	}
}

// intentItem is one cart line in a batch submission.
type intentItem struct {
	ProdName string `json:"prodName"`
	Qty      int    `json:"qty"`
}

// actionRequest is the POST /products body, discriminated by Action.
type actionRequest struct {
	Action     string       `json:"action"`
	IDToken    string       `json:"idToken"`
	Wave       string       `json:"wave"`
	LeaderID   string       `json:"leaderId"`
	UserID     string       `json:"userId"`
	UserName   string       `json:"userName"`
	UserAvatar string       `json:"userAvatar"`
	ProdName   string       `json:"prodName"`
	IsEnabled  *bool        `json:"isEnabled"`
	Items      []intentItem `json:"items"`
}

// GetProducts handles the storefront read for one leader
func (s *Storefront) GetProducts(c echo.Context) error {
	log := logger.FromContext(c)
	leaderID := c.QueryParam("leaderId")
	userID := c.QueryParam("userId")
	if leaderID == "" {
		log.Warn("Storefront read without leaderId")
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "validation_error", "message": "leaderId is required"})
	}

	view, err := s.assembler.Storefront(c.Request().Context(), leaderID, userID)
	if err != nil {
		return writeError(c, log, err)
	}

	prometheus.RecordStorefrontView(leaderID)
	log.Info("Storefront assembled",
		zap.String("leader_id", leaderID),
		zap.Int("wave_count", len(view.ActiveWaves)))
	return c.JSON(http.StatusOK, view)
}

// PostProducts dispatches the write actions of the storefront surface
func (s *Storefront) PostProducts(c echo.Context) error {
	log := logger.FromContext(c)

	var req actionRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "validation_error", "message": "invalid request data"})
	}

	switch req.Action {
	case "submit_batch_intent":
		return s.submitBatchIntent(c, log, &req)
	case "enable_product":
		return s.enableProduct(c, log, &req)
	case "unbind_leader":
		return s.unbindLeader(c, log, &req)
	default:
		log.Warn("Unknown action", zap.String("action", req.Action))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "validation_error", "message": "unknown action"})
	}
}

func (s *Storefront) submitBatchIntent(c echo.Context, log *zap.Logger, req *actionRequest) error {
	prometheus.AuthAttemptsCounter.Inc()
	if _, err := s.gate.VerifyMember(c.Request().Context(), req.IDToken, req.UserID); err != nil {
		prometheus.AuthErrorsCounter.Inc()
		return writeError(c, log, err)
	}
	prometheus.AuthSuccessCounter.Inc()

	// Each line item is an independent unit; the first failure aborts the
	// rest of the batch and surfaces to the caller unsuppressed.
	for _, item := range req.Items {
		err := s.ledger.Submit(c.Request().Context(),
			req.LeaderID, req.Wave, req.UserID, req.UserName, req.UserAvatar,
			item.ProdName, item.Qty)
		if err != nil {
			log.Error("Intent submission failed",
				zap.String("prod_name", item.ProdName),
				zap.Int("qty", item.Qty),
				zap.Error(err))
			return writeError(c, log, err)
		}
	}

	prometheus.RecordIntentOperation("submit_batch")
	log.Info("Intent batch submitted",
		zap.String("leader_id", req.LeaderID),
		zap.String("wave", req.Wave),
		zap.String("user_id", req.UserID),
		zap.Int("item_count", len(req.Items)))
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (s *Storefront) enableProduct(c echo.Context, log *zap.Logger, req *actionRequest) error {
	if req.IsEnabled == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "validation_error", "message": "isEnabled is required"})
	}

	prometheus.AuthAttemptsCounter.Inc()
	profile, err := s.gate.VerifyLeader(c.Request().Context(), req.IDToken, req.LeaderID)
	if err != nil {
		prometheus.AuthErrorsCounter.Inc()
		return writeError(c, log, err)
	}
	prometheus.AuthSuccessCounter.Inc()

	err = s.set.SetEnabled(c.Request().Context(),
		req.LeaderID, req.Wave, profile.Name, req.ProdName, *req.IsEnabled)
	if err != nil {
		log.Error("Enablement toggle failed",
			zap.String("prod_name", req.ProdName),
			zap.Bool("enable", *req.IsEnabled),
			zap.Error(err))
		return writeError(c, log, err)
	}

	operation := "disable"
	if *req.IsEnabled {
		operation = "enable"
	}
	prometheus.RecordEnablementOperation(operation)
	log.Info("Product enablement toggled",
		zap.String("leader_id", req.LeaderID),
		zap.String("wave", req.Wave),
		zap.String("prod_name", req.ProdName),
		zap.Bool("enable", *req.IsEnabled))
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (s *Storefront) unbindLeader(c echo.Context, log *zap.Logger, req *actionRequest) error {
	prometheus.AuthAttemptsCounter.Inc()
	if err := s.gate.Unbind(c.Request().Context(), req.IDToken); err != nil {
		var de *engine.Error
		if errors.As(err, &de) && (de.Code == "auth_error" || de.Code == "identity_mismatch") {
			prometheus.AuthErrorsCounter.Inc()
		}
		return writeError(c, log, err)
	}
	prometheus.AuthSuccessCounter.Inc()

	log.Info("Leader identity unbound")
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// writeError maps tagged domain errors onto the HTTP surface
func writeError(c echo.Context, log *zap.Logger, err error) error {
	var de *engine.Error
	if errors.As(err, &de) {
		if de.Status >= http.StatusInternalServerError {
			log.Error("Request failed", zap.String("code", de.Code), zap.Error(err))
		} else {
			log.Warn("Request rejected", zap.String("code", de.Code), zap.Error(err))
		}
		return c.JSON(de.Status, echo.Map{"success": false, "error": de.Code, "message": de.Message})
	}
	log.Error("Request failed", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "internal_error"})
}
