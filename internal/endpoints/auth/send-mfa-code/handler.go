package sendmfacode

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"partner-dashboard/internal/common/auth"
	"partner-dashboard/internal/common/config"
	"partner-dashboard/internal/common/errors"
	"partner-dashboard/internal/common/logger"
	"partner-dashboard/internal/common/metrics"
)

const maxBodyBytes = 64 << 10

type Handler struct {
	config   *Config
	service  *Service
	identity auth.IdentityResolver
	errors   *errors.ErrorHandler
	logger   logger.Logger
}

type HandlerOptions struct {
	AppConfig    *config.Config
	CustomConfig *Config
	Logger       logger.Logger
	Identity     auth.IdentityResolver
	Store        CodeStore
	Cooldown     Cooldown
	Mailer       Mailer
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	if opts.Logger == nil {
		opts.Logger = logger.NewStructured("info", "json")
	}
	if opts.Identity == nil {
		return nil, fmt.Errorf("identity resolver is required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("code store is required")
	}

	cfg := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	log := opts.Logger.WithFields(map[string]interface{}{"endpoint": "send-mfa-code"})

	deps := ServiceDependencies{
		Logger:   log,
		Store:    opts.Store,
		Cooldown: opts.Cooldown,
		Mailer:   opts.Mailer,
	}

	return &Handler{
		config:   cfg,
		service:  NewService(deps, cfg),
		identity: opts.Identity,
		errors:   errors.NewErrorHandler(log),
		logger:   log,
	}, nil
}

func setCORSHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
	h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST, OPTIONS")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	token, ok := auth.BearerToken(r.Header.Get("Authorization"))
	if !ok {
		metrics.MFACodesIssued.WithLabelValues("unauthenticated").Inc()
		h.errors.WriteError(w, r, errors.NewUnauthenticatedError("missing bearer token"))
		return
	}

	caller, err := h.identity.Resolve(r.Context(), token)
	if err != nil {
		metrics.MFACodesIssued.WithLabelValues("unauthenticated").Inc()
		h.errors.WriteError(w, r, err)
		return
	}

	input, err := h.decodeInput(r)
	if err != nil {
		metrics.MFACodesIssued.WithLabelValues("invalid").Inc()
		h.errors.WriteError(w, r, err)
		return
	}

	out, err := h.service.Execute(r.Context(), caller, input)
	if err != nil {
		h.errors.WriteError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(out)
}

func (h *Handler) decodeInput(r *http.Request) (*Input, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.NewInvalidInputError("failed to read request body")
	}

	result, err := GetInputSchema().ValidateBytes(body)
	if err != nil {
		return nil, errors.NewInvalidInputError("request body is not valid JSON")
	}
	if !result.Valid {
		return nil, errors.NewInvalidInputError(strings.Join(result.GetErrorMessages(), "; "))
	}

	var input Input
	if err := json.Unmarshal(body, &input); err != nil {
		return nil, errors.NewInvalidInputError("request body is not valid JSON")
	}
	return &input, nil
}
