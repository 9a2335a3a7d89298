package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/tedstonne/takkr-sub000/internal/config"
	"github.com/tedstonne/takkr-sub000/internal/dtos"
	"github.com/tedstonne/takkr-sub000/internal/middleware"
	"github.com/tedstonne/takkr-sub000/internal/services"
	"github.com/tedstonne/takkr-sub000/internal/utils"
)

var validate = validator.New()

// AuthController exposes the registration and login ceremonies plus
// session endpoints. Verification failures are reported with a generic
// message so a caller cannot probe which check rejected them.
type AuthController struct {
	ceremonies services.CeremonyService
	sessions   services.SessionService
	cfg        *config.Config
}

func NewAuthController(
	ceremonies services.CeremonyService,
	sessions services.SessionService,
	cfg *config.Config,
) *AuthController {
	return &AuthController{ceremonies: ceremonies, sessions: sessions, cfg: cfg}
}

// ---------------------------------------------------------------------
// Registration ceremony
// ---------------------------------------------------------------------

func (c *AuthController) RegisterChallenge(w http.ResponseWriter, r *http.Request) {
	var req dtos.RegisterChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", nil, err,
		)
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid username", nil, err,
		)
		return
	}

	opts, err := c.ceremonies.BeginRegistration(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, utils.ErrUsernameTaken) {
			utils.RespondErrorWithCode(
				w, http.StatusConflict, utils.ErrCodeUsernameTaken, "Username is already taken", nil,
			)
			return
		}
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to issue challenge", nil, err,
		)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, opts)
}

func (c *AuthController) RegisterVerify(w http.ResponseWriter, r *http.Request) {
	var req dtos.RegisterVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", nil, err,
		)
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid credential payload", nil, err,
		)
		return
	}

	user, err := c.ceremonies.FinishRegistration(r.Context(), req.Username, req.Credential)
	if err != nil {
		c.respondCeremonyFailure(w, "Registration failed", err)
		return
	}

	utils.SetSessionCookie(w, c.sessions.Create(user.Username), c.cfg.SessionTTL)
	utils.RespondWithJSON(w, http.StatusCreated, dtos.MeResponse{Username: user.Username})
}

// ---------------------------------------------------------------------
// Login ceremony
// ---------------------------------------------------------------------

func (c *AuthController) LoginChallenge(w http.ResponseWriter, r *http.Request) {
	var req dtos.LoginChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", nil, err,
		)
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid username", nil, err,
		)
		return
	}

	opts, err := c.ceremonies.BeginLogin(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, utils.ErrUserNotFound) {
			// Same shape as a verification failure: the endpoint must not
			// confirm which usernames exist.
			utils.RespondErrorWithCode(
				w, http.StatusUnauthorized, utils.ErrCodeVerificationFailed, "Authentication failed", nil,
			)
			return
		}
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to issue challenge", nil, err,
		)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, opts)
}

func (c *AuthController) LoginDiscover(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, c.ceremonies.BeginDiscoverableLogin())
}

func (c *AuthController) LoginVerify(w http.ResponseWriter, r *http.Request) {
	var req dtos.LoginVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", nil, err,
		)
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid credential payload", nil, err,
		)
		return
	}

	user, err := c.ceremonies.FinishLogin(r.Context(), req.Credential)
	if err != nil {
		c.respondCeremonyFailure(w, "Authentication failed", err)
		return
	}

	utils.SetSessionCookie(w, c.sessions.Create(user.Username), c.cfg.SessionTTL)
	utils.RespondWithJSON(w, http.StatusOK, dtos.MeResponse{Username: user.Username})
}

// ---------------------------------------------------------------------
// Session endpoints
// ---------------------------------------------------------------------

func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	utils.ClearSessionCookie(w)
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, dtos.MeResponse{
		Username: middleware.Username(r.Context()),
	})
}

// respondCeremonyFailure collapses every ceremony failure into one
// public message; the specific cause goes to the log only.
func (c *AuthController) respondCeremonyFailure(w http.ResponseWriter, publicMsg string, err error) {
	switch {
	case errors.Is(err, utils.ErrChallengeNotFound),
		errors.Is(err, utils.ErrVerificationFailed),
		errors.Is(err, utils.ErrUserNotFound):
		utils.RespondErrorWithCode(
			w, http.StatusUnauthorized, utils.ErrCodeVerificationFailed, publicMsg, nil, err,
		)
	default:
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal, publicMsg, nil, err,
		)
	}
}
