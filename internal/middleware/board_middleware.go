package middleware

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tedstonne/takkr-sub000/internal/models"
	"github.com/tedstonne/takkr-sub000/internal/repositories"
	"github.com/tedstonne/takkr-sub000/internal/utils"
)

// Board returns the board resolved by BoardAccessMiddleware, or nil on
// routes outside the board subtree.
func Board(ctx context.Context) *models.Board {
	b, _ := ctx.Value(ContextKeyBoard).(*models.Board)
	return b
}

// BoardAccessMiddleware resolves the {slug} route variable to a board
// and checks that the authenticated user is its owner or a member.
// Runs after AuthMiddleware. An unknown slug is a 404 and a known board
// the user cannot access is a 403, so the two cases stay
// distinguishable only to users who can already see the board exists.
func BoardAccessMiddleware(boards repositories.BoardRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username := Username(r.Context())
			slug := mux.Vars(r)["slug"]

			board, err := boards.GetBySlug(r.Context(), slug)
			if err != nil {
				utils.Logger.WithError(err).Error("[middleware] resolving board slug")
				utils.RespondErrorWithCode(
					w, http.StatusInternalServerError, utils.ErrCodeInternal, "Internal server error", nil,
				)
				return
			}
			if board == nil {
				utils.RespondErrorWithCode(
					w, http.StatusNotFound, utils.ErrCodeNotFound, "Board not found", nil,
				)
				return
			}

			ok, err := boards.HasAccess(r.Context(), board.ID, username)
			if err != nil {
				utils.Logger.WithError(err).Error("[middleware] checking board access")
				utils.RespondErrorWithCode(
					w, http.StatusInternalServerError, utils.ErrCodeInternal, "Internal server error", nil,
				)
				return
			}
			if !ok {
				utils.RespondErrorWithCode(
					w, http.StatusForbidden, utils.ErrCodeForbidden, "You do not have access to this board", nil,
				)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyBoard, board)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OwnerOnlyMiddleware restricts an endpoint to the board owner. Runs
// after BoardAccessMiddleware, so the board is already in the context
// and the caller is known to have at least member access.
func OwnerOnlyMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			board := Board(r.Context())
			if board == nil || Username(r.Context()) != board.OwnerUsername {
				utils.RespondErrorWithCode(
					w, http.StatusForbidden, utils.ErrCodeForbidden, "Only the board owner may do this", nil,
				)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
