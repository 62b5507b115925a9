package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Harshitk-cp/recipebot/internal/domain"
	"github.com/Harshitk-cp/recipebot/internal/service"
	"go.uber.org/zap"
)

type RecipeHandler struct {
	resolver *service.Resolver
	logger   *zap.Logger
}

func NewRecipeHandler(resolver *service.Resolver, logger *zap.Logger) *RecipeHandler {
	return &RecipeHandler{resolver: resolver, logger: logger}
}

type recipeListResponse struct {
	Recipes []domain.Recipe `json:"recipes"`
	Count   int             `json:"count"`
}

// Search runs a catalog query outside any dialog. Without parameters it returns
// nothing, the same as an empty constraint set.
func (h *RecipeHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	mode := domain.ModeExact
	if m := q.Get("mode"); m != "" {
		if !domain.ValidQueryMode(m) {
			writeError(w, http.StatusBadRequest, "mode must be exact or partial")
			return
		}
		mode = domain.QueryMode(m)
	}

	req, err := parseSearch(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.resolver.Query(r.Context(), req, mode)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recipeListResponse{Recipes: nonNil(res.Recipes), Count: res.Count})
}

func (h *RecipeHandler) Favorites(w http.ResponseWriter, r *http.Request) {
	favs, err := h.resolver.Favorites(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recipeListResponse{Recipes: nonNil(favs), Count: len(favs)})
}

func (h *RecipeHandler) fail(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrBackendUnavailable) {
		writeError(w, http.StatusServiceUnavailable, "recipe backend unavailable")
		return
	}
	h.logger.Error("recipe request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

func parseSearch(q url.Values) (domain.QueryRequest, error) {
	var req domain.QueryRequest

	if v := strings.TrimSpace(q.Get("name")); v != "" {
		req.Name = &v
	}
	if v := strings.TrimSpace(q.Get("cookbook")); v != "" {
		req.Cookbook = &v
	}
	for _, raw := range q["ingredients"] {
		for _, ing := range strings.Split(raw, ",") {
			if ing = strings.TrimSpace(ing); ing != "" {
				req.Ingredients = append(req.Ingredients, ing)
			}
		}
	}
	if v := q.Get("ease"); v != "" {
		req.Ease = service.ExpandEase(v)
	}

	var err error
	if req.MinRating, err = parseNumber(q, "rating"); err != nil {
		return domain.QueryRequest{}, err
	}
	if req.MaxPrepTime, err = parseNumber(q, "prep_time"); err != nil {
		return domain.QueryRequest{}, err
	}
	return req, nil
}

func parseNumber(q url.Values, key string) (*float64, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, errors.New(key + " must be a number")
	}
	return &n, nil
}

func nonNil(recipes []domain.Recipe) []domain.Recipe {
	if recipes == nil {
		return []domain.Recipe{}
	}
	return recipes
}
