package server

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"math"
	"net/http"
	"strconv"

	"menu-recommender/internal/catalog"
	"menu-recommender/internal/recommend"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.New("").Funcs(template.FuncMap{
	"num": formatNumber,
}).ParseFS(templateFS, "templates/*.html"))

// mealSlots is how many eaten meals the form asks for.
var mealSlots = []int{1, 2, 3}

type indexPage struct {
	Slots []int
	Names []string
}

func (s *MenuServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	foods, err := s.catalog.Load(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to load catalog")
		http.Error(w, "menu unavailable", http.StatusInternalServerError)
		return
	}
	s.render(w, "index.html", indexPage{Slots: mealSlots, Names: catalog.New(foods).Names()})
}

func (s *MenuServer) handleRecommendForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	sex := r.PostForm.Get("gender")
	if sex == "" {
		sex = r.PostForm.Get("sex")
	}
	if sex == "" {
		sex = "female"
	}
	age := r.PostForm.Get("age")
	if age == "" {
		age = "0"
	}

	meals := make([]string, 0, len(mealSlots))
	for _, slot := range mealSlots {
		meals = append(meals, r.PostForm.Get("meal"+strconv.Itoa(slot)))
	}

	out, err := s.recommend(r.Context(), recommendInput{
		Meals:     meals,
		Allergies: splitList(r.PostForm.Get("allergies")),
		Sex:       sex,
		Age:       age,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, recommend.ErrInvalidTargetProfile) {
			status = http.StatusBadRequest
		}
		s.log.Error().Err(err).Msg("Recommendation failed")
		http.Error(w, "recommendation failed", status)
		return
	}

	s.render(w, "result.html", out)
}

func (s *MenuServer) render(w http.ResponseWriter, name string, data interface{}) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		s.log.Error().Err(err).Str("template", name).Msg("Failed to render page")
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.log.Warn().Err(err).Msg("Failed to write page")
	}
}

// formatNumber drops trailing zeros and rounds to one decimal.
func formatNumber(v interface{}) string {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case *float64:
		if n == nil {
			return ""
		}
		f = *n
	case int:
		f = float64(n)
	default:
		return ""
	}
	return strconv.FormatFloat(math.Round(f*10)/10, 'f', -1, 64)
}
