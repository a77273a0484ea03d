package server

import (
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/Its-donkey/gbpl-site/internal/ui/i18n"
	"github.com/Its-donkey/gbpl-site/internal/ui/maploader"
)

type mapView struct {
	State     string
	Fallback  bool
	Surface   template.HTML
	ScriptURL string
	Callback  string
	Center    maploader.LatLng
	Zoom      int
	Label     string
}

type mapStateResponse struct {
	State     string           `json:"state"`
	Mode      string           `json:"mode"`
	ScriptURL string           `json:"scriptURL,omitempty"`
	Callback  string           `json:"callback,omitempty"`
	Center    maploader.LatLng `json:"center"`
	Zoom      int              `json:"zoom"`
	Label     string           `json:"label"`
}

// contactMap decides the first paint of the contact map. Without a usable
// credential the vector fallback is rendered and no provider URL appears in
// the page.
func (s *server) contactMap(tr *i18n.Translator) mapView {
	st := s.maps.State()
	view := mapView{
		State:  st.String(),
		Center: s.cfg.Maps.Center,
		Zoom:   s.cfg.Maps.Zoom,
		Label:  s.cfg.Maps.MarkerLabel,
	}
	if st.Fallback() {
		view.Fallback = true
		view.Surface = maploader.FallbackSVG()
		return view
	}
	// The browser client takes over from here, so the page ships as loading.
	view.State = maploader.StateLoading.String()
	view.Surface = maploader.Placeholder(tr.T("map.loading"))
	view.ScriptURL = s.maps.ScriptURL()
	view.Callback = s.maps.CallbackName()
	return view
}

func (s *server) handleFallbackSVG(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if err := maploader.WriteFallback(w); err != nil {
		s.requestLog(r, "maps").Error("write fallback svg", err)
	}
}

func (s *server) handleMapState(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	st := s.maps.State()
	resp := mapStateResponse{
		State:  st.String(),
		Mode:   string(s.cfg.MapMode()),
		Center: s.cfg.Maps.Center,
		Zoom:   s.cfg.Maps.Zoom,
		Label:  s.cfg.Maps.MarkerLabel,
	}
	if !st.Fallback() {
		resp.ScriptURL = s.maps.ScriptURL()
		resp.Callback = s.maps.CallbackName()
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.requestLog(r, "maps").WithField("state", resp.State).Error("encode map state", err)
	}
}
