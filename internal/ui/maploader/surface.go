package maploader

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// DefaultZoom matches the contact section's street-level view.
	DefaultZoom = 15
	// DefaultMarkerTitle labels the marker when no title is given.
	DefaultMarkerTitle = "Location"
	// AnimationDrop is the provider's drop-in marker animation.
	AnimationDrop = "DROP"
)

// LatLng is a geographic coordinate.
type LatLng struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// Style is one provider style rule.
type Style struct {
	FeatureType string           `json:"featureType"`
	ElementType string           `json:"elementType"`
	Stylers     []map[string]any `json:"stylers"`
}

// Marker is the single marker placed on the live map.
type Marker struct {
	Position  LatLng `json:"position"`
	Title     string `json:"title"`
	Animation string `json:"animation"`
}

// MapOptions is handed to a Container to construct the live map.
type MapOptions struct {
	Center            LatLng  `json:"center"`
	Zoom              int     `json:"zoom"`
	Styles            []Style `json:"styles"`
	DisableDefaultUI  bool    `json:"disableDefaultUI"`
	ZoomControl       bool    `json:"zoomControl"`
	MapTypeControl    bool    `json:"mapTypeControl"`
	StreetViewControl bool    `json:"streetViewControl"`
	FullscreenControl bool    `json:"fullscreenControl"`
	Marker            Marker  `json:"-"`
}

// DefaultStyles desaturates the base map, tints water and hides POI labels.
func DefaultStyles() []Style {
	return []Style{
		{
			FeatureType: "all",
			ElementType: "geometry.fill",
			Stylers:     []map[string]any{{"saturation": -20}},
		},
		{
			FeatureType: "water",
			ElementType: "geometry.fill",
			Stylers:     []map[string]any{{"color": "#2D9CDB"}, {"lightness": 40}},
		},
		{
			FeatureType: "poi",
			ElementType: "labels",
			Stylers:     []map[string]any{{"visibility": "off"}},
		},
	}
}

// NewMapOptions builds the options for a map centred on center.
func NewMapOptions(center LatLng, zoom int, markerLabel string) MapOptions {
	if zoom <= 0 {
		zoom = DefaultZoom
	}
	markerLabel = strings.TrimSpace(markerLabel)
	if markerLabel == "" {
		markerLabel = DefaultMarkerTitle
	}
	return MapOptions{
		Center:            center,
		Zoom:              zoom,
		Styles:            DefaultStyles(),
		ZoomControl:       true,
		FullscreenControl: true,
		Marker: Marker{
			Position:  center,
			Title:     markerLabel,
			Animation: AnimationDrop,
		},
	}
}

// Container is a mount point able to construct the provider's map view.
type Container interface {
	Mount(opts MapOptions) error
}

// ContainerFunc adapts a function to Container.
type ContainerFunc func(opts MapOptions) error

// Mount implements Container.
func (f ContainerFunc) Mount(opts MapOptions) error { return f(opts) }

// InitializeSurface constructs the live map inside container. It is only
// valid once the script is ready. A construction error or panic is
// contained to this container: the returned state is StateError and the
// caller renders the fallback, while the shared script stays loaded for
// other consumers.
func (l *Loader) InitializeSurface(container Container, center LatLng, zoom int, markerLabel string) (st State, err error) {
	if current := l.State(); current != StateReady {
		return current, fmt.Errorf("%w (state %s)", ErrNotReady, current)
	}
	if container == nil {
		return StateError, l.surfaceFailed(errors.New("nil container"))
	}

	defer func() {
		if rec := recover(); rec != nil {
			st = StateError
			err = l.surfaceFailed(fmt.Errorf("panic: %v", rec))
		}
	}()

	if mountErr := container.Mount(NewMapOptions(center, zoom, markerLabel)); mountErr != nil {
		return StateError, l.surfaceFailed(mountErr)
	}
	return StateReady, nil
}

func (l *Loader) surfaceFailed(cause error) error {
	err := fmt.Errorf("%w: %w", ErrSurface, cause)
	l.logger.Error("maps", "map surface construction failed, using vector fallback", err, nil)
	return err
}
