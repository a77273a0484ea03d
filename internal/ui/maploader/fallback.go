package maploader

import (
	"bytes"
	"html/template"
	"io"
)

// Reference marker position on the fallback surface (Seoul).
const (
	FallbackMarkerX = 720
	FallbackMarkerY = 140
)

type silhouette struct {
	Region string
	Paths  []string
}

// Simplified continental outlines on a 1000x500 canvas.
var silhouettes = []silhouette{
	{Region: "north-america", Paths: []string{
		"M100,80 L120,70 L150,75 L180,85 L200,100 L210,120 L200,140 L180,155 L150,160 L120,150 L100,130 L90,110 Z",
		"M130,90 L140,85 L155,88 L165,95 L170,105 L165,115 L155,120 L140,118 L130,110 Z",
	}},
	{Region: "south-america", Paths: []string{
		"M220,240 L235,235 L250,240 L260,255 L265,275 L270,300 L265,325 L255,345 L240,355 L225,350 L215,330 L210,305 L215,280 L220,260 Z",
	}},
	{Region: "europe", Paths: []string{
		"M450,80 L470,75 L490,78 L510,85 L525,95 L530,110 L525,125 L510,135 L490,138 L470,133 L455,120 L448,100 Z",
		"M465,90 L475,88 L485,90 L492,97 L495,105 L490,113 L480,115 L470,112 L465,105 Z",
	}},
	{Region: "africa", Paths: []string{
		"M480,150 L500,145 L520,150 L540,165 L555,185 L565,210 L570,240 L565,270 L555,295 L540,315 L520,325 L500,320 L485,305 L475,280 L470,250 L475,220 L480,190 Z",
	}},
	{Region: "asia", Paths: []string{
		"M550,70 L580,65 L620,68 L660,75 L700,85 L740,95 L770,110 L790,130 L800,155 L795,180 L780,200 L750,215 L710,225 L670,228 L630,225 L590,215 L560,200 L540,180 L530,155 L535,130 L545,105 L550,85 Z",
		"M650,100 L670,98 L690,102 L705,110 L715,122 L718,138 L710,150 L695,158 L675,160 L655,155 L640,145 L635,130 L640,115 Z",
		"M720,140 L735,138 L750,142 L760,150 L765,162 L760,175 L748,183 L733,185 L720,180 L712,170 L710,158 Z",
	}},
	{Region: "oceania", Paths: []string{
		"M750,320 L770,318 L790,322 L810,330 L825,342 L830,358 L825,375 L810,388 L790,393 L770,390 L755,380 L745,365 L743,348 Z",
	}},
}

const fallbackSource = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 1000 500" class="map-fallback" role="img" aria-label="World map">
<rect width="1000" height="500" fill="#f3f4f6"/>
<g fill="#9CA3AF" fill-opacity="0.6" stroke="#D1D5DB" stroke-width="0.5">
{{- range .Silhouettes}}
<g data-region="{{.Region}}">{{range .Paths}}<path d="{{.}}"/>{{end}}</g>
{{- end}}
</g>
<g class="map-fallback-marker" data-pulse="true" transform="translate({{.X}}, {{.Y}})">
<circle r="8" fill="#0A2540"/>
<circle r="12" fill="none" stroke="#0A2540" stroke-width="2" opacity="0.5">
<animate attributeName="r" from="8" to="20" dur="1.5s" repeatCount="indefinite"/>
<animate attributeName="opacity" from="0.6" to="0" dur="1.5s" repeatCount="indefinite"/>
</circle>
</g>
</svg>`

const placeholderSource = `<div class="map-loading" aria-busy="true" data-map-state="loading"><div class="map-loading-dot"></div><p>{{.}}</p></div>`

var (
	fallbackSVG         = renderFallback()
	placeholderTemplate = template.Must(template.New("placeholder").Parse(placeholderSource))
)

func renderFallback() template.HTML {
	tmpl := template.Must(template.New("fallback").Parse(fallbackSource))
	var buf bytes.Buffer
	data := struct {
		Silhouettes []silhouette
		X, Y        int
	}{silhouettes, FallbackMarkerX, FallbackMarkerY}
	if err := tmpl.Execute(&buf, data); err != nil {
		panic(err)
	}
	return template.HTML(buf.String())
}

// FallbackSVG returns the static vector map. The markup is rendered once at
// start-up from constant data, so every call returns identical output.
func FallbackSVG() template.HTML {
	return fallbackSVG
}

// WriteFallback writes the fallback surface as a standalone SVG document.
func WriteFallback(w io.Writer) error {
	_, err := io.WriteString(w, string(fallbackSVG))
	return err
}

// Placeholder renders the neutral loading block shown while the script loads.
func Placeholder(label string) template.HTML {
	var buf bytes.Buffer
	if err := placeholderTemplate.Execute(&buf, label); err != nil {
		return template.HTML(`<div class="map-loading" aria-busy="true" data-map-state="loading"></div>`)
	}
	return template.HTML(buf.String())
}
