package plot

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	"github.com/agenthands/wordmap/internal/core/model"
)

const (
	PointSize    = 12
	PointOpacity = 0.8
	LineColor    = "rgba(217, 217, 217, 0.14)"
	LineWidth    = 0.5
)

// Figure is a Plotly figure: one scatter3d trace per cluster plus a layout.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

type Trace struct {
	X      []float64 `json:"x"`
	Y      []float64 `json:"y"`
	Z      []float64 `json:"z"`
	Text   []string  `json:"text"`
	Name   string    `json:"name"`
	Mode   string    `json:"mode"`
	Type   string    `json:"type"`
	Marker Marker    `json:"marker"`
}

type Marker struct {
	Color   string     `json:"color"`
	Size    float64    `json:"size"`
	Opacity float64    `json:"opacity"`
	Line    MarkerLine `json:"line"`
}

type MarkerLine struct {
	Color string  `json:"color"`
	Width float64 `json:"width"`
}

type Layout struct {
	Title  string `json:"title"`
	Scene  Scene  `json:"scene"`
	Margin Margin `json:"margin"`
	Legend Legend `json:"legend"`
}

type Scene struct {
	XAxis       Axis   `json:"xaxis"`
	YAxis       Axis   `json:"yaxis"`
	ZAxis       Axis   `json:"zaxis"`
	AspectRatio Vec3   `json:"aspectratio"`
	Camera      Camera `json:"camera"`
}

type Axis struct {
	Title string `json:"title"`
}

type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type Camera struct {
	Eye Vec3 `json:"eye"`
}

type Margin struct {
	L int `json:"l"`
	R int `json:"r"`
	B int `json:"b"`
	T int `json:"t"`
}

type Legend struct {
	Title       LegendTitle `json:"title"`
	Font        Font        `json:"font"`
	YAnchor     string      `json:"yanchor"`
	XAnchor     string      `json:"xanchor"`
	Orientation string      `json:"orientation"`
}

type LegendTitle struct {
	Text string `json:"text"`
}

type Font struct {
	Size int `json:"size"`
}

func DefaultLayout() Layout {
	return Layout{
		Title: "Semantic Clusters of Words",
		Scene: Scene{
			XAxis:       Axis{Title: "PCA Dimension 1"},
			YAxis:       Axis{Title: "PCA Dimension 2"},
			ZAxis:       Axis{Title: "PCA Dimension 3"},
			AspectRatio: Vec3{X: 1, Y: 1, Z: 1},
			Camera:      Camera{Eye: Vec3{X: 1.5, Y: 1.5, Z: 1.5}},
		},
		Margin: Margin{L: 0, R: 0, B: 0, T: 30},
		Legend: Legend{
			Title:       LegendTitle{Text: "Clusters"},
			Font:        Font{Size: 12},
			YAnchor:     "top",
			XAnchor:     "right",
			Orientation: "v",
		},
	}
}

func NewTrace(t model.ClusterTrace) Trace {
	x, y, z, text := t.Axes()
	return Trace{
		X:    x,
		Y:    y,
		Z:    z,
		Text: text,
		Name: fmt.Sprintf("Cluster %d", t.ClusterID),
		Mode: "markers+text",
		Type: "scatter3d",
		Marker: Marker{
			Color:   t.Color,
			Size:    PointSize,
			Opacity: PointOpacity,
			Line:    MarkerLine{Color: LineColor, Width: LineWidth},
		},
	}
}

// Build turns projected traces into a figure with the default layout.
func Build(traces []model.ClusterTrace) *Figure {
	fig := &Figure{
		Data:   make([]Trace, 0, len(traces)),
		Layout: DefaultLayout(),
	}
	for _, t := range traces {
		fig.Data = append(fig.Data, NewTrace(t))
	}
	return fig
}

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="https://cdn.plot.ly/plotly-2.35.2.min.js"></script>
</head>
<body>
<div id="plot" style="width:100%;height:95vh;"></div>
<script>
var fig = {{.Figure}};
Plotly.newPlot('plot', fig.data, fig.layout);
</script>
</body>
</html>
`))

// WriteHTML renders fig as a standalone page that draws it with Plotly.
func WriteHTML(w io.Writer, fig *Figure) error {
	data, err := json.Marshal(fig)
	if err != nil {
		return fmt.Errorf("failed to encode figure: %w", err)
	}
	return page.Execute(w, struct {
		Title  string
		Figure template.JS
	}{
		Title:  fig.Layout.Title,
		Figure: template.JS(data),
	})
}
