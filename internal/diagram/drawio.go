package diagram

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/stonelake/ticketmap/internal/traverse"
)

// Box geometry and spacing for the depth-layered layout.
const (
	boxWidth   = 180
	boxHeight  = 60
	hSpacing   = 40
	vSpacing   = 80
	marginLeft = 50
	marginTop  = 50
)

type mxFile struct {
	XMLName xml.Name  `xml:"mxfile"`
	Host    string    `xml:"host,attr"`
	Diagram mxDiagram `xml:"diagram"`
}

type mxDiagram struct {
	Name  string       `xml:"name,attr"`
	ID    string       `xml:"id,attr"`
	Model mxGraphModel `xml:"mxGraphModel"`
}

type mxGraphModel struct {
	Dx         int    `xml:"dx,attr"`
	Dy         int    `xml:"dy,attr"`
	Grid       int    `xml:"grid,attr"`
	GridSize   int    `xml:"gridSize,attr"`
	PageWidth  int    `xml:"pageWidth,attr"`
	PageHeight int    `xml:"pageHeight,attr"`
	Root       mxRoot `xml:"root"`
}

type mxRoot struct {
	Cells []mxCell `xml:"mxCell"`
}

type mxCell struct {
	ID       string      `xml:"id,attr"`
	Value    string      `xml:"value,attr,omitempty"`
	Style    string      `xml:"style,attr,omitempty"`
	Vertex   string      `xml:"vertex,attr,omitempty"`
	Edge     string      `xml:"edge,attr,omitempty"`
	Parent   string      `xml:"parent,attr,omitempty"`
	Source   string      `xml:"source,attr,omitempty"`
	Target   string      `xml:"target,attr,omitempty"`
	Geometry *mxGeometry `xml:"mxGeometry,omitempty"`
}

type mxGeometry struct {
	X        int    `xml:"x,attr,omitempty"`
	Y        int    `xml:"y,attr,omitempty"`
	Width    int    `xml:"width,attr,omitempty"`
	Height   int    `xml:"height,attr,omitempty"`
	Relative string `xml:"relative,attr,omitempty"`
	As       string `xml:"as,attr"`
}

// statusBadge classifies free-form workflow status names into a small emoji
// set so node labels can show status without touching the fill color (fill
// is reserved for the relation class).
func statusBadge(status string) string {
	s := strings.ToLower(status)
	switch {
	case s == "":
		return "⚪"
	case containsAny(s, "blocked", "impediment"):
		return "⛔"
	case containsAny(s, "in progress", "implement", "doing", "wip"):
		return "🚧"
	case containsAny(s, "review"):
		return "🔍"
	case containsAny(s, "qa", "test", "verify", "verification"):
		return "🧪"
	case containsAny(s, "done", "closed", "resolved", "complete"):
		return "✅"
	case containsAny(s, "to do", "todo", "backlog", "open", "ready"):
		return "⏳"
	default:
		return "⚪"
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// WriteDrawio renders records and their resolved edges as a draw.io file.
// Nodes are laid out in horizontal rows by depth, each row centered; edges
// carry the relation as their label and the class stroke color.
func WriteDrawio(w io.Writer, records []traverse.Record, res *Resolution, title string, pal Palette) error {
	if title == "" {
		title = "Ticket Dependency Map"
	}

	// Group records by depth, preserving insertion order within each row.
	byDepth := make(map[int][]traverse.Record)
	maxDepth, maxCount := 0, 0
	for _, r := range records {
		byDepth[r.Depth] = append(byDepth[r.Depth], r)
		if r.Depth > maxDepth {
			maxDepth = r.Depth
		}
		if len(byDepth[r.Depth]) > maxCount {
			maxCount = len(byDepth[r.Depth])
		}
	}

	if maxCount == 0 {
		maxCount = 1
	}
	pageWidth := 2*marginLeft + maxCount*boxWidth + (maxCount-1)*hSpacing
	pageHeight := 2*marginTop + (maxDepth+1)*(boxHeight+vSpacing)

	cells := []mxCell{
		{ID: "0"},
		{ID: "1", Parent: "0"},
	}

	cellIDs := make(map[string]string)
	nextID := 2

	depths := make([]int, 0, len(byDepth))
	for d := range byDepth {
		depths = append(depths, d)
	}
	sort.Ints(depths)

	for _, depth := range depths {
		row := byDepth[depth]
		rowWidth := len(row)*boxWidth + (len(row)-1)*hSpacing
		offset := (pageWidth - rowWidth) / 2
		y := marginTop + depth*(boxHeight+vSpacing)

		for i, r := range row {
			id := fmt.Sprintf("%d", nextID)
			nextID++
			cellIDs[r.Key()] = id

			class := Classify(r.Relation, r.Depth)
			style := pal[class]
			label := fmt.Sprintf("%s %s\n%s", statusBadge(r.Ticket.Status), r.Key(), r.Ticket.Summary)

			cells = append(cells, mxCell{
				ID:     id,
				Value:  label,
				Style:  fmt.Sprintf("rounded=1;whiteSpace=wrap;html=1;fillColor=#%s;strokeColor=#%s;strokeWidth=2;", style.Fill, style.Stroke),
				Vertex: "1",
				Parent: "1",
				Geometry: &mxGeometry{
					X:      offset + i*(boxWidth+hSpacing),
					Y:      y,
					Width:  boxWidth,
					Height: boxHeight,
					As:     "geometry",
				},
			})
		}
	}

	for _, e := range res.Edges {
		src, ok := cellIDs[e.Source]
		if !ok {
			continue
		}
		tgt, ok := cellIDs[e.Target]
		if !ok {
			continue
		}
		id := fmt.Sprintf("%d", nextID)
		nextID++

		cells = append(cells, mxCell{
			ID:     id,
			Value:  e.Label,
			Style:  fmt.Sprintf("edgeStyle=none;rounded=0;html=1;strokeColor=#%s;strokeWidth=2;endArrow=classic;endFill=1;", pal[e.Class].Stroke),
			Edge:   "1",
			Parent: "1",
			Source: src,
			Target: tgt,
			Geometry: &mxGeometry{
				Relative: "1",
				As:       "geometry",
			},
		})
	}

	doc := mxFile{
		Host: "ticketmap",
		Diagram: mxDiagram{
			Name: title,
			ID:   "ticketmap-1",
			Model: mxGraphModel{
				Dx:         800,
				Dy:         600,
				Grid:       1,
				GridSize:   10,
				PageWidth:  pageWidth,
				PageHeight: pageHeight,
				Root:       mxRoot{Cells: cells},
			},
		},
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("diagram: write header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("diagram: encode: %w", err)
	}
	return nil
}
