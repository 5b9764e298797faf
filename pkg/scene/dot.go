package scene

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/yunchaoli/cablerig/pkg/rig"
)

// DotOptions configures topology rendering.
type DotOptions struct {
	// Detailed includes link positions and joint archetype parameters in
	// node labels. When false, only body names are shown.
	Detailed bool
}

// ToDOT converts a batch's joint topology to Graphviz DOT: one node per
// body (payload, every link, every anchor), one edge per joint, labeled and
// styled by archetype kind. The resulting string renders with [RenderSVG].
func ToDOT(b *Batch, opts DotOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph rig {\n")
	buf.WriteString("  rankdir=BT;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.15,0.08\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.25;\n")
	buf.WriteString("\n")

	fmt.Fprintf(&buf, "  payload [%s];\n",
		strings.Join(payloadAttrs(b, opts.Detailed), ", "))

	for i := range b.Assemblies {
		writeAssembly(&buf, &b.Assemblies[i], opts.Detailed)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func payloadAttrs(b *Batch, detailed bool) []string {
	label := "payload"
	if detailed {
		label = fmt.Sprintf("payload\nmass: %g\nradius: %g", b.Payload.Mass, b.Payload.Radius)
	}
	return []string{
		fmt.Sprintf("label=%q", label),
		"fillcolor=\"#38708c\"", "fontcolor=white",
	}
}

func writeAssembly(buf *bytes.Buffer, a *rig.Assembly, detailed bool) {
	fmt.Fprintf(buf, "\n  subgraph cluster_a%d {\n", a.Index)
	fmt.Fprintf(buf, "    label=\"assembly %d\";\n", a.Index)
	buf.WriteString("    style=dashed;\n")

	for n := range a.Links {
		label := fmt.Sprintf("link %d", n)
		if detailed {
			p := a.Links[n].Position
			label += fmt.Sprintf("\n(%.2f, %.2f, %.2f)", p.X, p.Y, p.Z)
		}
		fmt.Fprintf(buf, "    %s [label=%q];\n", linkID(a.Index, n), label)
	}

	anchorLabel := string(a.Anchor.Kind)
	if detailed {
		d := a.Anchor.Dimensions
		anchorLabel += fmt.Sprintf("\n%g x %g x %g", d.X, d.Y, d.Z)
	}
	fmt.Fprintf(buf, "    a%d_anchor [label=%q, fillcolor=\"#a88e77\"];\n", a.Index, anchorLabel)
	buf.WriteString("  }\n")

	for _, g := range a.Groups() {
		kind := a.Archetypes[g.Archetype].Kind
		for j := 0; j < g.Len(); j++ {
			fmt.Fprintf(buf, "  %s -> %s [%s];\n",
				bodyID(a.Index, g.Body0, g.Body0Indices[j]),
				bodyID(a.Index, g.Body1, g.Body1Indices[j]),
				strings.Join(edgeAttrs(kind, detailed), ", "))
		}
	}
}

func linkID(assembly, link int) string {
	return fmt.Sprintf("a%d_link%d", assembly, link)
}

func bodyID(assembly int, ref rig.BodyRef, idx int) string {
	switch ref {
	case rig.BodyPayload:
		return "payload"
	case rig.BodyAnchor:
		return fmt.Sprintf("a%d_anchor", assembly)
	default:
		return linkID(assembly, idx)
	}
}

func edgeAttrs(kind rig.JointKind, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", string(kind))}
	if detailed {
		attrs = append(attrs, "fontsize=10")
	}
	switch kind {
	case rig.JointUniversal:
		attrs = append(attrs, "style=bold")
	case rig.JointFixed:
		attrs = append(attrs, "style=dotted")
	}
	return attrs
}

// RenderSVG renders a DOT topology to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the SVG root so the viewBox starts at the
// origin and the element carries explicit pixel dimensions.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
