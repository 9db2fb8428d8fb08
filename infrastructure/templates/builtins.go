package templates

import (
	"fmt"
	"strconv"

	"grapheditor/application/ports"
	"grapheditor/domain/document"
)

func builtins() []Template {
	return []Template{
		circleGraph(),
		completeGraph(),
		diamond(),
		hardcoded(),
	}
}

func defaultNodeAttributes(numNodes int) map[string]interface{} {
	return map[string]interface{}{
		"value":      100,
		"attack_len": numNodes,
		"blindness":  0.0,
		"memory":     1,
		"target":     true,
	}
}

type sizedParams struct {
	NumNodes int                    `json:"num_nodes" validate:"min=1,max=500"`
	NodeAtt  map[string]interface{} `json:"node_att"`
}

var sizedParamSpecs = []ports.TemplateParam{
	{Name: "num_nodes", Type: "int", Required: true, Help: "Number of nodes"},
	{Name: "node_att", Type: "dict", Help: "Attributes overriding the node defaults"},
}

func numberedNodes(n int, attrs map[string]interface{}) map[string]map[string]interface{} {
	nodes := make(map[string]map[string]interface{}, n)
	for i := 0; i < n; i++ {
		nodes[strconv.Itoa(i)] = merge(attrs, nil)
	}
	return nodes
}

func edge(source, target string, attrs map[string]interface{}) map[string]interface{} {
	e := merge(attrs, nil)
	e["nodes"] = []interface{}{source, target}
	return e
}

func undirected() document.Settings {
	directed := false
	return document.Settings{Directed: &directed}
}

func circleGraph() Template {
	return Template{
		Info: ports.TemplateInfo{
			Name:        "circle_graph",
			Title:       "Circle",
			Description: "Nodes joined in a single cycle",
			Params:      sizedParamSpecs,
		},
		Generate: func(params map[string]interface{}) (document.Document, string, error) {
			var p sizedParams
			if err := bind(params, &p); err != nil {
				return document.Document{}, "", err
			}

			doc := document.Document{
				Settings: undirected(),
				Nodes:    numberedNodes(p.NumNodes, merge(defaultNodeAttributes(p.NumNodes), p.NodeAtt)),
			}
			lenAttr := map[string]interface{}{"len": 1}
			switch {
			case p.NumNodes == 2:
				doc.Edges = append(doc.Edges, edge("0", "1", lenAttr))
			case p.NumNodes > 2:
				for i := 0; i < p.NumNodes; i++ {
					doc.Edges = append(doc.Edges, edge(strconv.Itoa(i), strconv.Itoa((i+1)%p.NumNodes), lenAttr))
				}
			}
			return doc, fmt.Sprintf("%d_circle", p.NumNodes), nil
		},
	}
}

func completeGraph() Template {
	return Template{
		Info: ports.TemplateInfo{
			Name:        "complete_graph",
			Title:       "Clique",
			Description: "Every pair of nodes joined by an edge",
			Params:      sizedParamSpecs,
		},
		Generate: func(params map[string]interface{}) (document.Document, string, error) {
			var p sizedParams
			if err := bind(params, &p); err != nil {
				return document.Document{}, "", err
			}

			doc := document.Document{
				Settings: undirected(),
				Nodes:    numberedNodes(p.NumNodes, merge(defaultNodeAttributes(p.NumNodes), p.NodeAtt)),
			}
			lenAttr := map[string]interface{}{"len": 1}
			for i := 0; i < p.NumNodes; i++ {
				for j := i + 1; j < p.NumNodes; j++ {
					doc.Edges = append(doc.Edges, edge(strconv.Itoa(i), strconv.Itoa(j), lenAttr))
				}
			}
			return doc, fmt.Sprintf("%d_clique", p.NumNodes), nil
		},
	}
}

type diamondParams struct {
	Values    []float64              `json:"values" validate:"required,min=1,max=200"`
	NodeAtt   map[string]interface{} `json:"node_att"`
	TargetAtt map[string]interface{} `json:"target_att"`
	EdgeAtt   map[string]interface{} `json:"edge_att"`
}

func diamond() Template {
	return Template{
		Info: ports.TemplateInfo{
			Name:        "diamond",
			Title:       "Diamond",
			Description: "A start and a stop node with one target per value between them",
			Params: []ports.TemplateParam{
				{Name: "values", Type: "list", Required: true, Help: "Value of each target"},
				{Name: "node_att", Type: "dict", Help: "Attributes of the start and stop nodes"},
				{Name: "target_att", Type: "dict", Help: "Attributes of the targets"},
				{Name: "edge_att", Type: "dict", Help: "Attributes of every edge"},
			},
		},
		Generate: func(params map[string]interface{}) (document.Document, string, error) {
			var p diamondParams
			if err := bind(params, &p); err != nil {
				return document.Document{}, "", err
			}

			nodeAttr := merge(map[string]interface{}{"target": false, "memory": len(p.Values)}, p.NodeAtt)
			targetAttr := merge(map[string]interface{}{
				"target": true, "value": 1, "memory": 1, "attack_len": 1, "blindness": 0.0,
			}, p.TargetAtt)
			edgeAttr := merge(map[string]interface{}{"len": 1}, p.EdgeAtt)

			directed := true
			doc := document.Document{
				Settings: document.Settings{Directed: &directed},
				Nodes: map[string]map[string]interface{}{
					"start": merge(nodeAttr, nil),
					"stop":  merge(nodeAttr, nil),
				},
				Edges: []map[string]interface{}{edge("stop", "start", edgeAttr)},
			}
			for idx, val := range p.Values {
				name := fmt.Sprintf("n_%d_v_%s", idx, formatNumber(val))
				doc.Nodes[name] = merge(targetAttr, map[string]interface{}{"value": val})
				doc.Edges = append(doc.Edges, edge("start", name, edgeAttr), edge(name, "stop", edgeAttr))
			}
			return doc, "diamond", nil
		},
	}
}

func hardcoded() Template {
	return Template{
		Info: ports.TemplateInfo{
			Name:        document.HardcodedLoader,
			Title:       "Hardcoded",
			Description: "A graph spelled out node by node",
			Params: []ports.TemplateParam{
				{Name: "nodes", Type: "dict", Default: map[string]interface{}{}, Help: "Node id to attributes"},
				{Name: "targets", Type: "dict", Default: map[string]interface{}{}, Help: "Target id to attributes"},
				{Name: "edges", Type: "list", Default: []interface{}{}, Help: "Edges with their endpoints under nodes"},
				{Name: "settings", Type: "dict", Default: map[string]interface{}{}, Help: "directed flag and default attributes"},
			},
		},
		Generate: func(params map[string]interface{}) (document.Document, string, error) {
			doc, err := document.FromLoaderParams(params)
			if err != nil {
				return document.Document{}, "", err
			}
			return doc, document.HardcodedLoader, nil
		},
	}
}
