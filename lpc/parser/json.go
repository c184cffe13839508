package parser

import "encoding/json"

type jsonNode struct {
	Kind     string      `json:"kind"`
	Pos      int         `json:"pos"`
	Start    int         `json:"start"`
	End      int         `json:"end"`
	Token    string      `json:"token,omitempty"`
	Missing  bool        `json:"missing,omitempty"`
	Flags    string      `json:"flags,omitempty"`
	Children []*jsonNode `json:"children,omitempty"`
}

func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.toJSON())
}

func (n *Node) toJSON() *jsonNode {
	jn := &jsonNode{
		Kind:    n.Kind.String(),
		Pos:     n.Pos,
		Start:   n.Start,
		End:     n.End,
		Missing: n.IsMissing(),
		Flags:   (n.Flags &^ NodeFlagMissing).String(),
	}

	if n.Token != nil && !n.IsMissing() {
		jn.Token = n.Token.Value
	}

	if len(n.Children) > 0 {
		jn.Children = make([]*jsonNode, len(n.Children))
		for i, child := range n.Children {
			jn.Children[i] = child.toJSON()
		}
	}

	return jn
}
