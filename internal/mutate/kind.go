package mutate

// Kind identifies the branch of the cascade that fired.
type Kind uint8

const (
	None Kind = iota
	RemovePolygon
	AddPolygon
	SwapPolygon
	PerturbGene
	RemoveVertex
	AddVertex
	SwapVertex
	PerturbPolygon
)

var kindNames = [...]string{
	None:           "none",
	RemovePolygon:  "remove_polygon",
	AddPolygon:     "add_polygon",
	SwapPolygon:    "swap_polygon",
	PerturbGene:    "perturb_gene",
	RemoveVertex:   "remove_vertex",
	AddVertex:      "add_vertex",
	SwapVertex:     "swap_vertex",
	PerturbPolygon: "perturb_polygon",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Structural reports whether k changes an element count or order.
func (k Kind) Structural() bool {
	switch k {
	case RemovePolygon, AddPolygon, SwapPolygon, RemoveVertex, AddVertex, SwapVertex:
		return true
	}
	return false
}

// GeneKinds lists the gene-level branches in cascade order.
var GeneKinds = []Kind{RemovePolygon, AddPolygon, SwapPolygon, PerturbGene}
