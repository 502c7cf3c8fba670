package cache

// Keyer generates cache keys.
type Keyer interface {
	// BuildKey identifies a move graph built from a catalog.
	BuildKey(catalogHash string, opts BuildKeyOpts) string

	// RenderKey identifies an artifact rendered from a built graph.
	RenderKey(buildKey string, opts RenderKeyOpts) string
}

// BuildKeyOpts holds every option that changes the graph a build yields.
type BuildKeyOpts struct {
	Tolerance       float64 `json:"tolerance"`
	Metric          string  `json:"metric"`
	Convention      string  `json:"convention"`
	Index           string  `json:"index"`
	Canonicalize    bool    `json:"canonicalize"`
	Grid            float64 `json:"grid"`
	RelaxIterations int     `json:"relax_iterations"` // 0 means no relaxing
}

// RenderKeyOpts holds every option that changes a rendered artifact.
type RenderKeyOpts struct {
	Format         string `json:"format"`
	Detailed       bool   `json:"detailed"`
	HideEdgeLabels bool   `json:"hide_edge_labels"`
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// BuildKey returns "build:<hash>".
func (DefaultKeyer) BuildKey(catalogHash string, opts BuildKeyOpts) string {
	return hashKey(keyTypeBuild, catalogHash, opts)
}

// RenderKey returns "render:<hash>".
func (DefaultKeyer) RenderKey(buildKey string, opts RenderKeyOpts) string {
	return hashKey(keyTypeRender, buildKey, opts)
}

var _ Keyer = DefaultKeyer{}
