package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roach88/advsearch/internal/catalog"
	"github.com/roach88/advsearch/internal/config"
	"github.com/roach88/advsearch/internal/migrate"
	"github.com/roach88/advsearch/internal/operators"
	"github.com/roach88/advsearch/internal/pipeline"
	"github.com/roach88/advsearch/internal/querytree"
)

// nodeView is a node as node pickers consume it.
type nodeView struct {
	Alias     string `json:"alias"`
	Name      string `json:"name"`
	Datatype  string `json:"datatype"`
	SortOrder int    `json:"sortorder"`
	Label     string `json:"card_x_node_x_widget_label"`
}

type validateResponse struct {
	Valid      bool              `json:"valid"`
	Issues     []querytree.Issue `json:"issues"`
	Migrations []migrate.Change  `json:"migrations"`
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// pipelineFor returns the pipeline for the request's ?lang=, if any.
// The label cache is bound to the configured language, so a request in
// another language goes without it.
func (s *Server) pipelineFor(c *gin.Context) (*pipeline.Pipeline, error) {
	raw := c.Query("lang")
	if raw == "" {
		return s.pipeline, nil
	}
	lang, err := config.CanonicalLanguage(raw)
	if err != nil {
		return nil, badRequest(fmt.Sprintf("invalid lang %q", raw), err)
	}
	if lang == s.pipeline.Languages.Preferred {
		return s.pipeline, nil
	}
	p := *s.pipeline
	p.Languages.Preferred = lang
	p.Labels = nil
	return &p, nil
}

func (s *Server) handleGraphs(c *gin.Context) {
	p, err := s.pipelineFor(c)
	if err != nil {
		handleError(c, err)
		return
	}
	graphs, err := catalog.GraphSummaries(c.Request.Context(), p.Source, p.Languages)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, graphs)
}

func (s *Server) handleGraphNodes(c *gin.Context) {
	p, err := s.pipelineFor(c)
	if err != nil {
		handleError(c, err)
		return
	}
	slug := c.Param("slug")
	nodes, err := p.Source.Nodes(c.Request.Context(), slug)
	if err != nil {
		handleError(c, fmt.Errorf("graph %q: %w", slug, err))
		return
	}

	out := make([]nodeView, len(nodes))
	for i, n := range nodes {
		out[i] = nodeView{
			Alias:     n.Alias,
			Name:      n.Name,
			Datatype:  n.Datatype,
			SortOrder: n.SortOrder,
			Label:     n.DisplayLabel(p.Languages.Preferred, p.Languages.Default),
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleFacets(c *gin.Context) {
	facets, err := s.pipeline.Source.Facets(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, facets)
}

func (s *Server) handleDatatypeFacets(c *gin.Context) {
	facets, err := s.pipeline.Source.Facets(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	list := facets[c.Param("datatype")]
	if list == nil {
		list = []operators.Facet{}
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) handleNodeMetadata(c *gin.Context) {
	p, err := s.pipelineFor(c)
	if err != nil {
		handleError(c, err)
		return
	}
	body, err := c.GetRawData()
	if err != nil {
		handleError(c, badRequest("Invalid request body", err))
		return
	}
	prepared, err := p.Prepare(body)
	if err != nil {
		handleError(c, err)
		return
	}
	meta, err := catalog.NodeMetadataForPayload(c.Request.Context(), p.Source, prepared.Group, p.Languages)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, meta)
}

func (s *Server) handleNarrate(c *gin.Context) {
	p, err := s.pipelineFor(c)
	if err != nil {
		handleError(c, err)
		return
	}
	body, err := c.GetRawData()
	if err != nil {
		handleError(c, badRequest("Invalid request body", err))
		return
	}
	res, err := p.Narrate(c.Request.Context(), body)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleValidate(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		handleError(c, badRequest("Invalid request body", err))
		return
	}
	prepared, lint, err := s.pipeline.Validate(c.Request.Context(), body)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, validateResponse{
		Valid:      lint.Valid,
		Issues:     lint.Issues,
		Migrations: prepared.Migrations.Changes,
	})
}
