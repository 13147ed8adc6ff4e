package server

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joseph-ayodele/bom-validator/constants"
	"github.com/joseph-ayodele/bom-validator/internal/common"
	"github.com/joseph-ayodele/bom-validator/internal/entity"
	"github.com/joseph-ayodele/bom-validator/internal/export"
	"github.com/joseph-ayodele/bom-validator/internal/extract"
	"github.com/joseph-ayodele/bom-validator/internal/pipeline"
	"github.com/joseph-ayodele/bom-validator/internal/reconcile"
	"github.com/joseph-ayodele/bom-validator/internal/repository"
	"github.com/joseph-ayodele/bom-validator/internal/storage"
)

// API holds the handlers' collaborators.
type API struct {
	layout    *storage.Layout
	processor *pipeline.Processor
	compare   *reconcile.Service
	exporter  *export.Service
	runs      repository.ExtractRunRepository
}

func NewAPI(layout *storage.Layout, processor *pipeline.Processor, compare *reconcile.Service, exporter *export.Service, runs repository.ExtractRunRepository) *API {
	return &API{layout: layout, processor: processor, compare: compare, exporter: exporter, runs: runs}
}

func registerRoutes(r *gin.Engine, api *API) {
	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/health", api.handleHealth)
		apiGroup.GET("/folders", api.handleListFolders)

		apiGroup.POST("/process/:folder_id", api.handleProcess)
		apiGroup.POST("/extract/:source/:session_id", api.handleExtract)
		apiGroup.POST("/compare/:session_id", api.handleCompare)

		apiGroup.GET("/results/:folder_id", api.handleResults)
		apiGroup.GET("/runs/:folder_id", api.handleRuns)
		apiGroup.GET("/export/:session_id", api.handleExport)
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (a *API) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (a *API) handleListFolders(c *gin.Context) {
	folders, err := a.layout.ListFolders()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"folders": folders})
}

// folderParam validates a path parameter and tags the request context with it.
func folderParam(c *gin.Context, name string) (string, bool) {
	id := c.Param(name)
	if err := common.ValidateFolderID(id); err != nil {
		respondError(c, err)
		return "", false
	}
	c.Request = c.Request.WithContext(common.WithFolderID(c.Request.Context(), id))
	return id, true
}

func (a *API) handleProcess(c *gin.Context) {
	folderID, ok := folderParam(c, "folder_id")
	if !ok {
		return
	}
	results, err := a.processor.ProcessFolder(c.Request.Context(), folderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"folder_id": folderID, "result": results.Summary()})
}

func (a *API) handleExtract(c *gin.Context) {
	src := constants.Source(c.Param("source"))
	if _, known := constants.SourceGlobs[src]; !known {
		respondMessage(c, http.StatusNotFound, "unknown source: "+string(src))
		return
	}
	sessionID, ok := folderParam(c, "session_id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "missing file")
		return
	}
	upload, err := fileHeader.Open()
	if err != nil {
		respondMessage(c, http.StatusInternalServerError, "unable to read uploaded file")
		return
	}
	defer upload.Close()

	path, err := a.layout.SaveUpload(sessionID, src, fileHeader.Filename, upload)
	if err != nil {
		respondError(c, err)
		return
	}

	out, err := a.processor.RunOne(c.Request.Context(), src, sessionID)
	if err != nil {
		respondError(c, fmt.Errorf("%s extraction failed: %w", src, err))
		return
	}

	resp := gin.H{"session_id": sessionID, "file": filepath.Base(path)}
	if spec, ok := out.(extract.SpecResult); ok {
		resp["parts_extracted"] = 0
		resp["metadata_extracted"] = 0
		if spec.Document != nil {
			resp["parts_extracted"] = len(spec.Document.Parts)
			resp["metadata_extracted"] = len(spec.Document.Metadata)
		}
	} else {
		resp["rows_extracted"] = out.Records()
	}
	c.JSON(http.StatusOK, resp)
}

func (a *API) handleCompare(c *gin.Context) {
	sessionID, ok := folderParam(c, "session_id")
	if !ok {
		return
	}
	cmp, err := a.compare.Compare(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cmp)
}

func (a *API) handleResults(c *gin.Context) {
	folderID, ok := folderParam(c, "folder_id")
	if !ok {
		return
	}
	if !a.layout.ProcessedExists(folderID) {
		respondError(c, common.ProcessedNotFound(folderID))
		return
	}

	dir := a.layout.ProcessedFolder(folderID)
	resp := gin.H{"folder_id": folderID}
	for key, name := range map[string]string{
		"bom":        constants.ArtifactBOM,
		"cs_bom":     constants.ArtifactCS,
		"sap_data":   constants.ArtifactSAPData,
		"sap_raw":    constants.ArtifactSAPRaw,
		"comparison": constants.ArtifactComparison,
	} {
		raw, err := storage.ReadRawJSON(filepath.Join(dir, name))
		if err != nil {
			respondError(c, err)
			return
		}
		resp[key] = raw
	}
	c.JSON(http.StatusOK, resp)
}

func (a *API) handleRuns(c *gin.Context) {
	folderID, ok := folderParam(c, "folder_id")
	if !ok {
		return
	}
	runs := []*entity.ExtractRun{}
	if a.runs != nil {
		listed, err := a.runs.ListByFolder(c.Request.Context(), folderID)
		if err != nil {
			respondError(c, err)
			return
		}
		if listed != nil {
			runs = listed
		}
	}
	c.JSON(http.StatusOK, gin.H{"folder_id": folderID, "runs": runs})
}

func (a *API) handleExport(c *gin.Context) {
	sessionID, ok := folderParam(c, "session_id")
	if !ok {
		return
	}
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		respondError(c, common.InvalidArgument(err.Error()))
		return
	}

	cmp, err := a.compare.Latest(sessionID)
	if err == nil && cmp == nil {
		cmp, err = a.compare.Compare(c.Request.Context(), sessionID)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	body, err := a.exporter.Render(cmp, format)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s_comparison.%s"`, sessionID, format))
	c.Data(http.StatusOK, format.ContentType(), body)
}
