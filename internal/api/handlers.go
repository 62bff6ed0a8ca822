package api

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lvonguyen/incidentscope/internal/analytics"
	"github.com/lvonguyen/incidentscope/internal/clustering"
	"github.com/lvonguyen/incidentscope/internal/dataset"
	"github.com/lvonguyen/incidentscope/internal/ingest"
)

// ingestResponse is returned by both upload and generate.
type ingestResponse struct {
	Message   string    `json:"message"`
	Records   int       `json:"records"`
	Columns   []string  `json:"columns"`
	DateRange dateRange `json:"date_range"`
}

type dateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

const timestampFormat = "2006-01-02 15:04:05"

func newIngestResponse(message string, ds *dataset.Dataset) ingestResponse {
	return ingestResponse{
		Message: message,
		Records: ds.Len(),
		Columns: ds.Columns,
		DateRange: dateRange{
			Start: ds.Start.Format(timestampFormat),
			End:   ds.End.Format(timestampFormat),
		},
	}
}

// handleUpload ingests a CSV or JSON incident file. The working dataset is
// replaced only after the whole file parsed and built, so a failed upload
// leaves the previous dataset in place.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	table, err := parseUpload(file, header.Filename)
	if errors.Is(err, ingest.ErrUnsupportedFormat) {
		writeError(w, http.StatusBadRequest, "Unsupported file format")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	ds, err := ingest.Build(table)
	if err != nil {
		s.logger.Warn("upload rejected", zap.String("file", header.Filename), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.installDataset(ds, "upload")
	s.logger.Info("dataset uploaded",
		zap.String("file", header.Filename),
		zap.Int("records", ds.Len()),
		zap.Int("dropped", ds.Dropped))

	writeJSON(w, http.StatusOK, newIngestResponse("File uploaded", ds))
}

func parseUpload(file io.Reader, filename string) (*ingest.Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return ingest.ReadCSV(file)
	case ".json":
		return ingest.ReadJSON(file)
	default:
		return nil, ingest.ErrUnsupportedFormat
	}
}

// handleGenerate replaces the working dataset with a synthetic one.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Records *int `json:"records"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	n := s.cfg.Generator.DefaultRecords
	if req.Records != nil {
		n = *req.Records
	}
	if n < 1 || n > s.cfg.Generator.MaxRecords {
		writeError(w, http.StatusBadRequest, "records out of range")
		return
	}

	ds, err := ingest.GenerateDataset(n, ingest.GeneratorConfig{
		Seed: s.cfg.Generator.Seed,
		Days: s.cfg.Generator.Days,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.installDataset(ds, "generate")
	s.logger.Info("synthetic dataset generated", zap.Int("records", ds.Len()))

	writeJSON(w, http.StatusOK, newIngestResponse("Synthetic data generated", ds))
}

// handleClustering runs k-means over the current dataset.
func (s *Server) handleClustering(w http.ResponseWriter, r *http.Request) {
	ds, err := s.store.Snapshot()
	if err != nil {
		writeError(w, http.StatusBadRequest, "No incidents loaded")
		return
	}

	var req struct {
		NClusters *int `json:"n_clusters"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	k := s.cfg.Clustering.DefaultClusters
	if req.NClusters != nil {
		k = *req.NClusters
	}

	defer s.observeAnalysis("clustering", time.Now())
	result, err := clustering.Analyze(ds, k, clustering.Config{
		Seed:          s.cfg.Clustering.Seed,
		Restarts:      s.cfg.Clustering.Restarts,
		MaxIterations: s.cfg.Clustering.MaxIterations,
	})
	if errors.Is(err, clustering.ErrClusterCount) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// JSON has no encoding for NaN or Inf.
	result.SilhouetteScore = finiteOrZero(result.SilhouetteScore)
	result.Inertia = finiteOrZero(result.Inertia)

	writeJSON(w, http.StatusOK, result)
}

// handleTemporal returns the descriptive temporal-risk report.
func (s *Server) handleTemporal(w http.ResponseWriter, r *http.Request) {
	ds, err := s.store.Snapshot()
	if err != nil {
		writeError(w, http.StatusBadRequest, "No data loaded")
		return
	}

	defer s.observeAnalysis("temporal", time.Now())
	writeJSON(w, http.StatusOK, analytics.Temporal(ds))
}

// handlePredictions returns the 7-day forecast.
func (s *Server) handlePredictions(w http.ResponseWriter, r *http.Request) {
	ds, err := s.store.Snapshot()
	if err != nil {
		writeError(w, http.StatusBadRequest, "No data loaded")
		return
	}

	defer s.observeAnalysis("predictions", time.Now())
	writeJSON(w, http.StatusOK, analytics.Forecast(ds))
}

func (s *Server) installDataset(ds *dataset.Dataset, source string) {
	s.store.Replace(ds)
	if s.metrics != nil {
		s.metrics.DatasetsLoaded.WithLabelValues(source).Inc()
		s.metrics.RecordsIngested.Add(float64(ds.Len()))
		s.metrics.RowsDropped.Add(float64(ds.Dropped))
		s.metrics.DatasetRecords.Set(float64(ds.Len()))
	}
}

func (s *Server) observeAnalysis(kind string, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.AnalysesTotal.WithLabelValues(kind).Inc()
	s.metrics.AnalysisDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
