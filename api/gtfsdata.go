package api

import (
	"errors"
	"net/http"

	"tripplanner.dev/gtfs"
	"tripplanner.dev/gtfs/model"
	"tripplanner.dev/gtfs/parse"
)

const allSources = "all"

type SourcesResponse struct {
	Sources []model.Source `json:"sources"`
	Count   int            `json:"count"`
}

type ClearCacheResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type TableResponse struct {
	SourceID string      `json:"sourceId"`
	File     string      `json:"file"`
	Data     []parse.Row `json:"data"`
	Count    int         `json:"count"`
}

type SummaryResponse struct {
	SourceID   string            `json:"sourceId"`
	SourceName string            `json:"sourceName"`
	Summary    model.FeedSummary `json:"summary"`
	CacheInfo  model.CacheStatus `json:"cacheInfo"`
}

// GET /gtfsData?source=&file=&action=
func (s *Server) handleGTFSData(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sourceID := q.Get("source")

	switch q.Get("action") {
	case "":
	case "sources":
		sources := s.Static.Sources().List()
		writeJSON(w, http.StatusOK, SourcesResponse{Sources: sources, Count: len(sources)})
		return
	case "cache-info":
		s.cacheInfo(w, sourceID)
		return
	case "clear-cache":
		s.clearCache(w, sourceID)
		return
	default:
		writeError(w, http.StatusBadRequest, "Unknown action: "+q.Get("action"))
		return
	}

	if ids := s.Static.Sources().IDs(); sourceID == "" && len(ids) > 0 {
		sourceID = ids[0]
	}
	source, err := s.Static.Sources().Get(sourceID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unknown source: "+sourceID)
		return
	}

	file := q.Get("file")
	table := ""
	if file != "" {
		var found bool
		table, found = parse.CanonicalTableName(file)
		if !found {
			writeError(w, http.StatusBadRequest, "Unknown file: "+file)
			return
		}
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	tables, err := s.Static.GetData(ctx, sourceID)
	if err != nil {
		s.Logger.Error("serving gtfs data", "source", sourceID, "op", "getData", "err", err)
		writeError(w, upstreamStatus(err), "Failed to fetch GTFS static data")
		return
	}

	if table != "" {
		rows := tables.Table(table)
		writeJSON(w, http.StatusOK, TableResponse{
			SourceID: sourceID,
			File:     table,
			Data:     rows,
			Count:    len(rows),
		})
		return
	}

	info, _ := s.Static.CacheInfo(sourceID)
	writeJSON(w, http.StatusOK, SummaryResponse{
		SourceID:   sourceID,
		SourceName: source.Name,
		Summary:    parse.Summarize(tables),
		CacheInfo:  info,
	})
}

func (s *Server) cacheInfo(w http.ResponseWriter, sourceID string) {
	if sourceID == "" || sourceID == allSources {
		writeJSON(w, http.StatusOK, s.Static.CacheInfoAll())
		return
	}

	info, err := s.Static.CacheInfo(sourceID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unknown source: "+sourceID)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) clearCache(w http.ResponseWriter, sourceID string) {
	ids := []string{}
	if sourceID != "" && sourceID != allSources {
		ids = append(ids, sourceID)
	}

	err := s.Static.Clear(ids...)
	if errors.Is(err, gtfs.ErrUnknownSource) {
		writeError(w, http.StatusBadRequest, "Unknown source: "+sourceID)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to clear cache")
		return
	}

	// Map data is assembled from the cleared tables.
	s.Assembler.Clear()

	message := "All GTFS caches cleared"
	if len(ids) > 0 {
		message = "GTFS cache cleared for source: " + sourceID
	}
	writeJSON(w, http.StatusOK, ClearCacheResponse{Success: true, Message: message})
}
