package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/foerderdata/fundwatch/internal/domain"
)

// defaultRunsLimit caps the runs listing when no limit is given.
const defaultRunsLimit = 20

// handleHealth reports liveness.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleSnapshot returns the reconstructed snapshot. The state query
// parameter selects the current catalog ("current"), the retirement log
// ("retired") or everything (default).
func (s *Server) handleSnapshot(c *gin.Context) {
	state := domain.SnapshotState(c.DefaultQuery("state", string(domain.SnapshotAll)))

	switch state {
	case domain.SnapshotAll, domain.SnapshotCurrent, domain.SnapshotRetired:
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "state must be one of all, current, retired",
		})
		return
	}

	rows, err := s.snapshots.Snapshot(c.Request.Context(), state)
	if err != nil {
		s.log.Error("snapshot reconstruction failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to reconstruct snapshot",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"state": state,
		"count": len(rows),
		"rows":  rows,
	})
}

// handleRuns returns the most recent crawl runs.
func (s *Server) handleRuns(c *gin.Context) {
	if s.runs == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "crawl run store not configured"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultRunsLimit)))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}

	runs, err := s.runs.ListRecent(c.Request.Context(), limit)
	if err != nil {
		s.log.Error("failed to list crawl runs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list crawl runs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(runs), "runs": runs})
}
