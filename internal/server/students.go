package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/TIMOVIS/mandarin-exam/internal/profile"
	"github.com/TIMOVIS/mandarin-exam/internal/store"
)

type createStudentRequest struct {
	Name     string `json:"name"`
	Age      int    `json:"age"`
	Comments string `json:"comments"`
}

func (s *Server) listStudents(c *gin.Context) {
	roster, err := s.opts.Profiles.Roster(c.Request.Context())
	if err != nil {
		s.internalError(c, err)
		return
	}
	if roster == nil {
		roster = []store.RosterEntry{}
	}
	c.JSON(http.StatusOK, roster)
}

func (s *Server) createStudent(c *gin.Context) {
	var req createStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := profile.New(req.Name, req.Age)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p.Comments = req.Comments

	if err := s.opts.Profiles.Create(c.Request.Context(), p); err != nil {
		if errors.Is(err, store.ErrDuplicateName) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (s *Server) getStudent(c *gin.Context) {
	p, err := s.opts.Profiles.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		s.internalError(c, err)
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "student not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) saveStudent(c *gin.Context) {
	var p profile.Profile
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if p.Name == "" {
		p.Name = c.Param("name")
	}
	if p.Name != c.Param("name") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "profile name does not match path"})
		return
	}
	if err := s.opts.Profiles.Save(c.Request.Context(), p); err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) deleteStudent(c *gin.Context) {
	if err := s.opts.Profiles.Delete(c.Request.Context(), c.Param("name")); err != nil {
		s.internalError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) internalError(c *gin.Context, err error) {
	s.log.Error("store request failed", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
