package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CreateFolder handles folder creation
func (h *Handler) CreateFolder(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required,min=1,max=255"`
		ParentID string `json:"parent_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: folder name and parent_id are required"})
		return
	}

	id, err := h.lib.CreateFolder(input.ParentID, input.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	h.persist(c)

	c.JSON(http.StatusCreated, gin.H{"id": id, "name": input.Name, "parent_id": input.ParentID})
}

// GetFolder returns one folder's listing: breadcrumb path, subfolders and media.
func (h *Handler) GetFolder(c *gin.Context) {
	view, err := h.lib.View(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetFolderPath returns the root-first breadcrumb for a folder.
func (h *Handler) GetFolderPath(c *gin.Context) {
	path, err := h.lib.ListPath(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": path})
}

// UpdateFolder handles rename and move in one PUT, like the folder edit
// dialog: either field may be present.
func (h *Handler) UpdateFolder(c *gin.Context) {
	var input struct {
		Name     string `json:"name"`
		ParentID string `json:"parent_id"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Name == "" && input.ParentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}

	id := c.Param("id")
	if input.Name != "" {
		if err := h.lib.RenameFolder(id, input.Name); err != nil {
			respondError(c, err)
			return
		}
	}
	if input.ParentID != "" {
		if err := h.lib.MoveFolder(id, input.ParentID); err != nil {
			respondError(c, err)
			return
		}
	}
	h.persist(c)

	c.JSON(http.StatusOK, gin.H{"message": "Folder updated successfully"})
}

// DeleteFolder handles folder deletion, cascading to all descendants.
func (h *Handler) DeleteFolder(c *gin.Context) {
	if err := h.lib.DeleteFolder(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	h.persist(c)

	c.JSON(http.StatusOK, gin.H{"message": "Folder deleted successfully"})
}
