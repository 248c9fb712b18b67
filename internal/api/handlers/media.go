package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/se1907800-collab/mediavalut/internal/drive"
	"github.com/se1907800-collab/mediavalut/internal/tree"
	"github.com/se1907800-collab/mediavalut/internal/utils"
)

// AddMedia attaches a Drive file to a folder. The link field accepts a full
// share URL or a bare file identifier.
func (h *Handler) AddMedia(c *gin.Context) {
	var input struct {
		Link  string `json:"link" binding:"required"`
		Type  string `json:"type" binding:"required"`
		Title string `json:"title"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: link and type are required"})
		return
	}

	fileID := drive.ExtractFileID(input.Link)
	if fileID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not extract a Drive file id from the link"})
		return
	}
	mediaType, err := tree.ParseMediaType(input.Type)
	if err != nil {
		respondError(c, err)
		return
	}

	folderID := c.Param("id")
	item := tree.MediaItem{ID: fileID, Type: mediaType, Title: input.Title}
	if err := h.lib.AddMedia(folderID, item); err != nil {
		respondError(c, err)
		return
	}
	h.persist(c)

	c.JSON(http.StatusCreated, gin.H{
		"id":        fileID,
		"folder_id": folderID,
		"embed_url": embedURL(fileID, mediaType),
	})
}

func embedURL(fileID string, mediaType tree.MediaType) string {
	if mediaType == tree.MediaVideo {
		return drive.PreviewURL(fileID)
	}
	return drive.ViewURL(fileID)
}

// GetMedia resolves one item to its viewer URLs.
func (h *Handler) GetMedia(c *gin.Context) {
	item, err := h.lib.FindMedia(c.Param("id"), c.Param("mediaId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"media":     item,
		"embed_url": embedURL(item.ID, item.Type),
	})
}

// UpdateMedia handles retitling and moving an item between folders.
func (h *Handler) UpdateMedia(c *gin.Context) {
	var input struct {
		Title    string `json:"title"`
		FolderID string `json:"folder_id"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Title == "" && input.FolderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}

	folderID := c.Param("id")
	mediaID := c.Param("mediaId")
	if input.Title != "" {
		if err := h.lib.RenameMedia(folderID, mediaID, input.Title); err != nil {
			respondError(c, err)
			return
		}
	}
	if input.FolderID != "" && input.FolderID != folderID {
		if err := h.lib.MoveMedia(mediaID, folderID, input.FolderID); err != nil {
			respondError(c, err)
			return
		}
	}
	h.persist(c)

	c.JSON(http.StatusOK, gin.H{"message": "Media updated successfully"})
}

// DeleteMedia removes an item from its folder.
func (h *Handler) DeleteMedia(c *gin.Context) {
	if err := h.lib.DeleteMedia(c.Param("id"), c.Param("mediaId")); err != nil {
		respondError(c, err)
		return
	}
	h.persist(c)

	c.JSON(http.StatusOK, gin.H{"message": "Media deleted successfully"})
}

// ServeThumbnail proxies Drive's thumbnail for an item, optionally resizing
// and re-encoding it so clients get consistent dimensions.
func (h *Handler) ServeThumbnail(c *gin.Context) {
	item, err := h.lib.FindMedia(c.Param("id"), c.Param("mediaId"))
	if err != nil {
		respondError(c, err)
		return
	}

	width := utils.ParseIntOption(c.Query("width"))
	if width == 0 {
		width = 320
	}
	opts := utils.ThumbnailOptions{
		Width:   width,
		Height:  utils.ParseIntOption(c.Query("height")),
		Quality: utils.ParseIntOption(c.Query("quality")),
		Format:  c.Query("format"),
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(drive.ThumbnailURL(item.ID, width*2))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch thumbnail"})
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Thumbnail not available"})
		return
	}

	data, contentType, err := utils.RenderThumbnail(resp.Body, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, contentType, data)
}
