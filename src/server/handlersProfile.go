package server

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"profileserv/src/logger"
)

type (
	DeleteImageBody struct {
		ImageURL string `json:"imageurl"`
	}

	UpdateBioBody struct {
		Bio string `json:"bio"`
	}
)

const imageFormField = "image"

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var buffer bytes.Buffer
	if _, err := io.Copy(&buffer, file); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// Upload stores the posted image under <userID>/<originalname> and appends its
// public URL to the profile's image list, creating the row when absent.
func (a *AppHandler) Upload(c *gin.Context) {
	header, err := c.FormFile(imageFormField)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No file uploaded"})
		return
	}
	user := a.currentUser(c)
	if user == nil {
		return
	}

	data, err := readUpload(header)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to read file"})
		return
	}

	objectPath := fmt.Sprintf("%s/%s", user.ID, header.Filename)
	if err := a.storage.Upload(c.Request.Context(), objectPath, data, header.Header.Get("Content-Type")); err != nil {
		failUpstream(c, "Error uploading image", err)
		return
	}
	imageURL := a.storage.PublicURL(objectPath)

	unlock := a.locks.lock(user.ID)
	defer unlock()

	profile, err := a.profiles.FetchProfile(c.Request.Context(), user.ID)
	if err != nil {
		failUpstream(c, "Error fetching profile", err)
		return
	}
	urls := []string{}
	if profile != nil {
		urls = profile.ImageURLs
	}
	urls = append(urls, imageURL)

	err = a.profiles.UpsertProfile(c.Request.Context(), map[string]any{
		"id":        user.ID,
		"imageurls": urls,
	})
	if err != nil {
		// The object stays behind in storage with no profile reference;
		// there is no compensation step.
		failUpstream(c, "Error updating image URLs", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"msg":     "Image uploaded and URL added successfully",
		"img":     imageURL,
	})
}

// DeleteImage drops every image-list entry equal to the given URL. Whether the
// backing object is removed as well is a configured policy; the reference
// update never fails because of it.
func (a *AppHandler) DeleteImage(c *gin.Context) {
	var body DeleteImageBody
	_ = c.ShouldBindJSON(&body)
	imageURL := body.ImageURL
	if imageURL == "" {
		imageURL = c.Query("imageurl")
	}
	if imageURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Image URL is required"})
		return
	}
	user := a.currentUser(c)
	if user == nil {
		return
	}

	unlock := a.locks.lock(user.ID)
	defer unlock()

	profile, err := a.profiles.FetchProfile(c.Request.Context(), user.ID)
	if err != nil {
		failUpstream(c, "Error fetching profile", err)
		return
	}
	urls := []string{}
	if profile != nil {
		for _, u := range profile.ImageURLs {
			if u != imageURL {
				urls = append(urls, u)
			}
		}
	}

	err = a.profiles.UpsertProfile(c.Request.Context(), map[string]any{
		"id":        user.ID,
		"imageurls": urls,
	})
	if err != nil {
		failUpstream(c, "Error updating image URLs", err)
		return
	}

	if a.deleteObjects {
		a.removeObject(c, imageURL)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"msg":      "Image removed successfully",
		"imageurl": imageURL,
	})
}

// removeObject derives the object path from a public URL and removes the blob.
// Failures are logged only, the reference is already gone.
func (a *AppHandler) removeObject(c *gin.Context, imageURL string) {
	parts := strings.SplitN(imageURL, "/"+a.bucket+"/", 2)
	if len(parts) != 2 || parts[1] == "" {
		logger.Log.Warnw("could not derive storage path from image URL", "url", imageURL)
		return
	}
	if err := a.storage.Remove(c.Request.Context(), parts[1]); err != nil {
		logger.Log.Warnw("failed to delete storage object", "path", parts[1], "error", err)
	}
}

// UpdatePic stores the posted image under public/<userID>/<originalname> and
// overwrites profilepic_url unconditionally. The previous picture object is
// left in place.
func (a *AppHandler) UpdatePic(c *gin.Context) {
	header, err := c.FormFile(imageFormField)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No image file uploaded"})
		return
	}
	user := a.currentUser(c)
	if user == nil {
		return
	}

	data, err := readUpload(header)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to read file"})
		return
	}

	objectPath := fmt.Sprintf("public/%s/%s", user.ID, header.Filename)
	if err := a.storage.Upload(c.Request.Context(), objectPath, data, header.Header.Get("Content-Type")); err != nil {
		failUpstream(c, "Error uploading image", err)
		return
	}
	imageURL := a.storage.PublicURL(objectPath)

	err = a.profiles.UpdateProfile(c.Request.Context(), user.ID, map[string]any{
		"profilepic_url": imageURL,
	})
	if err != nil {
		failUpstream(c, "Error updating profile", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Profile picture updated successfully",
		"imageUrl": imageURL,
	})
}

func (a *AppHandler) UpdateBio(c *gin.Context) {
	var body UpdateBioBody
	_ = c.ShouldBindJSON(&body)
	if body.Bio == "" {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"msg": "no BIO"})
		return
	}
	user := a.currentUser(c)
	if user == nil {
		return
	}

	err := a.profiles.UpdateProfile(c.Request.Context(), user.ID, map[string]any{
		"Bio": body.Bio,
	})
	if err != nil {
		failUpstream(c, "Error updating bio", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "bio": body.Bio})
}

// GetUser returns the profile summary with defaults for a user who has no
// profile activity yet. The bucket listing never affects the response body,
// but storage being unreachable still fails the request.
func (a *AppHandler) GetUser(c *gin.Context) {
	user := a.currentUser(c)
	if user == nil {
		return
	}

	buckets, err := a.storage.ListBuckets(c.Request.Context())
	if err != nil {
		failUpstream(c, "Error listing buckets", err)
		return
	}
	logger.Log.Debugw("buckets", "names", buckets)

	profile, err := a.profiles.FetchProfile(c.Request.Context(), user.ID)
	if err != nil {
		failUpstream(c, "Error fetching profile", err)
		return
	}

	name, bio, picURL := "", "", ""
	imageURLs := []string{}
	if profile != nil {
		name = profile.Name
		bio = profile.Bio
		picURL = profile.ProfilePicURL
		if profile.ImageURLs != nil {
			imageURLs = profile.ImageURLs
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"user":      name,
		"bio":       bio,
		"imgurl":    picURL,
		"imageurls": imageURLs,
	})
}
