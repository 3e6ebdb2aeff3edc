package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"todo-notes/internal/notify"
)

type sendEmailRequest struct {
	To      string `json:"to" binding:"required"`
	Subject string `json:"subject" binding:"required"`
	Text    string `json:"text" binding:"required_without=HTML"`
	HTML    string `json:"html"`
}

const missingFieldsMessage = "Missing required fields: to, subject, and text/html"

func (h *Handler) sendEmail(c *gin.Context) {
	var req sendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			c.JSON(http.StatusBadRequest, gin.H{"error": missingFieldsMessage})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	// blank-but-present fields pass the binding check
	email := notify.Email{To: req.To, Subject: req.Subject, Text: req.Text, HTML: req.HTML}
	if err := email.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": missingFieldsMessage})
		return
	}

	if h.mailer == nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to send email",
			"details": "mail relay is not configured",
		})
		return
	}

	id, err := h.mailer.Send(c.Request.Context(), email)
	if err != nil {
		h.logger.WithError(err).Error("error sending email")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to send email",
			"details": err.Error(),
		})
		return
	}

	h.logger.WithField("message_id", id).Info("email sent successfully")
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"messageId": id,
		"message":   "Email sent successfully",
	})
}
