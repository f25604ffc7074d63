package handler

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAK-124/attendance-backend-go/internal/models"
	"github.com/SAK-124/attendance-backend-go/internal/service"
	"github.com/SAK-124/attendance-backend-go/pkg/response"
)

// AttendanceHandler handles attendance processing uploads
type AttendanceHandler struct {
	service *service.AttendanceService
}

// NewAttendanceHandler creates a new attendance handler
func NewAttendanceHandler(service *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: service}
}

// ProcessUpload handles POST /api/v1/attendance/process.
// Multipart fields: "log" (required CSV), "roster" (optional CSV),
// "params" and "exemptions" (optional JSON). Malformed params or
// exemptions degrade to defaults instead of failing the request.
func (h *AttendanceHandler) ProcessUpload(c *gin.Context) {
	logData, err := readFormFile(c, "log")
	if err != nil {
		response.BadRequest(c, "Missing or unreadable log file")
		return
	}

	rosterData, err := readOptionalFormFile(c, "roster")
	if err != nil {
		response.BadRequest(c, "Unreadable roster file")
		return
	}

	params := models.CoerceDecisionParams([]byte(c.PostForm("params")))
	exemptions := models.CoerceExemptions([]byte(c.PostForm("exemptions")))

	runID, report, err := h.service.Process(logData, rosterData, params, exemptions, c.GetString("user"))
	if err != nil {
		if models.IsInputError(err) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, "Failed to process attendance log")
		return
	}

	response.Success(c, gin.H{
		"run_id": runID,
		"report": report,
	})
}

// ResolveKeys handles POST /api/v1/attendance/keys. It parses the log
// and returns the resolved identity keys so exemption configuration
// can be built against real keys.
func (h *AttendanceHandler) ResolveKeys(c *gin.Context) {
	logData, err := readFormFile(c, "log")
	if err != nil {
		response.BadRequest(c, "Missing or unreadable log file")
		return
	}

	keys, err := h.service.Keys(logData)
	if err != nil {
		if models.IsInputError(err) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, "Failed to resolve identity keys")
		return
	}

	response.Success(c, gin.H{
		"keys":  keys,
		"total": len(keys),
	})
}

func readFormFile(c *gin.Context, field string) ([]byte, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, err
	}
	return readFile(fh)
}

func readOptionalFormFile(c *gin.Context, field string) ([]byte, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, nil
		}
		return nil, err
	}
	return readFile(fh)
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
