package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mentorbase/mentor-marketplace/internal/httperr"
)

// writeError maps a use case error onto the response envelope. Business
// errors keep their code; "*_not_found" codes map to 404, party/ownership
// codes map to 403, everything else business maps to 400. Unknown errors
// become a generic 500.
func writeError(c *gin.Context, err error, fallbackCode, fallbackMsg string) {
	if be, ok := httperr.AsBusiness(err); ok {
		msg := be.Message
		if msg == "" {
			msg = strings.ReplaceAll(be.Code, "_", " ")
		}
		switch {
		case strings.HasSuffix(be.Code, "_not_found"):
			httperr.NotFound(c, be.Code, msg)
		case strings.HasSuffix(be.Code, "_party") || strings.HasSuffix(be.Code, "_owner"):
			httperr.Forbidden(c, be.Code, msg)
		default:
			httperr.BadRequest(c, be.Code, msg)
		}
		return
	}
	httperr.Internal(c, fallbackCode, fallbackMsg)
}

func paramUint(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		httperr.BadRequest(c, "invalid_id", "Invalid identifier.")
		return 0, false
	}
	return uint(v), true
}
