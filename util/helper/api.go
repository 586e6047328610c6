package helper_util

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

const MaxQueryLimit = 1000

// GetLimitParam reads ?limit=, defaulting to def and capped at MaxQueryLimit.
func GetLimitParam(c *gin.Context, def int) (int, error) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(def)))
	if err != nil {
		return 0, err
	}
	if limit < 1 {
		return 0, fmt.Errorf("limit must be positive")
	}
	if limit > MaxQueryLimit {
		limit = MaxQueryLimit
	}
	return limit, nil
}
