package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"agora/internal/models"

	"github.com/microcosm-cc/bluemonday"
)

// ugcPolicy keeps the formatting a board body may reasonably carry.
var ugcPolicy = bluemonday.UGCPolicy()

// SanitizeRich removes scripts, handlers and unsafe attributes from an HTML board body
// but keeps basic formatting. Plain-text fields never go through it.
func SanitizeRich(s string) string {
	return ugcPolicy.Sanitize(s)
}

// ValidateBoardTitle requires a non-blank title within the column limit.
func ValidateBoardTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title is required")
	}
	if utf8.RuneCountInString(title) > models.MaxBoardTitleLength {
		return fmt.Errorf("title must not exceed %d characters", models.MaxBoardTitleLength)
	}
	return nil
}

// ValidateBoardContent requires a non-blank body.
func ValidateBoardContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("content is required")
	}
	return nil
}

// ValidateCategory accepts the empty string (meaning the default) or a known category.
func ValidateCategory(c models.BoardCategory) error {
	if c != "" && !c.Valid() {
		return fmt.Errorf("unknown category %q", c)
	}
	return nil
}

// ValidateBoardStatus accepts the empty string (meaning unchanged or default) or a known status.
func ValidateBoardStatus(s models.BoardStatus) error {
	if s != "" && !s.Valid() {
		return fmt.Errorf("unknown status %q", s)
	}
	return nil
}
