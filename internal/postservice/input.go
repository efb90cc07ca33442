package postservice

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/algonotes/internal/apperr"
	"github.com/starford/algonotes/internal/models"
)

// Input is the writable part of a post, as submitted by a client.
type Input struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	Tags        []string `json:"tags"`
	Difficulty  string   `json:"difficulty"`
	// Date is an optional publish date; any format dateparse understands.
	Date string `json:"date"`
}

// Validate checks required fields, the difficulty enum and the date.
func (in Input) Validate() error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required),
		validation.Field(&in.Content, validation.Required),
		validation.Field(&in.Difficulty, validation.By(knownDifficulty)),
		validation.Field(&in.Date, validation.By(parseableDate)),
	)
	if err != nil {
		return fmt.Errorf("%w: %s", apperr.ErrInvalid, err.Error())
	}
	return nil
}

func knownDifficulty(v any) error {
	s, _ := v.(string)
	if _, ok := models.ParseDifficulty(s); !ok {
		return validation.NewError("validation_difficulty", "must be one of none, easy, medium, hard")
	}
	return nil
}

func parseableDate(v any) error {
	s, _ := v.(string)
	if s == "" {
		return nil
	}
	if _, err := dateparse.ParseIn(s, time.UTC); err != nil {
		return validation.NewError("validation_date", "is not a recognisable date")
	}
	return nil
}

// cleanTags trims every tag and drops empties, preserving order.
func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
